//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package genome loads reference sequences.
package genome

import (
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
)

// Genome maps chromosome names to upper-case sequences.
type Genome map[string]string

// ReadFASTA reads all sequences of r. Names are translated with mapping if not empty.
func ReadFASTA(r io.Reader, mapping map[string]string) (Genome, error) {
	g := make(Genome)
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		g[MapName(s.Name(), mapping)] = strings.ToUpper(string(alphabet.LettersToBytes(s.Seq)))
	}
	if err := sc.Error(); err != nil {
		return nil, err
	}
	return g, nil
}

// OpenFASTA reads a FASTA file, gzipped if its name ends with ".gz".
func OpenFASTA(path string, mapping map[string]string) (Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		defer gr.Close()
		r = gr
	}
	g, err := ReadFASTA(r, mapping)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return g, nil
}

// Window returns [start, end) of chrom. For strand -1, the reverse complement is returned.
func (g Genome) Window(chrom string, start, end int, strand int8) (string, error) {
	s, ok := g[chrom]
	if !ok {
		return "", errors.Wrapf(errs.ErrChromosomeNotFound, "%s not in reference", chrom)
	}
	if start < 0 || end > len(s) || end < start {
		return "", errors.Wrapf(errs.ErrInvalidRange, "%s:%d-%d (length %d)", chrom, start, end, len(s))
	}
	if strand == -1 {
		return ReverseComplement(s[start:end]), nil
	}
	return s[start:end], nil
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(s string) string {
	seq := linear.NewSeq("", alphabet.BytesToLetters([]byte(s)), alphabet.DNAredundant)
	seq.RevComp()
	return string(alphabet.LettersToBytes(seq.Seq))
}
