//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package candidate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/cluster"
	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/fold"
)

const miraColumns = 12

func strandName(strand int8) string {
	if strand == -1 {
		return "minus"
	}
	return "plus"
}

// WriteCandidates writes candidates as tab-separated lines.
func WriteCandidates(w io.Writer, cands []fold.Candidate) error {
	bw := bufio.NewWriter(w)
	for _, c := range cands {
		_, err := fmt.Fprintf(bw, "Cluster_%d_%s\t%d\t%s\t%s\t%d\t%d\t%s\t%s\t%7.5f\t%9.7e\t%7.5e\t%7.5e\n",
			c.ID, strandName(c.Strand), c.ID, c.Chrom, cluster.StrandString(c.Strand), c.Start, c.End,
			c.Sequence, c.Structure, c.MFE, c.PValue, c.Mean, c.SD)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseCandidateLine parses a line written by WriteCandidates.
func ParseCandidateLine(line string) (fold.Candidate, error) {
	var c fold.Candidate
	fields := strings.Split(line, "\t")
	if len(fields) != miraColumns {
		return c, errors.Wrapf(errs.ErrInvalidCandidateLine, "%d columns", len(fields))
	}
	var err error
	invalid := func(col int) error {
		return errors.Wrapf(errs.ErrInvalidCandidateLine, "column %d %q", col+1, fields[col])
	}
	if c.ID, err = strconv.Atoi(fields[1]); err != nil {
		return c, invalid(1)
	}
	c.Chrom = fields[2]
	if c.Strand, err = cluster.ParseStrand(fields[3]); err != nil {
		return c, invalid(3)
	}
	if c.Start, err = strconv.Atoi(fields[4]); err != nil {
		return c, invalid(4)
	}
	if c.End, err = strconv.Atoi(fields[5]); err != nil {
		return c, invalid(5)
	}
	c.Sequence, c.Structure = fields[6], fields[7]
	if len(c.Sequence) != c.End-c.Start || len(c.Structure) != len(c.Sequence) {
		return c, errors.Wrapf(errs.ErrInvalidCandidateLine, "length of %s", fields[0])
	}
	floats := []*float64{&c.MFE, &c.PValue, &c.Mean, &c.SD}
	for i, f := range floats {
		if *f, err = strconv.ParseFloat(strings.TrimSpace(fields[8+i]), 64); err != nil {
			return c, invalid(8 + i)
		}
	}
	return c, nil
}

// ReadCandidates reads candidates written by WriteCandidates.
func ReadCandidates(r io.Reader) ([]fold.Candidate, error) {
	var cands []fold.Candidate
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := ParseCandidateLine(line)
		if err != nil {
			return nil, err
		}
		cands = append(cands, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cands, nil
}
