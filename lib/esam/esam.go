//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"strings"

	"github.com/biogo/hts/sam"
)

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
	Gzip   bool
}

// NewPathSAM guesses the file format from its extension.
func NewPathSAM(path string) PathSAM {
	p := PathSAM{Path: path}
	switch {
	case strings.HasSuffix(path, ".bam"):
		p.Binary = true
	case strings.HasSuffix(path, ".gz"):
		p.Gzip = true
	}
	return p
}

// Alignment is one aligned read. Seq is given on the forward strand of the reference.
type Alignment struct {
	Name   string
	Chrom  string
	Strand int8
	Start  int
	Seq    string
}

// End returns the position after the last base of the read.
func (a Alignment) End() int {
	return a.Start + len(a.Seq)
}

// NewAlignment converts a SAM record.
func NewAlignment(r *sam.Record) Alignment {
	return Alignment{
		Name:   r.Name,
		Chrom:  r.Ref.Name(),
		Strand: r.Strand(),
		Start:  r.Pos,
		Seq:    strings.ToUpper(string(r.Seq.Expand())),
	}
}

// ChromInfo is a reference sequence name and length.
type ChromInfo struct {
	Name   string
	Length int
}

// ChromInfos lists the reference sequences of a SAM header.
func ChromInfos(h *sam.Header) []ChromInfo {
	refs := h.Refs()
	chroms := make([]ChromInfo, len(refs))
	for i, ref := range refs {
		chroms[i] = ChromInfo{Name: ref.Name(), Length: ref.Len()}
	}
	return chroms
}

// ChromLengths indexes chromosome lengths by name.
func ChromLengths(chroms []ChromInfo) map[string]int {
	m := make(map[string]int, len(chroms))
	for _, c := range chroms {
		m[c.Name] = c.Length
	}
	return m
}
