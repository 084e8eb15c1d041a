//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package coverage builds per-nucleotide read depth of each chromosome strand.
package coverage

import (
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/esam"
)

// ChromCoverage is the read depth of both strands of a chromosome.
type ChromCoverage struct {
	Name   string
	Length int
	Plus   []uint32
	Minus  []uint32
}

// Strand returns the depth array of strand.
func (cc *ChromCoverage) Strand(strand int8) []uint32 {
	if strand == -1 {
		return cc.Minus
	}
	return cc.Plus
}

// Table indexes chromosome coverages by name. A Table is read-only once built.
type Table struct {
	chroms map[string]*ChromCoverage
}

// New returns a zero-filled table.
func New(chroms []esam.ChromInfo) *Table {
	t := &Table{chroms: make(map[string]*ChromCoverage, len(chroms))}
	for _, c := range chroms {
		t.chroms[c.Name] = &ChromCoverage{
			Name:   c.Name,
			Length: c.Length,
			Plus:   make([]uint32, c.Length),
			Minus:  make([]uint32, c.Length),
		}
	}
	return t
}

// Build returns the table of all alignments.
func Build(chroms []esam.ChromInfo, alns []esam.Alignment) (*Table, error) {
	t := New(chroms)
	for i := range alns {
		if err := t.Add(&alns[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add increments the depth over the alignment. Positions past the chromosome end are ignored.
func (t *Table) Add(a *esam.Alignment) error {
	cc, err := t.Get(a.Chrom)
	if err != nil {
		return err
	}
	depth := cc.Strand(a.Strand)
	end := min(a.End(), cc.Length)
	for i := max(0, a.Start); i < end; i++ {
		depth[i]++
	}
	return nil
}

// Get returns the coverage of chrom.
func (t *Table) Get(chrom string) (*ChromCoverage, error) {
	cc, ok := t.chroms[chrom]
	if !ok {
		return nil, errors.Wrapf(errs.ErrChromosomeNotFound, "%s not in coverage table", chrom)
	}
	return cc, nil
}

// Range returns the depth over [start, end) of chrom on strand in genomic order.
// The returned slice shares the table memory.
func (t *Table) Range(chrom string, strand int8, start, end int) ([]uint32, error) {
	cc, err := t.Get(chrom)
	if err != nil {
		return nil, err
	}
	if start < 0 || end > cc.Length || end < start {
		return nil, errors.Wrapf(errs.ErrInvalidRange, "%s:%d-%d (length %d)", chrom, start, end, cc.Length)
	}
	return cc.Strand(strand)[start:end], nil
}

// SenseRange returns a copy of the depth over [start, end) of chrom read on
// strand: for strand -1 the first value is the depth at end-1.
func (t *Table) SenseRange(chrom string, strand int8, start, end int) ([]uint32, error) {
	r, err := t.Range(chrom, strand, start, end)
	if err != nil {
		return nil, err
	}
	sense := make([]uint32, len(r))
	if strand == -1 {
		for i, v := range r {
			sense[len(r)-1-i] = v
		}
	} else {
		copy(sense, r)
	}
	return sense, nil
}

// Sum returns the total depth of values.
func Sum(values []uint32) uint64 {
	var s uint64
	for _, v := range values {
		s += uint64(v)
	}
	return s
}
