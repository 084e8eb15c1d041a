//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package reads counts the distinct reads of mature and star miRNAs.
package reads

import (
	"sort"

	"github.com/biogo/store/interval"

	"git.sr.ht/~vejnar/MiRA/lib/esam"
	"git.sr.ht/~vejnar/MiRA/lib/genome"
)

// DefaultFlank is the extension of mature and star boundaries.
const DefaultFlank = 30

// Index finds alignments by position. An Index is read-only once built and
// can be shared between goroutines.
type Index struct {
	trees map[string]map[int8]*interval.IntTree
	alns  []esam.Alignment
	// NRead is the library size used for read fractions.
	NRead int
}

// NewIndex builds a tree of alignments per chromosome and strand.
func NewIndex(alns []esam.Alignment, nRead int) (*Index, error) {
	idx := &Index{trees: make(map[string]map[int8]*interval.IntTree), alns: alns, NRead: nRead}
	for i, a := range alns {
		// New tree for unseen chromosome
		if _, ok := idx.trees[a.Chrom]; !ok {
			idx.trees[a.Chrom] = make(map[int8]*interval.IntTree)
			idx.trees[a.Chrom][1] = &interval.IntTree{}
			idx.trees[a.Chrom][-1] = &interval.IntTree{}
		}
		if len(a.Seq) == 0 {
			continue
		}
		iv := ReadInterval{Start: a.Start, End: a.End(), UID: uintptr(i)}
		if err := idx.trees[a.Chrom][a.Strand].Insert(iv, true); err != nil {
			return nil, err
		}
	}
	for k := range idx.trees {
		idx.trees[k][1].AdjustRanges()
		idx.trees[k][-1].AdjustRanges()
	}
	return idx, nil
}

// Within returns the alignments on chrom and strand fully inside [start, end).
func (idx *Index) Within(chrom string, strand int8, start, end int) []*esam.Alignment {
	tree, ok := idx.trees[chrom]
	if !ok || end <= start {
		return nil
	}
	var alns []*esam.Alignment
	for _, iv := range tree[strand].Get(ReadInterval{Start: start, End: end}) {
		r := iv.Range()
		if r.Start >= start && r.End <= end {
			alns = append(alns, &idx.alns[iv.ID()])
		}
	}
	return alns
}

// Read is a distinct read and its number of alignments.
type Read struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Seq   string `json:"sequence"`
	Count int    `json:"count"`
}

type readKey struct {
	start int
	seq   string
}

// UniqueReadList counts reads by start and sequence.
type UniqueReadList struct {
	Reads []Read
	index map[readKey]int
}

// Add counts one read.
func (l *UniqueReadList) Add(start, end int, seq string) {
	if l.index == nil {
		l.index = make(map[readKey]int)
	}
	k := readKey{start: start, seq: seq}
	if i, ok := l.index[k]; ok {
		l.Reads[i].Count++
		return
	}
	l.index[k] = len(l.Reads)
	l.Reads = append(l.Reads, Read{Start: start, End: end, Seq: seq, Count: 1})
}

// Total returns the number of reads counted.
func (l *UniqueReadList) Total() int {
	var n int
	for _, r := range l.Reads {
		n += r.Count
	}
	return n
}

func (l *UniqueReadList) sort() {
	sort.Slice(l.Reads, func(i, j int) bool {
		if l.Reads[i].Start != l.Reads[j].Start {
			return l.Reads[i].Start < l.Reads[j].Start
		}
		return l.Reads[i].Seq < l.Reads[j].Seq
	})
	for i, r := range l.Reads {
		l.index[readKey{start: r.Start, seq: r.Seq}] = i
	}
}

// Counts holds the distinct reads of a duplex.
type Counts struct {
	Mature, Star      UniqueReadList
	TotalReads        int
	TotalReadFraction float64
}

// Span is a genomic half-open interval.
type Span struct {
	Start, End int
}

// Count collects the reads of mature and star, each extended by flank on
// both sides, and the reads fully inside precursor. Reads on strand -1 are
// reverse-complemented.
func (idx *Index) Count(chrom string, strand int8, precursor, mature, star Span, flank int) Counts {
	var c Counts
	c.Mature = idx.unique(chrom, strand, mature, flank)
	c.Star = idx.unique(chrom, strand, star, flank)
	c.TotalReads = len(idx.Within(chrom, strand, precursor.Start, precursor.End))
	if idx.NRead > 0 {
		c.TotalReadFraction = float64(c.TotalReads) / float64(idx.NRead)
	}
	return c
}

func (idx *Index) unique(chrom string, strand int8, s Span, flank int) UniqueReadList {
	var l UniqueReadList
	for _, a := range idx.Within(chrom, strand, s.Start-flank, s.End+flank) {
		seq := a.Seq
		if strand == -1 {
			seq = genome.ReverseComplement(seq)
		}
		l.Add(a.Start, a.End(), seq)
	}
	if l.index != nil {
		l.sort()
	}
	return l
}
