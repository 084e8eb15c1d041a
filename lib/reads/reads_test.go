//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package reads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/MiRA/lib/esam"
)

func testAlignments() []esam.Alignment {
	return []esam.Alignment{
		{Name: "r1", Chrom: "chr1", Strand: 1, Start: 100, Seq: "ACGTACGTACGTACGTACGTAC"},
		{Name: "r2", Chrom: "chr1", Strand: 1, Start: 100, Seq: "ACGTACGTACGTACGTACGTAC"},
		{Name: "r3", Chrom: "chr1", Strand: 1, Start: 101, Seq: "CGTACGTACGTACGTACGTAC"},
		{Name: "r4", Chrom: "chr1", Strand: 1, Start: 100, Seq: "ACGTACGTACGTACGTACGTAA"},
		{Name: "r5", Chrom: "chr1", Strand: 1, Start: 75, Seq: "ACGTACGTACGTACGTACGTAC"},
		{Name: "r6", Chrom: "chr1", Strand: -1, Start: 100, Seq: "AACCGGTTAACCGGTTAACCGG"},
		{Name: "r7", Chrom: "chr1", Strand: -1, Start: 100, Seq: "AACCGGTTAACCGGTTAACCGG"},
		{Name: "r8", Chrom: "chr1", Strand: 1, Start: 160, Seq: "TTTTGGGGCCCCAAAATTTTGG"},
		{Name: "r9", Chrom: "chr2", Strand: 1, Start: 100, Seq: "ACGTACGTACGTACGTACGTAC"},
	}
}

func TestWithin(t *testing.T) {
	idx, err := NewIndex(testAlignments(), 9)
	require.NoError(t, err)

	var names []string
	for _, a := range idx.Within("chr1", 1, 70, 152) {
		names = append(names, a.Name)
	}
	assert.ElementsMatch(t, []string{"r1", "r2", "r3", "r4", "r5"}, names)

	assert.Len(t, idx.Within("chr1", -1, 100, 122), 2)
	assert.Len(t, idx.Within("chr1", -1, 100, 121), 0)
	assert.Empty(t, idx.Within("chr3", 1, 0, 1000))
	assert.Empty(t, idx.Within("chr1", 1, 50, 50))
}

func TestUniqueReadList(t *testing.T) {
	var l UniqueReadList
	l.Add(10, 32, "ACGT")
	l.Add(10, 32, "ACGT")
	l.Add(10, 32, "ACGA")
	l.Add(11, 33, "ACGT")
	require.Len(t, l.Reads, 3)
	assert.Equal(t, Read{Start: 10, End: 32, Seq: "ACGT", Count: 2}, l.Reads[0])
	assert.Equal(t, 4, l.Total())
}

func TestCount(t *testing.T) {
	idx, err := NewIndex(testAlignments(), 9)
	require.NoError(t, err)

	c := idx.Count("chr1", 1, Span{Start: 90, End: 190}, Span{Start: 100, End: 122}, Span{Start: 160, End: 182}, DefaultFlank)
	require.Len(t, c.Mature.Reads, 4)
	assert.Equal(t, Read{Start: 75, End: 97, Seq: "ACGTACGTACGTACGTACGTAC", Count: 1}, c.Mature.Reads[0])
	assert.Equal(t, Read{Start: 100, End: 122, Seq: "ACGTACGTACGTACGTACGTAA", Count: 1}, c.Mature.Reads[1])
	assert.Equal(t, Read{Start: 100, End: 122, Seq: "ACGTACGTACGTACGTACGTAC", Count: 2}, c.Mature.Reads[2])
	assert.Equal(t, 101, c.Mature.Reads[3].Start)
	assert.Equal(t, 5, c.Mature.Total())

	require.Len(t, c.Star.Reads, 1)
	assert.Equal(t, 1, c.Star.Total())
	// r1 to r4 and r8
	assert.Equal(t, 5, c.TotalReads)
	assert.InDelta(t, 5./9., c.TotalReadFraction, 1e-12)

	c = idx.Count("chr1", -1, Span{Start: 90, End: 190}, Span{Start: 100, End: 122}, Span{Start: 160, End: 182}, DefaultFlank)
	require.Len(t, c.Mature.Reads, 1)
	assert.Equal(t, "CCGGTTAACCGGTTAACCGGTT", c.Mature.Reads[0].Seq)
	assert.Equal(t, 2, c.Mature.Reads[0].Count)
	assert.Empty(t, c.Star.Reads)
}
