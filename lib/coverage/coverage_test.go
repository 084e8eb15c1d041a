//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/esam"
)

func TestBuild(t *testing.T) {
	chroms := []esam.ChromInfo{{Name: "chr1", Length: 20}, {Name: "chr2", Length: 10}}
	alns := []esam.Alignment{
		{Chrom: "chr1", Strand: 1, Start: 2, Seq: "ACGT"},
		{Chrom: "chr1", Strand: 1, Start: 4, Seq: "ACG"},
		{Chrom: "chr1", Strand: -1, Start: 10, Seq: "AAAAA"},
		{Chrom: "chr2", Strand: -1, Start: 8, Seq: "AAAA"},
	}
	table, err := Build(chroms, alns)
	require.NoError(t, err)

	cc, err := table.Get("chr1")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0, 1, 1, 2, 2, 1, 0}, cc.Plus[:8])
	assert.Equal(t, uint64(7), Sum(cc.Plus))
	assert.Equal(t, uint64(5), Sum(cc.Minus))
	assert.Len(t, cc.Minus, 20)

	// Clipped at chromosome end
	cc, err = table.Get("chr2")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), Sum(cc.Minus))

	r, err := table.Range("chr1", 1, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 2, 1}, r)

	_, err = table.Range("chr1", 1, 15, 25)
	assert.True(t, errors.Is(err, errs.ErrInvalidRange))

	_, err = Build(chroms, []esam.Alignment{{Chrom: "chrX", Strand: 1, Start: 0, Seq: "A"}})
	assert.True(t, errors.Is(err, errs.ErrChromosomeNotFound))
}

func TestSenseRange(t *testing.T) {
	table := New([]esam.ChromInfo{{Name: "chr1", Length: 10}})
	require.NoError(t, table.Add(&esam.Alignment{Chrom: "chr1", Strand: -1, Start: 2, Seq: "AAA"}))
	require.NoError(t, table.Add(&esam.Alignment{Chrom: "chr1", Strand: -1, Start: 2, Seq: "A"}))

	g, err := table.Range("chr1", -1, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0, 2, 1, 1, 0}, g)

	s, err := table.SenseRange("chr1", -1, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 1, 2, 0, 0}, s)

	// Copies do not alias the table
	s[0] = 100
	cc, _ := table.Get("chr1")
	assert.Equal(t, uint32(0), cc.Minus[5])
}
