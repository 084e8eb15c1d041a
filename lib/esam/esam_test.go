//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSAM = `@HD	VN:1.6	SO:unsorted
@SQ	SN:chr1	LN:500
@SQ	SN:chr2	LN:300
r1	0	chr1	101	255	14M	*	0	0	ACGTACGTACGTAC	*
r2	16	chr1	121	255	14M	*	0	0	TTTTGGGGCCCCAA	*
r2	2048	chr1	301	255	14M	*	0	0	TTTTGGGGCCCCAA	*
r3	4	*	0	0	*	*	0	0	ACGTACGTACGTAC	*
r4	0	chr2	11	255	10M	*	0	0	ACGTACGTAC	*
r1	256	chr2	41	255	14M	*	0	0	ACGTACGTACGTAC	*
`

func writeTestSAM(t *testing.T, name string, gz bool) string {
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	if gz {
		w := gzip.NewWriter(f)
		_, err = w.Write([]byte(testSAM))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	} else {
		_, err = f.WriteString(testSAM)
		require.NoError(t, err)
	}
	return path
}

func TestNewPathSAM(t *testing.T) {
	assert.Equal(t, PathSAM{Path: "a.bam", Binary: true}, NewPathSAM("a.bam"))
	assert.Equal(t, PathSAM{Path: "a.sam.gz", Gzip: true}, NewPathSAM("a.sam.gz"))
	assert.Equal(t, PathSAM{Path: "a.sam"}, NewPathSAM("a.sam"))
}

func TestReadLibrary(t *testing.T) {
	for _, gz := range []bool{false, true} {
		name := "test.sam"
		if gz {
			name += ".gz"
		}
		lib, err := ReadLibrary([]PathSAM{NewPathSAM(writeTestSAM(t, name, gz))}, nil, 1)
		require.NoError(t, err)

		assert.Equal(t, []ChromInfo{{Name: "chr1", Length: 500}, {Name: "chr2", Length: 300}}, lib.Chroms)
		require.Len(t, lib.Alignments, 4)
		assert.Equal(t, 4, lib.NAlign)
		assert.Equal(t, 3, lib.NRead)

		a := lib.Alignments[0]
		assert.Equal(t, Alignment{Name: "r1", Chrom: "chr1", Strand: 1, Start: 100, Seq: "ACGTACGTACGTAC"}, a)
		assert.Equal(t, 114, a.End())
		assert.Equal(t, int8(-1), lib.Alignments[1].Strand)
		assert.Equal(t, "ACGTACGTAC", lib.Alignments[2].Seq)
	}
}

func TestChromLengths(t *testing.T) {
	m := ChromLengths([]ChromInfo{{Name: "chr1", Length: 500}, {Name: "chrM", Length: 16569}})
	assert.Equal(t, map[string]int{"chr1": 500, "chrM": 16569}, m)
}

func TestLibrarySelect(t *testing.T) {
	lib, err := ReadLibrary([]PathSAM{NewPathSAM(writeTestSAM(t, "test.sam", false))}, nil, 1)
	require.NoError(t, err)
	sub := lib.Select("chr2")
	assert.Equal(t, []ChromInfo{{Name: "chr2", Length: 300}}, sub.Chroms)
	assert.Equal(t, 2, sub.NAlign)
	assert.Equal(t, 3, sub.NRead)
	for _, a := range sub.Alignments {
		assert.Equal(t, "chr2", a.Chrom)
	}
	assert.Equal(t, 0, lib.Select("chrM").NAlign)
}
