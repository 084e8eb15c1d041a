//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package candidate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/MiRA/lib/cluster"
	"git.sr.ht/~vejnar/MiRA/lib/coverage"
	"git.sr.ht/~vejnar/MiRA/lib/duplex"
	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/esam"
	"git.sr.ht/~vejnar/MiRA/lib/fold"
	"git.sr.ht/~vejnar/MiRA/lib/genome"
	"git.sr.ht/~vejnar/MiRA/lib/reads"
	"git.sr.ht/~vejnar/MiRA/lib/stats"
)

type oracleFunc func(seq string, maxWindow int) ([]fold.Structure, error)

func (f oracleFunc) Fold(seq string, maxWindow int) ([]fold.Structure, error) {
	return f(seq, maxWindow)
}

var hairpin = strings.Repeat(".", 5) + strings.Repeat("(", 22) + strings.Repeat(".", 6) + strings.Repeat(")", 22) + strings.Repeat(".", 5)

var testCluster = cluster.Cluster{ID: 7, Strand: 1, Chrom: "chr1", Start: 20, End: 70, ReadCount: 110, PeakReads: 100, FlankStart: 10, FlankEnd: 80}

// Folds the cluster window into hairpin at offset 5. Shuffles get nullMFE.
func hairpinOracle(nullMFE float64) fold.Oracle {
	return oracleFunc(func(seq string, maxWindow int) ([]fold.Structure, error) {
		if len(seq) == testCluster.FlankEnd-testCluster.FlankStart {
			return []fold.Structure{
				{Start: 0, DotBracket: strings.Repeat(".", len(seq)), MFE: 0},
				{Start: 5, DotBracket: hairpin, MFE: -30},
			}, nil
		}
		return []fold.Structure{{Start: 0, DotBracket: strings.Repeat(".", len(seq)), MFE: nullMFE}}, nil
	})
}

var testGenome = genome.Genome{"chr1": strings.Repeat("ACGTTGCAAG", 10)}

// Repeats the alignment of g[start:start+21] on strand n times.
func repeatAlignment(prefix string, n int, strand int8, start int) []esam.Alignment {
	var alns []esam.Alignment
	for i := 0; i < n; i++ {
		alns = append(alns, esam.Alignment{Name: fmt.Sprintf("%s%d", prefix, i), Chrom: "chr1", Strand: strand, Start: start, Seq: testGenome["chr1"][start : start+21]})
	}
	return alns
}

func testPipeline(t *testing.T, oracle fold.Oracle) *Pipeline {
	t.Helper()
	alns := append(repeatAlignment("m", 100, 1, 21), repeatAlignment("s", 10, 1, 50)...)
	return testPipelineWithReads(t, oracle, alns)
}

func testPipelineWithReads(t *testing.T, oracle fold.Oracle, alns []esam.Alignment) *Pipeline {
	t.Helper()
	g := testGenome
	cov, err := coverage.Build([]esam.ChromInfo{{Name: "chr1", Length: 100}}, alns)
	require.NoError(t, err)
	idx, err := reads.NewIndex(alns, len(alns))
	require.NoError(t, err)
	return &Pipeline{
		Genome:    g,
		Oracle:    oracle,
		MaxWindow: 300,
		Gates:     fold.Gates{MinPrecursorLength: 50, MaxHairpinCount: 4, MinDoubleStrandLength: 15, MaxMFEPerNt: -0.2},
		Validator: stats.Validator{Oracle: oracle, Permutations: 20, MaxPValue: 0.05},
		Seed:      1,
		Coverage:  cov,
		Reads:     idx,
		Duplex: duplex.Params{
			MinLength:         18,
			MaxLength:         26,
			MinPairedFraction: 0.6,
			MaxDicerOffset:    5,
			Threshold:         duplex.Normalized(0.001),
		},
	}
}

func TestFold(t *testing.T) {
	p := testPipeline(t, hairpinOracle(-3))
	cand, err := p.Fold(testCluster)
	require.NoError(t, err)
	assert.Equal(t, 7, cand.ID)
	assert.Equal(t, 15, cand.Start)
	assert.Equal(t, 75, cand.End)
	assert.Equal(t, p.Genome["chr1"][15:75], cand.Sequence)
	assert.Equal(t, hairpin, cand.Structure)
	assert.Equal(t, -30., cand.MFE)
	assert.InDelta(t, -0.05, cand.Mean, 1e-12)
	assert.Equal(t, 0., cand.SD)
	assert.Equal(t, 0., cand.PValue)
}

func TestFoldRejected(t *testing.T) {
	// Shuffles fold as well as the candidate
	p := testPipeline(t, hairpinOracle(-30))
	_, err := p.Fold(testCluster)
	assert.True(t, errors.Is(err, errs.ErrStructureIsInvalid))
	assert.True(t, errs.IsCandidateError(err))

	p = testPipeline(t, hairpinOracle(-3))
	p.Gates.MinDoubleStrandLength = 30
	_, err = p.Fold(testCluster)
	assert.True(t, errors.Is(err, errs.ErrNoOptimalStructureFound))

	p = testPipeline(t, oracleFunc(func(string, int) ([]fold.Structure, error) { return nil, nil }))
	_, err = p.Fold(testCluster)
	assert.True(t, errors.Is(err, errs.ErrNoOptimalStructureFound))

	c := testCluster
	c.Chrom = "chrUn"
	_, err = p.Fold(c)
	assert.True(t, errors.Is(err, errs.ErrChromosomeNotFound))
}

func TestFoldWithoutPermutations(t *testing.T) {
	p := testPipeline(t, hairpinOracle(-30))
	p.Validator.Permutations = 0
	cand, err := p.Fold(testCluster)
	require.NoError(t, err)
	assert.Equal(t, 0., cand.Mean)
}

func TestRun(t *testing.T) {
	p := testPipeline(t, hairpinOracle(-3))
	ext, err := p.Run(testCluster)
	require.NoError(t, err)
	assert.True(t, ext.IsValid)
	assert.Equal(t, reads.Span{Start: 21, End: 42}, ext.Mature)
	assert.Equal(t, reads.Span{Start: 50, End: 71}, ext.Star)
	assert.False(t, ext.Duplex.Star().IsArtificial)

	require.Len(t, ext.MatureReads.Reads, 1)
	assert.Equal(t, reads.Read{Start: 21, End: 42, Seq: p.Genome["chr1"][21:42], Count: 100}, ext.MatureReads.Reads[0])
	require.Len(t, ext.StarReads.Reads, 1)
	assert.Equal(t, 10, ext.StarReads.Reads[0].Count)
	assert.Equal(t, 110, ext.TotalReads)
	assert.Equal(t, 1., ext.TotalReadFraction)
}

func TestProcessNoCoverage(t *testing.T) {
	p := testPipeline(t, hairpinOracle(-3))
	cand, err := p.Fold(testCluster)
	require.NoError(t, err)
	cand.Strand = -1
	_, err = p.Process(cand)
	assert.True(t, errors.Is(err, errs.ErrNoMatureMiRnaFound))
	assert.True(t, errs.IsNoResult(err))
}

func TestRunMinusStrand(t *testing.T) {
	// Same hairpin as TestRun, read on the reverse strand
	alns := append(repeatAlignment("m", 100, -1, 48), repeatAlignment("s", 10, -1, 19)...)
	p := testPipelineWithReads(t, hairpinOracle(-3), alns)
	c := testCluster
	c.Strand = -1
	ext, err := p.Run(c)
	require.NoError(t, err)
	assert.True(t, ext.IsValid)
	assert.Equal(t, 15, ext.Start)
	assert.Equal(t, 75, ext.End)
	assert.Equal(t, genome.ReverseComplement(p.Genome["chr1"][15:75]), ext.Sequence)
	assert.Equal(t, reads.Span{Start: 48, End: 69}, ext.Mature)
	assert.Equal(t, reads.Span{Start: 19, End: 40}, ext.Star)
	assert.Equal(t, duplex.FivePrime, ext.Duplex.Mature().Arm)
	assert.False(t, ext.Duplex.Star().IsArtificial)

	require.Len(t, ext.MatureReads.Reads, 1)
	assert.Equal(t, reads.Read{Start: 48, End: 69, Seq: ext.Sequence[6:27], Count: 100}, ext.MatureReads.Reads[0])
	require.Len(t, ext.StarReads.Reads, 1)
	assert.Equal(t, ext.Sequence[35:56], ext.StarReads.Reads[0].Seq)
	assert.Equal(t, 10, ext.StarReads.Reads[0].Count)
	assert.Equal(t, 110, ext.TotalReads)
}
