//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package fold selects the secondary structure of each cluster and turns it
// into a miRNA candidate.
package fold

import (
	"math"

	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/cluster"
	"git.sr.ht/~vejnar/MiRA/lib/cmapper"
	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/genome"
	"git.sr.ht/~vejnar/MiRA/lib/structure"
)

// Structure is a locally optimal fold. Start is relative to the folded sequence.
type Structure struct {
	Start      int
	DotBracket string
	MFE        float64
}

// End returns the position after the last base of the structure.
func (s Structure) End() int {
	return s.Start + len(s.DotBracket)
}

// Oracle folds sequences. Fold returns the locally optimal structures
// spanning at most maxWindow nucleotides; it may return none.
type Oracle interface {
	Fold(seq string, maxWindow int) ([]Structure, error)
}

// Foldable is the folding window of a cluster, read on the cluster strand.
// CoreStart and CoreEnd locate the cluster core within Seq.
type Foldable struct {
	Cluster            cluster.Cluster
	Seq                string
	CoreStart, CoreEnd int
}

// NewFoldable extracts the folding window of c.
func NewFoldable(c cluster.Cluster, g genome.Genome) (Foldable, error) {
	seq, err := g.Window(c.Chrom, c.FlankStart, c.FlankEnd, c.Strand)
	if err != nil {
		return Foldable{}, errors.Wrapf(err, "window of %s", c.Name())
	}
	cs, ce := cmapper.New(c.FlankStart, c.FlankEnd, c.Strand).GenomeRange2Sense(c.Start, c.End)
	return Foldable{Cluster: c, Seq: seq, CoreStart: cs, CoreEnd: ce}, nil
}

// Select returns the structure covering [coreStart, coreEnd) with the
// lowest free energy per nucleotide.
func Select(structs []Structure, coreStart, coreEnd int) (structure.Info, error) {
	best := -1
	bestMFEPerNt := math.Inf(1)
	for i, s := range structs {
		if len(s.DotBracket) == 0 || s.Start > coreStart || s.End() < coreEnd {
			continue
		}
		if e := s.MFE / float64(len(s.DotBracket)); e < bestMFEPerNt {
			best, bestMFEPerNt = i, e
		}
	}
	if best == -1 {
		return structure.Info{}, errors.Wrapf(errs.ErrNoOptimalStructureFound, "no structure covers [%d,%d)", coreStart, coreEnd)
	}
	s := structs[best]
	info := structure.Info{DotBracket: s.DotBracket, N: len(s.DotBracket), Start: s.Start, MFE: s.MFE}
	if err := structure.Evaluate(&info); err != nil {
		return info, err
	}
	return info, nil
}

// Gates are the acceptance thresholds of a folded structure.
type Gates struct {
	MinPrecursorLength    int     `mapstructure:"min_precursor_length"`
	MaxPrecursorLength    int     `mapstructure:"max_precursor_length"`
	MaxHairpinCount       int     `mapstructure:"max_hairpin_count"`
	MinDoubleStrandLength int     `mapstructure:"min_double_strand_length"`
	MaxMFEPerNt           float64 `mapstructure:"max_mfe_per_nt"`
}

// Check sets info.IsValid and returns why the structure was rejected.
// MaxPrecursorLength 0 means no upper bound.
func (g Gates) Check(info *structure.Info) error {
	info.IsValid = false
	switch {
	case info.N < g.MinPrecursorLength:
		return errors.Wrapf(errs.ErrNoOptimalStructureFound, "precursor length %d below %d", info.N, g.MinPrecursorLength)
	case g.MaxPrecursorLength > 0 && info.N > g.MaxPrecursorLength:
		return errors.Wrapf(errs.ErrNoOptimalStructureFound, "precursor length %d above %d", info.N, g.MaxPrecursorLength)
	case info.ExternalLoopCount > g.MaxHairpinCount:
		return errors.Wrapf(errs.ErrNoOptimalStructureFound, "%d hairpins above %d", info.ExternalLoopCount, g.MaxHairpinCount)
	case info.StemMismatch.Len() < g.MinDoubleStrandLength:
		return errors.Wrapf(errs.ErrNoOptimalStructureFound, "double strand %d below %d", info.StemMismatch.Len(), g.MinDoubleStrandLength)
	case info.MFEPerNt() > g.MaxMFEPerNt:
		return errors.Wrapf(errs.ErrNoOptimalStructureFound, "MFE per nt %.3f above %.3f", info.MFEPerNt(), g.MaxMFEPerNt)
	}
	info.IsValid = true
	return nil
}

// Candidate is a folded precursor in genomic coordinates. Sequence and
// Structure are read on Strand.
type Candidate struct {
	ID         int
	Chrom      string
	Strand     int8
	Start, End int
	Sequence   string
	Structure  string
	MFE        float64
	PValue     float64
	Mean, SD   float64
}

// Length returns the precursor length.
func (c *Candidate) Length() int {
	return c.End - c.Start
}

// Mapper returns the coordinate mapper of the precursor.
func (c *Candidate) Mapper() *cmapper.CoordMapper {
	return cmapper.New(c.Start, c.End, c.Strand)
}

// NewCandidate re-bases the structure info of f to genomic coordinates.
func NewCandidate(f Foldable, info structure.Info) Candidate {
	c := f.Cluster
	start, end := cmapper.New(c.FlankStart, c.FlankEnd, c.Strand).SenseRange2Genome(info.Start, info.Start+info.N)
	return Candidate{
		ID:        c.ID,
		Chrom:     c.Chrom,
		Strand:    c.Strand,
		Start:     start,
		End:       end,
		Sequence:  f.Seq[info.Start : info.Start+info.N],
		Structure: info.DotBracket,
		MFE:       info.MFE,
		PValue:    info.PValue,
		Mean:      info.Mean,
		SD:        info.SD,
	}
}
