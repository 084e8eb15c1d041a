//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package candidate runs the per-cluster steps from folding to read counting.
package candidate

import (
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/cluster"
	"git.sr.ht/~vejnar/MiRA/lib/coverage"
	"git.sr.ht/~vejnar/MiRA/lib/duplex"
	"git.sr.ht/~vejnar/MiRA/lib/fold"
	"git.sr.ht/~vejnar/MiRA/lib/genome"
	"git.sr.ht/~vejnar/MiRA/lib/reads"
	"git.sr.ht/~vejnar/MiRA/lib/stats"
)

// Extended is a candidate with its duplex and read counts. Mature and Star
// are genomic spans.
type Extended struct {
	fold.Candidate
	Duplex            duplex.Result
	Mature, Star      reads.Span
	MatureReads       reads.UniqueReadList
	StarReads         reads.UniqueReadList
	TotalReads        int
	TotalReadFraction float64
	IsValid           bool
}

// Pipeline holds the shared, read-only inputs of the per-candidate steps.
// Its methods can be called concurrently.
type Pipeline struct {
	Genome    genome.Genome
	Oracle    fold.Oracle
	MaxWindow int
	Gates     fold.Gates
	Validator stats.Validator
	Seed      int64

	Coverage  *coverage.Table
	Reads     *reads.Index
	Duplex    duplex.Params
	ReadFlank int
}

// Fold selects and validates the structure of c. Validation is skipped
// without permutations.
func (p *Pipeline) Fold(c cluster.Cluster) (fold.Candidate, error) {
	f, err := fold.NewFoldable(c, p.Genome)
	if err != nil {
		return fold.Candidate{}, err
	}
	structs, err := p.Oracle.Fold(f.Seq, p.MaxWindow)
	if err != nil {
		return fold.Candidate{}, errors.Wrapf(err, "folding %s", c.Name())
	}
	info, err := fold.Select(structs, f.CoreStart, f.CoreEnd)
	if err != nil {
		return fold.Candidate{}, errors.Wrapf(err, "selecting structure of %s", c.Name())
	}
	if err := p.Gates.Check(&info); err != nil {
		return fold.Candidate{}, errors.Wrapf(err, "%s", c.Name())
	}
	if p.Validator.Permutations > 0 {
		r, err := p.Validator.Validate(f.Seq[info.Start:info.Start+info.N], info.MFEPerNt(), stats.NewRand(p.Seed, c.ID))
		if err != nil {
			return fold.Candidate{}, errors.Wrapf(err, "validating %s", c.Name())
		}
		info.Mean, info.SD, info.PValue = r.Mean, r.SD, r.PValue
	}
	return fold.NewCandidate(f, info), nil
}

// Process finds the duplex of cand and counts its reads.
func (p *Pipeline) Process(cand fold.Candidate) (Extended, error) {
	ext := Extended{Candidate: cand}
	cov, err := p.Coverage.SenseRange(cand.Chrom, cand.Strand, cand.Start, cand.End)
	if err != nil {
		return ext, err
	}
	r, err := duplex.Discover(duplex.View{Structure: cand.Structure, Coverage: cov}, p.Duplex)
	if err != nil {
		return ext, errors.Wrapf(err, "duplex of candidate %d", cand.ID)
	}
	ext.Duplex = r
	mapper := cand.Mapper()
	mature, star := r.Mature(), r.Star()
	ext.Mature.Start, ext.Mature.End = mapper.SenseRange2Genome(mature.Start, mature.End)
	ext.Star.Start, ext.Star.End = mapper.SenseRange2Genome(star.Start, star.End)

	counts := p.Reads.Count(cand.Chrom, cand.Strand, reads.Span{Start: cand.Start, End: cand.End}, ext.Mature, ext.Star, p.ReadFlank)
	ext.MatureReads, ext.StarReads = counts.Mature, counts.Star
	ext.TotalReads, ext.TotalReadFraction = counts.TotalReads, counts.TotalReadFraction
	ext.IsValid = true
	return ext, nil
}

// Run folds c and processes the resulting candidate.
func (p *Pipeline) Run(c cluster.Cluster) (Extended, error) {
	cand, err := p.Fold(c)
	if err != nil {
		return Extended{}, err
	}
	return p.Process(cand)
}
