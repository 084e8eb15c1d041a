//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package duplex finds the mature and star miRNAs of a precursor from the
// coverage of its reads.
package duplex

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/coverage"
	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/structure"
)

// DicerOffset is the length of the 3' overhang left by Dicer.
const DicerOffset = 2

// DefaultMinCoverage is the default normalized spike threshold.
const DefaultMinCoverage = 0.05

// Minimum length of a run of unpaired nucleotides rejected within a duplex strand.
const maxUnpairedRun = 4

// Arm is the side of the hairpin.
type Arm int8

const (
	FivePrime  Arm = 5
	ThreePrime Arm = 3
)

func (a Arm) String() string {
	return fmt.Sprintf("%dp", a)
}

// Subsequence is a duplex strand candidate. Start and End are half-open
// offsets in the precursor sequence. Match is the index of the paired
// strand in the enclosing slice, -1 if unpaired.
type Subsequence struct {
	Start, End     int
	Coverage       uint64
	PairedFraction float64
	IsValid        bool
	IsStar         bool
	IsArtificial   bool
	Arm            Arm
	Match          int
}

// Len returns the subsequence length.
func (s *Subsequence) Len() int {
	return s.End - s.Start
}

// SpikeThreshold reports whether a coverage step of delta reads, within a
// precursor totalling total reads, is a boundary.
type SpikeThreshold func(delta, total float64) bool

// Normalized detects steps above ratio of the precursor total coverage.
func Normalized(ratio float64) SpikeThreshold {
	return func(delta, total float64) bool {
		return total > 0 && delta/total > ratio
	}
}

// Raw detects steps of more than count reads.
func Raw(count float64) SpikeThreshold {
	return func(delta, _ float64) bool {
		return delta > count
	}
}

// Params configures Discover.
type Params struct {
	MinLength                  int            `mapstructure:"min_duplex_length"`
	MaxLength                  int            `mapstructure:"max_duplex_length"`
	MinPairedFraction          float64        `mapstructure:"min_paired_fraction"`
	MinDicerOffset             int            `mapstructure:"min_dicer_offset"`
	MaxDicerOffset             int            `mapstructure:"max_dicer_offset"`
	AllowLoop                  bool           `mapstructure:"allow_loop_in_duplex"`
	AllowTwoTerminalMismatches bool           `mapstructure:"allow_two_terminal_mismatches"`
	AllowThreeMismatches       bool           `mapstructure:"allow_three_mismatches"`
	Threshold                  SpikeThreshold `mapstructure:"-"`
}

// View is a precursor read on its strand: Coverage[i] is the depth at
// Structure[i].
type View struct {
	Structure string
	Coverage  []uint32
}

// Result holds the resolved duplexes by decreasing combined coverage, each
// mature strand directly followed by its star.
type Result struct {
	Subsequences []Subsequence
}

// Mature returns the mature strand of the best duplex.
func (r *Result) Mature() Subsequence {
	return r.Subsequences[0]
}

// Star returns the star strand of the best duplex.
func (r *Result) Star() Subsequence {
	return r.Subsequences[r.Subsequences[0].Match]
}

// Discover finds the duplexes of a precursor. Without Threshold, spikes are
// detected with Normalized(DefaultMinCoverage).
func Discover(v View, p Params) (Result, error) {
	if p.Threshold == nil {
		p.Threshold = Normalized(DefaultMinCoverage)
	}
	n := len(v.Structure)
	if len(v.Coverage) != n {
		return Result{}, errors.Wrapf(errs.ErrInvalidRange, "%d coverage values for a structure of length %d", len(v.Coverage), n)
	}
	if !structure.IsBalanced(v.Structure) {
		return Result{}, errors.Wrapf(errs.ErrStructureIsInvalid, "%q", v.Structure)
	}
	arena := p.candidates(v)
	if len(arena) == 0 {
		return Result{}, errs.ErrNoMatureMiRnaFound
	}
	sort.SliceStable(arena, func(i, j int) bool {
		return arena[i].Coverage > arena[j].Coverage
	})
	arena = p.pair(v, arena)
	return resolve(arena)
}

// candidates enumerates the valid subsequences bounded by coverage spikes.
func (p Params) candidates(v View) []Subsequence {
	n := len(v.Structure)
	total := float64(coverage.Sum(v.Coverage))
	var rises, falls []int
	for i := 0; i+1 < n; i++ {
		delta := float64(v.Coverage[i+1]) - float64(v.Coverage[i])
		if p.Threshold(delta, total) {
			rises = append(rises, i+1)
		}
		// The fall is the first low position so the half-open subsequence
		// keeps its last covered nucleotide i.
		if p.Threshold(-delta, total) {
			falls = append(falls, i+1)
		}
	}
	var arena []Subsequence
	for _, start := range rises {
		for _, end := range falls {
			if l := end - start; l < p.MinLength || l >= p.MaxLength || l <= 0 {
				continue
			}
			s := newSubsequence(v, start, end)
			if s.PairedFraction < p.MinPairedFraction {
				continue
			}
			s.IsValid = p.isValid(v.Structure, s.Start, s.End)
			if s.IsValid {
				arena = append(arena, s)
			}
		}
	}
	return arena
}

func newSubsequence(v View, start, end int) Subsequence {
	s := Subsequence{Start: start, End: end, Match: -1}
	s.Coverage = coverage.Sum(v.Coverage[start:end])
	s.PairedFraction, _ = structure.PairedFraction(v.Structure, start, end)
	// Offsets are read on the precursor strand
	if start+end > len(v.Structure) {
		s.Arm = ThreePrime
	} else {
		s.Arm = FivePrime
	}
	return s
}

func (p Params) isValid(s string, start, end int) bool {
	if !p.AllowLoop && structure.LoopCount(s, start, end) > 0 {
		return false
	}
	if !p.AllowTwoTerminalMismatches && end-start >= 2 {
		if s[start] == structure.Unpaired && s[start+1] == structure.Unpaired {
			return false
		}
		if s[end-2] == structure.Unpaired && s[end-1] == structure.Unpaired {
			return false
		}
	}
	if !p.AllowThreeMismatches && UnpairedRun(s, start, end) >= maxUnpairedRun {
		return false
	}
	return true
}

// UnpairedRun returns the longest run of unpaired nucleotides within [start, end).
func UnpairedRun(s string, start, end int) int {
	var run, longest int
	for i := start; i < end; i++ {
		if s[i] == structure.Unpaired {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// PredictStar returns the star span expected from the structural partners of
// the first and last paired nucleotides of [start, end), shifted by DicerOffset.
func PredictStar(s string, start, end int) (int, int, bool) {
	bs := start
	for bs < end && s[bs] == structure.Unpaired {
		bs++
	}
	be := end - 1
	for be > bs && s[be] == structure.Unpaired {
		be--
	}
	if bs >= end || s[bs] != s[be] {
		return 0, 0, false
	}
	starLast, err := structure.MatchingBracket(s, bs)
	if err != nil {
		return 0, 0, false
	}
	starFirst, err := structure.MatchingBracket(s, be)
	if err != nil || starFirst > starLast {
		return 0, 0, false
	}
	starStart := starFirst + DicerOffset
	starEnd := min(starLast+1+DicerOffset, len(s))
	if starStart >= starEnd {
		return 0, 0, false
	}
	return starStart, starEnd, true
}

func (p Params) withinDicerOffset(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d >= p.MinDicerOffset && d < p.MaxDicerOffset
}

// pair assigns a star to each subsequence, by decreasing coverage. A detected
// subsequence close to the predicted star is preferred to an artificial one.
func (p Params) pair(v View, arena []Subsequence) []Subsequence {
	nDetected := len(arena)
	for i := 0; i < nDetected; i++ {
		if arena[i].IsStar {
			continue
		}
		starStart, starEnd, ok := PredictStar(v.Structure, arena[i].Start, arena[i].End)
		if !ok {
			continue
		}
		match := -1
		for j := i + 1; j < nDetected; j++ {
			if !arena[j].IsStar && p.withinDicerOffset(arena[j].Start, starStart) && p.withinDicerOffset(arena[j].End, starEnd) {
				match = j
				break
			}
		}
		if match == -1 {
			if l := starEnd - starStart; l < p.MinLength || l >= p.MaxLength {
				continue
			}
			star := newSubsequence(v, starStart, starEnd)
			star.IsValid = true
			star.IsArtificial = true
			arena = append(arena, star)
			match = len(arena) - 1
		}
		arena[match].IsStar = true
		arena[match].Match = i
		arena[i].Match = match
	}
	return arena
}

// resolve drops unpaired subsequences and orders duplexes by combined coverage.
func resolve(arena []Subsequence) (Result, error) {
	var matures []int
	for i := range arena {
		if !arena[i].IsStar && arena[i].Match >= 0 {
			matures = append(matures, i)
		}
	}
	if len(matures) == 0 {
		return Result{}, errs.ErrNoStarMiRnaFound
	}
	combined := func(i int) uint64 {
		return arena[i].Coverage + arena[arena[i].Match].Coverage
	}
	sort.SliceStable(matures, func(a, b int) bool {
		return combined(matures[a]) > combined(matures[b])
	})
	r := Result{Subsequences: make([]Subsequence, 0, 2*len(matures))}
	for _, i := range matures {
		mature, star := arena[i], arena[arena[i].Match]
		k := len(r.Subsequences)
		mature.Match, star.Match = k+1, k
		r.Subsequences = append(r.Subsequences, mature, star)
	}
	return r, nil
}
