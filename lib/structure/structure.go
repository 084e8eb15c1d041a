//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package structure computes metrics over dot-bracket secondary structures.
package structure

import (
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
)

const (
	Open     = '('
	Close    = ')'
	Unpaired = '.'
)

// Stem is a run of identical bracket characters. End is inclusive.
type Stem struct {
	Start, End int
}

// Len returns the number of characters in the stem, 0 if no stem was found.
func (s Stem) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start + 1
}

// Info describes the structure retained for a folding window.
type Info struct {
	DotBracket        string
	N                 int
	Start             int
	MFE               float64
	Mean, SD, PValue  float64
	ExternalLoopCount int
	PairedFraction    float64
	Stem              Stem
	StemMismatch      Stem
	IsValid           bool
}

// MFEPerNt returns the minimum free energy per nucleotide.
func (info *Info) MFEPerNt() float64 {
	if info.N == 0 {
		return 0
	}
	return info.MFE / float64(info.N)
}

// LoopCount counts '(' ... ')' completions within [start, end) using a
// single open/close toggle.
func LoopCount(s string, start, end int) int {
	var open bool
	var count int
	for i := start; i < end; i++ {
		switch s[i] {
		case Open:
			open = true
		case Close:
			if open {
				open = false
				count++
			}
		}
	}
	return count
}

// PairedFraction returns the fraction of paired characters within [start, end).
func PairedFraction(s string, start, end int) (float64, error) {
	if end <= start || start < 0 || end > len(s) {
		return 0, errors.Wrapf(errs.ErrInvalidRange, "[%d,%d) in structure of length %d", start, end, len(s))
	}
	var dots int
	for i := start; i < end; i++ {
		if s[i] == Unpaired {
			dots++
		}
	}
	return 1 - float64(dots)/float64(end-start), nil
}

// LongestStem returns the longest run of a single bracket character allowing
// up to maxMismatch single-character interruptions. Runs of '.' are never
// interrupted. Ties keep the first run.
func LongestStem(s string, maxMismatch int) Stem {
	longest := Stem{Start: 0, End: -1}
	if len(s) == 0 {
		return longest
	}
	status := s[0]
	start, length, mismatches := 0, 1, 0
	record := func(end int) {
		if status != Unpaired && length > longest.Len() {
			longest = Stem{Start: start, End: end}
		}
	}
	for i := 1; i < len(s); i++ {
		if s[i] == status {
			length++
		} else if status != Unpaired && i+1 < len(s) && s[i+1] == status && mismatches < maxMismatch {
			mismatches++
			length++
		} else {
			record(i - 1)
			status = s[i]
			start, length, mismatches = i, 1, 0
		}
	}
	record(len(s) - 1)
	return longest
}

// MatchingBracket returns the index of the bracket pairing with the bracket at target.
func MatchingBracket(s string, target int) (int, error) {
	if target < 0 || target >= len(s) {
		return -1, errors.Wrapf(errs.ErrStructureIsInvalid, "index %d out of structure of length %d", target, len(s))
	}
	c := s[target]
	var inverse byte
	var step int
	switch c {
	case Open:
		inverse, step = Close, 1
	case Close:
		inverse, step = Open, -1
	default:
		return -1, errors.Wrapf(errs.ErrStructureIsInvalid, "no bracket at index %d", target)
	}
	var depth int
	for i := target; i >= 0 && i < len(s); i += step {
		if s[i] == c {
			depth++
		} else if s[i] == inverse {
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, errors.Wrapf(errs.ErrStructureIsInvalid, "unmatched bracket at index %d", target)
}

// IsBalanced reports whether s only holds brackets and dots and every '(' is closed.
func IsBalanced(s string) bool {
	var depth int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case Open:
			depth++
		case Close:
			depth--
			if depth < 0 {
				return false
			}
		case Unpaired:
		default:
			return false
		}
	}
	return depth == 0
}

// Evaluate fills the structural metrics of info.
func Evaluate(info *Info) error {
	if len(info.DotBracket) == 0 || !IsBalanced(info.DotBracket) {
		return errors.Wrapf(errs.ErrStructureIsInvalid, "%q", info.DotBracket)
	}
	info.N = len(info.DotBracket)
	info.ExternalLoopCount = LoopCount(info.DotBracket, 0, info.N)
	pf, err := PairedFraction(info.DotBracket, 0, info.N)
	if err != nil {
		return err
	}
	info.PairedFraction = pf
	info.Stem = LongestStem(info.DotBracket, 0)
	info.StemMismatch = LongestStem(info.DotBracket, 1)
	return nil
}
