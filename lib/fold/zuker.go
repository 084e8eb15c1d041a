//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package fold

import (
	"math"
	"strings"

	polyfold "github.com/TimothyStiles/poly/fold"

	"git.sr.ht/~vejnar/MiRA/lib/structure"
)

const minFoldLength = 5

// ZukerOracle folds with the Zuker algorithm. Each top-level helix domain of
// the MFE structure, and the span from the first to the last paired base,
// is refolded and reported as a local structure.
type ZukerOracle struct {
	Temperature float64
}

// Fold implements Oracle. Sequences with letters other than ACGTU have no structure.
func (o ZukerOracle) Fold(seq string, maxWindow int) ([]Structure, error) {
	rna := ToRNA(seq)
	if !isRNA(rna) {
		return nil, nil
	}
	db, _, err := o.fold(rna)
	if err != nil || db == "" {
		return nil, err
	}
	spans := TopLevelDomains(db)
	if len(spans) > 1 {
		spans = append(spans, [2]int{spans[0][0], spans[len(spans)-1][1]})
	}
	var structs []Structure
	for _, sp := range spans {
		if maxWindow > 0 && sp[1]-sp[0] > maxWindow {
			continue
		}
		sdb, mfe, err := o.fold(rna[sp[0]:sp[1]])
		if err != nil {
			return nil, err
		}
		if sdb == "" {
			continue
		}
		structs = append(structs, Structure{Start: sp[0], DotBracket: sdb, MFE: mfe})
	}
	return structs, nil
}

// fold returns the MFE structure padded to the length of seq, or an empty
// structure if seq does not fold.
func (o ZukerOracle) fold(seq string) (string, float64, error) {
	if len(seq) < minFoldLength {
		return "", 0, nil
	}
	r, err := polyfold.Zuker(seq, o.Temperature)
	if err != nil {
		return "", 0, err
	}
	mfe := r.MinimumFreeEnergy()
	db := r.DotBracket()
	if math.IsInf(mfe, 0) || len(db) > len(seq) || !strings.ContainsRune(db, structure.Open) {
		return "", 0, nil
	}
	db += strings.Repeat(string(structure.Unpaired), len(seq)-len(db))
	if !structure.IsBalanced(db) {
		return "", 0, nil
	}
	return db, mfe, nil
}

// TopLevelDomains returns the half-open spans of the outermost base pairs of db.
func TopLevelDomains(db string) [][2]int {
	var spans [][2]int
	var depth, start int
	for i := 0; i < len(db); i++ {
		switch db[i] {
		case structure.Open:
			if depth == 0 {
				start = i
			}
			depth++
		case structure.Close:
			depth--
			if depth == 0 {
				spans = append(spans, [2]int{start, i + 1})
			}
		}
	}
	return spans
}

// MinMFE returns the lowest free energy of structs, 0 if there is none.
func MinMFE(structs []Structure) float64 {
	var m float64
	for _, s := range structs {
		if s.MFE < m {
			m = s.MFE
		}
	}
	return m
}

// ToRNA returns the upper-case RNA version of seq.
func ToRNA(seq string) string {
	return strings.ReplaceAll(strings.ToUpper(seq), "T", "U")
}

func isRNA(seq string) bool {
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'U':
		default:
			return false
		}
	}
	return len(seq) > 0
}
