//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package stats tests the significance of a fold against shuffled sequences.
package stats

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/fold"
)

// Result is the null distribution summary and p-value of a fold.
type Result struct {
	Mean, SD, PValue float64
}

// Validator compares the MFE per nucleotide of a structure with the MFE
// per nucleotide of Permutations shuffles of its sequence.
type Validator struct {
	Oracle       fold.Oracle
	Permutations int
	MaxPValue    float64
}

// Validate returns the p-value of mfePerNt. rng drives the shuffles and
// must not be shared between goroutines.
func (v Validator) Validate(seq string, mfePerNt float64, rng *rand.Rand) (Result, error) {
	var r Result
	if len(seq) == 0 {
		return r, errors.Wrap(errs.ErrInvalidRange, "empty sequence")
	}
	sample := make([]float64, v.Permutations)
	shuffled := []byte(seq)
	for i := range sample {
		Shuffle(shuffled, rng)
		structs, err := v.Oracle.Fold(string(shuffled), len(shuffled))
		if err != nil {
			return r, errors.Wrapf(err, "folding permutation %d", i)
		}
		sample[i] = fold.MinMFE(structs) / float64(len(shuffled))
	}
	r.Mean, r.SD = MeanSD(sample)
	r.PValue = PValue(mfePerNt, r.Mean, r.SD)
	if r.PValue > v.MaxPValue {
		return r, errors.Wrapf(errs.ErrStructureIsInvalid, "p-value %.3g above %.3g", r.PValue, v.MaxPValue)
	}
	return r, nil
}

// Shuffle permutes b in place with the Fisher-Yates algorithm.
func Shuffle(b []byte, rng *rand.Rand) {
	rng.Shuffle(len(b), func(i, j int) {
		b[i], b[j] = b[j], b[i]
	})
}

// MeanSD returns the mean and unbiased standard deviation of x. The standard
// deviation of less than 2 values is 0.
func MeanSD(x []float64) (mean, sd float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// PValue returns the one-tail probability of x under a normal distribution.
// With a null standard deviation, the p-value is 1 if x equals mean and 0 otherwise.
func PValue(x, mean, sd float64) float64 {
	if sd == 0 {
		if x == mean {
			return 1
		}
		return 0
	}
	return math.Erfc(math.Abs(x-mean)/(sd*math.Sqrt2)) / 2
}

// NewRand returns the generator of candidate id for a run seed.
func NewRand(seed int64, id int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(id)))
}
