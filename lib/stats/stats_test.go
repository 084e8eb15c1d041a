//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package stats

import (
	"math"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/fold"
)

// listOracle returns the MFEs of a list in turn and records the sequences.
type listOracle struct {
	mfes []float64
	seqs []string
}

func (o *listOracle) Fold(seq string, maxWindow int) ([]fold.Structure, error) {
	mfe := o.mfes[len(o.seqs)%len(o.mfes)]
	o.seqs = append(o.seqs, seq)
	return []fold.Structure{{DotBracket: "(....)", MFE: mfe}}, nil
}

func TestMeanSD(t *testing.T) {
	mean, sd := MeanSD([]float64{3, 5, 3, 6, 3, 2, 4, 6, 7, 4, 3})
	assert.InDelta(t, 4.181818, mean, 1e-6)
	assert.InDelta(t, 1.601136, sd, 1e-6)

	mean, sd = MeanSD([]float64{2.5})
	assert.Equal(t, 2.5, mean)
	assert.Equal(t, 0., sd)
	mean, sd = MeanSD(nil)
	assert.Equal(t, 0., mean)
	assert.Equal(t, 0., sd)
}

func TestPValue(t *testing.T) {
	mean, sd := MeanSD([]float64{3, 5, 3, 6, 3, 2, 4, 6, 7, 4, 3})
	assert.InDelta(t, 0.023448, PValue(1, mean, sd), 1e-6)
	assert.InDelta(t, 0.5, PValue(mean, mean, sd), 1e-12)
	assert.Equal(t, 1., PValue(2, 2, 0))
	assert.Equal(t, 0., PValue(1, 2, 0))
}

func TestShuffle(t *testing.T) {
	seq := []byte("ACGUACGUAAGGCCUU")
	a := append([]byte(nil), seq...)
	b := append([]byte(nil), seq...)
	Shuffle(a, NewRand(42, 3))
	Shuffle(b, NewRand(42, 3))
	assert.Equal(t, a, b)

	sorted := func(x []byte) string {
		y := append([]byte(nil), x...)
		sort.Slice(y, func(i, j int) bool { return y[i] < y[j] })
		return string(y)
	}
	assert.Equal(t, sorted(seq), sorted(a))
}

func TestValidate(t *testing.T) {
	seq := "ACGUACGUAAGGCCUUAGCU"
	n := float64(len(seq))
	// MFE per nt of the null sample is {3,5,3,6,3,2,4,6,7,4,3} / 10
	var mfes []float64
	for _, v := range []float64{3, 5, 3, 6, 3, 2, 4, 6, 7, 4, 3} {
		mfes = append(mfes, -v/10*n)
	}
	oracle := &listOracle{mfes: mfes}
	v := Validator{Oracle: oracle, Permutations: 11, MaxPValue: 0.05}

	r, err := v.Validate(seq, -0.1, NewRand(1, 0))
	require.NoError(t, err)
	assert.InDelta(t, -0.4181818, r.Mean, 1e-6)
	assert.InDelta(t, 0.1601136, r.SD, 1e-6)
	assert.InDelta(t, math.Erfc(math.Abs(-0.1-r.Mean)/(r.SD*math.Sqrt2))/2, r.PValue, 1e-12)
	assert.InDelta(t, 0.023448, r.PValue, 1e-6)
	require.Len(t, oracle.seqs, 11)
	for _, s := range oracle.seqs {
		assert.Len(t, s, len(seq))
	}

	// Too close to the null mean
	_, err = v.Validate(seq, -0.4, NewRand(1, 0))
	assert.True(t, errors.Is(err, errs.ErrStructureIsInvalid))
}

func TestValidateReproducible(t *testing.T) {
	seq := "GGCAGAUUCCCCCUAGACCCGCCCGCACCAUGGUCAGGC"
	var mfes []float64
	for i := 0; i < 100; i++ {
		mfes = append(mfes, -float64(i%13)-1)
	}
	run := func() (Result, []string) {
		oracle := &listOracle{mfes: mfes}
		v := Validator{Oracle: oracle, Permutations: 100, MaxPValue: 1}
		r, err := v.Validate(seq, -0.5, NewRand(2015, 12))
		require.NoError(t, err)
		return r, oracle.seqs
	}
	r1, seqs1 := run()
	r2, seqs2 := run()
	assert.Equal(t, r1, r2)
	assert.Equal(t, seqs1, seqs2)

	mean, sd := MeanSD(func() []float64 {
		var x []float64
		for _, m := range mfes {
			x = append(x, m/float64(len(seq)))
		}
		return x
	}())
	assert.InDelta(t, PValue(-0.5, mean, sd), r1.PValue, 1e-12)
}
