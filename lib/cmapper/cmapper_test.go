//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cmapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlus(t *testing.T) {
	cm := New(100, 150, 1)
	assert.Equal(t, 50, cm.GetLength())

	o, within := cm.Genome2Sense(110)
	assert.True(t, within)
	assert.Equal(t, 10, o)
	_, within = cm.Genome2Sense(150)
	assert.False(t, within)

	gs, ge := cm.SenseRange2Genome(5, 27)
	assert.Equal(t, []int{105, 127}, []int{gs, ge})
	ss, se := cm.GenomeRange2Sense(gs, ge)
	assert.Equal(t, []int{5, 27}, []int{ss, se})
}

func TestMinus(t *testing.T) {
	cm := New(100, 150, -1)

	o, within := cm.Genome2Sense(149)
	assert.True(t, within)
	assert.Equal(t, 0, o)
	o, _ = cm.Genome2Sense(100)
	assert.Equal(t, 49, o)
	_, within = cm.Genome2Sense(99)
	assert.False(t, within)

	gs, ge := cm.SenseRange2Genome(5, 27)
	assert.Equal(t, []int{123, 145}, []int{gs, ge})
	ss, se := cm.GenomeRange2Sense(gs, ge)
	assert.Equal(t, []int{5, 27}, []int{ss, se})
}

func TestRoundTrip(t *testing.T) {
	for _, strand := range []int8{1, -1} {
		cm := New(1000, 1080, strand)
		for c := cm.Start; c < cm.End; c++ {
			o, within := cm.Genome2Sense(c)
			assert.True(t, within)
			gs, ge := cm.SenseRange2Genome(o, o+1)
			assert.Equal(t, []int{c, c + 1}, []int{gs, ge})
		}
	}
}
