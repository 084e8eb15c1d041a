//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package cmapper translates coordinates between the genome and a sequence
// read on its sense strand.
package cmapper

// CoordMapper maps the genomic interval [Start, End) on Strand to sense
// offsets [0, End-Start). For strand -1, offset 0 is the genomic position End-1.
type CoordMapper struct {
	Start, End int
	Strand     int8
}

// New returns the mapper of [start, end) on strand.
func New(start, end int, strand int8) *CoordMapper {
	return &CoordMapper{Start: start, End: end, Strand: strand}
}

// GetLength returns mapper length.
func (cm *CoordMapper) GetLength() int {
	return cm.End - cm.Start
}

// Genome2Sense translates a genomic coordinate to a sense offset.
func (cm *CoordMapper) Genome2Sense(coord int) (offset int, within bool) {
	if coord < cm.Start || coord >= cm.End {
		return
	}
	if cm.Strand == -1 {
		return cm.End - 1 - coord, true
	}
	return coord - cm.Start, true
}

// SenseRange2Genome translates the half-open sense range [start, end) to
// the genomic half-open range it covers.
func (cm *CoordMapper) SenseRange2Genome(start, end int) (gstart, gend int) {
	if cm.Strand == -1 {
		return cm.End - end, cm.End - start
	}
	return cm.Start + start, cm.Start + end
}

// GenomeRange2Sense translates the genomic half-open range [start, end) to
// the half-open sense range it covers.
func (cm *CoordMapper) GenomeRange2Sense(start, end int) (sstart, send int) {
	if cm.Strand == -1 {
		return cm.End - end, cm.End - start
	}
	return start - cm.Start, end - cm.Start
}
