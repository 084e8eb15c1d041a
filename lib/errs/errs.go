//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package errs holds the error values shared by the MiRA libraries.
package errs

import (
	"github.com/pkg/errors"
)

// Input errors
var (
	ErrChromosomeNotFound   = errors.New("chromosome not found")
	ErrStructureIsInvalid   = errors.New("structure is invalid")
	ErrInvalidRange         = errors.New("invalid range")
	ErrInvalidBEDLine       = errors.New("invalid BED line")
	ErrInvalidCandidateLine = errors.New("invalid candidate line")
)

// No-result conditions
var (
	ErrNoOptimalStructureFound = errors.New("no optimal structure found")
	ErrNoMatureMiRnaFound      = errors.New("no mature miRNA found")
	ErrNoStarMiRnaFound        = errors.New("no star miRNA found")
)

// IsNoResult reports whether err is an expected outcome excluding a candidate.
func IsNoResult(err error) bool {
	return errors.Is(err, ErrNoOptimalStructureFound) ||
		errors.Is(err, ErrNoMatureMiRnaFound) ||
		errors.Is(err, ErrNoStarMiRnaFound) ||
		errors.Is(err, ErrStructureIsInvalid)
}

// IsCandidateError reports whether err only concerns the candidate it was
// raised for. The batch goes on after such errors.
func IsCandidateError(err error) bool {
	return IsNoResult(err) ||
		errors.Is(err, ErrChromosomeNotFound) ||
		errors.Is(err, ErrInvalidRange)
}
