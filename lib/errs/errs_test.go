//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package errs

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	wrapped := errors.Wrapf(ErrNoStarMiRnaFound, "cluster %d", 4)
	assert.True(t, IsNoResult(wrapped))
	assert.True(t, IsCandidateError(wrapped))

	chrom := errors.Wrapf(ErrChromosomeNotFound, "chr%d", 2)
	assert.False(t, IsNoResult(chrom))
	assert.True(t, IsCandidateError(chrom))

	assert.False(t, IsCandidateError(io.ErrUnexpectedEOF))
	assert.False(t, IsCandidateError(nil))
}
