//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package reads

import (
	"fmt"

	"github.com/biogo/store/interval"
)

// ReadInterval is the footprint of the alignment UID.
type ReadInterval struct {
	Start, End int
	UID        uintptr
}

func (i ReadInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i ReadInterval) ID() uintptr {
	return i.UID
}

func (i ReadInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

func (i ReadInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d", i.Start, i.End, i.UID)
}
