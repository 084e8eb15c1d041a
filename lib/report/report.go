//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package report writes the results of a run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
)

// Summary counts what each step of a run kept and rejected. Reject can be
// called concurrently.
type Summary struct {
	NAlignment int            `json:"alignment"`
	NRead      int            `json:"read"`
	NCluster   int            `json:"cluster"`
	NFolded    int            `json:"fold_candidate"`
	NCandidate int            `json:"candidate"`
	Rejected   map[string]int `json:"rejected"`
	mu         sync.Mutex
}

// Reject counts a candidate rejected with err.
func (s *Summary) Reject(err error) {
	var reason string
	switch {
	case errors.Is(err, errs.ErrNoOptimalStructureFound):
		reason = "no_optimal_structure"
	case errors.Is(err, errs.ErrStructureIsInvalid):
		reason = "invalid_structure"
	case errors.Is(err, errs.ErrNoMatureMiRnaFound):
		reason = "no_mature"
	case errors.Is(err, errs.ErrNoStarMiRnaFound):
		reason = "no_star"
	case errors.Is(err, errs.ErrChromosomeNotFound):
		reason = "chromosome_not_found"
	default:
		reason = "other"
	}
	s.mu.Lock()
	if s.Rejected == nil {
		s.Rejected = make(map[string]int)
	}
	s.Rejected[reason]++
	s.mu.Unlock()
}

// WriteReport writes s as JSON to pathReport or to stdout if pathReport is "-".
func WriteReport(pathReport string, s *Summary) error {
	s.mu.Lock()
	report, err := json.MarshalIndent(s, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if pathReport == "-" {
		fmt.Println(string(report))
		return nil
	}
	f, err := os.Create(pathReport)
	if err != nil {
		return err
	}
	if _, err := f.Write(report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
