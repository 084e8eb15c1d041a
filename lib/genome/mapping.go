//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package genome

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// OpenMapping reads a two-column tab-separated file of chromosome names.
func OpenMapping(mpath string) (map[string]string, error) {
	m := make(map[string]string)

	mfos, err := os.Open(mpath)
	if err != nil {
		return m, err
	}
	defer mfos.Close()

	tscanner := bufio.NewScanner(mfos)
	for iline := 1; tscanner.Scan(); iline++ {
		line := tscanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return m, errors.Errorf("%s:%d: expected 2 columns, found %d", mpath, iline, len(fields))
		}
		m[fields[0]] = fields[1]
	}
	if err := tscanner.Err(); err != nil {
		return m, err
	}
	return m, nil
}

// MapName translates name, or returns it unchanged if it has no mapping.
func MapName(name string, m map[string]string) string {
	if nn, ok := m[name]; ok {
		return nn
	}
	return name
}
