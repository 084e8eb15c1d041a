//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cluster

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
)

const bedColumns = 10

// WriteBED writes clusters as BED lines. The folding window is the BED
// interval and the core is the thick interval.
func WriteBED(w io.Writer, clusters []Cluster) error {
	bw := bufio.NewWriter(w)
	for _, c := range clusters {
		_, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t0\t%s\t%d\t%d\t0\t%d\n", c.Chrom, c.FlankStart, c.FlankEnd, c.Name(), StrandString(c.Strand), c.Start, c.End, c.ReadCount)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseBEDLine parses one line written by WriteBED.
func ParseBEDLine(line string) (Cluster, error) {
	var c Cluster
	fields := strings.Split(line, "\t")
	if len(fields) < bedColumns {
		return c, errors.Wrapf(errs.ErrInvalidBEDLine, "%d columns in %q", len(fields), line)
	}
	var err error
	ints := make([]int, 0, 6)
	for _, i := range []int{1, 2, 6, 7, 9} {
		var v int
		if v, err = strconv.Atoi(fields[i]); err != nil {
			return c, errors.Wrapf(errs.ErrInvalidBEDLine, "column %d in %q", i+1, line)
		}
		ints = append(ints, v)
	}
	name, ok := strings.CutPrefix(fields[3], "Cluster_")
	if !ok {
		return c, errors.Wrapf(errs.ErrInvalidBEDLine, "name %q", fields[3])
	}
	if c.ID, err = strconv.Atoi(name); err != nil {
		return c, errors.Wrapf(errs.ErrInvalidBEDLine, "name %q", fields[3])
	}
	if c.Strand, err = ParseStrand(fields[5]); err != nil {
		return c, errors.Wrapf(errs.ErrInvalidBEDLine, "strand %q", fields[5])
	}
	c.Chrom = fields[0]
	c.FlankStart, c.FlankEnd, c.Start, c.End, c.ReadCount = ints[0], ints[1], ints[2], ints[3], ints[4]
	c.PeakReads = c.ReadCount
	if !(c.FlankStart <= c.Start && c.Start <= c.End && c.End <= c.FlankEnd) {
		return c, errors.Wrapf(errs.ErrInvalidBEDLine, "coordinates in %q", line)
	}
	return c, nil
}

// ReadBED reads clusters written by WriteBED. Empty lines, comments and
// track lines are skipped.
func ReadBED(r io.Reader) ([]Cluster, error) {
	var clusters []Cluster
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") {
			continue
		}
		c, err := ParseBEDLine(line)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return clusters, nil
}
