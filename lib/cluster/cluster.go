//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package cluster groups aligned reads into expression loci.
package cluster

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
	"git.sr.ht/~vejnar/MiRA/lib/esam"
)

// Cluster is an expression locus. Start/End is the read-supported core and
// FlankStart/FlankEnd the folding window. Coordinates are 0-based half-open.
type Cluster struct {
	ID         int
	Strand     int8
	Chrom      string
	Start, End int
	ReadCount  int
	// PeakReads is the read count of the core when several extended
	// clusters were merged.
	PeakReads            int
	FlankStart, FlankEnd int
}

// Length returns the length of the folding window.
func (c *Cluster) Length() int {
	return c.FlankEnd - c.FlankStart
}

// Name returns the cluster name used in output files.
func (c *Cluster) Name() string {
	return fmt.Sprintf("Cluster_%d", c.ID)
}

func (c *Cluster) String() string {
	return fmt.Sprintf("%s:%d-%d(%s)[%d]", c.Chrom, c.Start, c.End, StrandString(c.Strand), c.ReadCount)
}

// StrandString returns "+" or "-".
func StrandString(strand int8) string {
	if strand == -1 {
		return "-"
	}
	return "+"
}

// ParseStrand converts "+" and "-" to 1 and -1.
func ParseStrand(s string) (int8, error) {
	switch s {
	case "+":
		return 1, nil
	case "-":
		return -1, nil
	}
	return 0, errors.Errorf("unknown strand %q", s)
}

// Params configures Build.
type Params struct {
	GapSize   int `mapstructure:"cluster_gap_size"`
	MinReads  int `mapstructure:"cluster_min_reads"`
	FlankSize int `mapstructure:"cluster_flank_size"`
	MaxLength int `mapstructure:"cluster_max_length"`
}

// FromAlignments creates one single-read cluster per alignment.
func FromAlignments(alns []esam.Alignment) []Cluster {
	clusters := make([]Cluster, len(alns))
	for i, a := range alns {
		clusters[i] = Cluster{
			ID:         i,
			Strand:     a.Strand,
			Chrom:      a.Chrom,
			Start:      a.Start,
			End:        a.End(),
			ReadCount:  1,
			PeakReads:  1,
			FlankStart: a.Start,
			FlankEnd:   a.End(),
		}
	}
	return clusters
}

// strandBefore orders "+" before "-".
func strandBefore(a, b int8) bool {
	return a > b
}

// Sort orders clusters by strand, chromosome and start.
func Sort(clusters []Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := &clusters[i], &clusters[j]
		if a.Strand != b.Strand {
			return strandBefore(a.Strand, b.Strand)
		}
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		return a.Start < b.Start
	})
}

// sortByStrandFlank orders clusters by strand, chromosome and flank start.
func sortByStrandFlank(clusters []Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := &clusters[i], &clusters[j]
		if a.Strand != b.Strand {
			return strandBefore(a.Strand, b.Strand)
		}
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		return a.FlankStart < b.FlankStart
	})
}

// SortByFlank orders clusters by chromosome and flank start.
func SortByFlank(clusters []Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := &clusters[i], &clusters[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.FlankStart != b.FlankStart {
			return a.FlankStart < b.FlankStart
		}
		return strandBefore(a.Strand, b.Strand)
	})
}

// Merge merges sorted clusters on the same strand and chromosome separated
// by at most gap nucleotides. Read counts are summed.
func Merge(clusters []Cluster, gap int) []Cluster {
	if len(clusters) == 0 {
		return clusters
	}
	merged := make([]Cluster, 0, len(clusters))
	running := clusters[0]
	for _, c := range clusters[1:] {
		if c.Strand == running.Strand && c.Chrom == running.Chrom && c.Start <= running.End+gap {
			if c.End > running.End {
				running.End = c.End
			}
			if c.FlankEnd > running.FlankEnd {
				running.FlankEnd = c.FlankEnd
			}
			running.ReadCount += c.ReadCount
			running.PeakReads = running.ReadCount
		} else {
			merged = append(merged, running)
			running = c
		}
	}
	return append(merged, running)
}

// FilterMinReads drops clusters with less than minReads reads.
func FilterMinReads(clusters []Cluster, minReads int) []Cluster {
	kept := clusters[:0]
	for _, c := range clusters {
		if c.ReadCount >= minReads {
			kept = append(kept, c)
		}
	}
	return kept
}

// Extend sets the folding window of each cluster to its core extended by
// window on both sides, clipped to the chromosome.
func Extend(clusters []Cluster, window int, chromLengths map[string]int) error {
	for i := range clusters {
		c := &clusters[i]
		length, ok := chromLengths[c.Chrom]
		if !ok {
			return errors.Wrapf(errs.ErrChromosomeNotFound, "extending %s", c)
		}
		c.End = min(length, c.End)
		c.FlankStart = max(0, c.Start-window)
		c.FlankEnd = min(length, c.End+window)
	}
	return nil
}

// MergeExtended merges clusters with overlapping folding windows as long as
// the merged window stays shorter than maxLength. The core of the merged
// cluster is the core with the most reads while the read count is the total
// of all merged clusters.
func MergeExtended(clusters []Cluster, maxLength int) []Cluster {
	if len(clusters) == 0 {
		return clusters
	}
	sortByStrandFlank(clusters)
	merged := make([]Cluster, 0, len(clusters))
	running := clusters[0]
	for _, c := range clusters[1:] {
		if c.Strand == running.Strand && c.Chrom == running.Chrom && c.FlankStart <= running.FlankEnd && max(running.FlankEnd, c.FlankEnd)-running.FlankStart < maxLength {
			if c.PeakReads > running.PeakReads {
				running.Start = c.Start
				running.End = c.End
				running.PeakReads = c.PeakReads
			}
			if c.FlankEnd > running.FlankEnd {
				running.FlankEnd = c.FlankEnd
			}
			running.ReadCount += c.ReadCount
		} else {
			merged = append(merged, running)
			running = c
		}
	}
	return append(merged, running)
}

// FilterMaxLength drops clusters with a folding window of maxLength or more.
func FilterMaxLength(clusters []Cluster, maxLength int) []Cluster {
	kept := clusters[:0]
	for _, c := range clusters {
		if c.Length() < maxLength {
			kept = append(kept, c)
		}
	}
	return kept
}

// Build runs the full clustering of alignments. Returned clusters are
// sorted by chromosome and flank start, and numbered in this order.
func Build(alns []esam.Alignment, chromLengths map[string]int, p Params) ([]Cluster, error) {
	clusters := FromAlignments(alns)
	Sort(clusters)
	clusters = Merge(clusters, 0)
	clusters = FilterMinReads(clusters, p.MinReads)
	clusters = Merge(clusters, p.GapSize)
	if err := Extend(clusters, p.FlankSize, chromLengths); err != nil {
		return nil, err
	}
	clusters = MergeExtended(clusters, p.MaxLength)
	clusters = FilterMaxLength(clusters, p.MaxLength)
	SortByFlank(clusters)
	for i := range clusters {
		clusters[i].ID = i
	}
	return clusters, nil
}
