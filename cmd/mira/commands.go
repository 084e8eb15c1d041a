//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"git.sr.ht/~vejnar/MiRA/lib/esam"
	"git.sr.ht/~vejnar/MiRA/lib/genome"
	"git.sr.ht/~vejnar/MiRA/lib/report"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <SAM/BAM file>...",
	Short: "Build the expression clusters of alignments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRun(cmd)
		if err != nil {
			return err
		}
		lib, err := r.loadLibrary(args)
		if err != nil {
			return err
		}
		if chrom, _ := cmd.Flags().GetString("chrom"); chrom != "" {
			lib = lib.Select(chrom)
		}
		output, _ := cmd.Flags().GetString("output")
		if _, err := r.clusterStep(lib, output); err != nil {
			return err
		}
		return r.writeReport("")
	},
}

var foldCmd = &cobra.Command{
	Use:   "fold <cluster BED> <FASTA>",
	Short: "Fold the clusters and keep the significant structures",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRun(cmd)
		if err != nil {
			return err
		}
		clusters, err := readClusters(args[0])
		if err != nil {
			return err
		}
		r.summary.NCluster = len(clusters)
		g, err := r.loadGenome(args[1])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		if _, err := r.foldStep(cmd.Context(), clusters, g, output); err != nil {
			return err
		}
		return r.writeReport("")
	},
}

var coverageCmd = &cobra.Command{
	Use:   "coverage <candidate file> <SAM/BAM file> <output directory>",
	Short: "Find the mature and star strands of folded candidates",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRun(cmd)
		if err != nil {
			return err
		}
		cands, err := readCandidates(args[0])
		if err != nil {
			return err
		}
		r.summary.NFolded = len(cands)
		lib, err := r.loadLibrary(args[1:2])
		if err != nil {
			return err
		}
		outDir := args[2]
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
		if err := r.coverageStep(cmd.Context(), cands, lib, outDir); err != nil {
			return err
		}
		return r.writeReport(filepath.Join(outDir, reportFilename))
	},
}

var fullCmd = &cobra.Command{
	Use:   "full <SAM/BAM file> <FASTA> <output directory>",
	Short: "Run cluster, fold and coverage",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRun(cmd)
		if err != nil {
			return err
		}
		lib, err := r.loadLibrary(args[0:1])
		if err != nil {
			return err
		}
		g, err := r.loadGenome(args[1])
		if err != nil {
			return err
		}
		if err := r.full(cmd, lib, g, args[2]); err != nil {
			return err
		}
		r.logf(logrus.InfoLevel, "All steps completed successfully")
		return r.writeReport(filepath.Join(args[2], reportFilename))
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <SAM/BAM file> <FASTA> <output directory>",
	Short: "Run cluster, fold and coverage for each chromosome separately",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRun(cmd)
		if err != nil {
			return err
		}
		lib, err := r.loadLibrary(args[0:1])
		if err != nil {
			return err
		}
		g, err := r.loadGenome(args[1])
		if err != nil {
			return err
		}
		for i, c := range lib.Chroms {
			r.logf(logrus.InfoLevel, "Batch %d/%d: %s", i+1, len(lib.Chroms), c.Name)
			sub := lib.Select(c.Name)
			if sub.NAlign == 0 {
				continue
			}
			r.summary = newBatchSummary(sub)
			outDir := filepath.Join(args[2], c.Name)
			if err := r.full(cmd, sub, g, outDir); err != nil {
				return err
			}
			if err := r.writeReport(filepath.Join(outDir, reportFilename)); err != nil {
				return err
			}
		}
		r.logf(logrus.InfoLevel, "All batches completed successfully")
		return nil
	},
}

func init() {
	clusterCmd.Flags().StringP("output", "o", clusterFilename, "Path to cluster BED output")
	clusterCmd.Flags().String("chrom", "", "Only cluster alignments of chromosome")
	foldCmd.Flags().StringP("output", "o", candidateFilename, "Path to candidate output")
}

func newBatchSummary(lib *esam.Library) *report.Summary {
	return &report.Summary{NAlignment: lib.NAlign, NRead: lib.NRead}
}

// full runs all steps on lib and writes the outputs to outDir.
func (r *run) full(cmd *cobra.Command, lib *esam.Library, g genome.Genome, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	clusters, err := r.clusterStep(lib, filepath.Join(outDir, clusterFilename))
	if err != nil {
		return err
	}
	cands, err := r.foldStep(cmd.Context(), clusters, g, filepath.Join(outDir, candidateFilename))
	if err != nil {
		return err
	}
	r.logf(logrus.InfoLevel, "Kept %s folded candidates", humanize.Comma(int64(len(cands))))
	return r.coverageStep(cmd.Context(), cands, lib, outDir)
}
