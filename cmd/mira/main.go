//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"git.sr.ht/~vejnar/MiRA/lib/config"
	"git.sr.ht/~vejnar/MiRA/lib/report"
)

var version = "DEV"

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "mira",
	Short:         "Coverage based discovery of miRNA loci",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Path to config file (yaml, toml, json or key = value lines)")
	pf.Int("log_level", config.LogBasic, "Log level: 0 (quiet), 1 (basic) or 2 (verbose)")
	pf.BoolP("verbose", "v", false, "Verbose (log_level 2)")
	pf.BoolP("quiet", "q", false, "Quiet (log_level 0)")
	pf.Int("num_worker", 1, "Number of worker(s)")
	pf.Int64("seed", 0, "Seed of the permutation test")
	pf.String("path_report", "", "Write report to path (stdout with -)")
	pf.String("sam_command_in", "", "Command line to execute for opening each of the SAM file (comma separated)")
	pf.Bool("progress", false, "Show progress bar")
	pf.String("path_mapping", "", "Path to chromosome name mapping (tabulated file)")
	pf.String("profile_type", "", "Computing profiles of read distribution of final candidates: 'first', 'last', 'first-last' or 'all'")
	pf.String("profile_format", "bedgraph", "Profile output format: 'bedgraph', 'binary' or 'csv', with optional '+lz4', '+lz4hc' or '+gz' compression")
	pf.Int("profile_overhang", 0, "Overhang length to add to each side of the profile")
	for _, k := range []string{"config", "log_level", "num_worker", "seed", "path_report", "sam_command_in", "progress", "path_mapping", "profile_type", "profile_format", "profile_overhang"} {
		v.BindPFlag(k, pf.Lookup(k))
	}
	// Tuning
	for _, k := range []string{"cluster_gap_size", "cluster_min_reads", "cluster_flank_size", "cluster_max_length", "permutation_count"} {
		pf.Int(k, config.Defaults[k].(int), strings.ReplaceAll(k, "_", " "))
		v.BindPFlag(k, pf.Lookup(k))
	}
	pf.Float64("max_pvalue", config.Defaults["max_pvalue"].(float64), "max pvalue")
	v.BindPFlag("max_pvalue", pf.Lookup("max_pvalue"))
	v.SetEnvPrefix("mira")
	v.AutomaticEnv()

	rootCmd.AddCommand(clusterCmd, foldCmd, coverageCmd, fullCmd, batchCmd)
}

// run is the state shared by the steps of a command.
type run struct {
	cfg       config.Config
	timeStart time.Time
	samCmd    []string
	progress  bool
	summary   *report.Summary
}

func newRun(cmd *cobra.Command) (*run, error) {
	r := &run{timeStart: time.Now(), summary: &report.Summary{}}
	cfg, err := config.Load(v, v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = config.LogVerbose
	} else if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		cfg.LogLevel = config.LogQuiet
	}
	r.cfg = cfg
	switch cfg.LogLevel {
	case config.LogQuiet:
		logrus.SetLevel(logrus.WarnLevel)
	case config.LogBasic:
		logrus.SetLevel(logrus.InfoLevel)
	default:
		logrus.SetLevel(logrus.DebugLevel)
	}
	if raw := v.GetString("sam_command_in"); raw != "" {
		r.samCmd = strings.Split(raw, ",")
	}
	r.progress = v.GetBool("progress")
	// Max CPU
	runtime.GOMAXPROCS(cfg.NumWorker * 2)
	r.logConfig()
	return r, nil
}

// logf logs with the time elapsed since the start of the run.
func (r *run) logf(level logrus.Level, format string, args ...interface{}) {
	args = append([]interface{}{time.Since(r.timeStart).Minutes()}, args...)
	logrus.StandardLogger().Logf(level, "%.1fmin - "+format, args...)
}

func (r *run) logConfig() {
	keys := v.AllKeys()
	sort.Strings(keys)
	logrus.Debugln("Configuration parameters:")
	for _, k := range keys {
		logrus.Debugf("    %s %v", k, v.Get(k))
	}
}

// writeReport writes the summary to path_report, or to defaultPath if
// path_report is not set and defaultPath is not empty.
func (r *run) writeReport(defaultPath string) error {
	p := v.GetString("path_report")
	if p == "" {
		p = defaultPath
	}
	if p == "" {
		return nil
	}
	return report.WriteReport(p, r.summary)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
