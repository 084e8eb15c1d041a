//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package config holds the run settings, read by viper from a config file,
// the environment and command line flags.
package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"git.sr.ht/~vejnar/MiRA/lib/cluster"
	"git.sr.ht/~vejnar/MiRA/lib/duplex"
	"git.sr.ht/~vejnar/MiRA/lib/fold"
)

// Log levels
const (
	LogQuiet   = 0
	LogBasic   = 1
	LogVerbose = 2
)

// Spike policies
const (
	SpikeNormalized = "normalized"
	SpikeRaw        = "raw"
)

// Config is the settings of a run.
type Config struct {
	LogLevel  int   `mapstructure:"log_level"`
	NumWorker int   `mapstructure:"num_worker"`
	Seed      int64 `mapstructure:"seed"`

	Cluster cluster.Params `mapstructure:",squash"`

	// Fold
	Gates           fold.Gates `mapstructure:",squash"`
	FoldTemperature float64    `mapstructure:"fold_temperature"`

	// Statistics
	PermutationCount int     `mapstructure:"permutation_count"`
	MaxPValue        float64 `mapstructure:"max_pvalue"`

	// Duplex
	Duplex           duplex.Params `mapstructure:",squash"`
	SpikePolicy      string        `mapstructure:"spike_policy"`
	MinCoverage      float64       `mapstructure:"min_coverage"`
	MinCoverageCount float64       `mapstructure:"min_coverage_count"`

	ReadCountFlank int `mapstructure:"read_count_flank"`
}

// Defaults are the values of unset keys.
var Defaults = map[string]interface{}{
	"log_level":                     LogBasic,
	"num_worker":                    1,
	"seed":                          0,
	"cluster_gap_size":              10,
	"cluster_min_reads":             5,
	"cluster_flank_size":            50,
	"cluster_max_length":            300,
	"min_precursor_length":          50,
	"max_precursor_length":          0,
	"max_hairpin_count":             4,
	"min_double_strand_length":      20,
	"max_mfe_per_nt":                -0.4,
	"fold_temperature":              37.,
	"permutation_count":             100,
	"max_pvalue":                    0.01,
	"min_duplex_length":             18,
	"max_duplex_length":             26,
	"min_paired_fraction":           0.6,
	"min_dicer_offset":              0,
	"max_dicer_offset":              5,
	"allow_loop_in_duplex":          false,
	"allow_two_terminal_mismatches": false,
	"allow_three_mismatches":        false,
	"spike_policy":                  SpikeNormalized,
	"min_coverage":                  duplex.DefaultMinCoverage,
	"min_coverage_count":            0.,
	"read_count_flank":              30,
}

// SetDefaults registers Defaults in v.
func SetDefaults(v *viper.Viper) {
	for k, d := range Defaults {
		v.SetDefault(k, d)
	}
}

// Load reads the config file at path, if any, into v and decodes the
// settings. Files with an unknown extension are read as key = value lines.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !isSupported(ext) {
			v.SetConfigType("properties")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	c.Duplex.Threshold = c.SpikeThreshold()
	return c, nil
}

func isSupported(ext string) bool {
	for _, e := range viper.SupportedExts {
		if e == ext {
			return true
		}
	}
	return false
}

// Validate checks the consistency of the settings.
func (c *Config) Validate() error {
	switch {
	case c.NumWorker < 1:
		return errors.Errorf("num_worker %d below 1", c.NumWorker)
	case c.Cluster.GapSize < 0 || c.Cluster.FlankSize < 0:
		return errors.New("negative cluster gap or flank size")
	case c.Cluster.MaxLength <= 0:
		return errors.Errorf("cluster_max_length %d not positive", c.Cluster.MaxLength)
	case c.Duplex.MinLength >= c.Duplex.MaxLength:
		return errors.Errorf("min_duplex_length %d not below max_duplex_length %d", c.Duplex.MinLength, c.Duplex.MaxLength)
	case c.Duplex.MinDicerOffset >= c.Duplex.MaxDicerOffset:
		return errors.Errorf("min_dicer_offset %d not below max_dicer_offset %d", c.Duplex.MinDicerOffset, c.Duplex.MaxDicerOffset)
	case c.PermutationCount < 0:
		return errors.Errorf("negative permutation_count %d", c.PermutationCount)
	case c.SpikePolicy != SpikeNormalized && c.SpikePolicy != SpikeRaw:
		return errors.Errorf("unknown spike_policy %q", c.SpikePolicy)
	case c.ReadCountFlank < 0:
		return errors.Errorf("negative read_count_flank %d", c.ReadCountFlank)
	}
	return nil
}

// SpikeThreshold returns the boundary detector of spike_policy.
func (c *Config) SpikeThreshold() duplex.SpikeThreshold {
	if c.SpikePolicy == SpikeRaw {
		return duplex.Raw(c.MinCoverageCount)
	}
	return duplex.Normalized(c.MinCoverage)
}
