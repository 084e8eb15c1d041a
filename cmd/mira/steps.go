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
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"git.sr.ht/~vejnar/MiRA/lib/candidate"
	"git.sr.ht/~vejnar/MiRA/lib/cluster"
	"git.sr.ht/~vejnar/MiRA/lib/coverage"
	"git.sr.ht/~vejnar/MiRA/lib/esam"
	"git.sr.ht/~vejnar/MiRA/lib/fold"
	"git.sr.ht/~vejnar/MiRA/lib/genome"
	"git.sr.ht/~vejnar/MiRA/lib/reads"
	"git.sr.ht/~vejnar/MiRA/lib/report"
	"git.sr.ht/~vejnar/MiRA/lib/stats"
)

// Output file names
const (
	clusterFilename   = "cluster_contigs.bed"
	candidateFilename = "fold_candidates.miRA"
	finalJSONFilename = "final_candidates.json"
	finalBEDFilename  = "final_candidates.bed"
	reportFilename    = "report.json"
)

func (r *run) loadLibrary(paths []string) (*esam.Library, error) {
	var pathSAMs []esam.PathSAM
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, err
		}
		r.logf(logrus.InfoLevel, "Opening %s", p)
		pathSAMs = append(pathSAMs, esam.NewPathSAM(p))
	}
	lib, err := esam.ReadLibrary(pathSAMs, r.samCmd, r.cfg.NumWorker)
	if err != nil {
		return nil, err
	}
	r.summary.NAlignment, r.summary.NRead = lib.NAlign, lib.NRead
	r.logf(logrus.InfoLevel, "Loaded %s align. of %s reads", humanize.Comma(int64(lib.NAlign)), humanize.Comma(int64(lib.NRead)))
	return lib, nil
}

func (r *run) loadGenome(path string) (genome.Genome, error) {
	var mapping map[string]string
	if p := v.GetString("path_mapping"); p != "" {
		var err error
		if mapping, err = genome.OpenMapping(p); err != nil {
			return nil, err
		}
	}
	r.logf(logrus.InfoLevel, "Opening %s", path)
	return genome.OpenFASTA(path, mapping)
}

// clusterStep builds the clusters of lib and writes them to pathBED.
func (r *run) clusterStep(lib *esam.Library, pathBED string) ([]cluster.Cluster, error) {
	clusters, err := cluster.Build(lib.Alignments, esam.ChromLengths(lib.Chroms), r.cfg.Cluster)
	if err != nil {
		return nil, err
	}
	r.summary.NCluster = len(clusters)
	r.logf(logrus.InfoLevel, "Found %s clusters", humanize.Comma(int64(len(clusters))))
	f, err := os.Create(pathBED)
	if err != nil {
		return nil, err
	}
	if err := cluster.WriteBED(f, clusters); err != nil {
		f.Close()
		return nil, err
	}
	return clusters, f.Close()
}

func readClusters(pathBED string) ([]cluster.Cluster, error) {
	f, err := os.Open(pathBED)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cluster.ReadBED(f)
}

func (r *run) pipeline() *candidate.Pipeline {
	oracle := fold.ZukerOracle{Temperature: r.cfg.FoldTemperature}
	return &candidate.Pipeline{
		Oracle:    oracle,
		MaxWindow: r.cfg.Cluster.MaxLength,
		Gates:     r.cfg.Gates,
		Validator: stats.Validator{Oracle: oracle, Permutations: r.cfg.PermutationCount, MaxPValue: r.cfg.MaxPValue},
		Seed:      r.cfg.Seed,
		Duplex:    r.cfg.Duplex,
		ReadFlank: r.cfg.ReadCountFlank,
	}
}

// foldStep folds the clusters and writes the accepted candidates to pathMiRA.
func (r *run) foldStep(ctx context.Context, clusters []cluster.Cluster, g genome.Genome, pathMiRA string) ([]fold.Candidate, error) {
	p := r.pipeline()
	p.Genome = g
	results := make([]fold.Candidate, len(clusters))
	kept := make([]bool, len(clusters))
	err := r.parallel(ctx, "fold", len(clusters), func(i int) error {
		cand, err := p.Fold(clusters[i])
		if err != nil {
			return err
		}
		results[i], kept[i] = cand, true
		return nil
	})
	if err != nil {
		return nil, err
	}
	var cands []fold.Candidate
	for i, ok := range kept {
		if ok {
			cands = append(cands, results[i])
		}
	}
	r.summary.NFolded = len(cands)
	f, err := os.Create(pathMiRA)
	if err != nil {
		return nil, err
	}
	if err := candidate.WriteCandidates(f, cands); err != nil {
		f.Close()
		return nil, err
	}
	return cands, f.Close()
}

func readCandidates(pathMiRA string) ([]fold.Candidate, error) {
	f, err := os.Open(pathMiRA)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return candidate.ReadCandidates(f)
}

// coverageStep finds the duplex of each candidate and writes the final
// candidates to outDir.
func (r *run) coverageStep(ctx context.Context, cands []fold.Candidate, lib *esam.Library, outDir string) error {
	cov, err := coverage.Build(lib.Chroms, lib.Alignments)
	if err != nil {
		return err
	}
	idx, err := reads.NewIndex(lib.Alignments, lib.NRead)
	if err != nil {
		return err
	}
	p := r.pipeline()
	p.Coverage, p.Reads = cov, idx
	exts := make([]candidate.Extended, len(cands))
	err = r.parallel(ctx, "coverage", len(cands), func(i int) error {
		ext, err := p.Process(cands[i])
		if err != nil {
			return err
		}
		exts[i] = ext
		return nil
	})
	if err != nil {
		return err
	}
	for i := range exts {
		if exts[i].IsValid {
			r.summary.NCandidate++
		}
	}
	r.logf(logrus.InfoLevel, "Found %s final candidates", humanize.Comma(int64(r.summary.NCandidate)))

	if err := writeFile(filepath.Join(outDir, finalJSONFilename), func(f *os.File) error { return report.WriteJSON(f, exts) }); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(outDir, finalBEDFilename), func(f *os.File) error { return report.WriteBED(f, exts) }); err != nil {
		return err
	}
	return r.profileStep(exts, idx, outDir)
}

// profileStep writes the read profiles of the final candidates.
func (r *run) profileStep(exts []candidate.Extended, idx *reads.Index, outDir string) error {
	profileTypeRaw := v.GetString("profile_type")
	if profileTypeRaw == "" {
		return nil
	}
	profileType, err := report.ParseProfileType(profileTypeRaw)
	if err != nil {
		return err
	}
	var profiles []report.Profile
	for i := range exts {
		if exts[i].IsValid {
			profiles = append(profiles, report.NewProfile(&exts[i], idx, profileType, v.GetInt("profile_overhang")))
		}
	}
	format := v.GetString("profile_format")
	path := filepath.Join(outDir, profileFilename(format))
	r.logf(logrus.InfoLevel, "Writing %s", path)
	return errors.Wrap(report.WriteProfiles(profiles, path, format), "writing profiles")
}

func profileFilename(format string) string {
	ext := strings.Replace(format, "binary", "bin", 1)
	return "profiles." + strings.ReplaceAll(ext, "+", ".")
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}
