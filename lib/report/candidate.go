//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"git.sr.ht/~vejnar/MiRA/lib/candidate"
	"git.sr.ht/~vejnar/MiRA/lib/cluster"
	"git.sr.ht/~vejnar/MiRA/lib/duplex"
	"git.sr.ht/~vejnar/MiRA/lib/reads"
)

// Strand is a mature or star strand of a final candidate.
type Strand struct {
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Arm        string       `json:"arm"`
	Sequence   string       `json:"sequence"`
	Structure  string       `json:"structure"`
	Coverage   uint64       `json:"coverage"`
	Artificial bool         `json:"artificial,omitempty"`
	Reads      []reads.Read `json:"reads"`
}

// Candidate is the JSON record of a final candidate.
type Candidate struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Chrom             string  `json:"chrom"`
	Strand            string  `json:"strand"`
	Start             int     `json:"start"`
	End               int     `json:"end"`
	Sequence          string  `json:"sequence"`
	Structure         string  `json:"structure"`
	MFE               float64 `json:"mfe"`
	PValue            float64 `json:"pvalue"`
	Mean              float64 `json:"mean"`
	SD                float64 `json:"sd"`
	Mature            Strand  `json:"mature"`
	Star              Strand  `json:"star"`
	TotalReads        int     `json:"total_reads"`
	TotalReadFraction float64 `json:"total_read_fraction"`
}

func newStrand(ext *candidate.Extended, sub duplex.Subsequence, span reads.Span, rl reads.UniqueReadList) Strand {
	return Strand{
		Start:      span.Start,
		End:        span.End,
		Arm:        sub.Arm.String(),
		Sequence:   ext.Sequence[sub.Start:sub.End],
		Structure:  ext.Structure[sub.Start:sub.End],
		Coverage:   sub.Coverage,
		Artificial: sub.IsArtificial,
		Reads:      rl.Reads,
	}
}

// NewCandidate builds the record of ext.
func NewCandidate(ext *candidate.Extended) Candidate {
	return Candidate{
		ID:                ext.ID,
		Name:              fmt.Sprintf("Cluster_%d", ext.ID),
		Chrom:             ext.Chrom,
		Strand:            cluster.StrandString(ext.Strand),
		Start:             ext.Start,
		End:               ext.End,
		Sequence:          ext.Sequence,
		Structure:         ext.Structure,
		MFE:               ext.MFE,
		PValue:            ext.PValue,
		Mean:              ext.Mean,
		SD:                ext.SD,
		Mature:            newStrand(ext, ext.Duplex.Mature(), ext.Mature, ext.MatureReads),
		Star:              newStrand(ext, ext.Duplex.Star(), ext.Star, ext.StarReads),
		TotalReads:        ext.TotalReads,
		TotalReadFraction: ext.TotalReadFraction,
	}
}

// WriteJSON writes the valid candidates as a JSON array.
func WriteJSON(w io.Writer, exts []candidate.Extended) error {
	records := make([]Candidate, 0, len(exts))
	for i := range exts {
		if exts[i].IsValid {
			records = append(records, NewCandidate(&exts[i]))
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteBED writes the valid precursors as BED lines. The thick part is the
// mature strand.
func WriteBED(w io.Writer, exts []candidate.Extended) error {
	bw := bufio.NewWriter(w)
	for i := range exts {
		e := &exts[i]
		if !e.IsValid {
			continue
		}
		_, err := fmt.Fprintf(bw, "%s\t%d\t%d\tCluster_%d\t%d\t%s\t%d\t%d\n",
			e.Chrom, e.Start, e.End, e.ID, e.TotalReads, cluster.StrandString(e.Strand), e.Mature.Start, e.Mature.End)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
