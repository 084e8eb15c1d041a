//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package report

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/MiRA/lib/candidate"
	"git.sr.ht/~vejnar/MiRA/lib/cmapper"
	"git.sr.ht/~vejnar/MiRA/lib/reads"
)

const (
	bedGraphPrecision = 0.000001
)

const (
	ProfileTypeAll = iota
	ProfileTypeFirst
	ProfileTypeLast
	ProfileTypeFirstLast
)

// ParseProfileType converts "all", "first", "last" and "first-last".
func ParseProfileType(s string) (int, error) {
	switch s {
	case "all":
		return ProfileTypeAll, nil
	case "first":
		return ProfileTypeFirst, nil
	case "last":
		return ProfileTypeLast, nil
	case "first-last":
		return ProfileTypeFirstLast, nil
	}
	return 0, errors.Errorf("unknown profile type %q", s)
}

// Profile is the read depth along a precursor, read on its strand.
type Profile struct {
	Name   string
	Values []float32
}

// NewProfile counts the reads of ext, extended by overhang on both sides.
// Reads add to every position they cover (ProfileTypeAll) or to their 5'
// and/or 3' end only.
func NewProfile(ext *candidate.Extended, idx *reads.Index, profileType int, overhang int) Profile {
	start := ext.Start - overhang
	if start < 0 {
		start = 0
	}
	cm := cmapper.New(start, ext.End+overhang, ext.Strand)
	p := Profile{Name: fmt.Sprintf("Cluster_%d", ext.ID), Values: make([]float32, cm.GetLength())}
	add := func(coord int) {
		if i, ok := cm.Genome2Sense(coord); ok {
			p.Values[i]++
		}
	}
	for _, a := range idx.Within(ext.Chrom, ext.Strand, cm.Start, cm.End) {
		first, last := a.Start, a.End()-1
		if ext.Strand == -1 {
			first, last = last, first
		}
		switch profileType {
		case ProfileTypeAll:
			for c := a.Start; c < a.End(); c++ {
				add(c)
			}
		case ProfileTypeFirst:
			add(first)
		case ProfileTypeLast:
			add(last)
		case ProfileTypeFirstLast:
			add(first)
			add(last)
		}
	}
	return p
}

type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// WriteProfiles writes profiles to profilePath in profileFormat: "bedgraph",
// "binary" or "csv", optionally compressed with "+lz4", "+lz4hc" or "+gz".
func WriteProfiles(profiles []Profile, profilePath string, profileFormat string) error {
	f, err := os.Create(profilePath)
	if err != nil {
		return err
	}
	if err := EncodeProfiles(f, profiles, profileFormat); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeProfiles writes profiles to w. See WriteProfiles.
func EncodeProfiles(w io.Writer, profiles []Profile, profileFormat string) error {
	var profileZip string
	if strings.Contains(profileFormat, "+") {
		doubleFormat := strings.Split(profileFormat, "+")
		profileFormat, profileZip = doubleFormat[0], doubleFormat[1]
	}
	var writer GenericWriter
	switch profileZip {
	case "lz4":
		writer = lz4.NewWriter(w)
	case "lz4hc":
		lzWriter := lz4.NewWriter(w)
		lzWriter.Header = lz4.Header{CompressionLevel: 9}
		writer = lzWriter
	case "gz":
		writer = gzip.NewWriter(w)
	case "":
		writer = nopCloser{w}
	default:
		return errors.Errorf("unknown profile compression %q", profileZip)
	}
	var err error
	switch profileFormat {
	case "bedgraph":
		err = writeBedGraph(writer, profiles)
	case "binary":
		err = writeBinary(writer, profiles)
	case "csv":
		err = writeCSV(writer, profiles)
	default:
		err = errors.Errorf("unknown profile format %q", profileFormat)
	}
	if err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func writeBedGraph(w io.Writer, profiles []Profile) error {
	for i := range profiles {
		name := profiles[i].Name
		values := profiles[i].Values
		var stepStart int
		var stepValue float32
		for ip := 0; ip <= len(values); ip++ {
			var currentValue float32
			if ip < len(values) {
				currentValue = values[ip]
			}
			if math.Abs(float64(currentValue-stepValue)) > bedGraphPrecision || ip == len(values) {
				if stepValue != 0. {
					if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%f\n", name, stepStart, ip, stepValue); err != nil {
						return err
					}
				}
				stepStart = ip
				stepValue = currentValue
			}
		}
	}
	return nil
}

func writeBinary(w io.Writer, profiles []Profile) error {
	// Version
	var version uint8 = 3
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return err
	}
	// Profiles and total lengths
	var totalLength uint32
	bufChecksum := new(bytes.Buffer)
	for i := range profiles {
		l := uint32(len(profiles[i].Values))
		if err := binary.Write(bufChecksum, binary.LittleEndian, l); err != nil {
			return err
		}
		totalLength += l
	}
	if err := binary.Write(w, binary.LittleEndian, totalLength); err != nil {
		return err
	}
	// Checksum
	checksum := adler32.Checksum(bufChecksum.Bytes())
	if err := binary.Write(w, binary.LittleEndian, checksum); err != nil {
		return err
	}
	for i := range profiles {
		if err := binary.Write(w, binary.LittleEndian, profiles[i].Values); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, profiles []Profile) error {
	for i := range profiles {
		fprofile := fmt.Sprintf("%v", profiles[i].Values)
		_, err := fmt.Fprintf(w, "%s,%d,%s\n", profiles[i].Name, len(profiles[i].Values), fprofile[1:len(fprofile)-1])
		if err != nil {
			return err
		}
	}
	return nil
}
