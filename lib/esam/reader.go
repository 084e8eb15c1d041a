//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"io"
	"os"
	"os/exec"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"gopkg.in/fatih/set.v0"
)

// Library holds all mapped alignments of a run.
type Library struct {
	Alignments []Alignment
	Chroms     []ChromInfo
	NAlign     int
	NRead      int
}

// Source is an open alignment file.
type Source struct {
	rr      headerReader
	closers []io.Closer
	cmd     *exec.Cmd
}

type headerReader interface {
	sam.RecordReader
	Header() *sam.Header
}

// Close releases the file and waits for the decompression command.
func (s *Source) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if s.cmd != nil {
		if werr := s.cmd.Wait(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// Header returns the SAM header of the source.
func (s *Source) Header() *sam.Header {
	return s.rr.Header()
}

// Read returns the next record, io.EOF at the end of the source.
func (s *Source) Read() (*sam.Record, error) {
	return s.rr.Read()
}

// OpenSAM opens a SAM, gzipped SAM or BAM file. If cmd is not empty, the file
// is read from the standard output of cmd run with the path as last argument.
func OpenSAM(pathSAM PathSAM, cmd []string, nWorker int) (*Source, error) {
	src := &Source{}
	if len(cmd) > 0 && !pathSAM.Binary {
		args := append(append([]string{}, cmd[1:]...), pathSAM.Path)
		p := exec.Command(cmd[0], args...)
		pp, err := p.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err = p.Start(); err != nil {
			return nil, err
		}
		src.cmd = p
		src.closers = append(src.closers, pp)
		if src.rr, err = sam.NewReader(pp); err != nil {
			src.Close()
			return nil, errors.Wrapf(err, "reading SAM header of %s", pathSAM.Path)
		}
		return src, nil
	}
	f, err := os.Open(pathSAM.Path)
	if err != nil {
		return nil, err
	}
	src.closers = append(src.closers, f)
	var r io.Reader = f
	if pathSAM.Binary {
		br, err := bam.NewReader(f, nWorker)
		if err != nil {
			src.Close()
			return nil, errors.Wrapf(err, "reading BAM header of %s", pathSAM.Path)
		}
		src.rr = br
		src.closers = append(src.closers, br)
		return src, nil
	}
	if pathSAM.Gzip {
		gr, err := gzip.NewReader(f)
		if err != nil {
			src.Close()
			return nil, errors.Wrapf(err, "opening %s", pathSAM.Path)
		}
		src.closers = append(src.closers, gr)
		r = gr
	}
	if src.rr, err = sam.NewReader(r); err != nil {
		src.Close()
		return nil, errors.Wrapf(err, "reading SAM header of %s", pathSAM.Path)
	}
	return src, nil
}

// ReadLibrary loads the mapped alignments of all files. Unmapped reads and
// supplementary alignments are ignored. The chromosomes are taken from the
// header of the first file.
func ReadLibrary(pathSAMs []PathSAM, cmd []string, nWorker int) (*Library, error) {
	lib := &Library{}
	names := set.New(set.NonThreadSafe)
	for ip, pathSAM := range pathSAMs {
		src, err := OpenSAM(pathSAM, cmd, nWorker)
		if err != nil {
			return nil, err
		}
		if ip == 0 {
			lib.Chroms = ChromInfos(src.Header())
		}
		for {
			r, err := src.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				src.Close()
				return nil, errors.Wrapf(err, "reading %s", pathSAM.Path)
			}
			if r.Flags&sam.Unmapped != 0 || r.Flags&sam.Supplementary != 0 || r.Ref == nil {
				continue
			}
			lib.Alignments = append(lib.Alignments, NewAlignment(r))
			names.Add(r.Name)
		}
		if err := src.Close(); err != nil {
			return nil, err
		}
	}
	lib.NAlign = len(lib.Alignments)
	lib.NRead = names.Size()
	return lib, nil
}

// Select returns the alignments and chromosome of chrom. NRead is kept as
// the size of the whole library.
func (lib *Library) Select(chrom string) *Library {
	sub := &Library{NRead: lib.NRead}
	for _, c := range lib.Chroms {
		if c.Name == chrom {
			sub.Chroms = append(sub.Chroms, c)
		}
	}
	for _, a := range lib.Alignments {
		if a.Chrom == chrom {
			sub.Alignments = append(sub.Alignments, a)
		}
	}
	sub.NAlign = len(sub.Alignments)
	return sub
}
