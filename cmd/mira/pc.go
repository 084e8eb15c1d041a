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
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/MiRA/lib/errs"
)

const chanFactor = 10

// parallel calls fn for 0..n-1 on nWorker goroutines. Errors only
// concerning one item are counted in the summary and skipped; any other
// error stops all workers.
func (r *run) parallel(ctx context.Context, label string, n int, fn func(i int) error) error {
	var done, skipped atomic.Int64

	// Progress bar
	var pbs *mpb.Progress
	var bar *mpb.Bar
	if r.progress {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(n),
			mpb.PrependDecorators(
				decor.Name(label+": ", decor.WC{W: len(label) + 2, C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 1024),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	chIdx := make(chan int, r.cfg.NumWorker*chanFactor)
	g.Go(func() error {
		defer close(chIdx)
		timeLog := time.Now()
		for i := 0; i < n; i++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chIdx <- i:
			}
			if timeNow := time.Now(); timeNow.Sub(timeLog).Minutes() > 1. {
				r.logf(logrus.InfoLevel, "%s %s / %s", label, humanize.Comma(done.Load()), humanize.Comma(int64(n)))
				timeLog = timeNow
			}
		}
		return nil
	})
	for w := 0; w < r.cfg.NumWorker; w++ {
		g.Go(func() error {
			for i := range chIdx {
				if err := fn(i); err != nil {
					if !errs.IsCandidateError(err) {
						return err
					}
					logrus.Debugf("Skipping: %v", err)
					r.summary.Reject(err)
					skipped.Add(1)
				}
				done.Add(1)
				if bar != nil {
					bar.Increment()
				}
			}
			return nil
		})
	}
	err := g.Wait()
	if pbs != nil {
		if err != nil {
			bar.Abort(false)
		}
		pbs.Wait()
	}
	if err != nil {
		return err
	}
	r.logf(logrus.InfoLevel, "%s %s done, %s skipped", label, humanize.Comma(done.Load()-skipped.Load()), humanize.Comma(skipped.Load()))
	return nil
}
