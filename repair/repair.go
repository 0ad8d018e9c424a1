// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repair reconciles a recorded dataset against the list of
// sample ranges the wireless transport dropped, substituting
// replacement data re-fetched from the device's backup memory.
//
// Gaps are keyed by the recording's counter channel, a per-sample index
// cycling mod poly5.CounterWrap. Trigger channels are recorded locally
// and never present in device-side repair fetches, so their original
// values survive substitution untouched.
package repair // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/repair"

import (
	"log"
	"math"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
	"golang.org/x/xerrors"
)

// DefaultTriggerName is the reserved channel name of the SAGA digital
// trigger input. The match is exact and case-sensitive.
const DefaultTriggerName = "TRIGGERS"

// MissingRange is a contiguous run of dropped samples, keyed by the
// counter value of its first sample.
type MissingRange struct {
	Start  int // counter value of the first missing sample
	Length int // number of missing samples
}

// Source supplies replacement sample data for missing ranges. A fetch
// returns a channel-major matrix with one row per recorded channel and
// count columns.
type Source interface {
	FetchRepairBlock(start, count int) ([][]float64, error)
}

// Options tune a repair pass.
type Options struct {
	// CounterIndex designates the counter channel. Negative means the
	// last channel.
	CounterIndex int

	// TriggerName is the reserved name of the trigger channel to
	// preserve. Empty means DefaultTriggerName. A dataset without a
	// matching channel gets no exclusion.
	TriggerName string

	// ResetOffset is added to the walked counter whenever the stored
	// counter reads exactly zero, modeling a hardware counter reset.
	ResetOffset int

	// Strict turns a missing range whose start never appears in the
	// walked counter sequence into an error. The default keeps the
	// historical behavior of skipping such ranges silently.
	Strict bool

	// Msg receives a summary of skipped ranges. Nil disables it.
	Msg *log.Logger
}

// DefaultOptions returns the options of a plain repair pass: counter on
// the last channel, DefaultTriggerName, no reset offset, lenient
// matching.
func DefaultOptions() Options { return Options{CounterIndex: -1} }

// Run walks ds against the ascending missing-range list and substitutes
// repair data fetched from src at every matched position. The input
// dataset is never mutated; the corrected dataset is returned. An empty
// missing list returns ds unchanged.
//
// After the walk the counter channel is renormalized mod
// poly5.CounterWrap across the whole recording, touched or not.
func Run(ds *poly5.Dataset, missing []MissingRange, src Source, opts Options) (*poly5.Dataset, error) {
	if len(missing) == 0 {
		return ds, nil
	}

	nchan := len(ds.Channels)
	if nchan == 0 {
		return nil, poly5.ErrNoChannels
	}

	counter := opts.CounterIndex
	if counter < 0 || counter >= nchan {
		counter = nchan - 1
	}
	trigName := opts.TriggerName
	if trigName == "" {
		trigName = DefaultTriggerName
	}
	trigger := -1
	for i, ch := range ds.Channels {
		if ch.Name == trigName {
			trigger = i
			break
		}
	}

	out := ds.Clone()
	var (
		mat     = out.Samples()
		width   = out.NumSamples()
		cur     = 1
		ci      = 0
		rep     [][]float64
		skipped = 0
	)
	for j := 0; j < width; j++ {
		if mat[counter][j] == 0 {
			cur += opts.ResetOffset
		}

		// retire the active range once walked past its end
		if rep != nil && cur >= missing[ci].Start+missing[ci].Length {
			rep = nil
			ci++
		}
		if rep == nil {
			for ci < len(missing) && missing[ci].Start < cur {
				skipped++
				ci++
			}
			if ci < len(missing) && missing[ci].Start == cur {
				var err error
				rep, err = src.FetchRepairBlock(missing[ci].Start, missing[ci].Length)
				if err != nil {
					return nil, xerrors.Errorf(
						"repair: could not fetch repair block (start=%d, count=%d): %w",
						missing[ci].Start, missing[ci].Length, err,
					)
				}
				if len(rep) != nchan {
					return nil, &poly5.ChannelMismatchError{Want: nchan, Got: len(rep)}
				}
				for _, row := range rep {
					if len(row) < missing[ci].Length {
						return nil, xerrors.Errorf(
							"repair: short repair block (start=%d, got=%d columns, want=%d)",
							missing[ci].Start, len(row), missing[ci].Length,
						)
					}
				}
			}
		}
		if rep != nil {
			k := cur - missing[ci].Start
			for c := 0; c < nchan; c++ {
				if c == trigger {
					continue
				}
				mat[c][j] = rep[c][k]
			}
		}

		cur++
	}
	if rep != nil {
		ci++
	}
	skipped += len(missing) - ci

	row := mat[counter]
	for j := range row {
		row[j] = math.Mod(row[j], poly5.CounterWrap)
	}

	if skipped > 0 {
		if opts.Strict {
			return nil, xerrors.Errorf("repair: %d of %d missing ranges never matched the counter walk", skipped, len(missing))
		}
		if opts.Msg != nil {
			opts.Msg.Printf("skipped %d of %d missing ranges (no counter match)", skipped, len(missing))
		}
	}

	return out, nil
}
