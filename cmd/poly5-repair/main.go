// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// poly5-repair substitutes backup data into the gap-marked samples of
// one or more Poly5 recordings.
//
// The gap list is a JSON array of {"start": C, "length": N} objects
// keyed by counter value, as reported by the acquisition software. The
// repair data is a Poly5 file read back from the device's backup
// memory card. Trigger channels are preserved from the original
// recording: backup fetches do not carry trigger state.
//
// Usage: poly5-repair [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> poly5-repair -gaps gaps.json -src backup.poly5 run1.poly5 run2.poly5
//  poly5-repair: run1.poly5 -> run1-repaired.poly5
//  poly5-repair: run2.poly5 -> run2-repaired.poly5
package main // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/cmd/poly5-repair"

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/repair"
)

var (
	msg = log.New(os.Stdout, "poly5-repair: ", 0)
)

func main() {
	var (
		gname   = flag.String("gaps", "", "path to the JSON gap list")
		sname   = flag.String("src", "", "path to the Poly5 repair-data file")
		suffix  = flag.String("suffix", "-repaired", "suffix appended to output file names")
		trigger = flag.String("trigger", repair.DefaultTriggerName, "name of the trigger channel to preserve")
		counter = flag.Int("counter", -1, "index of the counter channel (-1: last)")
		reset   = flag.Int("reset", 0, "offset added to the counter walk on a hardware counter reset")
		strict  = flag.Bool("strict", false, "fail when a missing range never matches the counter walk")
	)

	flag.Usage = func() {
		fmt.Printf(`poly5-repair substitutes backup data into the gap-marked samples
of one or more Poly5 recordings.

Usage: poly5-repair [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

ex:
 $> poly5-repair -gaps gaps.json -src backup.poly5 run1.poly5 run2.poly5

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		msg.Fatalf("missing path to input Poly5 file")
	}
	if *gname == "" {
		flag.Usage()
		msg.Fatalf("missing path to JSON gap list")
	}
	if *sname == "" {
		flag.Usage()
		msg.Fatalf("missing path to Poly5 repair-data file")
	}

	missing, err := readGaps(*gname)
	if err != nil {
		msg.Fatalf("could not read gap list: %+v", err)
	}

	src, err := poly5.ReadFile(*sname)
	if err != nil {
		msg.Fatalf("could not read repair data: %+v", err)
	}

	opts := repair.Options{
		CounterIndex: *counter,
		TriggerName:  *trigger,
		ResetOffset:  *reset,
		Strict:       *strict,
		Msg:          msg,
	}

	var grp errgroup.Group
	for _, fname := range flag.Args() {
		fname := fname
		grp.Go(func() error {
			return process(fname, outName(fname, *suffix), missing, src, opts)
		})
	}
	if err := grp.Wait(); err != nil {
		msg.Fatalf("could not repair: %+v", err)
	}
}

func process(fname, oname string, missing []repair.MissingRange, src *poly5.Dataset, opts repair.Options) error {
	ds, err := poly5.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("could not read %q: %w", fname, err)
	}

	fixed, err := repair.Run(ds, missing, repair.NewDatasetSource(src, opts.CounterIndex), opts)
	if err != nil {
		return fmt.Errorf("could not repair %q: %w", fname, err)
	}

	if err := poly5.WriteFile(oname, fixed); err != nil {
		return fmt.Errorf("could not write %q: %w", oname, err)
	}

	msg.Printf("%s -> %s", fname, oname)
	return nil
}

func readGaps(fname string) ([]repair.MissingRange, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	var raw []struct {
		Start  int `json:"start"`
		Length int `json:"length"`
	}
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("could not decode gap list %q: %w", fname, err)
	}

	missing := make([]repair.MissingRange, len(raw))
	for i, g := range raw {
		missing[i] = repair.MissingRange{Start: g.Start, Length: g.Length}
	}
	return missing, nil
}

func outName(fname, suffix string) string {
	const ext = ".poly5"
	if strings.HasSuffix(fname, ext) {
		return strings.TrimSuffix(fname, ext) + suffix + ext
	}
	return fname + suffix
}
