// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// poly5-dump decodes and displays Poly5 recordings.
//
// Usage: poly5-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> poly5-dump ./testdata/T1.poly5
//  === T1 ===
//  sample rate:      4000 Hz
//  channels:            3
//  samples:         10000
//  blocks:              4 (2730 samples/block)
//  start:        2023-05-11 14:03:27
//    ch   0 UNI1     [µV] unit=[0,1000] adc=[0,65535]
//    ch   1 STATUS   [] unit=[0,0] adc=[0,0]
//    ch   2 COUNTER  [] unit=[0,0] adc=[0,0]
package main // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/cmd/poly5-dump"

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

func main() {
	log.SetPrefix("poly5-dump: ")
	log.SetFlags(0)

	blocks := flag.Bool("blocks", false, "display per-block sample statistics")

	flag.Usage = func() {
		fmt.Printf(`poly5-dump decodes and displays Poly5 recordings.

Usage: poly5-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> poly5-dump ./testdata/T1.poly5
 === T1 ===
 sample rate:      4000 Hz
 channels:            3
 samples:         10000
 blocks:              4 (2730 samples/block)

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input Poly5 file")
	}

	for _, fname := range flag.Args() {
		err := process(os.Stdout, fname, *blocks)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, blocks bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := poly5.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer r.Close()

	hdr := r.Header()
	fmt.Fprintf(wbuf, "=== %s ===\n", hdr.Name)
	fmt.Fprintf(wbuf, "sample rate: % 9d Hz\n", hdr.SampleRate)
	fmt.Fprintf(wbuf, "channels:    % 9d\n", hdr.NumChannels())
	fmt.Fprintf(wbuf, "samples:     % 9d\n", hdr.NumSamples)
	fmt.Fprintf(wbuf, "blocks:      % 9d (%d samples/block)\n", hdr.NumBlocks, hdr.SamplesPerBlock)
	fmt.Fprintf(wbuf, "start:       %s\n", hdr.Start.Format("2006-01-02 15:04:05"))

	for _, ch := range r.Channels() {
		fmt.Fprintf(wbuf, "  ch % 3d %-40s [%s] unit=[%d,%d] adc=[%d,%d]\n",
			ch.Index, ch.Name, ch.Unit,
			ch.UnitLow, ch.UnitHigh, ch.ADCLow, ch.ADCHigh,
		)
	}

	if !blocks {
		return nil
	}

	spb := int(hdr.SamplesPerBlock)
	for i := uint32(0); i < hdr.NumBlocks; i++ {
		mat, err := r.ReadNextBlocks(1)
		if err != nil {
			return fmt.Errorf("could not read block %d: %w", i, err)
		}
		min, max := mat[0][0], mat[0][0]
		for _, row := range mat {
			for _, v := range row {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
		}
		fmt.Fprintf(wbuf, "  block % 4d index=% 9d min=%g max=%g\n",
			i, i*uint32(spb), min, max,
		)
	}

	return nil
}
