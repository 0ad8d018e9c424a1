// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command poly52wav exports one or two channels of a Poly5 recording
// as a 16-bit PCM WAV file, e.g. to audit an EMG channel by ear.
package main // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/cmd/poly52wav"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/internal/xcnv"
	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

var (
	msg = log.New(os.Stdout, "poly52wav: ", 0)
)

func main() {
	var (
		oname = flag.String("o", "out.wav", "path to output WAV file")
		chans = flag.String("ch", "0", "comma-separated channel indices to export (1 or 2)")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: poly52wav [OPTIONS] file.poly5

ex:
 $> poly52wav -o out.wav -ch 0,1 ./input.poly5

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		msg.Fatalf("missing input Poly5 file")
	}

	channels, err := parseChannels(*chans)
	if err != nil {
		msg.Fatalf("invalid -ch flag: %+v", err)
	}

	err = process(*oname, flag.Arg(0), channels)
	if err != nil {
		msg.Fatalf("could not convert Poly5 file: %+v", err)
	}
}

func process(oname, fname string, channels []int) error {
	ds, err := poly5.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("could not read Poly5 file: %w", err)
	}

	f, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output WAV file: %w", err)
	}
	defer f.Close()

	err = xcnv.Poly52WAV(f, ds, channels)
	if err != nil {
		return fmt.Errorf("could not convert Poly5 to WAV: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output WAV file: %w", err)
	}

	return nil
}

func parseChannels(s string) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("could not parse channel index %q: %w", tok, err)
		}
		out = append(out, v)
	}
	return out, nil
}
