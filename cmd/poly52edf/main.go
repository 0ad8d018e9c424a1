// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command poly52edf converts a Poly5 recording to an EDF one.
package main // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/cmd/poly52edf"

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/internal/xcnv"
	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

var (
	msg = log.New(os.Stdout, "poly52edf: ", 0)
)

func main() {
	var (
		oname = flag.String("o", "out.edf", "path to output EDF file")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: poly52edf [OPTIONS] file.poly5

ex:
 $> poly52edf -o out.edf ./input.poly5

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		msg.Fatalf("missing input Poly5 file")
	}

	if *oname == "" {
		flag.Usage()
		msg.Fatalf("invalid output EDF file name")
	}

	err := process(*oname, flag.Arg(0))
	if err != nil {
		msg.Fatalf("could not convert Poly5 file: %+v", err)
	}
}

func process(oname, fname string) error {
	r, err := poly5.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open Poly5 file: %w", err)
	}
	defer r.Close()
	r.Msg = msg

	ds, err := r.ReadBulk()
	if err != nil {
		return fmt.Errorf("could not read Poly5 file: %w", err)
	}

	f, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output EDF file: %w", err)
	}
	defer f.Close()

	err = xcnv.Poly52EDF(f, ds, msg)
	if err != nil {
		return fmt.Errorf("could not convert Poly5 to EDF: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output EDF file: %w", err)
	}

	return nil
}
