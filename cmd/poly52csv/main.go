// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command poly52csv exports a Poly5 recording as a CSV table, one row
// per sample and one column per channel.
package main // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/cmd/poly52csv"

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/internal/xcnv"
	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

var (
	msg = log.New(os.Stdout, "poly52csv: ", 0)
)

func main() {
	var (
		oname = flag.String("o", "out.csv", "path to output CSV file")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: poly52csv [OPTIONS] file.poly5

ex:
 $> poly52csv -o out.csv ./input.poly5

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		msg.Fatalf("missing input Poly5 file")
	}

	err := process(*oname, flag.Arg(0))
	if err != nil {
		msg.Fatalf("could not convert Poly5 file: %+v", err)
	}
}

func process(oname, fname string) error {
	ds, err := poly5.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("could not read Poly5 file: %w", err)
	}

	err = xcnv.Poly52CSV(oname, ds, msg)
	if err != nil {
		return fmt.Errorf("could not convert Poly5 to CSV: %w", err)
	}

	return nil
}
