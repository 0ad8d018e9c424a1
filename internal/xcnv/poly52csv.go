// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"
	"log"
	"strings"

	"go-hep.org/x/hep/csvutil"
	"golang.org/x/xerrors"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

// Poly52CSV writes ds to the CSV file fname, one row per sample and one
// column per channel, preceded by a comment header naming the channels
// and their units.
func Poly52CSV(fname string, ds *poly5.Dataset, msg *log.Logger) error {
	tbl, err := csvutil.Create(fname)
	if err != nil {
		return xerrors.Errorf("xcnv: could not create CSV table %q: %w", fname, err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ';'

	cols := make([]string, len(ds.Channels))
	for i, ch := range ds.Channels {
		cols[i] = ch.Name
		if ch.Unit != "" {
			cols[i] += " [" + ch.Unit + "]"
		}
	}
	hdr := fmt.Sprintf("## %s @ %d Hz: %s\n", ds.Name, ds.SampleRate, strings.Join(cols, "; "))
	if err := tbl.WriteHeader(hdr); err != nil {
		return xerrors.Errorf("xcnv: could not write CSV header: %w", err)
	}

	var (
		mat = ds.Samples()
		n   = ds.NumSamples()
		row = make([]interface{}, len(mat))
	)
	for s := 0; s < n; s++ {
		if msg != nil && s%100000 == 0 && s > 0 {
			msg.Printf("writing CSV row %d/%d...", s, n)
		}
		for c := range mat {
			row[c] = mat[c][s]
		}
		if err := tbl.WriteRow(row...); err != nil {
			return xerrors.Errorf("xcnv: could not write CSV row %d: %w", s, err)
		}
	}

	if err := tbl.Close(); err != nil {
		return xerrors.Errorf("xcnv: could not close CSV table %q: %w", fname, err)
	}
	return nil
}
