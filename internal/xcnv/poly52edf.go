// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"io"
	"log"
	"strings"
	"time"

	"github.com/OpenPSG/edf"
	"golang.org/x/xerrors"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

// Poly52EDF writes ds to w as an EDF recording: one EDF signal per
// Poly5 channel, data records of one second. The trailing partial
// second, if any, is not written (EDF records are fixed width).
func Poly52EDF(w io.WriteSeeker, ds *poly5.Dataset, msg *log.Logger) error {
	if len(ds.Channels) == 0 {
		return poly5.ErrNoChannels
	}
	rate := ds.SampleRate
	if rate <= 0 {
		return xerrors.Errorf("xcnv: invalid sample rate %d", rate)
	}

	var (
		mat     = ds.Samples()
		signals = make([]edf.Signal, len(ds.Channels))
	)
	for i, ch := range ds.Channels {
		pmin, pmax := extrema(mat[i])
		if pmin == pmax {
			pmax = pmin + 1
		}
		signals[i] = edf.Signal{
			Label:             ascii(ch.Name),
			PhysicalDimension: ascii(ch.Unit),
			PhysicalMin:       pmin,
			PhysicalMax:       pmax,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  rate,
		}
	}

	ew, err := edf.Create(w, edf.Header{
		Version:            edf.Version0,
		PatientID:          "X",
		RecordingID:        ds.Name,
		StartTime:          ds.Start,
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		return xerrors.Errorf("xcnv: could not create EDF writer: %w", err)
	}

	records := ds.NumSamples() / rate
	for rec := 0; rec < records; rec++ {
		if msg != nil && rec%60 == 0 {
			msg.Printf("writing EDF record %d/%d...", rec, records)
		}
		chunk := make([][]float64, len(mat))
		for c := range mat {
			chunk[c] = mat[c][rec*rate : (rec+1)*rate]
		}
		if err := ew.Write(chunk); err != nil {
			return xerrors.Errorf("xcnv: could not write EDF record %d: %w", rec, err)
		}
	}

	if dropped := ds.NumSamples() - records*rate; dropped > 0 && msg != nil {
		msg.Printf("dropped %d trailing samples (short of one EDF record)", dropped)
	}

	if err := ew.Close(); err != nil {
		return xerrors.Errorf("xcnv: could not finalize EDF file: %w", err)
	}
	return nil
}

// ascii transliterates a Poly5 header string for the EDF header, whose
// fields are fixed-width ASCII: "µ" becomes "u", any other non-ASCII
// rune becomes "?".
func ascii(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == 'µ' || r == 'μ':
			b.WriteByte('u')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extrema(row []float64) (min, max float64) {
	if len(row) == 0 {
		return 0, 0
	}
	min, max = row[0], row[0]
	for _, v := range row[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
