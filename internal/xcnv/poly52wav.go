// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"io"
	"math"

	"github.com/youpy/go-wav"
	"golang.org/x/xerrors"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

// Poly52WAV writes one or two channels of ds to w as 16-bit PCM at the
// recording's sample rate, each channel normalized to full scale.
// The WAV carrier holds at most two channels.
func Poly52WAV(w io.Writer, ds *poly5.Dataset, channels []int) error {
	switch len(channels) {
	case 1, 2:
	default:
		return xerrors.Errorf("xcnv: WAV export needs 1 or 2 channels, got %d", len(channels))
	}
	for _, c := range channels {
		if c < 0 || c >= len(ds.Channels) {
			return xerrors.Errorf("xcnv: channel index %d out of range (0..%d)", c, len(ds.Channels)-1)
		}
	}

	var (
		mat   = ds.Samples()
		n     = ds.NumSamples()
		scale = make([]float64, len(channels))
	)
	for i, c := range channels {
		peak := 0.0
		for _, v := range mat[c] {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
		if peak == 0 {
			peak = 1
		}
		scale[i] = 32767 / peak
	}

	ww := wav.NewWriter(w, uint32(n), uint16(len(channels)), uint32(ds.SampleRate), 16)

	samples := make([]wav.Sample, n)
	for s := 0; s < n; s++ {
		for i, c := range channels {
			samples[s].Values[i] = int(math.Round(mat[c][s] * scale[i]))
		}
	}
	if err := ww.WriteSamples(samples); err != nil {
		return xerrors.Errorf("xcnv: could not write WAV samples: %w", err)
	}
	return nil
}
