// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import (
	"golang.org/x/xerrors"

	"github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"
)

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(start, count int) ([][]float64, error)

func (f SourceFunc) FetchRepairBlock(start, count int) ([][]float64, error) {
	return f(start, count)
}

// DatasetSource serves repair blocks out of a dataset, typically one
// read back from the device's backup memory card. Blocks are located by
// the dataset's own counter channel.
type DatasetSource struct {
	ds      *poly5.Dataset
	counter int
	index   map[int]int // counter value -> sample column
}

// NewDatasetSource returns a source backed by ds. A negative
// counterIndex designates the last channel. The counter index is built
// here once, so a constructed source is safe for concurrent fetches.
func NewDatasetSource(ds *poly5.Dataset, counterIndex int) *DatasetSource {
	if counterIndex < 0 || counterIndex >= len(ds.Channels) {
		counterIndex = len(ds.Channels) - 1
	}
	index := make(map[int]int, ds.NumSamples())
	for j, v := range ds.Samples()[counterIndex] {
		index[int(v)] = j
	}
	return &DatasetSource{ds: ds, counter: counterIndex, index: index}
}

// FetchRepairBlock returns the count columns whose counter values run
// from start, as a channel-major matrix.
func (s *DatasetSource) FetchRepairBlock(start, count int) ([][]float64, error) {
	col, ok := s.index[start]
	if !ok {
		return nil, xerrors.Errorf("repair: counter value %d not present in repair data", start)
	}
	if col+count > s.ds.NumSamples() {
		return nil, xerrors.Errorf(
			"repair: repair data ends before counter value %d (want %d samples from column %d)",
			start+count-1, count, col,
		)
	}

	mat := s.ds.Samples()
	out := make([][]float64, len(mat))
	for c := range mat {
		row := make([]float64, count)
		copy(row, mat[c][col:col+count])
		out[c] = row
	}
	return out, nil
}
