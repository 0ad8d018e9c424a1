// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"time"
)

// Dataset is an in-memory multi-channel recording: a channel-major
// sample matrix plus the metadata needed to persist it.
//
// The backing matrix grows in large amortized steps during streaming
// acquisition and may be wider than the recording; NumSamples is the
// authoritative width. Call Trim before handing the raw matrix to a
// consumer that trusts its width.
type Dataset struct {
	Name       string
	SampleRate int
	Channels   []Channel
	Start      time.Time

	data [][]float64 // channel-major backing store
	n    int         // valid sample columns
}

// NewDataset returns an empty dataset for the given channel set,
// creation stamped now.
func NewDataset(name string, rate int, channels []Channel) *Dataset {
	ds := &Dataset{
		Name:       name,
		SampleRate: rate,
		Channels:   channels,
		Start:      time.Now(),
		data:       make([][]float64, len(channels)),
	}
	return ds
}

// NumSamples returns the number of valid sample columns.
func (ds *Dataset) NumSamples() int { return ds.n }

// Append concatenates the channel-major matrix cols onto the dataset.
// The matrix must have exactly one row per channel.
func (ds *Dataset) Append(cols [][]float64) error {
	if len(cols) != len(ds.Channels) {
		return &ChannelMismatchError{Want: len(ds.Channels), Got: len(cols)}
	}
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil
	}
	k := len(cols[0])
	for _, row := range cols {
		if len(row) != k {
			return ErrRagged
		}
	}

	ds.grow(k)
	for c := range ds.data {
		copy(ds.data[c][ds.n:ds.n+k], cols[c])
	}
	ds.n += k
	return nil
}

// grow widens the backing matrix to fit k more columns, allocating in
// steps of 10 seconds of data to amortize long streaming sessions.
func (ds *Dataset) grow(k int) {
	want := ds.n + k
	if len(ds.data) > 0 && len(ds.data[0]) >= want {
		return
	}
	step := 10 * ds.SampleRate
	if step < k {
		step = k
	}
	for c := range ds.data {
		row := make([]float64, len(ds.data[c])+step)
		copy(row, ds.data[c][:ds.n])
		ds.data[c] = row
	}
}

// Trim shrinks the backing matrix to exactly NumSamples columns.
func (ds *Dataset) Trim() {
	for c := range ds.data {
		if len(ds.data[c]) == ds.n {
			continue
		}
		row := make([]float64, ds.n)
		copy(row, ds.data[c][:ds.n])
		ds.data[c] = row
	}
}

// Samples returns the valid region of the sample matrix, one row per
// channel. The rows alias the dataset's backing store.
func (ds *Dataset) Samples() [][]float64 {
	out := make([][]float64, len(ds.data))
	for c := range ds.data {
		out[c] = ds.data[c][:ds.n]
	}
	return out
}

// SetSamples replaces the sample matrix. The matrix must have exactly
// one row per channel and rows of equal width; it is adopted, not
// copied.
func (ds *Dataset) SetSamples(m [][]float64) error {
	if len(m) != len(ds.Channels) {
		return &ChannelMismatchError{Want: len(ds.Channels), Got: len(m)}
	}
	n := 0
	if len(m) > 0 {
		n = len(m[0])
	}
	for _, row := range m {
		if len(row) != n {
			return ErrRagged
		}
	}
	ds.data = m
	ds.n = n
	return nil
}

// Clone returns a deep copy of the dataset, trimmed to its valid
// width.
func (ds *Dataset) Clone() *Dataset {
	out := &Dataset{
		Name:       ds.Name,
		SampleRate: ds.SampleRate,
		Channels:   append([]Channel(nil), ds.Channels...),
		Start:      ds.Start,
		data:       make([][]float64, len(ds.data)),
		n:          ds.n,
	}
	for c := range ds.data {
		row := make([]float64, ds.n)
		copy(row, ds.data[c][:ds.n])
		out.data[c] = row
	}
	return out
}
