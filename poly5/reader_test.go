// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"path/filepath"
	"reflect"
	"testing"
)

func writeTestFile(t *testing.T, fname string, nblocks int) int {
	t.Helper()

	w, err := Create(fname, "cyc", 4000, testChannels())
	if err != nil {
		t.Fatalf("could not create writer: %+v", err)
	}
	spb := int(w.Header().SamplesPerBlock)
	if err := w.Append(matrix(0, nblocks*spb)); err != nil {
		t.Fatalf("could not append samples: %+v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("could not close writer: %+v", err)
	}
	return spb
}

func TestCyclicRead(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "cyc.poly5")
	const nblocks = 3
	writeTestFile(t, fname, nblocks)

	r, err := Open(fname)
	if err != nil {
		t.Fatalf("could not open file: %+v", err)
	}
	defer r.Close()

	// one full pass, in block-sized bites.
	pass := func() [][]float64 {
		if err := r.Reset(); err != nil {
			t.Fatalf("could not reset: %+v", err)
		}
		out, err := r.ReadNextBlocks(nblocks)
		if err != nil {
			t.Fatalf("could not read blocks: %+v", err)
		}
		return out
	}
	first := pass()
	second := pass()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two passes from Reset disagree")
	}

	// the wrap boundary: reading past the last block reproduces the
	// restarted sequence.
	if err := r.Reset(); err != nil {
		t.Fatalf("could not reset: %+v", err)
	}
	wrapped, err := r.ReadNextBlocks(2 * nblocks)
	if err != nil {
		t.Fatalf("could not read across the wrap: %+v", err)
	}
	for c := range wrapped {
		n := len(first[c])
		if !reflect.DeepEqual(wrapped[c][:n], first[c]) {
			t.Fatalf("invalid first lap on channel %d", c)
		}
		if !reflect.DeepEqual(wrapped[c][n:], first[c]) {
			t.Fatalf("invalid wrapped lap on channel %d", c)
		}
	}
}

func TestCyclicReadUnevenBites(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "bites.poly5")
	const nblocks = 3
	writeTestFile(t, fname, nblocks)

	r, err := Open(fname)
	if err != nil {
		t.Fatalf("could not open file: %+v", err)
	}
	defer r.Close()

	if err := r.Reset(); err != nil {
		t.Fatalf("could not reset: %+v", err)
	}
	whole, err := r.ReadNextBlocks(2 * nblocks)
	if err != nil {
		t.Fatalf("could not read blocks: %+v", err)
	}

	if err := r.Reset(); err != nil {
		t.Fatalf("could not reset: %+v", err)
	}
	var bites [][]float64
	for i := 0; i < 2*nblocks; i += 2 {
		m, err := r.ReadNextBlocks(2)
		if err != nil {
			t.Fatalf("could not read bite at %d: %+v", i, err)
		}
		if bites == nil {
			bites = m
			continue
		}
		for c := range bites {
			bites[c] = append(bites[c], m[c]...)
		}
	}
	if !reflect.DeepEqual(whole, bites) {
		t.Fatalf("bite-sized reads disagree with one big read")
	}
}

func TestReadBulkDiscardsPadding(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "pad.poly5")

	w, err := Create(fname, "pad", 4000, testChannels())
	if err != nil {
		t.Fatalf("could not create writer: %+v", err)
	}
	spb := int(w.Header().SamplesPerBlock)
	n := spb + 17 // one full block plus a short trailing one
	if err := w.Append(matrix(0, n)); err != nil {
		t.Fatalf("could not append samples: %+v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("could not close writer: %+v", err)
	}

	ds, err := ReadFile(fname)
	if err != nil {
		t.Fatalf("could not read file back: %+v", err)
	}
	if got, want := ds.NumSamples(), n; got != want {
		t.Fatalf("invalid sample count: got=%d, want=%d", got, want)
	}
	for c, row := range ds.Samples() {
		if got, want := len(row), n; got != want {
			t.Fatalf("invalid row width on channel %d: got=%d, want=%d", c, got, want)
		}
	}
}
