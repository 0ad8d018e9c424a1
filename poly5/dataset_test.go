// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"errors"
	"testing"
)

func TestDatasetAppend(t *testing.T) {
	ds := NewDataset("ds", 100, testChannels())

	for i := 0; i < 25; i++ {
		if err := ds.Append(matrix(i*100, 100)); err != nil {
			t.Fatalf("could not append chunk %d: %+v", i, err)
		}
	}
	if got, want := ds.NumSamples(), 2500; got != want {
		t.Fatalf("invalid sample count: got=%d, want=%d", got, want)
	}

	// the backing store over-allocates; the valid view does not.
	mat := ds.Samples()
	for c := range mat {
		if got, want := len(mat[c]), 2500; got != want {
			t.Fatalf("invalid row width on channel %d: got=%d, want=%d", c, got, want)
		}
	}

	want := matrix(0, 2500)
	for c := range mat {
		for s := range mat[c] {
			if mat[c][s] != want[c][s] {
				t.Fatalf("invalid sample (ch=%d, s=%d): got=%v, want=%v", c, s, mat[c][s], want[c][s])
			}
		}
	}
}

func TestDatasetAppendMismatch(t *testing.T) {
	ds := NewDataset("ds", 100, testChannels())

	err := ds.Append([][]float64{{1}})
	var cerr *ChannelMismatchError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a *ChannelMismatchError, got %+v", err)
	}

	if err := ds.Append([][]float64{{1}, {2}, {3, 4}}); !errors.Is(err, ErrRagged) {
		t.Fatalf("expected ErrRagged, got %+v", err)
	}

	if err := ds.Append([][]float64{{}, {}, {}}); err != nil {
		t.Fatalf("zero-column append should be a no-op, got %+v", err)
	}
	if got, want := ds.NumSamples(), 0; got != want {
		t.Fatalf("invalid sample count: got=%d, want=%d", got, want)
	}
}

func TestDatasetTrim(t *testing.T) {
	ds := NewDataset("ds", 1000, testChannels())
	if err := ds.Append(matrix(0, 10)); err != nil {
		t.Fatalf("could not append: %+v", err)
	}
	ds.Trim()
	mat := ds.Samples()
	for c := range mat {
		// after Trim the backing rows are exactly the valid width.
		if got, want := cap(mat[c]), 10; got != want {
			t.Fatalf("invalid backing capacity on channel %d: got=%d, want=%d", c, got, want)
		}
	}
}

func TestDatasetClone(t *testing.T) {
	ds := NewDataset("ds", 100, testChannels())
	if err := ds.Append(matrix(0, 10)); err != nil {
		t.Fatalf("could not append: %+v", err)
	}

	cp := ds.Clone()
	cp.Samples()[0][0] = 4242
	if got := ds.Samples()[0][0]; got == 4242 {
		t.Fatalf("clone aliases its source")
	}
	if got, want := cp.NumSamples(), ds.NumSamples(); got != want {
		t.Fatalf("invalid clone width: got=%d, want=%d", got, want)
	}
}
