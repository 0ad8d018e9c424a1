// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"io"
	"math"
	"os"
	"time"

	"golang.org/x/xerrors"
)

// Writer is a write-mode file session. It owns one open file handle
// between Create (or OpenAppend) and Close, accumulates appended
// samples in a private pending buffer, and flushes one data block to
// disk whenever a full block's worth is pending. After every flush the
// header is rewritten in place so a concurrent reader sees an accurate
// sample count.
//
// A Writer is not safe for concurrent use; callers needing that must
// serialize externally.
type Writer struct {
	f    *os.File
	path string

	hdr      Header
	channels []Channel
	spb      int // samples per block
	counter  int // counter channel index (last channel)

	pending [][]float64 // channel-major, all rows equally wide
	npend   int

	closed bool
}

// Create opens a new Poly5 file at path for writing, truncating any
// existing file, and immediately writes the header and channel
// descriptors.
func Create(path, name string, rate int, channels []Channel) (*Writer, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if len(channels) > BlockCapacity {
		return nil, ErrTooManyChannels
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, xerrors.Errorf("poly5: could not create %q: %w", path, err)
	}

	spb := BlockCapacity / len(channels)
	w := &Writer{
		f:    f,
		path: path,
		hdr: Header{
			Name:            name,
			SampleRate:      uint16(rate),
			StorageRate:     uint16(rate),
			NumRecords:      uint16(2 * len(channels)),
			Start:           time.Now(),
			SamplesPerBlock: uint16(spb),
			BlockSize:       uint16(4 * spb * len(channels)),
		},
		channels: channels,
		spb:      spb,
		counter:  len(channels) - 1,
		pending:  make([][]float64, len(channels)),
	}

	enc := NewEncoder(f)
	if err := enc.EncodeHeader(&w.hdr); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := enc.EncodeChannels(channels); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// OpenAppend opens an existing Poly5 file at path and positions for
// appending blocks after the recorded data. The header and channel
// descriptors are taken from the file.
func OpenAppend(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, xerrors.Errorf("poly5: could not open %q: %w", path, err)
	}

	dec := NewDecoder(f)
	var hdr Header
	if err := dec.DecodeHeader(&hdr); err != nil {
		_ = f.Close()
		return nil, xerrors.Errorf("poly5: could not read header of %q: %w", path, err)
	}
	channels, err := dec.DecodeChannels(int(hdr.NumRecords))
	if err != nil {
		_ = f.Close()
		return nil, xerrors.Errorf("poly5: could not read descriptors of %q: %w", path, err)
	}

	w := &Writer{
		f:        f,
		path:     path,
		hdr:      hdr,
		channels: channels,
		spb:      int(hdr.SamplesPerBlock),
		counter:  len(channels) - 1,
		pending:  make([][]float64, len(channels)),
	}

	// A short trailing block is zero padded to full width on disk.
	// Appending after it would surface that padding as samples, so its
	// valid columns go back into the pending buffer and the block
	// itself is truncated off; the next flush rewrites it.
	if tail := int(hdr.NumSamples) % w.spb; tail > 0 && hdr.NumBlocks > 0 {
		nchan := len(channels)
		off := int64(headerSize) + int64(hdr.NumRecords)*int64(descrSize) +
			int64(hdr.NumBlocks-1)*int64(blockHdrSize+4*w.spb*nchan)
		if _, err := f.Seek(off, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, xerrors.Errorf("poly5: could not seek to last block of %q: %w", path, err)
		}
		block, err := NewDecoder(f).DecodeBlock(nchan, w.spb)
		if err != nil {
			_ = f.Close()
			return nil, xerrors.Errorf("poly5: could not read last block of %q: %w", path, err)
		}
		if block == nil {
			_ = f.Close()
			return nil, xerrors.Errorf("poly5: unexpected no-data marker in last block of %q", path)
		}
		for c := range w.pending {
			w.pending[c] = append(w.pending[c], block[c][:tail]...)
		}
		w.npend = tail
		w.hdr.NumBlocks--
		w.hdr.NumSamples -= uint32(tail)

		if err := f.Truncate(off); err != nil {
			_ = f.Close()
			return nil, xerrors.Errorf("poly5: could not truncate %q: %w", path, err)
		}
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, xerrors.Errorf("poly5: could not seek to end of %q: %w", path, err)
	}
	return w, nil
}

// Header returns a copy of the session's current header.
func (w *Writer) Header() Header { return w.hdr }

// Channels returns the session's channel set.
func (w *Writer) Channels() []Channel { return w.channels }

// Append concatenates the channel-major matrix cols onto the pending
// buffer and synchronously flushes every complete block it now holds.
// The counter channel's values are reduced mod CounterWrap before they
// reach the buffer. A matrix with zero columns is a no-op.
func (w *Writer) Append(cols [][]float64) error {
	if w.closed {
		return ErrClosed
	}
	if len(cols) != len(w.channels) {
		return &ChannelMismatchError{Want: len(w.channels), Got: len(cols)}
	}
	if len(cols[0]) == 0 {
		return nil
	}
	k := len(cols[0])
	for _, row := range cols {
		if len(row) != k {
			return ErrRagged
		}
	}

	for c, row := range cols {
		if c == w.counter {
			wrapped := make([]float64, k)
			for s, v := range row {
				wrapped[s] = math.Mod(v, CounterWrap)
			}
			row = wrapped
		}
		w.pending[c] = append(w.pending[c], row...)
	}
	w.npend += k

	for w.npend >= w.spb {
		if err := w.flush(w.spb); err != nil {
			return err
		}
	}
	return nil
}

// flush writes the first n pending columns as one block, updates the
// sample accounting and rewrites the header in place.
func (w *Writer) flush(n int) error {
	enc := NewEncoder(w.f)
	if err := enc.EncodeBlock(w.pending, w.hdr.NumBlocks, w.spb); err != nil {
		return err
	}

	w.hdr.NumSamples += uint32(n)
	w.hdr.NumBlocks++

	for c := range w.pending {
		w.pending[c] = w.pending[c][:copy(w.pending[c], w.pending[c][n:])]
	}
	w.npend -= n

	return w.rewriteHeader()
}

// rewriteHeader re-encodes the header at offset 0 and restores the
// cursor to the end of the file.
func (w *Writer) rewriteHeader() error {
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return xerrors.Errorf("poly5: could not seek to header of %q: %w", w.path, err)
	}
	if err := NewEncoder(w.f).EncodeHeader(&w.hdr); err != nil {
		return err
	}
	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return xerrors.Errorf("poly5: could not seek to end of %q: %w", w.path, err)
	}
	return nil
}

// Close flushes any short trailing block (zero padded to full block
// width on disk), rewrites the header a last time and releases the file
// handle. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.npend > 0 {
		if err := w.flush(w.npend); err != nil {
			_ = w.f.Close()
			return err
		}
	}
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		return xerrors.Errorf("poly5: could not sync %q: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return xerrors.Errorf("poly5: could not close %q: %w", w.path, err)
	}
	return nil
}

// WriteFile writes a whole dataset to a new Poly5 file at path.
func WriteFile(path string, ds *Dataset) error {
	w, err := Create(path, ds.Name, ds.SampleRate, ds.Channels)
	if err != nil {
		return err
	}
	w.hdr.Start = ds.Start
	if err := w.rewriteHeader(); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Append(ds.Samples()); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
