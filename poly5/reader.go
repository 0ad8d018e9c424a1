// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"io"
	"log"
	"os"

	"golang.org/x/xerrors"
)

// Reader is a read-mode file session. It decodes the header and channel
// descriptors on open and then serves either one-shot bulk reads or a
// cyclic block-by-block read for playback-style consumption: the block
// sequence is logically infinite, wrapping from the last block back to
// the first.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	f    *os.File
	path string

	hdr      Header
	channels []Channel

	dataOff int64  // file offset of the first data block
	cur     uint32 // ordinal of the next block to read
	closed  bool

	// Msg receives bulk-read progress. Nil disables it.
	Msg *log.Logger
}

// Open opens the Poly5 file at path for reading and decodes its header
// and channel descriptors.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
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

	off, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		_ = f.Close()
		return nil, xerrors.Errorf("poly5: could not locate data of %q: %w", path, err)
	}

	return &Reader{
		f:        f,
		path:     path,
		hdr:      hdr,
		channels: channels,
		dataOff:  off,
	}, nil
}

// Header returns the decoded file header.
func (r *Reader) Header() Header { return r.hdr }

// Channels returns the decoded logical channels.
func (r *Reader) Channels() []Channel { return r.channels }

// ReadBulk decodes every data block into one dataset exactly
// NumSamples wide, discarding the zero padding of a short trailing
// block. The cursor is left rewound to the first block.
func (r *Reader) ReadBulk() (*Dataset, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if err := r.Reset(); err != nil {
		return nil, err
	}

	var (
		nchan = r.hdr.NumChannels()
		spb   = int(r.hdr.SamplesPerBlock)
		total = int(r.hdr.NumSamples)
		dec   = NewDecoder(r.f)
	)

	data := make([][]float64, nchan)
	for c := range data {
		data[c] = make([]float64, 0, int(r.hdr.NumBlocks)*spb)
	}
	for i := uint32(0); i < r.hdr.NumBlocks; i++ {
		if r.Msg != nil && i > 0 && i%100 == 0 {
			r.Msg.Printf("read block %d/%d...", i, r.hdr.NumBlocks)
		}
		block, err := dec.DecodeBlock(nchan, spb)
		if err != nil {
			return nil, xerrors.Errorf("poly5: could not read block %d of %q: %w", i, r.path, err)
		}
		if block == nil {
			break
		}
		for c := range data {
			data[c] = append(data[c], block[c]...)
		}
	}
	for c := range data {
		if len(data[c]) > total {
			data[c] = data[c][:total]
		}
	}

	ds := NewDataset(r.hdr.Name, int(r.hdr.SampleRate), r.channels)
	ds.Start = r.hdr.Start
	if err := ds.SetSamples(data); err != nil {
		return nil, err
	}
	ds.Trim()

	return ds, r.Reset()
}

// ReadNextBlocks reads the next n blocks' worth of samples from the
// cursor and returns them as one channel-major matrix. When the cursor
// reaches the last block it wraps back to the first, so the sequence
// never exhausts.
func (r *Reader) ReadNextBlocks(n int) ([][]float64, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.hdr.NumBlocks == 0 {
		return nil, xerrors.Errorf("poly5: %q holds no data blocks", r.path)
	}

	var (
		nchan = r.hdr.NumChannels()
		spb   = int(r.hdr.SamplesPerBlock)
	)
	out := make([][]float64, nchan)
	for c := range out {
		out[c] = make([]float64, 0, n*spb)
	}

	for i := 0; i < n; i++ {
		if r.cur >= r.hdr.NumBlocks {
			if err := r.Reset(); err != nil {
				return nil, err
			}
		}
		block, err := NewDecoder(r.f).DecodeBlock(nchan, spb)
		if err != nil {
			return nil, xerrors.Errorf("poly5: could not read block %d of %q: %w", r.cur, r.path, err)
		}
		if block == nil {
			// legacy no-data marker: treat as end of file and wrap.
			if r.cur == 0 {
				return nil, xerrors.Errorf("poly5: %q opens with the no-data marker", r.path)
			}
			if err := r.Reset(); err != nil {
				return nil, err
			}
			i--
			continue
		}
		for c := range out {
			out[c] = append(out[c], block[c]...)
		}
		r.cur++
	}
	return out, nil
}

// Reset rewinds the cursor to the first data block without closing the
// file.
func (r *Reader) Reset() error {
	if r.closed {
		return ErrClosed
	}
	if _, err := r.f.Seek(r.dataOff, io.SeekStart); err != nil {
		return xerrors.Errorf("poly5: could not rewind %q: %w", r.path, err)
	}
	r.cur = 0
	return nil
}

// Close releases the file handle. Close is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.f.Close(); err != nil {
		return xerrors.Errorf("poly5: could not close %q: %w", r.path, err)
	}
	return nil
}

// ReadFile reads the whole Poly5 file at path into a dataset.
func ReadFile(path string) (*Dataset, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadBulk()
}
