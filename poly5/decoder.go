// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Decoder reads (and validates) Poly5 structures from an underlying
// data source. The decoder never repairs malformed bytes: any mismatch
// against the fixed layout is fatal to the read that hit it.
type Decoder struct {
	r   io.Reader
	buf []byte
	err error
}

// NewDecoder creates a decoder that reads and validates data from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, maxNameLen),
	}
}

// DecodeHeader reads the fixed file header into hdr.
func (dec *Decoder) DecodeHeader(hdr *Header) error {
	magic := make([]byte, len(Magic))
	dec.read(magic)
	if dec.err != nil {
		return &FormatError{Field: "magic signature", Err: dec.err}
	}
	if string(magic) != Magic {
		return &FormatError{Field: "magic signature", Want: Magic, Got: string(magic)}
	}

	version := dec.readU16()
	if dec.err != nil {
		return &FormatError{Field: "version", Err: dec.err}
	}
	if version != Version {
		return &FormatError{Field: "version", Want: "203", Got: strconv.Itoa(int(version))}
	}

	hdr.Name = dec.readStr(maxNameLen)
	hdr.SampleRate = dec.readU16()
	hdr.StorageRate = dec.readU16()
	dec.skip(1)
	hdr.NumRecords = dec.readU16()
	hdr.NumSamples = dec.readU32()
	dec.skip(4)
	var (
		y   = int(dec.readU16())
		mo  = int(dec.readU16())
		d   = int(dec.readU16())
		_   = dec.readU16() // day of week
		h   = int(dec.readU16())
		min = int(dec.readU16())
		sec = int(dec.readU16())
	)
	hdr.NumBlocks = dec.readU32()
	hdr.SamplesPerBlock = dec.readU16()
	hdr.BlockSize = dec.readU16()
	dec.skip(2) // compression flag
	dec.skip(64)

	if dec.err != nil {
		return &FormatError{Field: "header", Err: dec.err}
	}

	hdr.Start = date(y, mo, d, h, min, sec)
	return nil
}

// DecodeChannels reads n descriptor records and materializes the
// logical channels they describe. Each logical channel arrives as a
// (Lo)/(Hi) record pair; only (Lo) records become channels, and a
// record tagged with neither prefix marks a sub-16-bit file this
// package does not support.
func (dec *Decoder) DecodeChannels(n int) ([]Channel, error) {
	channels := make([]Channel, 0, n/2)
	for i := 0; i < n; i++ {
		name := dec.readStr(maxChanNameLen)
		dec.skip(4)
		unit := dec.readStr(maxUnitLen)
		var (
			unitLo = dec.readF32()
			unitHi = dec.readF32()
			adcLo  = dec.readF32()
			adcHi  = dec.readF32()
		)
		dec.readU16() // stored ordinal, superseded by position
		dec.skip(62)

		if dec.err != nil {
			return nil, &FormatError{Field: "channel descriptor", Err: dec.err}
		}

		switch {
		case strings.HasPrefix(name, loPrefix):
			channels = append(channels, Channel{
				Name:     name[len(loPrefix):],
				Unit:     unit,
				UnitLow:  int32(unitLo),
				UnitHigh: int32(unitHi),
				ADCLow:   int32(adcLo),
				ADCHigh:  int32(adcHi),
				Index:    uint16(len(channels)),
			})
		case strings.HasPrefix(name, hiPrefix):
			// legacy 32-bit emulation record, carries nothing.
		default:
			return nil, &FormatError{
				Field: "channel descriptor name (unsupported sub-16-bit-incompatible format)",
				Want:  loPrefix + "... or " + hiPrefix + "...",
				Got:   name,
			}
		}
	}
	return channels, nil
}

// DecodeBlock reads one data block and returns its samples as a
// channel-major nchan x spb matrix. A block whose leading index word
// holds the legacy no-data marker yields a nil matrix and no error.
func (dec *Decoder) DecodeBlock(nchan, spb int) ([][]float64, error) {
	idx := dec.readU32()
	if dec.err != nil {
		return nil, &FormatError{Field: "block header", Err: dec.err}
	}
	if idx == noDataMarker {
		return nil, nil
	}
	dec.skip(4)
	dec.skip(14) // time fields, unused
	dec.skip(64)

	samples := make([][]float64, nchan)
	for c := range samples {
		row := make([]float64, spb)
		for s := range row {
			row[s] = float64(dec.readF32())
		}
		samples[c] = row
	}
	if dec.err != nil {
		return nil, &FormatError{Field: "block payload", Err: dec.err}
	}
	return samples, nil
}

func (dec *Decoder) read(p []byte) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, p)
}

func (dec *Decoder) load(n int) {
	if dec.err != nil {
		return
	}
	if cap(dec.buf) < n {
		dec.buf = make([]byte, n)
	}
	dec.buf = dec.buf[:n]
	_, dec.err = io.ReadFull(dec.r, dec.buf)
}

func (dec *Decoder) readU8() uint8 {
	dec.load(1)
	if dec.err != nil {
		return 0
	}
	return dec.buf[0]
}

func (dec *Decoder) readU16() uint16 {
	const n = 2
	dec.load(n)
	if dec.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(dec.buf[:n])
}

func (dec *Decoder) readU32() uint32 {
	const n = 4
	dec.load(n)
	if dec.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(dec.buf[:n])
}

func (dec *Decoder) readF32() float32 {
	return math.Float32frombits(dec.readU32())
}

// readStr reads a 1-byte length prefix plus a width-byte text field and
// returns the prefixed length's worth of it.
func (dec *Decoder) readStr(width int) string {
	n := int(dec.readU8())
	dec.load(width)
	if dec.err != nil {
		return ""
	}
	if n > width {
		n = width
	}
	return string(dec.buf[:n])
}

func (dec *Decoder) skip(n int) {
	dec.load(n)
}

func date(y, mo, d, h, min, sec int) time.Time {
	return time.Date(y, time.Month(mo), d, h, min, sec, 0, time.UTC)
}
