// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/xerrors"
)

// Encoder writes Poly5 structures to an output stream.
// Encoder performs no seeking: callers sequence header, descriptors and
// blocks in file order.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 8),
	}
}

// EncodeHeader writes the fixed file header.
func (enc *Encoder) EncodeHeader(hdr *Header) error {
	enc.write([]byte(Magic))
	enc.writeU16(Version)
	enc.writeStr(hdr.Name, maxNameLen)
	enc.writeU16(hdr.SampleRate)
	enc.writeU16(hdr.StorageRate)
	enc.writeU8(0)
	enc.writeU16(hdr.NumRecords)
	enc.writeU32(hdr.NumSamples)
	enc.pad(4)
	enc.writeU16(uint16(hdr.Start.Year()))
	enc.writeU16(uint16(hdr.Start.Month()))
	enc.writeU16(uint16(hdr.Start.Day()))
	enc.writeU16(1) // day of week, fixed
	enc.writeU16(uint16(hdr.Start.Hour()))
	enc.writeU16(uint16(hdr.Start.Minute()))
	enc.writeU16(uint16(hdr.Start.Second()))
	enc.writeU32(hdr.NumBlocks)
	enc.writeU16(hdr.SamplesPerBlock)
	enc.writeU16(hdr.BlockSize)
	enc.writeU16(0) // compression flag
	enc.pad(64)

	if enc.err != nil {
		return xerrors.Errorf("poly5: could not encode header: %w", enc.err)
	}
	return nil
}

// EncodeChannels writes the descriptor records for the given logical
// channels, one (Lo)/(Hi) pair per channel.
func (enc *Encoder) EncodeChannels(channels []Channel) error {
	for i, ch := range channels {
		enc.encodeDescr(loPrefix, &ch, uint16(2*i))
		enc.encodeDescr(hiPrefix, &ch, uint16(2*i+1))
		if enc.err != nil {
			return xerrors.Errorf("poly5: could not encode descriptors for channel %q: %w",
				ch.Name, enc.err,
			)
		}
	}
	return nil
}

func (enc *Encoder) encodeDescr(prefix string, ch *Channel, ordinal uint16) {
	enc.writeStr(prefix+ch.Name, maxChanNameLen)
	enc.pad(4)
	enc.writeStr(ch.Unit, maxUnitLen)
	enc.writeF32(float32(ch.UnitLow))
	enc.writeF32(float32(ch.UnitHigh))
	enc.writeF32(float32(ch.ADCLow))
	enc.writeF32(float32(ch.ADCHigh))
	enc.writeU16(ordinal)
	enc.pad(62)
}

// EncodeBlock writes one data block holding the first spb sample
// columns of the channel-major matrix samples. Rows shorter than spb
// are zero padded to the full block width.
func (enc *Encoder) EncodeBlock(samples [][]float64, ordinal uint32, spb int) error {
	enc.writeU32(ordinal * uint32(spb))
	enc.pad(4)
	enc.pad(14) // time fields, unused
	enc.pad(64)

	for _, row := range samples {
		for s := 0; s < spb; s++ {
			var v float64
			if s < len(row) {
				v = row[s]
			}
			enc.writeF32(float32(v))
		}
	}

	if enc.err != nil {
		return xerrors.Errorf("poly5: could not encode block %d: %w", ordinal, enc.err)
	}
	return nil
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
}

func (enc *Encoder) writeU8(v uint8) {
	const n = 1
	enc.buf[0] = v
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU16(v uint16) {
	const n = 2
	binary.LittleEndian.PutUint16(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU32(v uint32) {
	const n = 4
	binary.LittleEndian.PutUint32(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeF32(v float32) {
	const n = 4
	binary.LittleEndian.PutUint32(enc.buf[:n], math.Float32bits(v))
	enc.write(enc.buf[:n])
}

// writeStr writes a 1-byte length prefix followed by the text, right
// truncated to width and zero filled past its end.
func (enc *Encoder) writeStr(s string, width int) {
	b := []byte(s)
	if len(b) > width {
		b = b[:width]
	}
	enc.writeU8(uint8(len(b)))
	enc.write(b)
	enc.pad(width - len(b))
}

var zeros [64]byte

func (enc *Encoder) pad(n int) {
	for n > 0 {
		k := n
		if k > len(zeros) {
			k = len(zeros)
		}
		enc.write(zeros[:k])
		n -= k
	}
}
