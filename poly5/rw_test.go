// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"
)

func TestHeaderCodec(t *testing.T) {
	want := Header{
		Name:            "T1",
		SampleRate:      4000,
		StorageRate:     4000,
		NumRecords:      6,
		NumSamples:      10000,
		Start:           time.Date(2023, 5, 11, 14, 3, 27, 0, time.UTC),
		NumBlocks:       4,
		SamplesPerBlock: 2730,
		BlockSize:       32760,
	}

	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	if err := enc.EncodeHeader(&want); err != nil {
		t.Fatalf("could not encode header: %+v", err)
	}
	if got, want := buf.Len(), headerSize; got != want {
		t.Fatalf("invalid header size: got=%d, want=%d", got, want)
	}

	var got Header
	if err := NewDecoder(buf).DecodeHeader(&got); err != nil {
		t.Fatalf("could not decode header: %+v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid header r/w round-trip:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestChannelsCodec(t *testing.T) {
	src := []Channel{
		{Name: "UNI1", Unit: "µV", UnitLow: -150, UnitHigh: 150, ADCLow: -131072, ADCHigh: 131071, Type: ChanExG},
		{Name: "COUNTER", Type: ChanCounter},
	}

	buf := new(bytes.Buffer)
	if err := NewEncoder(buf).EncodeChannels(src); err != nil {
		t.Fatalf("could not encode channels: %+v", err)
	}
	if got, want := buf.Len(), 2*len(src)*descrSize; got != want {
		t.Fatalf("invalid descriptors size: got=%d, want=%d", got, want)
	}

	got, err := NewDecoder(buf).DecodeChannels(2 * len(src))
	if err != nil {
		t.Fatalf("could not decode channels: %+v", err)
	}

	// the type tag is runtime metadata and does not persist.
	want := []Channel{
		{Name: "UNI1", Unit: "µV", UnitLow: -150, UnitHigh: 150, ADCLow: -131072, ADCHigh: 131071, Index: 0},
		{Name: "COUNTER", Index: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid channels r/w round-trip:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestBlockCodec(t *testing.T) {
	const spb = 4
	src := [][]float64{
		{1, 2, 3}, // short row, zero padded on disk
		{-4, -5, -6},
	}

	buf := new(bytes.Buffer)
	if err := NewEncoder(buf).EncodeBlock(src, 7, spb); err != nil {
		t.Fatalf("could not encode block: %+v", err)
	}
	if got, want := buf.Len(), blockHdrSize+4*spb*len(src); got != want {
		t.Fatalf("invalid block size: got=%d, want=%d", got, want)
	}

	got, err := NewDecoder(buf).DecodeBlock(len(src), spb)
	if err != nil {
		t.Fatalf("could not decode block: %+v", err)
	}
	want := [][]float64{
		{1, 2, 3, 0},
		{-4, -5, -6, 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid block r/w round-trip:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestBlockNoData(t *testing.T) {
	buf := bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff})
	got, err := NewDecoder(buf).DecodeBlock(2, 4)
	if err != nil {
		t.Fatalf("unexpected error on no-data marker: %+v", err)
	}
	if got != nil {
		t.Fatalf("expected nil matrix on no-data marker, got %#v", got)
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	valid := func() *bytes.Buffer {
		buf := new(bytes.Buffer)
		hdr := Header{Name: "T1", SampleRate: 4000, StorageRate: 4000, NumRecords: 2, Start: time.Date(2023, 5, 11, 14, 3, 27, 0, time.UTC)}
		if err := NewEncoder(buf).EncodeHeader(&hdr); err != nil {
			t.Fatalf("could not encode header: %+v", err)
		}
		return buf
	}

	for _, tc := range []struct {
		name  string
		bytes func() []byte
		field string
	}{
		{
			name: "bad-magic",
			bytes: func() []byte {
				raw := valid().Bytes()
				raw[0] = 'X'
				return raw
			},
			field: "magic signature",
		},
		{
			name: "bad-version",
			bytes: func() []byte {
				raw := valid().Bytes()
				raw[31] = 0xcc // version word follows the 31-byte magic
				return raw
			},
			field: "version",
		},
		{
			name: "short-header",
			bytes: func() []byte {
				return valid().Bytes()[:100]
			},
			field: "header",
		},
		{
			name:  "empty",
			bytes: func() []byte { return nil },
			field: "magic signature",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var hdr Header
			err := NewDecoder(bytes.NewReader(tc.bytes())).DecodeHeader(&hdr)
			if err == nil {
				t.Fatalf("expected an error")
			}
			var ferr *FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("expected a *FormatError, got %#v", err)
			}
			if got, want := ferr.Field, tc.field; got != want {
				t.Fatalf("invalid error field: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestDescriptorRejection(t *testing.T) {
	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	ch := Channel{Name: "UNI1", Unit: "µV"}
	enc.encodeDescr("(Xx) ", &ch, 0)
	if enc.err != nil {
		t.Fatalf("could not encode descriptor: %+v", enc.err)
	}

	_, err := NewDecoder(buf).DecodeChannels(1)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected a *FormatError, got %#v", err)
	}
	if got, want := ferr.Got, "(Xx) UNI1"; got != want {
		t.Fatalf("invalid rejected name: got=%q, want=%q", got, want)
	}
}

// failWriter accepts n bytes and fails every write past that budget.
type failWriter struct {
	n int
}

func (w *failWriter) Write(p []byte) (int, error) {
	w.n -= len(p)
	if w.n < 0 {
		return 0, io.ErrClosedPipe
	}
	return len(p), nil
}

func TestEncoderFailingWriter(t *testing.T) {
	hdr := Header{Name: "T1", SampleRate: 4000, StorageRate: 4000, NumRecords: 2, Start: time.Date(2023, 5, 11, 14, 3, 27, 0, time.UTC)}
	for _, n := range []int{0, 30, 31, 114, headerSize - 1} {
		err := NewEncoder(&failWriter{n: n}).EncodeHeader(&hdr)
		if err == nil {
			t.Fatalf("expected an error with a %d-byte budget", n)
		}
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Fatalf("invalid error cause with a %d-byte budget: %+v", n, err)
		}
	}
}

func TestDecoderShortBlock(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := NewEncoder(buf).EncodeBlock([][]float64{{1, 2}}, 0, 2); err != nil {
		t.Fatalf("could not encode block: %+v", err)
	}
	raw := buf.Bytes()[:buf.Len()-4]

	_, err := NewDecoder(bytes.NewReader(raw)).DecodeBlock(1, 2)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected a *FormatError, got %#v", err)
	}
	if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected an EOF cause, got %+v", err)
	}
}
