// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

const (
	// Magic is the 31-byte signature opening every Poly5 file.
	Magic = "POLY SAMPLE FILEversion 2.03\r\n\x1a"

	// Version is the only format version this package reads or writes.
	Version = 203

	// CounterWrap is the modulus applied to the counter channel, both
	// when samples are flushed to disk and when a repaired counter row
	// is renormalized.
	CounterWrap = 1 << 23

	// BlockCapacity is the fixed per-block sample budget. The number of
	// samples stored per data block is BlockCapacity divided by the
	// number of logical channels; files written with a different budget
	// are not block-compatible.
	BlockCapacity = 8192
)

const (
	headerSize   = 217 // fixed header, incl. magic and version
	descrSize    = 136 // one channel descriptor record
	blockHdrSize = 86  // data block header, before the float32 payload

	maxNameLen     = 80 // recording name field width
	maxChanNameLen = 40 // channel name field width, incl. (Lo)/(Hi) prefix
	maxUnitLen     = 10 // unit name field width

	// loPrefix and hiPrefix tag the two descriptor records a logical
	// channel persists as. Only (Lo) records materialize back into
	// channels on read.
	loPrefix = "(Lo) "
	hiPrefix = "(Hi) "

	// noDataMarker in the leading index word of a block header is the
	// legacy end-of-stream indicator.
	noDataMarker = 0xFFFFFFFF
)

// ChannelType tags the live role of a channel. The tag is runtime
// metadata supplied by the acquisition layer; it is not persisted.
type ChannelType uint8

const (
	ChanUnknown ChannelType = iota
	ChanExG                 // unipolar ExG electrode
	ChanBip                 // bipolar electrode pair
	ChanAux                 // auxiliary analog input
	ChanSensor              // raw digital sensor word
	ChanStatus              // per-sample status bits, incl. the sample-missing flag
	ChanCounter             // sawtooth sample counter, mod CounterWrap
)

func (ct ChannelType) String() string {
	switch ct {
	case ChanExG:
		return "ExG"
	case ChanBip:
		return "Bip"
	case ChanAux:
		return "Aux"
	case ChanSensor:
		return "Sensor"
	case ChanStatus:
		return "Status"
	case ChanCounter:
		return "Counter"
	}
	return "Unknown"
}
