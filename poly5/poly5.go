// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package poly5 reads and writes Poly5 sample containers, the on-disk
// format TMSi amplifiers record multi-channel fixed-rate sample data
// into.
//
// A Poly5 file is a fixed header, a pair of descriptor records per
// logical channel, and a sequence of fixed-width blocks of float32
// samples. The header carries the running sample count and is rewritten
// on every block flush, so a reader may inspect a recording while it is
// still being acquired.
package poly5 // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/poly5"

import (
	"time"
)

// Header is the fixed file header of a Poly5 container.
type Header struct {
	Name            string    // recording name
	SampleRate      uint16    // nominal sample rate, in Hz
	StorageRate     uint16    // mirror of SampleRate
	NumRecords      uint16    // descriptor records on disk (2x logical channels)
	NumSamples      uint32    // samples stored, per channel
	Start           time.Time // creation time, second resolution
	NumBlocks       uint32    // data blocks on disk
	SamplesPerBlock uint16    // samples per channel in one block
	BlockSize       uint16    // payload bytes in one block
}

// NumChannels returns the number of logical channels stored in the
// file. Every logical channel persists as two descriptor records.
func (hdr *Header) NumChannels() int { return int(hdr.NumRecords) / 2 }

// Channel is the persisted identity of one logical channel.
//
// On disk a channel occupies two consecutive descriptor records whose
// names carry "(Lo) " and "(Hi) " prefixes, a storage convention
// inherited from 16-bit hardware. Only this package's codec sees the
// pair; a decoded Channel is always the single logical one.
type Channel struct {
	Name     string      // display name, without the (Lo)/(Hi) prefix
	AltName  string      // alternate display name, not persisted
	Unit     string      // unit name, e.g. "µV"
	UnitLow  int32       // low end of the unit range
	UnitHigh int32       // high end of the unit range
	ADCLow   int32       // low end of the ADC range
	ADCHigh  int32       // high end of the ADC range
	Type     ChannelType // live role tag, not persisted
	Index    uint16      // position among the logical channels
}
