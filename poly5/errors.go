// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poly5

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a session that has been
	// closed.
	ErrClosed = errors.New("poly5: session is closed")

	// ErrNoChannels is returned when a write session is opened with an
	// empty channel list.
	ErrNoChannels = errors.New("poly5: no channels")

	// ErrTooManyChannels is returned when a write session is opened
	// with more channels than one data block can hold.
	ErrTooManyChannels = errors.New("poly5: too many channels for one block")

	// ErrRagged is returned when a sample matrix has rows of unequal
	// width.
	ErrRagged = errors.New("poly5: ragged sample matrix")
)

// FormatError reports malformed or unsupported on-disk bytes. It is
// fatal to the read that produced it; the codec never guesses around
// bad input.
type FormatError struct {
	Field string // header field or record at fault
	Want  string // expected token, when known
	Got   string // token actually found
	Err   error  // underlying read failure, when any
}

func (e *FormatError) Error() string {
	switch {
	case e.Want != "" || e.Got != "":
		return fmt.Sprintf("poly5: invalid %s (got=%q, want=%q)", e.Field, e.Got, e.Want)
	case e.Err != nil:
		return fmt.Sprintf("poly5: invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("poly5: invalid %s", e.Field)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ChannelMismatchError reports a sample matrix whose row count
// disagrees with the channel count of the session or dataset it was
// handed to.
type ChannelMismatchError struct {
	Want int
	Got  int
}

func (e *ChannelMismatchError) Error() string {
	return fmt.Sprintf("poly5: channel mismatch (got=%d rows, want=%d)", e.Got, e.Want)
}
