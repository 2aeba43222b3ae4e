// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the errors this package can return, per the error
// kinds the core distinguishes: I/O failures, invalid configuration, and
// malformed deltas discovered during apply or decoding. Interrupted reads are retried
// transparently in readFull and never surface as a Kind.
type ErrorKind int

const (
	// KindIO wraps a failure from the caller-supplied reader or writer.
	KindIO ErrorKind = iota
	// KindInvalidConfig reports a bad block size or a block size that
	// disagrees between a Signature and a DeltaBuilder.
	KindInvalidConfig
	// KindMalformedDelta reports a Copy command whose range runs past the
	// end of the base, discovered while applying, or an unrecognized record
	// tag found by ReadDelta.
	KindMalformedDelta
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidConfig:
		return "invalid configuration"
	case KindMalformedDelta:
		return "malformed delta"
	default:
		return "unknown"
	}
}

// Error is the single tagged error value this package returns. It carries a
// Kind plus a message, and unwraps to the underlying cause when there is
// one, so callers can still use errors.Is/errors.As against it.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func ioError(msg string, err error) error {
	return &Error{Kind: KindIO, Msg: msg, Err: errors.Wrap(err, msg)}
}

func invalidConfig(msg string) error {
	return &Error{Kind: KindInvalidConfig, Msg: msg}
}

func malformedDelta(msg string, err error) error {
	return &Error{Kind: KindMalformedDelta, Msg: msg, Err: err}
}
