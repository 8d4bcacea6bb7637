// File: protocol/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Failure kinds produced by the upgrade response parser.

package protocol

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a terminal upgrade parse failure.
type ErrorKind int

const (
	KindInvalidStatusLine ErrorKind = iota + 1
	KindMalformedHeaders
	KindTooManyHeaders
	KindUseAfterComplete
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidStatusLine:
		return "invalid_status_line"
	case KindMalformedHeaders:
		return "malformed_headers"
	case KindTooManyHeaders:
		return "too_many_headers"
	case KindUseAfterComplete:
		return "use_after_complete"
	default:
		return "unknown"
	}
}

// UpgradeError is a structured parse failure. Every UpgradeError is terminal.
type UpgradeError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *UpgradeError) Error() string {
	msg := kindMessages[e.Kind]
	if msg == "" {
		msg = "upgrade parse failure"
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause, if any.
func (e *UpgradeError) Unwrap() error { return e.Err }

// Is reports kind equality so that errors.Is(err, ErrTooManyHeaders) matches
// any UpgradeError of that kind regardless of detail.
func (e *UpgradeError) Is(target error) bool {
	t, ok := target.(*UpgradeError)
	return ok && t.Kind == e.Kind
}

var kindMessages = map[ErrorKind]string{
	KindInvalidStatusLine: "invalid HTTP status line",
	KindMalformedHeaders:  "invalid headers",
	KindTooManyHeaders:    "too many headers",
	KindUseAfterComplete:  "attempted to write to completed upgrade buffer",
}

// Sentinels for errors.Is matching.
var (
	ErrInvalidStatusLine = &UpgradeError{Kind: KindInvalidStatusLine}
	ErrMalformedHeaders  = &UpgradeError{Kind: KindMalformedHeaders}
	ErrTooManyHeaders    = &UpgradeError{Kind: KindTooManyHeaders}
	ErrUseAfterComplete  = &UpgradeError{Kind: KindUseAfterComplete}
)

func newError(kind ErrorKind, detail string) *UpgradeError {
	return &UpgradeError{Kind: kind, Detail: detail}
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not an UpgradeError.
func KindOf(err error) ErrorKind {
	var ue *UpgradeError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return 0
}
