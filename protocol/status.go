// File: protocol/status.go
// Author: momentics <momentics@gmail.com>
//
// Status line validation for upgrade responses.

package protocol

import (
	"bytes"
	"fmt"

	"github.com/gobwas/httphead"
)

var statusLinePrefix = []byte(StatusLinePrefix)

// maxQuotedStatus caps how much of a rejected status line ends up in an error.
const maxQuotedStatus = 64

// ValidateStatusLine checks that line opens with "HTTP/1.1 101 " byte for byte.
// The reason phrase is deliberately unchecked.
func ValidateStatusLine(line []byte) error {
	if bytes.HasPrefix(line, statusLinePrefix) {
		return nil
	}
	if len(line) > maxQuotedStatus {
		line = line[:maxQuotedStatus]
	}
	return newError(KindInvalidStatusLine, fmt.Sprintf("%q", line))
}

// reasonPhrase extracts the text after the status code of a validated line.
func reasonPhrase(line []byte) string {
	line = bytes.TrimRight(line, "\r\n")
	_, _, reason := httphead.SplitResponseLine(line)
	return string(reason)
}
