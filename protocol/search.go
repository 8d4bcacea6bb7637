// File: protocol/search.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Header-block terminator search over a growing accumulation buffer.

package protocol

import "bytes"

// Terminator identifies which accepted header-block terminator matched.
type Terminator int

const (
	TerminatorNone Terminator = iota
	// TerminatorCRLF is the strict "\r\n\r\n" form.
	TerminatorCRLF
	// TerminatorLF is the lenient "\n\n" form sent by bare-LF producers.
	TerminatorLF
	// TerminatorEmpty marks a header region that opens with a blank line,
	// i.e. the status line was followed directly by the end of the block.
	TerminatorEmpty
)

func (t Terminator) String() string {
	switch t {
	case TerminatorCRLF:
		return `\r\n\r\n`
	case TerminatorLF:
		return `\n\n`
	case TerminatorEmpty:
		return "empty"
	default:
		return "none"
	}
}

// headerTerminators are tried in priority order.
var headerTerminators = [...]struct {
	kind   Terminator
	needle []byte
}{
	{TerminatorCRLF, []byte("\r\n\r\n")},
	{TerminatorLF, []byte("\n\n")},
}

const maxTerminatorLen = 4

// FindTerminator reports the first accepted terminator in buf, trying the
// strict form before the lenient one, and the offset where it starts.
func FindTerminator(buf []byte) (Terminator, int) {
	var s terminatorSearch
	return s.find(buf)
}

// terminatorSearch remembers how much of an append-only buffer has already
// been scanned without a match, so repeated calls stay linear in total input.
type terminatorSearch struct {
	scanned int
}

func (s *terminatorSearch) find(buf []byte) (Terminator, int) {
	if startsWithBlankLine(buf) {
		return TerminatorEmpty, 0
	}
	// A match may straddle the previous end of the buffer.
	start := s.scanned - (maxTerminatorLen - 1)
	if start < 0 {
		start = 0
	}
	for _, t := range headerTerminators {
		if i := bytes.Index(buf[start:], t.needle); i >= 0 {
			return t.kind, start + i
		}
	}
	s.scanned = len(buf)
	return TerminatorNone, -1
}

func (s *terminatorSearch) reset() { s.scanned = 0 }

func startsWithBlankLine(buf []byte) bool {
	switch {
	case len(buf) == 0:
		return false
	case buf[0] == '\n':
		return true
	default:
		return len(buf) > 1 && buf[0] == '\r' && buf[1] == '\n'
	}
}
