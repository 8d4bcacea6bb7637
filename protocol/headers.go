// File: protocol/headers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Header-block tokenizer and the parsed upgrade response.
//
// ParseHeaderBlock turns a byte range that is known to hold a complete header
// block into ordered name/value pairs. Duplicate names are kept in arrival
// order; nothing is collapsed into a map.

package protocol

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gobwas/httphead"
	"golang.org/x/net/http/httpguts"
)

// Header is one response header line. Name is lowercased, Value is the raw
// field value with surrounding whitespace removed.
type Header struct {
	Name  string
	Value string
}

// Response is a parsed upgrade response. StatusCode is always 101.
type Response struct {
	StatusCode int
	Reason     string
	Headers    []Header
}

// Get returns the first value of the named header, case-insensitively.
func (r *Response) Get(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Values returns every value of the named header in arrival order.
func (r *Response) Values(name string) []string {
	var out []string
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}

// HTTPHeader converts the headers into a net/http Header.
func (r *Response) HTTPHeader() http.Header {
	hdr := make(http.Header, len(r.Headers))
	for _, h := range r.Headers {
		hdr.Add(h.Name, h.Value)
	}
	return hdr
}

// ParseHeaderBlock tokenizes header lines from buf up to and including the
// first blank line ("\n" or "\r\n"). It returns the number of bytes consumed,
// so buf[n:] is whatever followed the block. maxHeaders <= 0 selects
// DefaultMaxHeaders.
func ParseHeaderBlock(buf []byte, maxHeaders int) (int, []Header, error) {
	if maxHeaders <= 0 {
		maxHeaders = DefaultMaxHeaders
	}
	var headers []Header
	pos := 0
	for {
		nl := bytes.IndexByte(buf[pos:], '\n')
		if nl < 0 {
			return 0, nil, newError(KindMalformedHeaders, "header block is not terminated")
		}
		end := pos + nl + 1
		line := buf[pos : pos+nl]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if len(line) == 0 {
			return end, headers, nil
		}
		if len(headers) == maxHeaders {
			return 0, nil, newError(KindTooManyHeaders, fmt.Sprintf("limit is %d", maxHeaders))
		}
		h, err := parseHeaderLine(line)
		if err != nil {
			return 0, nil, err
		}
		if headers == nil {
			headers = make([]Header, 0, 8)
		}
		headers = append(headers, h)
		pos = end
	}
}

func parseHeaderLine(line []byte) (Header, error) {
	// Continuation lines (obs-fold) are rejected.
	if line[0] == ' ' || line[0] == '\t' {
		return Header{}, newError(KindMalformedHeaders, "folded header line")
	}
	name, value, ok := httphead.ParseHeaderLine(line)
	// No whitespace is allowed between the name and the colon.
	if !ok || len(name) == 0 || bytes.IndexByte(line, ':') != len(name) {
		return Header{}, newError(KindMalformedHeaders, fmt.Sprintf("invalid header name in %q", line))
	}
	v := string(value)
	if !httpguts.ValidHeaderFieldValue(v) || !utf8.ValidString(v) {
		return Header{}, newError(KindMalformedHeaders, fmt.Sprintf("invalid value for header %q", name))
	}
	return Header{Name: strings.ToLower(string(name)), Value: v}, nil
}
