// File: protocol/upgrade.go
// Package protocol implements the incremental WebSocket upgrade response parser.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// UpgradeParser consumes the server's handshake response in whatever chunks
// the transport read loop delivers and yields the parsed 101 response plus the
// bytes that arrived after the header block. Those bytes belong to the frame
// stream and are handed back untouched. The result is identical whether the
// response arrives in one packet or one byte at a time.

package protocol

import "bytes"

var crlfcrlf = []byte("\r\n\r\n")

// ParserConfig tunes an UpgradeParser.
type ParserConfig struct {
	// MaxHeaders bounds header lines per response; <= 0 selects DefaultMaxHeaders.
	MaxHeaders int
}

// DefaultParserConfig returns the stock parser limits.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{MaxHeaders: DefaultMaxHeaders}
}

// ParserStats accounts for every byte handed to Write. Once the parser is
// done, BytesFed == StatusBytes + HeaderBytes + LeftoverBytes.
type ParserStats struct {
	BytesFed      int64 // chunk bytes accepted by Write
	StatusBytes   int64 // status line bytes, validated then discarded
	HeaderBytes   int64 // header block bytes represented by the Response
	LeftoverBytes int64 // bytes returned past the header block
}

// UpgradeParser is a single-use state machine for one upgrade attempt. It is
// not safe for concurrent use; the owning read loop calls Write serially.
type UpgradeParser struct {
	cfg    ParserConfig
	state  UpgradeState
	buf    []byte
	search terminatorSearch
	reason string
	err    error
	stats  ParserStats
}

// NewUpgradeParser creates a parser in the Initial state.
func NewUpgradeParser(cfg ParserConfig) *UpgradeParser {
	if cfg.MaxHeaders <= 0 {
		cfg.MaxHeaders = DefaultMaxHeaders
	}
	return &UpgradeParser{cfg: cfg}
}

// State returns the current state.
func (p *UpgradeParser) State() UpgradeState { return p.state }

// Stats returns byte accounting so far.
func (p *UpgradeParser) Stats() ParserStats { return p.stats }

// Err returns the failure that terminated the parser, if any.
func (p *UpgradeParser) Err() error { return p.err }

// Write feeds the next chunk, in arrival order. It returns
//
//	(nil, nil, nil)       more data is required
//	(resp, leftover, nil) the response is complete; leftover may be empty
//	(nil, nil, err)       the response is rejected; err is an *UpgradeError
//
// Completion and failure are both terminal: any later call returns
// ErrUseAfterComplete without looking at the chunk. The chunk is never
// retained; leftover is always owned by the caller.
func (p *UpgradeParser) Write(chunk []byte) (*Response, []byte, error) {
	if p.state == StateComplete {
		return nil, nil, ErrUseAfterComplete
	}
	p.stats.BytesFed += int64(len(chunk))

	// Remainders after a transition are reprocessed by the loop rather than
	// by recursion.
	input := chunk
	for {
		switch p.state {
		case StateInitial:
			i := bytes.IndexByte(input, '\n')
			if i < 0 {
				p.buf = append(p.buf, input...)
				p.state = StateStatusLine
				return nil, nil, nil
			}
			line, rest := input[:i+1], input[i+1:]
			if err := p.acceptStatusLine(line); err != nil {
				return p.fail(err)
			}
			// Whole response in one packet: parse in place, skip buffering.
			if bytes.HasSuffix(rest, crlfcrlf) {
				return p.completeInPlace(rest)
			}
			p.state = StateHeaders
			input = rest

		case StateStatusLine:
			i := bytes.IndexByte(input, '\n')
			if i < 0 {
				p.buf = append(p.buf, input...)
				return nil, nil, nil
			}
			p.buf = append(p.buf, input[:i+1]...)
			if err := p.acceptStatusLine(p.buf); err != nil {
				return p.fail(err)
			}
			p.clearBuffer()
			p.state = StateHeaders
			input = input[i+1:]

		case StateHeaders:
			// From here on buf holds header bytes only.
			p.buf = append(p.buf, input...)
			if t, _ := p.search.find(p.buf); t == TerminatorNone {
				return nil, nil, nil
			}
			return p.completeBuffered()

		default:
			return nil, nil, ErrUseAfterComplete
		}
	}
}

func (p *UpgradeParser) acceptStatusLine(line []byte) error {
	if err := ValidateStatusLine(line); err != nil {
		return err
	}
	p.reason = reasonPhrase(line)
	p.stats.StatusBytes += int64(len(line))
	return nil
}

// completeInPlace parses a header block that lives in the caller's chunk.
// The leftover must be copied since the chunk is not ours.
func (p *UpgradeParser) completeInPlace(block []byte) (*Response, []byte, error) {
	n, headers, err := ParseHeaderBlock(block, p.cfg.MaxHeaders)
	if err != nil {
		return p.fail(err)
	}
	var leftover []byte
	if n < len(block) {
		leftover = append([]byte(nil), block[n:]...)
	}
	return p.finish(n, headers, leftover)
}

// completeBuffered parses the accumulated header bytes and hands the tail of
// the buffer to the caller as leftover.
func (p *UpgradeParser) completeBuffered() (*Response, []byte, error) {
	n, headers, err := ParseHeaderBlock(p.buf, p.cfg.MaxHeaders)
	if err != nil {
		return p.fail(err)
	}
	buf := p.buf
	p.buf = nil
	var leftover []byte
	if n < len(buf) {
		leftover = buf[n:len(buf):len(buf)]
	}
	return p.finish(n, headers, leftover)
}

func (p *UpgradeParser) finish(n int, headers []Header, leftover []byte) (*Response, []byte, error) {
	p.stats.HeaderBytes += int64(n)
	p.stats.LeftoverBytes += int64(len(leftover))
	p.state = StateComplete
	return &Response{
		StatusCode: StatusSwitchingProtocols,
		Reason:     p.reason,
		Headers:    headers,
	}, leftover, nil
}

func (p *UpgradeParser) fail(err error) (*Response, []byte, error) {
	p.state = StateComplete
	p.err = err
	p.clearBuffer()
	p.buf = nil
	return nil, nil, err
}

// clearBuffer zeroes consumed bytes so nothing stale survives into the next stage.
func (p *UpgradeParser) clearBuffer() {
	clear(p.buf)
	p.buf = p.buf[:0]
	p.search.reset()
}
