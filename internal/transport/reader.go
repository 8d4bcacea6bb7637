// Package transport
// Author: momentics <momentics@gmail.com>
//
// Platform-independent reader factory and the net.Conn fallback reader.

package transport

import (
	"io"
	"net"
	"runtime"
	"syscall"

	"github.com/valyala/bytebufferpool"

	"github.com/momentics/wsupgrade/api"
)

const (
	// DefaultBufferSize is the per-chunk read buffer length.
	DefaultBufferSize = 4096
	// DefaultMaxBatch caps chunks returned by one Recv.
	DefaultMaxBatch = 8
)

// NewReader wraps conn in an api.ChunkReader. Sockets exposing a file
// descriptor use the raw syscall reader where the platform has one.
func NewReader(conn net.Conn, bufSize, maxBatch int) api.ChunkReader {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	p := poolFor(bufSize)
	if sc, ok := conn.(syscall.Conn); ok {
		if rc, err := sc.SyscallConn(); err == nil {
			if r := newRawReader(rc, p, maxBatch); r != nil {
				return r
			}
		}
	}
	return newStreamReader(conn, p)
}

// held tracks pooled buffers lent out by the last Recv.
type held struct {
	pool *BytePool
	bufs []*bytebufferpool.ByteBuffer
}

func (h *held) get() *bytebufferpool.ByteBuffer {
	bb := h.pool.GetBuffer()
	h.bufs = append(h.bufs, bb)
	return bb
}

// drop returns the most recently taken buffer unused.
func (h *held) drop() {
	last := len(h.bufs) - 1
	h.pool.PutBuffer(h.bufs[last])
	h.bufs[last] = nil
	h.bufs = h.bufs[:last]
}

func (h *held) release() {
	for i, bb := range h.bufs {
		h.pool.PutBuffer(bb)
		h.bufs[i] = nil
	}
	h.bufs = h.bufs[:0]
}

// streamReader reads through net.Conn, one chunk per Recv.
type streamReader struct {
	conn    io.Reader
	held    held
	pending error
	closed  bool
}

func newStreamReader(conn io.Reader, p *BytePool) *streamReader {
	return &streamReader{conn: conn, held: held{pool: p}}
}

func (s *streamReader) Recv() ([][]byte, error) {
	s.held.release()
	if s.closed {
		return nil, api.ErrTransportClosed
	}
	if s.pending != nil {
		return nil, s.pending
	}
	for {
		bb := s.held.get()
		n, err := s.conn.Read(bb.B)
		if n > 0 {
			// Surface the error with the next Recv so no bytes are lost.
			s.pending = err
			return [][]byte{bb.B[:n]}, nil
		}
		s.held.drop()
		if err != nil {
			s.pending = err
			return nil, err
		}
	}
}

func (s *streamReader) Close() error {
	s.held.release()
	s.closed = true
	return nil
}

func (s *streamReader) Features() api.ReaderFeatures {
	return api.ReaderFeatures{OS: runtime.GOOS}
}
