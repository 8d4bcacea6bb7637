// internal/transport/reader_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux reader issuing read(2) directly on the socket descriptor and draining
// every chunk available per readiness event.

package transport

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/momentics/wsupgrade/api"
)

type rawReader struct {
	rc       syscall.RawConn
	held     held
	maxBatch int
	batch    [][]byte
	pending  error
	closed   bool
}

func newRawReader(rc syscall.RawConn, p *BytePool, maxBatch int) api.ChunkReader {
	return &rawReader{rc: rc, held: held{pool: p}, maxBatch: maxBatch}
}

// Recv waits for readability through the runtime poller, so connection read
// deadlines apply.
func (r *rawReader) Recv() ([][]byte, error) {
	r.held.release()
	clear(r.batch)
	r.batch = r.batch[:0]
	if r.closed {
		return nil, api.ErrTransportClosed
	}
	if r.pending != nil {
		return nil, r.pending
	}

	var opErr error
	err := r.rc.Read(func(fd uintptr) bool {
		for len(r.batch) < r.maxBatch {
			bb := r.held.get()
			n, err := unix.Read(int(fd), bb.B)
			switch {
			case err == unix.EINTR:
				r.held.drop()
				continue
			case err == unix.EAGAIN:
				r.held.drop()
				// Nothing read yet: park until the poller reports readiness.
				return len(r.batch) > 0
			case err != nil:
				r.held.drop()
				opErr = fmt.Errorf("read: %w", err)
				return true
			case n == 0:
				r.held.drop()
				opErr = io.EOF
				return true
			}
			r.batch = append(r.batch, bb.B[:n])
			if n < len(bb.B) {
				// Short read: the socket buffer is drained.
				return true
			}
		}
		return true
	})
	if err != nil && opErr == nil {
		opErr = err
	}
	if opErr != nil {
		if len(r.batch) > 0 {
			r.pending = opErr
			return r.batch, nil
		}
		if errors.Is(opErr, io.EOF) {
			r.pending = io.EOF
		}
		return nil, opErr
	}
	return r.batch, nil
}

func (r *rawReader) Close() error {
	r.held.release()
	r.batch = nil
	r.closed = true
	return nil
}

func (r *rawReader) Features() api.ReaderFeatures {
	return api.ReaderFeatures{RawSyscall: true, Batch: true, OS: "linux"}
}
