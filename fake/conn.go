// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the client transport.

package fake

import (
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Conn is a scripted net.Conn. Each Read returns bytes from at most one
// scripted chunk, so tests control exactly how the peer's bytes are split.
// Once the script is exhausted Read returns the configured final error, or
// blocks until Close or the read deadline when none is set.
type Conn struct {
	mu       sync.Mutex
	script   [][]byte
	final    error
	written  []byte
	closed   bool
	deadline time.Time
	wake     chan struct{}
	writeErr error
}

// NewConn creates a connection that will deliver chunks in order and then io.EOF.
func NewConn(chunks ...[]byte) *Conn {
	c := &Conn{final: io.EOF, wake: make(chan struct{})}
	for _, ch := range chunks {
		c.script = append(c.script, append([]byte(nil), ch...))
	}
	return c
}

// Split returns data cut into size-byte chunks; size <= 0 yields one chunk.
func Split(data []byte, size int) [][]byte {
	if size <= 0 || size >= len(data) {
		return [][]byte{data}
	}
	var out [][]byte
	for len(data) > size {
		out = append(out, data[:size])
		data = data[size:]
	}
	return append(out, data)
}

// Feed appends chunks to the script and wakes a blocked reader.
func (c *Conn) Feed(chunks ...[]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range chunks {
		c.script = append(c.script, append([]byte(nil), ch...))
	}
	c.broadcast()
}

// SetFinal sets the error returned once the script runs out. nil makes Read
// block instead.
func (c *Conn) SetFinal(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.final = err
	c.broadcast()
}

// SetWriteError configures the connection to fail every Write.
func (c *Conn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// Written returns a copy of everything written so far.
func (c *Conn) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.written...)
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// broadcast wakes all blocked readers; c.mu must be held.
func (c *Conn) broadcast() {
	close(c.wake)
	c.wake = make(chan struct{})
}

func (c *Conn) Read(p []byte) (int, error) {
	for {
		c.mu.Lock()
		switch {
		case c.closed:
			c.mu.Unlock()
			return 0, net.ErrClosed
		case !c.deadline.IsZero() && !time.Now().Before(c.deadline):
			c.mu.Unlock()
			return 0, os.ErrDeadlineExceeded
		case len(c.script) > 0:
			n := copy(p, c.script[0])
			if n == len(c.script[0]) {
				c.script = c.script[1:]
			} else {
				c.script[0] = c.script[0][n:]
			}
			c.mu.Unlock()
			return n, nil
		case c.final != nil:
			err := c.final
			c.mu.Unlock()
			return 0, err
		}
		wake := c.wake
		var timer *time.Timer
		var expired <-chan time.Time
		if !c.deadline.IsZero() {
			timer = time.NewTimer(time.Until(c.deadline))
			expired = timer.C
		}
		c.mu.Unlock()
		select {
		case <-wake:
		case <-expired:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.broadcast()
	}
	return nil
}

func (c *Conn) LocalAddr() net.Addr  { return fakeAddr("fake-local") }
func (c *Conn) RemoteAddr() net.Addr { return fakeAddr("fake-remote") }

func (c *Conn) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	c.broadcast()
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error { return nil }

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }
