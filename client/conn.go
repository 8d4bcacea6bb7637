// File: client/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"net"

	"github.com/momentics/wsupgrade/protocol"
)

// Conn is an upgraded connection. Bytes the server sent after the handshake
// response are served by Read before anything else from the socket, so frame
// decoders see the stream intact. Read must not be called concurrently.
type Conn struct {
	net.Conn
	resp   *protocol.Response
	prefix []byte
	stats  protocol.ParserStats
}

func newConn(nc net.Conn, resp *protocol.Response, prefix []byte, stats protocol.ParserStats) *Conn {
	if len(prefix) == 0 {
		prefix = nil
	}
	return &Conn{Conn: nc, resp: resp, prefix: prefix, stats: stats}
}

// Read drains the buffered post-handshake bytes, then reads the socket.
func (c *Conn) Read(p []byte) (int, error) {
	if len(c.prefix) > 0 {
		n := copy(p, c.prefix)
		c.prefix = c.prefix[n:]
		if len(c.prefix) == 0 {
			c.prefix = nil
		}
		return n, nil
	}
	return c.Conn.Read(p)
}

// Response returns the parsed 101 response.
func (c *Conn) Response() *protocol.Response { return c.resp }

// Subprotocol returns the subprotocol selected by the server, if any.
func (c *Conn) Subprotocol() string {
	return c.resp.Get(protocol.HeaderSecWebSocketProto)
}

// Buffered returns how many post-handshake bytes are still held by Conn.
func (c *Conn) Buffered() int { return len(c.prefix) }

// ParserStats returns the byte accounting of the handshake parse.
func (c *Conn) ParserStats() protocol.ParserStats { return c.stats }

// NetConn returns the underlying connection. Reading it directly skips any
// buffered bytes.
func (c *Conn) NetConn() net.Conn { return c.Conn }
