// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Inbound side of the client transport. Readers hand bytes to the handshake
// driver in the chunks the kernel produced, batching every chunk available in
// one readiness cycle. Linux sockets are read with direct syscalls through
// syscall.RawConn; other platforms and non-socket connections fall back to
// net.Conn.Read. Read buffers are pooled.

package transport
