//go:build !linux
// +build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"syscall"

	"github.com/momentics/wsupgrade/api"
)

// newRawReader has no raw implementation here; NewReader falls back to net.Conn.
func newRawReader(syscall.RawConn, *BytePool, int) api.ChunkReader { return nil }
