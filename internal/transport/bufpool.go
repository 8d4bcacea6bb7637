// File: internal/transport/bufpool.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"sync"

	"github.com/valyala/bytebufferpool"
)

// BytePool hands out read buffers of a fixed length.
type BytePool struct {
	size int
	pool bytebufferpool.Pool
}

// NewBytePool creates a pool of size-byte buffers.
func NewBytePool(size int) *BytePool {
	return &BytePool{size: size}
}

// Size returns the length of buffers returned by GetBuffer.
func (b *BytePool) Size() int { return b.size }

// GetBuffer returns a buffer whose B field is exactly Size bytes long.
func (b *BytePool) GetBuffer() *bytebufferpool.ByteBuffer {
	bb := b.pool.Get()
	if cap(bb.B) < b.size {
		bb.B = make([]byte, b.size)
	} else {
		bb.B = bb.B[:b.size]
	}
	return bb
}

// PutBuffer returns a buffer to the pool; it must not be used afterwards.
func (b *BytePool) PutBuffer(bb *bytebufferpool.ByteBuffer) {
	b.pool.Put(bb)
}

var pools sync.Map // int -> *BytePool

// poolFor returns the process-wide pool for size-byte buffers.
func poolFor(size int) *BytePool {
	if p, ok := pools.Load(size); ok {
		return p.(*BytePool)
	}
	p, _ := pools.LoadOrStore(size, NewBytePool(size))
	return p.(*BytePool)
}
