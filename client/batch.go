// File: client/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FIFO of chunks received from the transport but not yet handed to the
// parser. A single readiness cycle can deliver more chunks than the handshake
// needs; whatever is still queued when the response completes belongs to the
// frame stream.

package client

import "github.com/eapache/queue"

type chunkQueue struct {
	q     *queue.Queue
	bytes int
}

func newChunkQueue() *chunkQueue {
	return &chunkQueue{q: queue.New()}
}

// PushBatch enqueues chunks in order, skipping empty ones.
func (cq *chunkQueue) PushBatch(chunks [][]byte) {
	for _, c := range chunks {
		if len(c) == 0 {
			continue
		}
		cq.q.Add(c)
		cq.bytes += len(c)
	}
}

// Pop removes the oldest chunk. The queue must not be empty.
func (cq *chunkQueue) Pop() []byte {
	c := cq.q.Remove().([]byte)
	cq.bytes -= len(c)
	return c
}

func (cq *chunkQueue) Len() int { return cq.q.Length() }

// Bytes returns the total size of queued chunks.
func (cq *chunkQueue) Bytes() int { return cq.bytes }

// DrainInto appends every queued chunk to dst and empties the queue.
func (cq *chunkQueue) DrainInto(dst []byte) []byte {
	if cq.bytes > 0 && cap(dst)-len(dst) < cq.bytes {
		grown := make([]byte, len(dst), len(dst)+cq.bytes)
		copy(grown, dst)
		dst = grown
	}
	for cq.q.Length() > 0 {
		dst = append(dst, cq.Pop()...)
	}
	return dst
}
