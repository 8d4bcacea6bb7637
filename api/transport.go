// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the chunked read abstraction (ChunkReader) that handshake drivers
// consume, independent of how the bytes reach user space.

package api

// ChunkReader delivers inbound bytes in the chunks the transport produced.
type ChunkReader interface {
	// Recv blocks until at least one chunk is available and returns every
	// chunk read during that readiness cycle, in arrival order. The slices are
	// only valid until the next Recv or Close call.
	Recv() ([][]byte, error)

	// Close releases reader-owned buffers. The underlying connection is left open.
	Close() error
}

// ReaderFeatures describes how a ChunkReader obtains its bytes.
type ReaderFeatures struct {
	RawSyscall bool // reads issued directly on the file descriptor
	Batch      bool // several chunks may be returned per Recv
	OS         string
}

// FeatureReporter is implemented by readers that expose ReaderFeatures.
type FeatureReporter interface {
	Features() ReaderFeatures
}
