// Package api
// Author: momentics
//
// Mock/testing utilities for the core contracts.

package api

// MockReader is a test and mock-friendly implementation of ChunkReader.
type MockReader struct {
	RecvFunc  func() ([][]byte, error)
	CloseFunc func() error
}

func (m *MockReader) Recv() ([][]byte, error) { return m.RecvFunc() }

func (m *MockReader) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

// ScriptedReader returns a MockReader that yields one batch per Recv call and
// then the final error.
func ScriptedReader(final error, batches ...[][]byte) *MockReader {
	i := 0
	return &MockReader{
		RecvFunc: func() ([][]byte, error) {
			if i >= len(batches) {
				return nil, final
			}
			b := batches[i]
			i++
			return b, nil
		},
	}
}
