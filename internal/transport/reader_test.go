package transport_test

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/wsupgrade/api"
	"github.com/momentics/wsupgrade/internal/transport"
)

// tcpPair returns both ends of a loopback TCP connection.
func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()
	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server = <-accepted
	require.NotNil(t, server)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

// drain collects bytes until EOF, copying every chunk before the next Recv.
func drain(t *testing.T, r api.ChunkReader) []byte {
	t.Helper()
	var out bytes.Buffer
	for {
		chunks, err := r.Recv()
		for _, c := range chunks {
			out.Write(c)
		}
		if errors.Is(err, io.EOF) {
			return out.Bytes()
		}
		require.NoError(t, err)
	}
}

func TestReaderTCP(t *testing.T) {
	client, server := tcpPair(t)
	r := transport.NewReader(client, 16, 4)
	defer r.Close()

	if fr, ok := r.(api.FeatureReporter); ok && runtime.GOOS == "linux" {
		require.True(t, fr.Features().RawSyscall)
	}

	payload := bytes.Repeat([]byte("0123456789"), 20)
	go func() {
		server.Write(payload[:7])
		time.Sleep(10 * time.Millisecond)
		server.Write(payload[7:])
		server.Close()
	}()
	require.Equal(t, payload, drain(t, r))

	// EOF is sticky.
	_, err := r.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderBatchLimit(t *testing.T) {
	client, server := tcpPair(t)
	r := transport.NewReader(client, 8, 2)
	defer r.Close()

	_, err := server.Write(bytes.Repeat([]byte("x"), 64))
	require.NoError(t, err)

	total := 0
	for total < 64 {
		chunks, err := r.Recv()
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		require.LessOrEqual(t, len(chunks), 2)
		for _, c := range chunks {
			require.LessOrEqual(t, len(c), 8)
			total += len(c)
		}
	}
	require.Equal(t, 64, total)
}

func TestReaderDeadline(t *testing.T) {
	client, _ := tcpPair(t)
	r := transport.NewReader(client, 0, 0)
	defer r.Close()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(30*time.Millisecond)))
	_, err := r.Recv()
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestReaderPipeFallback(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	r := transport.NewReader(client, 4, 0)

	if fr, ok := r.(api.FeatureReporter); ok {
		require.False(t, fr.Features().RawSyscall)
	}
	go func() {
		server.Write([]byte("HTTP/1.1 101"))
		server.Close()
	}()
	require.Equal(t, "HTTP/1.1 101", string(drain(t, r)))
}

func TestReaderClosed(t *testing.T) {
	client, _ := tcpPair(t)
	r := transport.NewReader(client, 0, 0)
	require.NoError(t, r.Close())
	_, err := r.Recv()
	require.ErrorIs(t, err, api.ErrTransportClosed)
}

func TestBytePool(t *testing.T) {
	p := transport.NewBytePool(32)
	bb := p.GetBuffer()
	require.Len(t, bb.B, 32)
	require.Equal(t, 32, p.Size())
	bb.B = bb.B[:3]
	p.PutBuffer(bb)
	require.Len(t, p.GetBuffer().B, 32)
}
