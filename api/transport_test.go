package api_test

import (
	"errors"
	"io"
	"testing"

	"github.com/momentics/wsupgrade/api"
)

func TestReaderInterfaceCompliance(t *testing.T) {
	var _ api.ChunkReader = (*api.MockReader)(nil)
}

func TestScriptedReader(t *testing.T) {
	r := api.ScriptedReader(io.EOF, [][]byte{[]byte("a"), []byte("b")}, [][]byte{[]byte("c")})
	b, err := r.Recv()
	if err != nil || len(b) != 2 {
		t.Fatalf("first batch: %v %d", err, len(b))
	}
	b, err = r.Recv()
	if err != nil || string(b[0]) != "c" {
		t.Fatalf("second batch: %v %q", err, b)
	}
	if _, err = r.Recv(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestErrorCodesUnwrap(t *testing.T) {
	err := api.NewError(api.ErrCodeNotSupported, "wss is not supported").WithContext("scheme", "wss")
	if !errors.Is(err, api.ErrNotSupported) {
		t.Fatal("expected ErrNotSupported")
	}
	if errors.Is(err, api.ErrOperationTimeout) {
		t.Fatal("unexpected timeout match")
	}
	if err.Error() != "wss is not supported (context: map[scheme:wss])" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestHandshakeStatusString(t *testing.T) {
	if api.HandshakeUpgraded.String() != "upgraded" || api.HandshakeStatus(42).String() != "unknown" {
		t.Fatal("unexpected status names")
	}
}
