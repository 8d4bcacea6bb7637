package fake

import (
	"io"
	"net"
	"os"
	"testing"
	"time"
)

func TestConnScript(t *testing.T) {
	c := NewConn(Split([]byte("abcdef"), 4)...)
	buf := make([]byte, 3)

	n, err := c.Read(buf)
	if err != nil || string(buf[:n]) != "abc" {
		t.Fatalf("read 1: %q %v", buf[:n], err)
	}
	n, _ = c.Read(buf)
	if string(buf[:n]) != "d" {
		t.Fatalf("chunk boundary not kept: %q", buf[:n])
	}
	n, _ = c.Read(buf)
	if string(buf[:n]) != "ef" {
		t.Fatalf("read 3: %q", buf[:n])
	}
	if _, err := c.Read(buf); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestConnBlocksUntilFeed(t *testing.T) {
	c := NewConn()
	c.SetFinal(nil)
	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Feed([]byte("late"))
	}()
	buf := make([]byte, 8)
	n, err := c.Read(buf)
	if err != nil || string(buf[:n]) != "late" {
		t.Fatalf("unexpected read %q %v", buf[:n], err)
	}
}

func TestConnDeadlineAndClose(t *testing.T) {
	c := NewConn()
	c.SetFinal(nil)
	_ = c.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
	if _, err := c.Read(make([]byte, 1)); err != os.ErrDeadlineExceeded {
		t.Fatalf("expected deadline error, got %v", err)
	}

	_ = c.SetReadDeadline(time.Time{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Close()
	}()
	if _, err := c.Read(make([]byte, 1)); err != net.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if !c.Closed() {
		t.Fatal("Closed() = false")
	}
}

func TestConnRecordsWrites(t *testing.T) {
	c := NewConn()
	c.Write([]byte("GET / "))
	c.Write([]byte("HTTP/1.1\r\n"))
	if got := string(c.Written()); got != "GET / HTTP/1.1\r\n" {
		t.Fatalf("written = %q", got)
	}
}
