// File: client/client.go
// Package client drives the client side of a WebSocket upgrade over a plain
// TCP connection.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The driver writes the GET upgrade request, reads the response through the
// batching transport reader and feeds every chunk, in order, into an
// UpgradeParser. Bytes the server sent after the header block (typically the
// first frames) are never dropped: they are returned through Conn.Read ahead
// of the socket.

package client

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/momentics/wsupgrade/api"
	"github.com/momentics/wsupgrade/control"
	"github.com/momentics/wsupgrade/internal/transport"
	"github.com/momentics/wsupgrade/protocol"
)

// aLongTimeAgo is a deadline in the past, used to unblock pending reads.
var aLongTimeAgo = time.Unix(1, 0)

// Dial connects to cfg.URL and performs the upgrade handshake.
func Dial(ctx context.Context, cfg *Config) (*Conn, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	u, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", HostPort(u))
	if err != nil {
		cfg.Metrics.Add(control.FailureKey("dial"), 1)
		return nil, errors.Wrapf(err, "dial %s", u.Host)
	}
	return Handshake(ctx, nc, cfg)
}

// Handshake upgrades an established connection. On failure nc is closed.
func Handshake(ctx context.Context, nc net.Conn, cfg *Config) (*Conn, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	start := time.Now()
	cfg.Metrics.Set(control.MetricLastStatus, api.HandshakeConnecting.String())

	conn, err := handshake(ctx, nc, cfg)
	cfg.Metrics.Set(control.MetricHandshakeDuration, time.Since(start))
	if err != nil {
		cfg.Metrics.Add(control.FailureKey(failureKind(err)), 1)
		cfg.Metrics.Set(control.MetricLastStatus, api.HandshakeFailed.String())
		cfg.logger().Printf("[client] handshake with %s failed: %v", nc.RemoteAddr(), err)
		_ = nc.Close()
		return nil, err
	}

	st := conn.ParserStats()
	cfg.Metrics.Add(control.MetricHandshakeOK, 1)
	cfg.Metrics.Add(control.MetricBytesFed, st.BytesFed)
	cfg.Metrics.Add(control.MetricLeftoverBytes, int64(conn.Buffered()))
	cfg.Metrics.Set(control.MetricLastStatus, api.HandshakeUpgraded.String())
	return conn, nil
}

func handshake(ctx context.Context, nc net.Conn, cfg *Config) (_ *Conn, err error) {
	u, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	key, err := protocol.NewChallengeKey()
	if err != nil {
		return nil, err
	}
	req := &protocol.HandshakeRequest{
		Host:         u.Host,
		Path:         u.RequestURI(),
		Key:          key,
		Origin:       cfg.Origin,
		Subprotocols: cfg.Subprotocols,
		Header:       cfg.Header,
	}

	var deadline time.Time
	if cfg.HandshakeTimeout > 0 {
		deadline = time.Now().Add(cfg.HandshakeTimeout)
	}
	if dl, ok := ctx.Deadline(); ok && (deadline.IsZero() || dl.Before(deadline)) {
		deadline = dl
	}
	if !deadline.IsZero() {
		_ = nc.SetDeadline(deadline)
	}
	// Cancellation unblocks the write or read in progress.
	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = nc.SetDeadline(aLongTimeAgo)
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
		}
		_ = nc.SetDeadline(time.Time{})
		err = classify(ctx, err)
	}()

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	if bb.B, err = protocol.AppendHandshakeRequest(bb.B[:0], req); err != nil {
		return nil, errors.Wrap(err, "build handshake request")
	}
	if _, err = nc.Write(bb.B); err != nil {
		return nil, errors.Wrap(err, "write handshake request")
	}

	rd := transport.NewReader(nc, cfg.ReadBufferSize, cfg.MaxBatch)
	defer rd.Close()

	p := protocol.NewUpgradeParser(cfg.parserConfig())
	resp, prefix, err := readUpgrade(rd, p)
	if err != nil {
		return nil, err
	}

	if err = protocol.VerifyUpgradeTokens(resp); err != nil {
		return nil, errors.Wrap(err, "verify upgrade response")
	}
	if !cfg.SkipAcceptCheck {
		if err = protocol.VerifyUpgradeResponse(resp, key, cfg.Subprotocols); err != nil {
			return nil, errors.Wrap(err, "verify upgrade response")
		}
	}
	return newConn(nc, resp, prefix, p.Stats()), nil
}

// readUpgrade feeds chunks from rd into p until the response completes. The
// returned prefix holds every byte received past the header block, including
// chunks of the last batch that the parser never saw.
func readUpgrade(rd api.ChunkReader, p *protocol.UpgradeParser) (*protocol.Response, []byte, error) {
	pending := newChunkQueue()
	for {
		chunks, rerr := rd.Recv()
		pending.PushBatch(chunks)
		for pending.Len() > 0 {
			resp, leftover, err := p.Write(pending.Pop())
			if err != nil {
				return nil, nil, errors.Wrap(err, "parse upgrade response")
			}
			if resp != nil {
				return resp, pending.DrainInto(leftover), nil
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return nil, nil, errors.Wrap(io.ErrUnexpectedEOF, "connection closed during handshake")
			}
			return nil, nil, errors.Wrap(rerr, "read upgrade response")
		}
	}
}

// classify maps deadline expiry onto the cause that set the deadline.
func classify(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, os.ErrDeadlineExceeded) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrap(ctxErr, "handshake interrupted")
	}
	return errors.Wrap(api.ErrOperationTimeout, "handshake timed out")
}

// failureKind names the metric bucket for a handshake error.
func failureKind(err error) string {
	if kind := protocol.KindOf(err); kind != 0 {
		return kind.String()
	}
	switch {
	case errors.Is(err, api.ErrOperationTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, protocol.ErrInvalidUpgradeHeaders),
		errors.Is(err, protocol.ErrBadAcceptKey),
		errors.Is(err, protocol.ErrUnexpectedSubprotocol):
		return "verify"
	case errors.Is(err, api.ErrNotSupported), errors.Is(err, api.ErrInvalidArgument):
		return "config"
	default:
		return "transport"
	}
}

// ParseURL validates a ws:// or http:// handshake target.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "invalid URL").WithContext("url", raw)
	}
	switch u.Scheme {
	case "ws", "http":
	case "wss", "https":
		return nil, api.NewError(api.ErrCodeNotSupported, "TLS upgrade is not supported").WithContext("scheme", u.Scheme)
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unsupported URL scheme").WithContext("scheme", u.Scheme)
	}
	if u.Host == "" {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "URL has no host").WithContext("url", raw)
	}
	return u, nil
}

// HostPort returns the dial address for u, defaulting the port to 80.
func HostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), "80")
}
