// File: adapters/gnet.go
// Package adapters
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event-loop upgrade driver for gnet clients. The loop hands OnTraffic
// whatever bytes are buffered, with arbitrary boundaries; each connection owns
// an UpgradeParser that turns those bytes into the 101 response and passes the
// post-handshake remainder to the application untouched.

package adapters

import (
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/panjf2000/gnet/v2"
	"github.com/pkg/errors"

	"github.com/momentics/wsupgrade/api"
	"github.com/momentics/wsupgrade/client"
	"github.com/momentics/wsupgrade/control"
	"github.com/momentics/wsupgrade/protocol"
)

// GnetConfig configures a GnetUpgrader.
type GnetConfig struct {
	URL          string
	Origin       string
	Subprotocols []string
	Header       http.Header
	MaxHeaders   int

	// OnUpgrade runs once the response is accepted. leftover holds bytes that
	// followed the header block in the same read.
	OnUpgrade func(c gnet.Conn, resp *protocol.Response, leftover []byte)
	// OnData receives post-handshake traffic. data is only valid during the call.
	OnData func(c gnet.Conn, data []byte)
	// OnError reports a failed handshake; the connection is closed afterwards.
	OnError func(c gnet.Conn, err error)

	Logger  *log.Logger
	Metrics *control.MetricsRegistry
}

// GnetUpgrader implements gnet.EventHandler for client connections.
type GnetUpgrader struct {
	gnet.BuiltinEventEngine
	cfg    GnetConfig
	target *url.URL
}

// gnetSession is the per-connection handshake state kept in the gnet.Conn context.
type gnetSession struct {
	parser *protocol.UpgradeParser
	key    string
	status api.HandshakeStatus
}

// NewGnetUpgrader validates cfg.URL and builds the event handler.
func NewGnetUpgrader(cfg GnetConfig) (*GnetUpgrader, error) {
	u, err := client.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &GnetUpgrader{cfg: cfg, target: u}, nil
}

// NewClient creates a gnet client driven by u.
func (u *GnetUpgrader) NewClient(opts ...gnet.Option) (*gnet.Client, error) {
	opts = append([]gnet.Option{gnet.WithTCPNoDelay(gnet.TCPNoDelay)}, opts...)
	return gnet.NewClient(u, opts...)
}

// Dial opens a connection to the configured target on cli. The upgrade
// request is sent from OnOpen.
func (u *GnetUpgrader) Dial(cli *gnet.Client) (gnet.Conn, error) {
	c, err := cli.Dial("tcp", client.HostPort(u.target))
	if err != nil {
		return nil, errors.Wrapf(err, "gnet dial %s", u.target.Host)
	}
	return c, nil
}

// OnOpen installs the session and returns the request as the first write.
func (u *GnetUpgrader) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	key, err := protocol.NewChallengeKey()
	if err != nil {
		u.report(c, err)
		return nil, gnet.Close
	}
	req, err := protocol.AppendHandshakeRequest(nil, &protocol.HandshakeRequest{
		Host:         u.target.Host,
		Path:         u.target.RequestURI(),
		Key:          key,
		Origin:       u.cfg.Origin,
		Subprotocols: u.cfg.Subprotocols,
		Header:       u.cfg.Header,
	})
	if err != nil {
		u.report(c, err)
		return nil, gnet.Close
	}
	c.SetContext(&gnetSession{
		parser: protocol.NewUpgradeParser(protocol.ParserConfig{MaxHeaders: u.cfg.MaxHeaders}),
		key:    key,
		status: api.HandshakeConnecting,
	})
	u.cfg.Metrics.Set(control.MetricLastStatus, api.HandshakeConnecting.String())
	return req, gnet.None
}

// OnTraffic feeds buffered bytes to the parser until the upgrade completes,
// then forwards everything to OnData.
func (u *GnetUpgrader) OnTraffic(c gnet.Conn) gnet.Action {
	s, ok := c.Context().(*gnetSession)
	if !ok {
		return gnet.Close
	}
	data, err := c.Next(-1)
	if err != nil {
		return gnet.Close
	}

	if s.status == api.HandshakeUpgraded {
		if u.cfg.OnData != nil && len(data) > 0 {
			u.cfg.OnData(c, data)
		}
		return gnet.None
	}

	resp, leftover, err := s.parser.Write(data)
	if err != nil {
		return u.fail(c, s, protocol.KindOf(err).String(), errors.Wrap(err, "parse upgrade response"))
	}
	if resp == nil {
		return gnet.None
	}
	if err := protocol.VerifyUpgradeResponse(resp, s.key, u.cfg.Subprotocols); err != nil {
		return u.fail(c, s, "verify", errors.Wrap(err, "verify upgrade response"))
	}

	s.status = api.HandshakeUpgraded
	u.cfg.Metrics.Add(control.MetricHandshakeOK, 1)
	u.cfg.Metrics.Add(control.MetricBytesFed, s.parser.Stats().BytesFed)
	u.cfg.Metrics.Add(control.MetricLeftoverBytes, int64(len(leftover)))
	u.cfg.Metrics.Set(control.MetricLastStatus, api.HandshakeUpgraded.String())
	if u.cfg.OnUpgrade != nil {
		u.cfg.OnUpgrade(c, resp, leftover)
	}
	return gnet.None
}

// OnClose reports connections that went away mid-handshake.
func (u *GnetUpgrader) OnClose(c gnet.Conn, err error) gnet.Action {
	s, ok := c.Context().(*gnetSession)
	if !ok {
		return gnet.None
	}
	if s.status == api.HandshakeConnecting {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		u.fail(c, s, "transport", errors.Wrap(err, "connection closed during handshake"))
	}
	s.status = api.HandshakeClosed
	return gnet.None
}

func (u *GnetUpgrader) fail(c gnet.Conn, s *gnetSession, kind string, err error) gnet.Action {
	s.status = api.HandshakeFailed
	u.cfg.Metrics.Add(control.FailureKey(kind), 1)
	u.cfg.Metrics.Set(control.MetricLastStatus, api.HandshakeFailed.String())
	u.report(c, err)
	return gnet.Close
}

func (u *GnetUpgrader) report(c gnet.Conn, err error) {
	u.cfg.Logger.Printf("[gnet] upgrade with %s failed: %v", c.RemoteAddr(), err)
	if u.cfg.OnError != nil {
		u.cfg.OnError(c, err)
	}
}
