// File: client/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"log"
	"net/http"
	"time"

	"github.com/momentics/wsupgrade/control"
	"github.com/momentics/wsupgrade/internal/transport"
	"github.com/momentics/wsupgrade/protocol"
)

// Config holds client handshake parameters.
type Config struct {
	URL              string        // ws://host[:port]/path
	Origin           string        // Origin header, omitted when empty
	Subprotocols     []string      // offered Sec-WebSocket-Protocol values
	Header           http.Header   // extra request headers
	HandshakeTimeout time.Duration // 0 = bounded by ctx only
	ReadBufferSize   int           // bytes per transport read
	MaxBatch         int           // chunks drained per readiness event
	MaxHeaders       int           // response header limit
	SkipAcceptCheck  bool          // skip Sec-WebSocket-Accept and subprotocol checks

	Logger  *log.Logger              // nil = log.Default()
	Metrics *control.MetricsRegistry // nil = no accounting
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		URL:              "ws://localhost:9000/",
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   transport.DefaultBufferSize,
		MaxBatch:         transport.DefaultMaxBatch,
		MaxHeaders:       protocol.DefaultMaxHeaders,
	}
}

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

func (c *Config) parserConfig() protocol.ParserConfig {
	return protocol.ParserConfig{MaxHeaders: c.MaxHeaders}
}
