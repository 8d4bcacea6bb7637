// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Upgrade handshake wire constants

package protocol

const (
	// StatusLinePrefix must open every accepted upgrade response. The reason
	// phrase after it varies across servers and is not checked.
	StatusLinePrefix = "HTTP/1.1 101 "

	// StatusSwitchingProtocols is the only status an UpgradeParser reports.
	StatusSwitchingProtocols = 101

	// DefaultMaxHeaders bounds the number of header lines in one response.
	DefaultMaxHeaders = 16

	// WebSocketGUID is the RFC 6455 accept-key suffix.
	WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

	// RequiredWebSocketVersion is sent in Sec-WebSocket-Version.
	RequiredWebSocketVersion = "13"
)

// Header names used by the handshake helpers, lowercase as the parser emits them.
const (
	HeaderConnection          = "connection"
	HeaderUpgrade             = "upgrade"
	HeaderSecWebSocketKey     = "sec-websocket-key"
	HeaderSecWebSocketAccept  = "sec-websocket-accept"
	HeaderSecWebSocketVersion = "sec-websocket-version"
	HeaderSecWebSocketProto   = "sec-websocket-protocol"
)
