// File: protocol/handshake.go
// Package protocol implements the client side of the RFC 6455 upgrade exchange.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request serialization, Sec-WebSocket-Key generation and validation of a
// parsed 101 response. The UpgradeParser never calls into this file; it is
// used by handshake drivers once parsing is done.

package protocol

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Handshake validation errors.
var (
	ErrInvalidUpgradeHeaders  = errors.New("invalid WebSocket upgrade headers")
	ErrBadAcceptKey           = errors.New("Sec-WebSocket-Accept does not match the challenge key")
	ErrUnexpectedSubprotocol  = errors.New("server selected a subprotocol that was not offered")
	ErrMissingHandshakeTarget = errors.New("handshake request has no host")
)

// HandshakeRequest describes the client's GET upgrade request.
type HandshakeRequest struct {
	Host         string
	Path         string // request-target, "" means "/"
	Key          string // Sec-WebSocket-Key
	Origin       string
	Subprotocols []string
	Header       http.Header // extra headers, written after the mandatory ones
}

// NewChallengeKey returns a random base64-encoded 16-byte Sec-WebSocket-Key.
func NewChallengeKey() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("challenge key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// ComputeAcceptKey computes the Sec-WebSocket-Accept value for a client key
// as specified in RFC 6455 section 1.3.
func ComputeAcceptKey(clientKey string) string {
	hash := sha1.Sum([]byte(clientKey + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// AppendHandshakeRequest serializes req onto dst.
func AppendHandshakeRequest(dst []byte, req *HandshakeRequest) ([]byte, error) {
	if req.Host == "" {
		return dst, ErrMissingHandshakeTarget
	}
	path := req.Path
	if path == "" {
		path = "/"
	}
	dst = append(dst, "GET "...)
	dst = append(dst, path...)
	dst = append(dst, " HTTP/1.1\r\n"...)
	dst = appendField(dst, "Host", req.Host)
	dst = appendField(dst, "Upgrade", "websocket")
	dst = appendField(dst, "Connection", "Upgrade")
	dst = appendField(dst, "Sec-WebSocket-Key", req.Key)
	dst = appendField(dst, "Sec-WebSocket-Version", RequiredWebSocketVersion)
	if req.Origin != "" {
		dst = appendField(dst, "Origin", req.Origin)
	}
	if len(req.Subprotocols) > 0 {
		dst = appendField(dst, "Sec-WebSocket-Protocol", strings.Join(req.Subprotocols, ", "))
	}
	for k, vs := range req.Header {
		if !httpguts.ValidHeaderFieldName(k) {
			return dst, fmt.Errorf("invalid request header name %q", k)
		}
		for _, v := range vs {
			if !httpguts.ValidHeaderFieldValue(v) {
				return dst, fmt.Errorf("invalid value for request header %q", k)
			}
			dst = appendField(dst, k, v)
		}
	}
	return append(dst, "\r\n"...), nil
}

// WriteHandshakeRequest writes the serialized request to w in one call.
func WriteHandshakeRequest(w io.Writer, req *HandshakeRequest) error {
	buf, err := AppendHandshakeRequest(make([]byte, 0, 256), req)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("handshake write request: %w", err)
	}
	return nil
}

// VerifyUpgradeTokens checks that the response carries "Upgrade: websocket"
// and a Connection header listing "upgrade".
func VerifyUpgradeTokens(resp *Response) error {
	if !httpguts.HeaderValuesContainsToken(resp.Values(HeaderUpgrade), "websocket") ||
		!httpguts.HeaderValuesContainsToken(resp.Values(HeaderConnection), "upgrade") {
		return ErrInvalidUpgradeHeaders
	}
	return nil
}

// VerifyUpgradeResponse checks the Upgrade and Connection tokens, the accept
// key derived from key, and that any selected subprotocol was offered.
func VerifyUpgradeResponse(resp *Response, key string, offered []string) error {
	if err := VerifyUpgradeTokens(resp); err != nil {
		return err
	}
	if resp.Get(HeaderSecWebSocketAccept) != ComputeAcceptKey(key) {
		return ErrBadAcceptKey
	}
	if proto := resp.Get(HeaderSecWebSocketProto); proto != "" {
		for _, p := range offered {
			if p == proto {
				return nil
			}
		}
		return ErrUnexpectedSubprotocol
	}
	return nil
}

func appendField(dst []byte, name, value string) []byte {
	dst = append(dst, name...)
	dst = append(dst, ": "...)
	dst = append(dst, value...)
	return append(dst, "\r\n"...)
}
