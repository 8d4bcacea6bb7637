package protocol_test

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/wsupgrade/protocol"
)

func TestComputeAcceptKey(t *testing.T) {
	// RFC 6455 section 1.3 example.
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", protocol.ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestNewChallengeKey(t *testing.T) {
	a, err := protocol.NewChallengeKey()
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	require.Len(t, raw, 16)

	b, err := protocol.NewChallengeKey()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestAppendHandshakeRequest(t *testing.T) {
	req := &protocol.HandshakeRequest{
		Host:         "example.com:8080",
		Path:         "/chat?room=1",
		Key:          "dGhlIHNhbXBsZSBub25jZQ==",
		Origin:       "http://example.com",
		Subprotocols: []string{"chat", "superchat"},
		Header:       http.Header{"X-Trace": {"abc"}},
	}
	buf, err := protocol.AppendHandshakeRequest(nil, req)
	require.NoError(t, err)

	got := string(buf)
	require.True(t, strings.HasPrefix(got, "GET /chat?room=1 HTTP/1.1\r\nHost: example.com:8080\r\n"))
	require.True(t, strings.HasSuffix(got, "\r\n\r\n"))
	for _, line := range []string{
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==",
		"Sec-WebSocket-Version: 13",
		"Origin: http://example.com",
		"Sec-WebSocket-Protocol: chat, superchat",
		"X-Trace: abc",
	} {
		require.Contains(t, got, "\r\n"+line+"\r\n")
	}
}

func TestAppendHandshakeRequestDefaults(t *testing.T) {
	buf, err := protocol.AppendHandshakeRequest(nil, &protocol.HandshakeRequest{Host: "h", Key: "k"})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf, []byte("GET / HTTP/1.1\r\n")))
	require.NotContains(t, string(buf), "Origin")
	require.NotContains(t, string(buf), "Sec-WebSocket-Protocol")
}

func TestAppendHandshakeRequestRejects(t *testing.T) {
	_, err := protocol.AppendHandshakeRequest(nil, &protocol.HandshakeRequest{Key: "k"})
	require.ErrorIs(t, err, protocol.ErrMissingHandshakeTarget)

	_, err = protocol.AppendHandshakeRequest(nil, &protocol.HandshakeRequest{
		Host: "h", Key: "k", Header: http.Header{"Bad Name": {"v"}},
	})
	require.Error(t, err)

	_, err = protocol.AppendHandshakeRequest(nil, &protocol.HandshakeRequest{
		Host: "h", Key: "k", Header: http.Header{"X-Ok": {"a\r\nInjected: 1"}},
	})
	require.Error(t, err)
}

func TestWriteHandshakeRequest(t *testing.T) {
	var w bytes.Buffer
	require.NoError(t, protocol.WriteHandshakeRequest(&w, &protocol.HandshakeRequest{Host: "h", Key: "k"}))
	require.Contains(t, w.String(), "Sec-WebSocket-Key: k\r\n")
}

func upgradeResponse(extra ...protocol.Header) *protocol.Response {
	return &protocol.Response{
		StatusCode: 101,
		Headers: append([]protocol.Header{
			{Name: "upgrade", Value: "WebSocket"},
			{Name: "connection", Value: "keep-alive, Upgrade"},
			{Name: "sec-websocket-accept", Value: "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="},
		}, extra...),
	}
}

func TestVerifyUpgradeResponse(t *testing.T) {
	const key = "dGhlIHNhbXBsZSBub25jZQ=="

	require.NoError(t, protocol.VerifyUpgradeResponse(upgradeResponse(), key, nil))
	require.ErrorIs(t, protocol.VerifyUpgradeResponse(upgradeResponse(), "other", nil), protocol.ErrBadAcceptKey)

	missing := &protocol.Response{StatusCode: 101, Headers: []protocol.Header{{Name: "upgrade", Value: "websocket"}}}
	require.ErrorIs(t, protocol.VerifyUpgradeResponse(missing, key, nil), protocol.ErrInvalidUpgradeHeaders)

	withProto := upgradeResponse(protocol.Header{Name: "sec-websocket-protocol", Value: "chat"})
	require.NoError(t, protocol.VerifyUpgradeResponse(withProto, key, []string{"superchat", "chat"}))
	require.ErrorIs(t, protocol.VerifyUpgradeResponse(withProto, key, []string{"superchat"}), protocol.ErrUnexpectedSubprotocol)
}
