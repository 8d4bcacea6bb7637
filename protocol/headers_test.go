package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/wsupgrade/protocol"
)

func TestParseHeaderBlock(t *testing.T) {
	block := []byte("Upgrade: websocket\r\nConnection:Upgrade\r\nX-Pad:\t spaced \t\r\n\r\nframe")
	n, headers, err := protocol.ParseHeaderBlock(block, 0)
	require.NoError(t, err)
	require.Equal(t, "frame", string(block[n:]))
	require.Equal(t, []protocol.Header{
		{Name: "upgrade", Value: "websocket"},
		{Name: "connection", Value: "Upgrade"},
		{Name: "x-pad", Value: "spaced"},
	}, headers)
}

func TestParseHeaderBlockEmpty(t *testing.T) {
	for block, want := range map[string]int{"\n": 1, "\r\n": 2, "\r\nrest": 2} {
		n, headers, err := protocol.ParseHeaderBlock([]byte(block), 16)
		require.NoError(t, err)
		require.Empty(t, headers)
		require.Equal(t, want, n)
	}
}

func TestParseHeaderBlockUnterminated(t *testing.T) {
	_, _, err := protocol.ParseHeaderBlock([]byte("Upgrade: websocket\r\n"), 16)
	require.ErrorIs(t, err, protocol.ErrMalformedHeaders)
}

func TestParseHeaderBlockLimit(t *testing.T) {
	block := []byte("A: 1\nB: 2\nC: 3\n\n")
	_, headers, err := protocol.ParseHeaderBlock(block, 3)
	require.NoError(t, err)
	require.Len(t, headers, 3)

	_, _, err = protocol.ParseHeaderBlock(block, 2)
	require.ErrorIs(t, err, protocol.ErrTooManyHeaders)
	require.Equal(t, protocol.KindTooManyHeaders, protocol.KindOf(err))
	require.Contains(t, err.Error(), "too many headers")
}

func TestResponseLookups(t *testing.T) {
	resp := &protocol.Response{
		StatusCode: 101,
		Headers: []protocol.Header{
			{Name: "sec-websocket-extensions", Value: "permessage-deflate"},
			{Name: "connection", Value: "Upgrade"},
			{Name: "sec-websocket-extensions", Value: "x-custom"},
		},
	}
	require.Equal(t, "Upgrade", resp.Get("Connection"))
	require.Equal(t, "", resp.Get("upgrade"))
	require.Equal(t, []string{"permessage-deflate", "x-custom"}, resp.Values("Sec-WebSocket-Extensions"))
	require.Nil(t, resp.Values("missing"))

	hdr := resp.HTTPHeader()
	require.Equal(t, []string{"permessage-deflate", "x-custom"}, hdr.Values("Sec-Websocket-Extensions"))
	require.Equal(t, "Upgrade", hdr.Get("connection"))
}

func TestErrorKinds(t *testing.T) {
	_, _, err := protocol.ParseHeaderBlock([]byte("bad line\n\n"), 16)
	require.Error(t, err)

	var ue *protocol.UpgradeError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, protocol.KindMalformedHeaders, ue.Kind)
	require.Equal(t, "malformed_headers", ue.Kind.String())
	require.NotErrorIs(t, err, protocol.ErrTooManyHeaders)
	require.Equal(t, protocol.ErrorKind(0), protocol.KindOf(nil))
}
