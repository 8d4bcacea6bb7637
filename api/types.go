// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

// HandshakeStatus enumerates the progress of one client upgrade attempt.
type HandshakeStatus int

const (
	HandshakeUnknown HandshakeStatus = iota
	HandshakeConnecting
	HandshakeUpgraded
	HandshakeFailed
	HandshakeClosed
)

func (s HandshakeStatus) String() string {
	switch s {
	case HandshakeConnecting:
		return "connecting"
	case HandshakeUpgraded:
		return "upgraded"
	case HandshakeFailed:
		return "failed"
	case HandshakeClosed:
		return "closed"
	default:
		return "unknown"
	}
}
