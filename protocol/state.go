// File: protocol/state.go
// Author: momentics <momentics@gmail.com>
//
// Upgrade parser state machine states.

package protocol

// UpgradeState is the position of an UpgradeParser in its strictly forward
// progression Initial -> StatusLine -> Headers -> Complete.
type UpgradeState int

const (
	StateInitial UpgradeState = iota
	StateStatusLine
	StateHeaders
	StateComplete
)

func (s UpgradeState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateStatusLine:
		return "status_line"
	case StateHeaders:
		return "headers"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}
