package player

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by operations on a player whose session has been
// torn down. The manager replaces stopped players with fresh ones.
var ErrStopped = errors.New("player session stopped")

// InvalidTransitionError reports a command that does not apply to the
// player's current state. Callers treat it as a no-op, never as fatal.
type InvalidTransitionError struct {
	Op    string
	State State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

// ConnectionError reports a failure to join or keep a voice channel.
type ConnectionError struct {
	GuildID   string
	ChannelID string
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("voice connection failed (guild %s, channel %s): %v", e.GuildID, e.ChannelID, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
