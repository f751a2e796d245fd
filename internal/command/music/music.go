// Package music implements the playback slash commands.
package music

import (
	"errors"
	"fmt"

	"quaver/internal/command"
	"quaver/internal/music/player"
	"quaver/internal/music/source_resolver"
	"quaver/internal/music/sources"
)

// VoiceFinder locates the voice channel a user currently occupies.
type VoiceFinder interface {
	FindUserVoiceState(guildID, userID string) (string, error)
}

type Deps struct {
	Manager  *player.Manager
	Resolver *source_resolver.SourceResolver
	Voice    VoiceFinder
}

// Commands returns the full music command set.
func Commands(d *Deps) []command.Command {
	return []command.Command{
		&PlayCommand{deps: d},
		&PauseCommand{deps: d},
		&ResumeCommand{deps: d},
		&SkipCommand{deps: d},
		&StopCommand{deps: d},
		&QueueCommand{deps: d},
		&ClearCommand{deps: d},
	}
}

// friendly maps player and resolver errors to user-facing text.
func friendly(err error) string {
	var resErr *sources.ResolutionError
	if errors.As(err, &resErr) {
		return fmt.Sprintf("🎵 Couldn't resolve `%s`: %v", resErr.Input, resErr.Err)
	}

	var invalid *player.InvalidTransitionError
	if errors.As(err, &invalid) {
		return fmt.Sprintf("🎵 Nothing to %s right now.", invalid.Op)
	}

	var connErr *player.ConnectionError
	if errors.As(err, &connErr) {
		return "🎵 Couldn't join the voice channel. Try again in a moment."
	}

	if errors.Is(err, player.ErrStopped) {
		return "🎵 Playback was stopped. Start a new one with /play."
	}

	return fmt.Sprintf("🎵 Error: %v", err)
}
