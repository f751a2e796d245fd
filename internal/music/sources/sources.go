// Package sources defines the contract between the resolver and the
// individual media providers.
package sources

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	SourceYouTube = "youtube"
	SourceSpotify = "spotify"
	SourceDirect  = "direct"
)

// TrackInfo is the result of resolving a user query against one provider.
// A Spotify result has no URL yet; its SearchQuery is matched to a YouTube
// video at play time.
type TrackInfo struct {
	URL              string
	Title            string
	Artist           string
	SearchQuery      string
	Duration         time.Duration
	SourceName       string
	AvailableParsers []string
}

// Source is a single media provider.
type Source interface {
	// Match checks if this source can handle the given input.
	Match(input string) bool

	// Resolve turns an input into one or more playable tracks,
	// preserving provider ordering for playlists and albums.
	Resolve(ctx context.Context, input string) ([]TrackInfo, error)

	// SourceName returns the string identifier ("youtube", "spotify", ...).
	SourceName() string

	// AvailableParsers returns the stream parsers this source's tracks support.
	AvailableParsers() []string
}

// ErrNotFound indicates a query produced no results.
var ErrNotFound = errors.New("no results found")

// ResolutionError wraps any failure to turn input into tracks, keeping the
// offending input and provider for reporting.
type ResolutionError struct {
	Input  string
	Source string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("resolving %q via %s: %v", e.Input, e.Source, e.Err)
	}
	return fmt.Sprintf("resolving %q: %v", e.Input, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
