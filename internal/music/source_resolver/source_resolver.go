// Package source_resolver routes a raw user query to the provider that can
// handle it: a matching URL source, or YouTube search for free text.
package source_resolver

import (
	"context"
	"errors"
	"fmt"

	"quaver/internal/music/sources"

	"github.com/rs/zerolog"
)

type SourceResolver struct {
	sources []sources.Source
	log     zerolog.Logger
}

func New(log zerolog.Logger, srcs ...sources.Source) *SourceResolver {
	return &SourceResolver{
		sources: srcs,
		log:     log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve classifies input and hands it to the right source. URLs go to the
// first source whose Match accepts them; unmatched URLs are treated as direct
// media links; free text is searched on YouTube.
func (r *SourceResolver) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	if input == "" {
		return nil, &sources.ResolutionError{Input: input, Err: errors.New("empty query")}
	}

	if isURL(input) {
		for _, src := range r.sources {
			if !src.Match(input) {
				continue
			}
			tracks, err := src.Resolve(ctx, input)
			if err != nil {
				return nil, &sources.ResolutionError{Input: input, Source: src.SourceName(), Err: err}
			}
			r.log.Debug().Str("source", src.SourceName()).Int("tracks", len(tracks)).Msg("resolved URL")
			return tracks, nil
		}

		// Unknown host: hand the URL straight to ffmpeg (radio streams,
		// direct file links).
		r.log.Debug().Str("url", input).Msg("no provider matched, treating as direct stream")
		return []sources.TrackInfo{{
			URL:              input,
			Title:            input,
			SourceName:       sources.SourceDirect,
			AvailableParsers: []string{"ffmpeg-link"},
		}}, nil
	}

	// Free text goes to YouTube search.
	for _, src := range r.sources {
		if src.SourceName() != sources.SourceYouTube {
			continue
		}
		tracks, err := src.Resolve(ctx, input)
		if err != nil {
			return nil, &sources.ResolutionError{Input: input, Source: src.SourceName(), Err: err}
		}
		return tracks, nil
	}

	return nil, &sources.ResolutionError{
		Input: input,
		Err:   fmt.Errorf("%s source not available for title search", sources.SourceYouTube),
	}
}
