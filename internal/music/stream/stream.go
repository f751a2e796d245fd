// Package stream opens PCM streams via the parser backends and pumps them
// to a voice connection as opus frames.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"quaver/internal/music/parsers"
	"quaver/internal/music/parsers/ffmpeg"
	"quaver/internal/music/parsers/kkdai"
	"quaver/internal/music/parsers/ytdlp"

	"github.com/rs/zerolog"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// StreamError marks a failure inside an already-started audio pipeline.
type StreamError struct {
	Parser string
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error (parser %s): %v", e.Parser, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// TrackStream is an open PCM stream plus the process cleanup for it.
type TrackStream struct {
	io.ReadCloser
	Parser  string
	cleanup func()
}

func (ts *TrackStream) Close() error {
	err := ts.ReadCloser.Close()
	if ts.cleanup != nil {
		ts.cleanup()
	}
	return err
}

// Registry maps parser names to streaming backends.
type Registry struct {
	streamers map[string]parsers.Streamer
	log       zerolog.Logger
}

func NewRegistry(log zerolog.Logger, proxyStr string) *Registry {
	kk := kkdai.New(proxyStr)
	yt := ytdlp.New()
	return &Registry{
		streamers: map[string]parsers.Streamer{
			"kkdai-link":  kk,
			"kkdai-pipe":  kk,
			"ytdlp-link":  yt,
			"ytdlp-pipe":  yt,
			"ffmpeg-link": ffmpeg.New(),
		},
		log: log.With().Str("component", "stream").Logger(),
	}
}

// Register replaces or adds a backend under the given parser name.
func (r *Registry) Register(name string, s parsers.Streamer) {
	r.streamers[name] = s
}

func isPipeMode(parser string) bool {
	return parser == "ytdlp-pipe" || parser == "kkdai-pipe"
}

// Open tries each parser in order until one produces a stream. seekSec
// resumes playback mid-track after a recovery.
func (r *Registry) Open(ctx context.Context, req *parsers.Request, parserNames []string, seekSec float64) (*TrackStream, error) {
	if len(parserNames) == 0 {
		return nil, errors.New("no parsers available for track")
	}

	var errs []error
	for _, name := range parserNames {
		streamer, ok := r.streamers[name]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown parser: %s", name))
			continue
		}

		var (
			rc      io.ReadCloser
			cleanup func()
			err     error
		)
		if isPipeMode(name) && streamer.SupportsPipe() {
			rc, cleanup, err = streamer.GetPipeStream(ctx, req, seekSec)
		} else {
			rc, cleanup, err = streamer.GetLinkStream(ctx, req, seekSec)
		}
		if err != nil {
			r.log.Warn().Str("parser", name).Str("url", req.URL).Err(err).Msg("parser failed, trying next")
			errs = append(errs, fmt.Errorf("parser %s: %w", name, err))
			continue
		}

		r.log.Debug().Str("parser", name).Str("url", req.URL).Float64("seek", seekSec).Msg("stream opened")
		return &TrackStream{ReadCloser: rc, Parser: name, cleanup: cleanup}, nil
	}

	return nil, fmt.Errorf("all parsers failed for %s: %w", req.URL, errors.Join(errs...))
}
