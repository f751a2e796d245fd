// Package parsers defines the streaming backends that turn a track URL
// into raw PCM audio. A backend offers up to two modes: link (hand ffmpeg
// a direct media URL) and pipe (feed the media bytes through stdin).
package parsers

import (
	"context"
	"io"
	"time"
)

// Request carries the track being opened. Backends may fill in metadata
// they discover along the way (duration, title).
type Request struct {
	URL      string
	Title    string
	Artist   string
	Duration time.Duration
}

type Streamer interface {
	GetLinkStream(ctx context.Context, req *Request, seekSec float64) (io.ReadCloser, func(), error)
	GetPipeStream(ctx context.Context, req *Request, seekSec float64) (io.ReadCloser, func(), error)
	SupportsPipe() bool
}
