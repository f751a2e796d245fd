// Package ytdlp shells out to yt-dlp for sites the native client cannot
// handle, and as a fallback when it fails.
package ytdlp

import (
	"context"
	"io"

	"quaver/internal/music/parsers"
)

const (
	channels   = 2
	sampleRate = 48000
)

type YTDLPStreamer struct{}

func New() *YTDLPStreamer { return &YTDLPStreamer{} }

func (s *YTDLPStreamer) GetLinkStream(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	return ytdlpLink(ctx, req, seekSec)
}

func (s *YTDLPStreamer) GetPipeStream(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	return ytdlpPipe(ctx, req, seekSec)
}

func (s *YTDLPStreamer) SupportsPipe() bool { return true }
