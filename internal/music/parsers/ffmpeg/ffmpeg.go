// Package ffmpeg streams any URL ffmpeg itself can open: radio streams,
// direct audio files, HLS manifests.
package ffmpeg

import (
	"context"
	"errors"
	"io"

	"quaver/internal/music/parsers"
)

const (
	channels   = 2
	sampleRate = 48000
)

type FFMPEGStreamer struct{}

func New() *FFMPEGStreamer { return &FFMPEGStreamer{} }

func (s *FFMPEGStreamer) GetLinkStream(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	return ffmpegLink(ctx, req.URL, seekSec)
}

func (s *FFMPEGStreamer) GetPipeStream(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	return nil, nil, errors.New("pipe streaming not supported")
}

func (s *FFMPEGStreamer) SupportsPipe() bool { return false }
