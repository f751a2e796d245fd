package kkdai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"quaver/internal/music/parsers"
)

func (s *KKDAIStreamer) pipeStream(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	videoID, err := extractYouTubeID(req.URL)
	if err != nil {
		return nil, nil, err
	}

	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] youtube client error: %w", err)
	}

	req.Duration = video.Duration
	if req.Title == "" {
		req.Title = video.Title
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("[kkdai-pipe] no audio formats found for video")
	}

	stream, _, err := s.client.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return nil, nil, fmt.Errorf("get stream error: %w", err)
	}

	ffmpeg := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seekSec),
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	ffmpeg.Stdin = stream
	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		stream.Close()
		ffmpeg.Process.Kill()
		ffmpeg.Wait()
	}

	return reader, cleanup, nil
}
