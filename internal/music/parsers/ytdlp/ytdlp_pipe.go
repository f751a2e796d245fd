package ytdlp

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"quaver/internal/music/parsers"
)

func ytdlpPipe(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	info, err := probe(ctx, req.URL)
	if err != nil {
		return nil, nil, err
	}

	req.Duration = time.Duration(info.Duration * float64(time.Second))
	if req.Title == "" {
		req.Title = info.Title
	}

	ytdlp := exec.CommandContext(ctx, "yt-dlp", "-o", "-", "-f", "bestaudio", req.URL)
	ffmpeg := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seekSec),
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	ffmpegIn, err := ytdlp.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("yt-dlp stdout pipe error: %w", err)
	}
	ffmpeg.Stdin = ffmpegIn

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}

	if err := ytdlp.Start(); err != nil {
		return nil, nil, fmt.Errorf("yt-dlp start error: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		ytdlp.Process.Kill()
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		ffmpeg.Process.Kill()
		ytdlp.Process.Kill()
		ffmpeg.Wait()
		ytdlp.Wait()
	}

	return reader, cleanup, nil
}
