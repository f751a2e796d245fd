package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"quaver/internal/music/parsers"
)

type fragment struct {
	Duration float64 `json:"duration"`
}

type format struct {
	URL       string     `json:"url"`
	Fragments []fragment `json:"fragments,omitempty"`
}

type ytdlpInfo struct {
	Title    string   `json:"title"`
	Duration float64  `json:"duration"`
	Formats  []format `json:"formats"`
	URL      string   `json:"url"`
}

func probe(ctx context.Context, rawURL string) (*ytdlpInfo, error) {
	out, err := exec.CommandContext(ctx, "yt-dlp", "-j", "-f", "bestaudio", rawURL).Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp probe error: %w", err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}

	// Live/DASH streams report duration only on fragments.
	if info.Duration == 0 && len(info.Formats) > 0 && len(info.Formats[0].Fragments) > 0 {
		info.Duration = info.Formats[0].Fragments[0].Duration
	}

	return &info, nil
}

func ytdlpLink(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	info, err := probe(ctx, req.URL)
	if err != nil {
		return nil, nil, err
	}

	link := strings.TrimSpace(info.URL)
	if link == "" && len(info.Formats) > 0 {
		link = strings.TrimSpace(info.Formats[0].URL)
	}
	if link == "" {
		return nil, nil, errors.New("empty URL returned from yt-dlp")
	}

	req.Duration = time.Duration(info.Duration * float64(time.Second))
	if req.Title == "" {
		req.Title = info.Title
	}

	ffmpeg := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seekSec),
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		ffmpeg.Process.Kill()
		ffmpeg.Wait()
	}

	return reader, cleanup, nil
}
