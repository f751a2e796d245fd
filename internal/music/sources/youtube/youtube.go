// Package youtube resolves YouTube URLs, playlists and free-text searches
// into playable tracks.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quaver/internal/music/sources"
	"quaver/pkg/retrylimit"

	kkdai "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
)

type YouTubeSource struct {
	client      *kkdai.Client
	resolver    *SearchResolver
	limiter     *retrylimit.AdaptiveLimiter
	maxPlaylist int
	log         zerolog.Logger
}

func New(log zerolog.Logger, maxPlaylist int) *YouTubeSource {
	return &YouTubeSource{
		client: &kkdai.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
		resolver:    NewSearchResolver(),
		limiter:     retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		maxPlaylist: maxPlaylist,
		log:         log.With().Str("component", "youtube").Logger(),
	}
}

func (y *YouTubeSource) SourceName() string { return sources.SourceYouTube }

func (y *YouTubeSource) AvailableParsers() []string {
	return []string{"kkdai-link", "kkdai-pipe", "ytdlp-link", "ytdlp-pipe"}
}

func (y *YouTubeSource) Match(input string) bool {
	return isYouTubeURL(input)
}

func (y *YouTubeSource) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	input = strings.TrimSpace(input)

	switch {
	case isYouTubePlaylistURL(input):
		return y.resolvePlaylist(ctx, input)
	case isYouTubeVideoURL(input):
		return y.resolveVideo(ctx, CleanVideoURL(input))
	case isURL(input):
		return nil, errors.New("invalid YouTube URL format")
	default:
		return y.resolveSearch(ctx, input)
	}
}

func (y *YouTubeSource) resolveVideo(ctx context.Context, videoURL string) ([]sources.TrackInfo, error) {
	var video *kkdai.Video
	err := retrylimit.WithRetryMax(ctx, func() error {
		v, err := y.client.GetVideoContext(ctx, videoURL)
		if err != nil {
			return err
		}
		video = v
		return nil
	}, y.limiter, 3)
	if err != nil {
		return nil, fmt.Errorf("video lookup failed: %w", err)
	}

	return []sources.TrackInfo{{
		URL:              videoURL,
		Title:            video.Title,
		Artist:           video.Author,
		Duration:         video.Duration,
		SourceName:       sources.SourceYouTube,
		AvailableParsers: y.AvailableParsers(),
	}}, nil
}

func (y *YouTubeSource) resolvePlaylist(ctx context.Context, playlistURL string) ([]sources.TrackInfo, error) {
	var playlist *kkdai.Playlist
	err := retrylimit.WithRetryMax(ctx, func() error {
		pl, err := y.client.GetPlaylistContext(ctx, playlistURL)
		if err != nil {
			return err
		}
		playlist = pl
		return nil
	}, y.limiter, 3)
	if err != nil {
		return nil, fmt.Errorf("playlist lookup failed: %w", err)
	}

	if len(playlist.Videos) == 0 {
		return nil, sources.ErrNotFound
	}

	entries := playlist.Videos
	if y.maxPlaylist > 0 && len(entries) > y.maxPlaylist {
		y.log.Warn().
			Int("size", len(entries)).
			Int("cap", y.maxPlaylist).
			Msg("playlist truncated")
		entries = entries[:y.maxPlaylist]
	}

	tracks := make([]sources.TrackInfo, 0, len(entries))
	for _, e := range entries {
		tracks = append(tracks, sources.TrackInfo{
			URL:              fmt.Sprintf("https://www.youtube.com/watch?v=%s", e.ID),
			Title:            e.Title,
			Artist:           e.Author,
			Duration:         e.Duration,
			SourceName:       sources.SourceYouTube,
			AvailableParsers: y.AvailableParsers(),
		})
	}
	return tracks, nil
}

func (y *YouTubeSource) resolveSearch(ctx context.Context, query string) ([]sources.TrackInfo, error) {
	videoURL, err := y.SearchFirstVideoURL(ctx, query)
	if err != nil {
		return nil, err
	}
	return y.resolveVideo(ctx, videoURL)
}

// SearchFirstVideoURL returns the watch URL of the top search result for
// query. It is also used by the player to late-resolve Spotify tracks.
func (y *YouTubeSource) SearchFirstVideoURL(ctx context.Context, query string) (string, error) {
	var videoURL string
	err := retrylimit.WithRetryMax(ctx, func() error {
		u, err := y.resolver.SearchFirstVideoURL(ctx, query)
		if err != nil {
			if errors.Is(err, ErrNoVideoMatch) {
				return &retrylimit.FatalError{Err: err}
			}
			return err
		}
		videoURL = u
		return nil
	}, y.limiter, 3)
	if err != nil {
		if errors.Is(err, ErrNoVideoMatch) {
			return "", sources.ErrNotFound
		}
		return "", fmt.Errorf("search failed: %w", err)
	}
	return CleanVideoURL(videoURL), nil
}
