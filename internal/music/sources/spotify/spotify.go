// Package spotify resolves Spotify track, playlist and album links into
// search queries that are matched against YouTube at playback time.
// Spotify exposes no raw audio, so tracks leave this source with an empty
// URL and a populated SearchQuery.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"quaver/internal/music/sources"

	"github.com/rs/zerolog"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type SpotifySource struct {
	mu          sync.RWMutex
	client      *spotifyapi.Client
	maxPlaylist int
	log         zerolog.Logger
}

func New(ctx context.Context, log zerolog.Logger, clientID, clientSecret string, maxPlaylist int) (*SpotifySource, error) {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify token request failed: %w", err)
	}

	return &SpotifySource{
		client:      clientForToken(ctx, token),
		maxPlaylist: maxPlaylist,
		log:         log.With().Str("component", "spotify").Logger(),
	}, nil
}

func clientForToken(ctx context.Context, token *oauth2.Token) *spotifyapi.Client {
	httpClient := spotifyauth.New().Client(ctx, token)
	httpClient.Timeout = 15 * time.Second
	return spotifyapi.New(httpClient, spotifyapi.WithRetry(true))
}

// UseToken swaps the client-credentials client for one carrying a
// user-granted token, which unlocks private playlists. Safe to call while
// resolutions are in flight.
func (s *SpotifySource) UseToken(ctx context.Context, token *oauth2.Token) {
	client := clientForToken(ctx, token)
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	s.log.Info().Msg("switched to user-granted token")
}

func (s *SpotifySource) api() *spotifyapi.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *SpotifySource) SourceName() string { return sources.SourceSpotify }

// AvailableParsers lists the parsers for the YouTube stream the track will
// eventually be matched to.
func (s *SpotifySource) AvailableParsers() []string {
	return []string{"kkdai-link", "kkdai-pipe", "ytdlp-link", "ytdlp-pipe"}
}

func (s *SpotifySource) Match(input string) bool {
	kind, _ := ParseSpotifyURL(input)
	return kind != KindNone
}

func (s *SpotifySource) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	kind, id := ParseSpotifyURL(input)

	switch kind {
	case KindTrack:
		return s.resolveTrack(ctx, id)
	case KindPlaylist:
		return s.resolvePlaylist(ctx, id)
	case KindAlbum:
		return s.resolveAlbum(ctx, id)
	default:
		return nil, fmt.Errorf("unrecognized Spotify URL: %s", input)
	}
}

func (s *SpotifySource) resolveTrack(ctx context.Context, id string) ([]sources.TrackInfo, error) {
	track, err := s.api().GetTrack(ctx, spotifyapi.ID(id))
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return []sources.TrackInfo{trackInfo(track.Name, artistNames(track.Artists), track.TimeDuration())}, nil
}

func (s *SpotifySource) resolvePlaylist(ctx context.Context, id string) ([]sources.TrackInfo, error) {
	var tracks []sources.TrackInfo
	limit := 50
	offset := 0

	for {
		page, err := s.api().GetPlaylistItems(ctx, spotifyapi.ID(id),
			spotifyapi.Limit(limit), spotifyapi.Offset(offset))
		if err != nil {
			return nil, wrapNotFound(err)
		}

		for i := range page.Items {
			t := page.Items[i].Track.Track
			if t == nil {
				continue
			}
			tracks = append(tracks, trackInfo(t.Name, artistNames(t.Artists), t.TimeDuration()))
			if s.maxPlaylist > 0 && len(tracks) >= s.maxPlaylist {
				s.log.Warn().Str("playlist", id).Int("cap", s.maxPlaylist).Msg("playlist truncated")
				return tracks, nil
			}
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	if len(tracks) == 0 {
		return nil, sources.ErrNotFound
	}
	return tracks, nil
}

func (s *SpotifySource) resolveAlbum(ctx context.Context, id string) ([]sources.TrackInfo, error) {
	album, err := s.api().GetAlbum(ctx, spotifyapi.ID(id))
	if err != nil {
		return nil, wrapNotFound(err)
	}

	var tracks []sources.TrackInfo
	for i := range album.Tracks.Tracks {
		t := &album.Tracks.Tracks[i]
		tracks = append(tracks, trackInfo(t.Name, artistNames(t.Artists), t.TimeDuration()))
		if s.maxPlaylist > 0 && len(tracks) >= s.maxPlaylist {
			break
		}
	}

	if len(tracks) == 0 {
		return nil, sources.ErrNotFound
	}
	return tracks, nil
}

func trackInfo(title, artist string, duration time.Duration) sources.TrackInfo {
	return sources.TrackInfo{
		Title:            title,
		Artist:           artist,
		SearchQuery:      strings.TrimSpace(artist + " " + title),
		Duration:         duration,
		SourceName:       sources.SourceSpotify,
		AvailableParsers: []string{"kkdai-link", "kkdai-pipe", "ytdlp-link", "ytdlp-pipe"},
	}
}

func artistNames(artists []spotifyapi.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func wrapNotFound(err error) error {
	var se spotifyapi.Error
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return sources.ErrNotFound
	}
	return err
}
