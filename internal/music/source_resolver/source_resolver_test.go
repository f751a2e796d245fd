package source_resolver

import (
	"context"
	"errors"
	"testing"

	"quaver/internal/music/sources"

	"github.com/rs/zerolog"
)

type stubSource struct {
	name    string
	matches string
	tracks  []sources.TrackInfo
	err     error
}

func (s *stubSource) Match(input string) bool { return s.matches != "" && input == s.matches }
func (s *stubSource) Resolve(_ context.Context, _ string) ([]sources.TrackInfo, error) {
	return s.tracks, s.err
}
func (s *stubSource) SourceName() string         { return s.name }
func (s *stubSource) AvailableParsers() []string { return []string{"stub"} }

func TestResolveRoutesToMatchingSource(t *testing.T) {
	yt := &stubSource{
		name:    sources.SourceYouTube,
		matches: "https://youtu.be/abc",
		tracks:  []sources.TrackInfo{{URL: "https://youtu.be/abc", Title: "hit"}},
	}
	sp := &stubSource{name: sources.SourceSpotify}

	r := New(zerolog.Nop(), sp, yt)

	got, err := r.Resolve(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "hit" {
		t.Errorf("unexpected tracks: %v", got)
	}
}

func TestResolveFreeTextUsesYouTube(t *testing.T) {
	yt := &stubSource{
		name:   sources.SourceYouTube,
		tracks: []sources.TrackInfo{{URL: "https://youtu.be/xyz", Title: "search result"}},
	}

	r := New(zerolog.Nop(), yt)

	got, err := r.Resolve(context.Background(), "some song name")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "search result" {
		t.Errorf("unexpected tracks: %v", got)
	}
}

func TestResolvePlaylistPreservesOrder(t *testing.T) {
	playlist := make([]sources.TrackInfo, 5)
	for i := range playlist {
		playlist[i] = sources.TrackInfo{Title: string(rune('a' + i))}
	}
	sp := &stubSource{
		name:    sources.SourceSpotify,
		matches: "https://open.spotify.com/playlist/xyz",
		tracks:  playlist,
	}

	r := New(zerolog.Nop(), sp)

	got, err := r.Resolve(context.Background(), "https://open.spotify.com/playlist/xyz")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(got) != len(playlist) {
		t.Fatalf("got %d tracks, want %d", len(got), len(playlist))
	}
	for i := range got {
		if got[i].Title != playlist[i].Title {
			t.Errorf("track %d = %q, want %q", i, got[i].Title, playlist[i].Title)
		}
	}
}

func TestResolveErrorWrapsResolutionError(t *testing.T) {
	yt := &stubSource{
		name:    sources.SourceYouTube,
		matches: "https://youtu.be/broken",
		err:     sources.ErrNotFound,
	}

	r := New(zerolog.Nop(), yt)

	_, err := r.Resolve(context.Background(), "https://youtu.be/broken")
	if err == nil {
		t.Fatal("expected error")
	}

	var resErr *sources.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error %T is not a *sources.ResolutionError", err)
	}
	if !errors.Is(err, sources.ErrNotFound) {
		t.Error("ResolutionError should unwrap to ErrNotFound")
	}
}

func TestResolveUnknownURLFallsBackToDirect(t *testing.T) {
	r := New(zerolog.Nop(), &stubSource{name: sources.SourceYouTube})

	got, err := r.Resolve(context.Background(), "https://radio.example.com/stream.mp3")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(got) != 1 || got[0].SourceName != sources.SourceDirect {
		t.Errorf("unexpected fallback result: %v", got)
	}
}

func TestResolveEmptyInput(t *testing.T) {
	r := New(zerolog.Nop())

	if _, err := r.Resolve(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty input")
	}
}
