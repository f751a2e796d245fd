package spotify

import "regexp"

type Kind int

const (
	KindNone Kind = iota
	KindTrack
	KindPlaylist
	KindAlbum
)

var (
	trackPattern    = regexp.MustCompile(`open\.spotify\.com(?:/intl-[a-z]+)?/track/([a-zA-Z0-9]+)`)
	playlistPattern = regexp.MustCompile(`open\.spotify\.com(?:/intl-[a-z]+)?/playlist/([a-zA-Z0-9]+)`)
	albumPattern    = regexp.MustCompile(`open\.spotify\.com(?:/intl-[a-z]+)?/album/([a-zA-Z0-9]+)`)
)

// ParseSpotifyURL classifies a link and extracts the resource ID. Query
// parameters like ?si= are ignored because the ID group stops at them.
func ParseSpotifyURL(input string) (Kind, string) {
	if m := trackPattern.FindStringSubmatch(input); m != nil {
		return KindTrack, m[1]
	}
	if m := playlistPattern.FindStringSubmatch(input); m != nil {
		return KindPlaylist, m[1]
	}
	if m := albumPattern.FindStringSubmatch(input); m != nil {
		return KindAlbum, m[1]
	}
	return KindNone, ""
}
