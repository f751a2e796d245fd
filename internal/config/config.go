package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the bot reads from the environment. A missing
// Discord token is fatal at startup; missing Spotify credentials only
// disable the Spotify source.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURI  string `env:"SPOTIFY_REDIRECT_URI" envDefault:"http://localhost:8888/callback"`
	OAuthListenAddr     string `env:"OAUTH_LISTEN_ADDR" envDefault:":8888"`

	MaxQueueSize    int `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	MaxPlaylistSize int `env:"MAX_PLAYLIST_SIZE" envDefault:"50"`

	// StreamProxy routes YouTube media fetches through an http(s) or
	// socks5 proxy. Empty means direct.
	StreamProxy string `env:"STREAM_PROXY"`

	IdleTimeoutMin int `env:"IDLE_TIMEOUT_MIN" envDefault:"10"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	// Absence of a .env file is fine; system environment still applies.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// SpotifyEnabled reports whether both Spotify credentials are present.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}
