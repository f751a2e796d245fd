// Package web runs the HTTP listener for the Spotify OAuth callback,
// used when private-playlist access is configured.
package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

type OAuthServer struct {
	addr   string
	auth   *spotifyauth.Authenticator
	state  string
	tokens chan *oauth2.Token
	log    zerolog.Logger
}

func NewOAuthServer(log zerolog.Logger, addr, clientID, clientSecret, redirectURI string) *OAuthServer {
	return &OAuthServer{
		addr: addr,
		auth: spotifyauth.New(
			spotifyauth.WithRedirectURL(redirectURI),
			spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
		),
		state:  newState(),
		tokens: make(chan *oauth2.Token, 1),
		log:    log.With().Str("component", "oauth").Logger(),
	}
}

func newState() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// AuthURL is the URL a user visits to grant playlist access.
func (s *OAuthServer) AuthURL() string {
	return s.auth.AuthURL(s.state)
}

// Tokens delivers at most one granted token.
func (s *OAuthServer) Tokens() <-chan *oauth2.Token {
	return s.tokens
}

func (s *OAuthServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/callback", s.handleCallback).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *OAuthServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func (s *OAuthServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if got := r.URL.Query().Get("state"); got != s.state {
		s.log.Warn().Str("state", got).Msg("oauth state mismatch")
		http.Error(w, "state mismatch", http.StatusForbidden)
		return
	}

	token, err := s.auth.Token(r.Context(), s.state, r)
	if err != nil {
		s.log.Error().Err(err).Msg("token exchange failed")
		http.Error(w, "token exchange failed", http.StatusForbidden)
		return
	}

	select {
	case s.tokens <- token:
	default:
	}

	s.log.Info().Msg("spotify authorization granted")
	fmt.Fprint(w, "Authorized. You can close this window.")
}

// Run serves until ctx is canceled.
func (s *OAuthServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", s.addr).Msg("oauth callback server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
