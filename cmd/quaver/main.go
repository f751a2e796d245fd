package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quaver/internal/command"
	cmdmusic "quaver/internal/command/music"
	"quaver/internal/config"
	"quaver/internal/discord"
	"quaver/internal/logging"
	"quaver/internal/music/parsers"
	"quaver/internal/music/player"
	"quaver/internal/music/queue"
	"quaver/internal/music/source_resolver"
	"quaver/internal/music/sources"
	"quaver/internal/music/sources/spotify"
	"quaver/internal/music/sources/youtube"
	"quaver/internal/music/stream"
	"quaver/internal/version"
	"quaver/internal/web"
	"quaver/pkg/jobmgr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", version.Version).Msgf("starting %s", version.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	yt := youtube.New(log, cfg.MaxPlaylistSize)

	srcs := []sources.Source{yt}
	var sp *spotify.SpotifySource
	if cfg.SpotifyEnabled() {
		var err error
		sp, err = spotify.New(ctx, log, cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.MaxPlaylistSize)
		if err != nil {
			log.Fatal().Err(err).Msg("spotify setup failed")
		}
		srcs = append(srcs, sp)
	} else {
		log.Info().Msg("spotify credentials missing, spotify links disabled")
	}

	resolver := source_resolver.New(log, srcs...)
	streams := stream.NewRegistry(log, cfg.StreamProxy)

	registry := command.NewRegistry()
	bot, err := discord.New(log, cfg.DiscordToken, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("discord setup failed")
	}

	joiner := discord.NewJoiner(bot.Session())
	open := func(ctx context.Context, track *queue.Track, conn player.VoiceConn) (player.Session, error) {
		req := &parsers.Request{
			URL:      track.URL,
			Title:    track.Title,
			Artist:   track.Artist,
			Duration: track.Duration,
		}
		ts, err := streams.Open(ctx, req, track.Parsers, 0)
		if err != nil {
			return nil, err
		}
		track.Title = req.Title
		track.Duration = req.Duration
		return stream.NewSession(ts, conn)
	}

	manager := player.NewManager(log, player.DefaultFactory(
		log, cfg.MaxQueueSize, joiner, open, yt.SearchFirstVideoURL,
	))
	bot.SetManager(manager)

	deps := &cmdmusic.Deps{Manager: manager, Resolver: resolver, Voice: bot}
	for _, cmd := range cmdmusic.Commands(deps) {
		registry.Register(command.Apply(cmd,
			command.WithGuildOnly,
			command.WithLogger(log),
		))
	}

	jobs := jobmgr.NewManager(log)
	jobs.Start(ctx, "idle-reaper", func(ctx context.Context) error {
		manager.RunIdleReaper(ctx, time.Duration(cfg.IdleTimeoutMin)*time.Minute, time.Minute)
		return nil
	})

	if cfg.SpotifyEnabled() {
		oauth := web.NewOAuthServer(log, cfg.OAuthListenAddr,
			cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
		jobs.Start(ctx, "oauth-server", oauth.Run)
		jobs.Start(ctx, "oauth-grant", func(ctx context.Context) error {
			select {
			case token := <-oauth.Tokens():
				sp.UseToken(ctx, token)
				log.Info().Msg("spotify private playlists enabled")
			case <-ctx.Done():
			}
			return nil
		})
		log.Info().Str("url", oauth.AuthURL()).Msg("spotify authorization URL")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("bot exited with error")
		}
		cancel()
	}

	manager.Shutdown()
	jobs.StopAll()
	jobs.Wait()
	log.Info().Msg("exited cleanly")
}
