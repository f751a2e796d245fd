// Package discord wires the gateway session to the command registry and
// the per-guild players.
package discord

import (
	"context"
	"fmt"
	"sync"

	"quaver/internal/command"
	"quaver/internal/music/player"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type Bot struct {
	dg       *discordgo.Session
	registry *command.Registry
	manager  *player.Manager
	log      zerolog.Logger

	mu           sync.Mutex
	lastChannel  map[string]string // guildID -> text channel of the last command
	watched      map[*player.Player]bool
	registeredIn map[string]bool
}

// New creates the gateway session. The manager is attached later because
// its voice joiner needs this session.
func New(log zerolog.Logger, token string, registry *command.Registry) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:           dg,
		registry:     registry,
		log:          log.With().Str("component", "discord").Logger(),
		lastChannel:  make(map[string]string),
		watched:      make(map[*player.Player]bool),
		registeredIn: make(map[string]bool),
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)

	return b, nil
}

// Session exposes the gateway session for voice wiring.
func (b *Bot) Session() *discordgo.Session { return b.dg }

func (b *Bot) SetManager(m *player.Manager) { b.manager = m }

// Run opens the gateway and blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing gateway")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("gateway ready")

	for _, g := range r.Guilds {
		b.registerCommands(g.ID)
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.registerCommands(g.ID)
}

func (b *Bot) registerCommands(guildID string) {
	b.mu.Lock()
	if b.registeredIn[guildID] {
		b.mu.Unlock()
		return
	}
	b.registeredIn[guildID] = true
	b.mu.Unlock()

	var defs []*discordgo.ApplicationCommand
	for _, cmd := range b.registry.All() {
		if provider, ok := cmd.(command.SlashProvider); ok {
			if def := provider.SlashDefinition(); def != nil {
				defs = append(defs, def)
			}
		}
	}

	if _, err := b.dg.ApplicationCommandBulkOverwrite(b.dg.State.User.ID, guildID, defs); err != nil {
		b.log.Error().Str("guild", guildID).Err(err).Msg("failed to register slash commands")
		return
	}
	b.log.Debug().Str("guild", guildID).Int("count", len(defs)).Msg("slash commands registered")
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := b.registry.Get(name)
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command interaction")
		return
	}

	if i.GuildID != "" {
		b.mu.Lock()
		b.lastChannel[i.GuildID] = i.ChannelID
		b.mu.Unlock()
	}

	ctx := &command.SlashContext{Session: s, Event: i, Log: b.log}
	if err := cmd.Run(ctx); err != nil {
		b.log.Error().Str("command", name).Err(err).Msg("command failed")
	}

	if i.GuildID != "" {
		b.ensureAnnouncer(i.GuildID)
	}
}

// FindUserVoiceState returns the channel the user is connected to.
func (b *Bot) FindUserVoiceState(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", fmt.Errorf("user not in any voice channel")
}
