package music

import (
	"context"
	"fmt"
	"time"

	"quaver/internal/command"
	"quaver/internal/music/queue"

	"github.com/bwmarrin/discordgo"
)

const resolveTimeout = 60 * time.Second

type PlayCommand struct {
	deps *Deps
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a track, playlist or search query" }
func (c *PlayCommand) Group() string       { return "music" }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "input",
				Description: "YouTube/Spotify link or a song name",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx *command.SlashContext) error {
	input := ctx.Option("input")
	if input == "" {
		return ctx.RespondEphemeral("🎵 Tell me what to play.")
	}

	// Resolution can take a while; defer so the interaction doesn't expire.
	if err := ctx.Defer(); err != nil {
		return fmt.Errorf("deferred response failed: %w", err)
	}

	guildID := ctx.Event.GuildID
	userID := ctx.Event.Member.User.ID

	channelID, err := c.deps.Voice.FindUserVoiceState(guildID, userID)
	if err != nil {
		return ctx.Followup("🎵 Join a voice channel first.")
	}

	resolveCtx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	infos, err := c.deps.Resolver.Resolve(resolveCtx, input)
	if err != nil {
		return ctx.Followup(friendly(err))
	}

	tracks := make([]queue.Track, len(infos))
	for i, info := range infos {
		tracks[i] = queue.Track{
			Title:       info.Title,
			Artist:      info.Artist,
			URL:         info.URL,
			SearchQuery: info.SearchQuery,
			Duration:    info.Duration,
			Source:      info.SourceName,
			Requester:   ctx.Event.Member.User.Username,
			Parsers:     info.AvailableParsers,
		}
	}

	p := c.deps.Manager.GetOrCreate(guildID)
	added, err := p.Enqueue(tracks...)
	if err != nil {
		return ctx.Followup(friendly(err))
	}

	if err := p.Play(channelID); err != nil {
		return ctx.Followup(friendly(err))
	}

	switch {
	case added == 0:
		return ctx.Followup("🎵 Queue is full.")
	case added == 1:
		return ctx.Followup(fmt.Sprintf("🎶 Queued **%s**", tracks[0].String()))
	case added < len(tracks):
		return ctx.Followup(fmt.Sprintf("🎶 Queued %d tracks (%d didn't fit)", added, len(tracks)-added))
	default:
		return ctx.Followup(fmt.Sprintf("🎶 Queued %d tracks", added))
	}
}
