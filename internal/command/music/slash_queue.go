package music

import (
	"fmt"
	"strings"
	"time"

	"quaver/internal/command"

	"github.com/bwmarrin/discordgo"
)

const queuePageSize = 10

type QueueCommand struct {
	deps *Deps
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the current queue" }
func (c *QueueCommand) Group() string       { return "music" }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *QueueCommand) Run(ctx *command.SlashContext) error {
	p, ok := c.deps.Manager.Get(ctx.Event.GuildID)
	if !ok {
		return ctx.RespondEphemeral("🎵 The queue is empty.")
	}

	var b strings.Builder

	if cur, playing := p.Current(); playing {
		fmt.Fprintf(&b, "▶️ **%s** (%s / %s)\n", cur.String(),
			p.Position().Round(time.Second), cur.Duration.Round(time.Second))
	}

	tracks := p.Queue().Tracks()
	if len(tracks) == 0 && b.Len() == 0 {
		return ctx.RespondEphemeral("🎵 The queue is empty.")
	}

	for i, t := range tracks {
		if i >= queuePageSize {
			fmt.Fprintf(&b, "… and %d more\n", len(tracks)-queuePageSize)
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.String())
	}

	return ctx.Respond(b.String())
}
