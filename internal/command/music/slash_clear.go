package music

import (
	"fmt"

	"quaver/internal/command"

	"github.com/bwmarrin/discordgo"
)

type ClearCommand struct {
	deps *Deps
}

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Clear the queue, keeping the current track" }
func (c *ClearCommand) Group() string       { return "music" }

func (c *ClearCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ClearCommand) Run(ctx *command.SlashContext) error {
	p, ok := c.deps.Manager.Get(ctx.Event.GuildID)
	if !ok {
		return ctx.RespondEphemeral("🎵 The queue is already empty.")
	}

	removed := p.Queue().Clear()
	return ctx.Respond(fmt.Sprintf("🧹 Cleared %d queued track(s).", removed))
}
