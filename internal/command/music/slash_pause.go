package music

import (
	"quaver/internal/command"

	"github.com/bwmarrin/discordgo"
)

type PauseCommand struct {
	deps *Deps
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the current track" }
func (c *PauseCommand) Group() string       { return "music" }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PauseCommand) Run(ctx *command.SlashContext) error {
	p, ok := c.deps.Manager.Get(ctx.Event.GuildID)
	if !ok {
		return ctx.RespondEphemeral("🎵 Nothing is playing.")
	}

	if err := p.Pause(); err != nil {
		return ctx.RespondEphemeral(friendly(err))
	}
	return ctx.Respond("⏸ Paused.")
}
