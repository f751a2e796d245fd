package music

import (
	"quaver/internal/command"

	"github.com/bwmarrin/discordgo"
)

type ResumeCommand struct {
	deps *Deps
}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume the paused track" }
func (c *ResumeCommand) Group() string       { return "music" }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ResumeCommand) Run(ctx *command.SlashContext) error {
	p, ok := c.deps.Manager.Get(ctx.Event.GuildID)
	if !ok {
		return ctx.RespondEphemeral("🎵 Nothing is paused.")
	}

	if err := p.Resume(); err != nil {
		return ctx.RespondEphemeral(friendly(err))
	}
	return ctx.Respond("▶️ Resumed.")
}
