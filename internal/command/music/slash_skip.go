package music

import (
	"quaver/internal/command"

	"github.com/bwmarrin/discordgo"
)

type SkipCommand struct {
	deps *Deps
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip to the next queued track" }
func (c *SkipCommand) Group() string       { return "music" }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *SkipCommand) Run(ctx *command.SlashContext) error {
	p, ok := c.deps.Manager.Get(ctx.Event.GuildID)
	if !ok {
		return ctx.RespondEphemeral("🎵 Nothing is playing.")
	}

	if err := p.Skip(); err != nil {
		return ctx.RespondEphemeral(friendly(err))
	}
	return ctx.Respond("⏭ Skipped.")
}
