package music

import (
	"quaver/internal/command"

	"github.com/bwmarrin/discordgo"
)

type StopCommand struct {
	deps *Deps
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear the queue and leave" }
func (c *StopCommand) Group() string       { return "music" }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StopCommand) Run(ctx *command.SlashContext) error {
	_, ok := c.deps.Manager.Get(ctx.Event.GuildID)
	if !ok {
		return ctx.RespondEphemeral("🎵 Nothing is playing.")
	}

	// Remove stops the player and evicts it so the next /play starts fresh.
	c.deps.Manager.Remove(ctx.Event.GuildID)
	return ctx.Respond("⏹ Stopped and cleared the queue.")
}
