// Package command defines the slash-command surface: the Command
// interface, a registry instance and the middleware wrappers.
package command

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Run(ctx *SlashContext) error
}

// SlashProvider is implemented by commands that register a slash
// definition with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Log     zerolog.Logger
}

// Option returns the named string option, or empty when absent.
func (c *SlashContext) Option(name string) string {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func (c *SlashContext) Respond(content string) error {
	return c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func (c *SlashContext) RespondEphemeral(content string) error {
	return c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// Defer responds with "thinking…" so slow work does not hit the 3s
// interaction deadline.
func (c *SlashContext) Defer() error {
	return c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func (c *SlashContext) Followup(content string) error {
	_, err := c.Session.FollowupMessageCreate(c.Event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}
