package command

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx *SlashContext) error
}

func (w *wrappedCommand) Run(ctx *SlashContext) error {
	return w.wrap(ctx)
}

// SlashDefinition passes through to the wrapped command so providers
// survive wrapping.
func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if p, ok := w.Command.(SlashProvider); ok {
		return p.SlashDefinition()
	}
	return nil
}

func Apply(cmd Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		cmd = mws[i](cmd)
	}
	return cmd
}

// WithGuildOnly rejects invocations outside a guild.
func WithGuildOnly(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx *SlashContext) error {
			if ctx.Event.GuildID == "" {
				return ctx.RespondEphemeral("This command only works in a server.")
			}
			return cmd.Run(ctx)
		},
	}
}

// WithLogger logs every invocation with its outcome and latency.
func WithLogger(log zerolog.Logger) Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx *SlashContext) error {
				start := time.Now()
				err := cmd.Run(ctx)

				ev := log.Info()
				if err != nil {
					ev = log.Error().Err(err)
				}
				user := ""
				if ctx.Event.Member != nil && ctx.Event.Member.User != nil {
					user = ctx.Event.Member.User.Username
				}
				ev.Str("command", cmd.Name()).
					Str("guild", ctx.Event.GuildID).
					Str("user", user).
					Dur("took", time.Since(start)).
					Msg("command handled")
				return err
			},
		}
	}
}
