package discord

import (
	"context"

	"quaver/internal/music/player"

	"github.com/bwmarrin/discordgo"
)

// voiceConn adapts a discordgo voice connection to the narrow interface
// the player drives.
type voiceConn struct {
	vc *discordgo.VoiceConnection
}

func (c *voiceConn) Speaking(b bool) error { return c.vc.Speaking(b) }

func (c *voiceConn) WriteOpus(ctx context.Context, frame []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.vc.OpusSend <- frame:
		return nil
	}
}

func (c *voiceConn) Disconnect() error { return c.vc.Disconnect() }

// Joiner joins voice channels through the gateway session.
type Joiner struct {
	dg *discordgo.Session
}

func NewJoiner(dg *discordgo.Session) *Joiner { return &Joiner{dg: dg} }

func (j *Joiner) Join(guildID, channelID string) (player.VoiceConn, error) {
	vc, err := j.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, err
	}
	return &voiceConn{vc: vc}, nil
}
