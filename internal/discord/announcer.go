package discord

import (
	"fmt"

	"quaver/internal/music/player"

	"github.com/bwmarrin/discordgo"
)

// ensureAnnouncer starts exactly one status watcher per live player. The
// watcher exits with the player, so stopped players never leak goroutines.
func (b *Bot) ensureAnnouncer(guildID string) {
	if b.manager == nil {
		return
	}
	p, ok := b.manager.Get(guildID)
	if !ok {
		return
	}

	b.mu.Lock()
	if b.watched[p] {
		b.mu.Unlock()
		return
	}
	b.watched[p] = true
	b.mu.Unlock()

	go b.watchPlayer(guildID, p)
}

func (b *Bot) watchPlayer(guildID string, p *player.Player) {
	defer func() {
		b.mu.Lock()
		delete(b.watched, p)
		b.mu.Unlock()
	}()

	// Status is closed by Stop, so the range always terminates even when
	// the final event was dropped by a full buffer.
	for status := range p.Status {
		b.announce(guildID, status)
	}
}

func (b *Bot) announce(guildID string, status player.Status) {
	var text string
	switch status.Kind {
	case player.StatusPlaying:
		text = fmt.Sprintf("▶️ Now playing: **%s**", status.Track.String())
	case player.StatusIdle:
		text = "🎵 Queue finished."
	case player.StatusError:
		text = fmt.Sprintf("❌ Skipping **%s**: %v", status.Track.String(), status.Err)
	default:
		return
	}

	b.mu.Lock()
	channelID := b.lastChannel[guildID]
	b.mu.Unlock()
	if channelID == "" {
		return
	}

	_, err := b.dg.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Description: text,
	})
	if err != nil {
		b.log.Warn().Str("guild", guildID).Err(err).Msg("failed to send status message")
	}
}
