package player

import (
	"context"
	"sync"
	"time"

	"quaver/internal/music/queue"

	"github.com/rs/zerolog"
)

// Factory builds a fresh player for a guild.
type Factory func(guildID string) *Player

// Manager owns the guild to player mapping. Players are created lazily on
// first use and evicted on stop or after sitting idle too long.
type Manager struct {
	mu      sync.Mutex
	players map[string]*Player
	factory Factory
	log     zerolog.Logger
}

func NewManager(log zerolog.Logger, factory Factory) *Manager {
	return &Manager{
		players: make(map[string]*Player),
		factory: factory,
		log:     log.With().Str("component", "manager").Logger(),
	}
}

// DefaultFactory wires a player from its collaborators.
func DefaultFactory(log zerolog.Logger, maxQueue int, joiner Joiner, open SessionFactory, search SearchFunc) Factory {
	return func(guildID string) *Player {
		return New(log, guildID, queue.New(maxQueue), joiner, open, search)
	}
}

// GetOrCreate returns the guild's player, constructing one if absent.
// Stopped players are replaced so a stop never bricks the guild.
func (m *Manager) GetOrCreate(guildID string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[guildID]; ok && p.State() != StateStopped {
		return p
	}

	p := m.factory(guildID)
	m.players[guildID] = p
	m.log.Debug().Str("guild", guildID).Msg("player created")
	return p
}

// Get returns the guild's player without creating one.
func (m *Manager) Get(guildID string) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[guildID]
	return p, ok
}

// Remove stops and evicts the guild's player.
func (m *Manager) Remove(guildID string) {
	m.mu.Lock()
	p, ok := m.players[guildID]
	delete(m.players, guildID)
	m.mu.Unlock()

	if ok {
		p.Stop()
		m.log.Debug().Str("guild", guildID).Msg("player removed")
	}
}

// Shutdown stops every player. Called on process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.players = make(map[string]*Player)
	m.mu.Unlock()

	for _, p := range players {
		p.Stop()
	}
	m.log.Info().Int("count", len(players)).Msg("all players stopped")
}

// RunIdleReaper evicts players that have been idle longer than timeout.
// It blocks until ctx is canceled.
func (m *Manager) RunIdleReaper(ctx context.Context, timeout, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reapIdle(timeout)
		}
	}
}

func (m *Manager) reapIdle(timeout time.Duration) {
	m.mu.Lock()
	var stale []string
	for guildID, p := range m.players {
		if since, idle := p.IdleSince(); idle && time.Since(since) > timeout {
			stale = append(stale, guildID)
		}
	}
	m.mu.Unlock()

	for _, guildID := range stale {
		m.log.Info().Str("guild", guildID).Msg("evicting idle player")
		m.Remove(guildID)
	}
}
