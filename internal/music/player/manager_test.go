package player

import (
	"testing"
	"time"

	"quaver/internal/music/queue"

	"github.com/rs/zerolog"
)

func newTestManager() *Manager {
	opener := &fakeOpener{auto: true}
	factory := func(guildID string) *Player {
		return New(zerolog.Nop(), guildID, queue.New(100), &fakeJoiner{}, opener.open, nil)
	}
	return NewManager(zerolog.Nop(), factory)
}

func TestGetOrCreateReturnsSameInstance(t *testing.T) {
	m := newTestManager()

	a := m.GetOrCreate("g1")
	b := m.GetOrCreate("g1")
	if a != b {
		t.Error("same guild returned different players")
	}

	c := m.GetOrCreate("g2")
	if a == c {
		t.Error("different guilds share a player")
	}
}

func TestGetOrCreateReplacesStoppedPlayer(t *testing.T) {
	m := newTestManager()

	a := m.GetOrCreate("g1")
	a.Stop()

	b := m.GetOrCreate("g1")
	if a == b {
		t.Error("stopped player was not replaced")
	}
	if b.State() != StateIdle {
		t.Errorf("replacement state = %v, want idle", b.State())
	}
}

func TestRemoveStopsPlayer(t *testing.T) {
	m := newTestManager()

	p := m.GetOrCreate("g1")
	m.Remove("g1")

	if p.State() != StateStopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if _, ok := m.Get("g1"); ok {
		t.Error("player still registered after Remove")
	}
}

func TestShutdownStopsAll(t *testing.T) {
	m := newTestManager()

	a := m.GetOrCreate("g1")
	b := m.GetOrCreate("g2")
	m.Shutdown()

	if a.State() != StateStopped || b.State() != StateStopped {
		t.Error("players still running after Shutdown")
	}
	if _, ok := m.Get("g1"); ok {
		t.Error("players still registered after Shutdown")
	}
}

func TestReapIdleEvictsStalePlayers(t *testing.T) {
	m := newTestManager()

	p := m.GetOrCreate("g1")
	p.mu.Lock()
	p.idleSince = time.Now().Add(-time.Hour)
	p.mu.Unlock()

	m.reapIdle(10 * time.Minute)

	if _, ok := m.Get("g1"); ok {
		t.Error("idle player not evicted")
	}
	if p.State() != StateStopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
}
