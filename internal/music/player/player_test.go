package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quaver/internal/music/queue"

	"github.com/rs/zerolog"
)

type fakeConn struct {
	mu           sync.Mutex
	disconnected bool
}

func (c *fakeConn) Speaking(bool) error { return nil }

func (c *fakeConn) WriteOpus(context.Context, []byte) error { return nil }

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *fakeConn) isDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

type fakeJoiner struct {
	mu    sync.Mutex
	err   error
	joins int
	conn  *fakeConn
}

func (j *fakeJoiner) Join(guildID, channelID string) (VoiceConn, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return nil, j.err
	}
	j.joins++
	j.conn = &fakeConn{}
	return j.conn, nil
}

type fakeSession struct {
	release chan struct{}
	err     error

	mu     sync.Mutex
	paused bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{release: make(chan struct{})}
}

func (s *fakeSession) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.release:
		return s.err
	}
}

func (s *fakeSession) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *fakeSession) Position() time.Duration { return 0 }

func (s *fakeSession) finish() { close(s.release) }

func (s *fakeSession) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// fakeOpener stamps out fake sessions and records what was opened.
type fakeOpener struct {
	mu       sync.Mutex
	auto     bool          // sessions complete immediately
	gate     chan struct{} // when set, each open waits for a permit
	failFor  map[string]error
	opened   []string
	urls     []string
	sessions []*fakeSession
}

func (o *fakeOpener) open(ctx context.Context, track *queue.Track, _ VoiceConn) (Session, error) {
	if o.gate != nil {
		select {
		case <-o.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.failFor[track.Title]; err != nil {
		return nil, err
	}
	s := newFakeSession()
	if o.auto {
		close(s.release)
	}
	o.opened = append(o.opened, track.Title)
	o.urls = append(o.urls, track.URL)
	o.sessions = append(o.sessions, s)
	return s, nil
}

func (o *fakeOpener) openedTitles() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

func (o *fakeOpener) session(t *testing.T, i int) *fakeSession {
	t.Helper()
	var s *fakeSession
	waitFor(t, func() bool {
		o.mu.Lock()
		defer o.mu.Unlock()
		if len(o.sessions) > i {
			s = o.sessions[i]
			return true
		}
		return false
	}, "session %d never opened", i)
	return s
}

func waitFor(t *testing.T, cond func() bool, format string, args ...any) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf(format, args...)
}

func newTestPlayer(opener *fakeOpener, search SearchFunc) (*Player, *fakeJoiner) {
	joiner := &fakeJoiner{}
	p := New(zerolog.Nop(), "guild1", queue.New(100), joiner, opener.open, search)
	return p, joiner
}

func track(title string) queue.Track {
	return queue.Track{Title: title, URL: "https://example.com/" + title}
}

func TestAutoAdvanceThroughQueue(t *testing.T) {
	opener := &fakeOpener{auto: true}
	p, _ := newTestPlayer(opener, nil)

	if _, err := p.Enqueue(track("a"), track("b"), track("c")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := p.Play("chan1"); err != nil {
		t.Fatalf("Play: %v", err)
	}

	waitFor(t, func() bool { return p.State() == StateIdle }, "player never went idle")

	got := opener.openedTitles()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("opened %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opened[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if p.Queue().Len() != 0 {
		t.Errorf("queue length = %d, want 0", p.Queue().Len())
	}
}

func TestPauseResume(t *testing.T) {
	opener := &fakeOpener{}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"))
	if err := p.Play("chan1"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	sess := opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	if err := p.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if p.State() != StatePaused {
		t.Errorf("state = %v, want paused", p.State())
	}
	if !sess.isPaused() {
		t.Error("session not paused")
	}

	if err := p.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if p.State() != StatePlaying {
		t.Errorf("state = %v, want playing", p.State())
	}
	if sess.isPaused() {
		t.Error("session still paused after resume")
	}

	sess.finish()
	waitFor(t, func() bool { return p.State() == StateIdle }, "never went idle")
}

func TestPauseNoOpWhenNotPlaying(t *testing.T) {
	opener := &fakeOpener{}
	p, _ := newTestPlayer(opener, nil)

	var invalid *InvalidTransitionError
	if err := p.Pause(); !errors.As(err, &invalid) {
		t.Errorf("Pause while idle = %v, want InvalidTransitionError", err)
	}
	if err := p.Resume(); !errors.As(err, &invalid) {
		t.Errorf("Resume while idle = %v, want InvalidTransitionError", err)
	}
	if err := p.Skip(); !errors.As(err, &invalid) {
		t.Errorf("Skip while idle = %v, want InvalidTransitionError", err)
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle", p.State())
	}
}

func TestPauseBetweenTracksIsReportedNoOp(t *testing.T) {
	gate := make(chan struct{}, 2)
	gate <- struct{}{}
	opener := &fakeOpener{gate: gate}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"), track("b"))
	if err := p.Play("chan1"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	sess := opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	// finish track a; track b's open is held by the gate, so the player
	// sits between tracks with no session while still reporting playing
	sess.finish()
	waitFor(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.session == nil
	}, "first session never torn down")

	var invalid *InvalidTransitionError
	if err := p.Pause(); !errors.As(err, &invalid) {
		t.Errorf("Pause between tracks = %v, want InvalidTransitionError", err)
	}
	if err := p.Resume(); !errors.As(err, &invalid) {
		t.Errorf("Resume between tracks = %v, want InvalidTransitionError", err)
	}

	gate <- struct{}{}
	opener.session(t, 1).finish()
	waitFor(t, func() bool { return p.State() == StateIdle }, "never drained")
}

func TestResumeNoOpWhenPlaying(t *testing.T) {
	opener := &fakeOpener{}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"))
	p.Play("chan1")
	opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	var invalid *InvalidTransitionError
	if err := p.Resume(); !errors.As(err, &invalid) {
		t.Errorf("Resume while playing = %v, want InvalidTransitionError", err)
	}
	if p.State() != StatePlaying {
		t.Errorf("state = %v, want playing", p.State())
	}
}

func TestStopWhilePlaying(t *testing.T) {
	opener := &fakeOpener{}
	p, joiner := newTestPlayer(opener, nil)

	p.Enqueue(track("a"), track("b"))
	p.Play("chan1")
	opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.State() != StateStopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if p.Queue().Len() != 0 {
		t.Errorf("queue length = %d, want 0", p.Queue().Len())
	}
	if !joiner.conn.isDisconnected() {
		t.Error("voice connection not torn down")
	}
}

func TestStopFromIdleAndIdempotent(t *testing.T) {
	opener := &fakeOpener{}
	p, _ := newTestPlayer(opener, nil)

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop from idle: %v", err)
	}
	if p.State() != StateStopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	if err := p.Play("chan1"); !errors.Is(err, ErrStopped) {
		t.Errorf("Play after stop = %v, want ErrStopped", err)
	}
	if _, err := p.Enqueue(track("a")); !errors.Is(err, ErrStopped) {
		t.Errorf("Enqueue after stop = %v, want ErrStopped", err)
	}
}

func TestPauseThenStop(t *testing.T) {
	opener := &fakeOpener{}
	p, joiner := newTestPlayer(opener, nil)

	p.Enqueue(track("a"), track("b"))
	p.Play("chan1")
	opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	if err := p.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.State() != StateStopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if p.Queue().Len() != 0 {
		t.Errorf("queue length = %d, want 0", p.Queue().Len())
	}
	if !joiner.conn.isDisconnected() {
		t.Error("voice connection not torn down")
	}
}

func TestSkipToIdleOnEmptyQueue(t *testing.T) {
	opener := &fakeOpener{}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"))
	p.Play("chan1")
	opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	if err := p.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	waitFor(t, func() bool { return p.State() == StateIdle }, "never went idle after skip")
}

func TestSkipAdvancesToNextTrack(t *testing.T) {
	opener := &fakeOpener{}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"), track("b"))
	p.Play("chan1")
	opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	if err := p.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	opener.session(t, 1)
	waitFor(t, func() bool {
		cur, ok := p.Current()
		return ok && cur.Title == "b"
	}, "never advanced to next track")
}

func TestStreamFailureAdvances(t *testing.T) {
	opener := &fakeOpener{failFor: map[string]error{"a": errors.New("no formats")}}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"), track("b"))
	p.Play("chan1")

	opener.session(t, 0)
	waitFor(t, func() bool {
		cur, ok := p.Current()
		return ok && cur.Title == "b"
	}, "never advanced past failing track")
}

func TestLateResolutionFillsURL(t *testing.T) {
	opener := &fakeOpener{auto: true}
	search := func(_ context.Context, query string) (string, error) {
		if query != "artist song" {
			return "", errors.New("unexpected query")
		}
		return "https://youtube.example/watch?v=resolved", nil
	}
	p, _ := newTestPlayer(opener, search)

	p.Enqueue(queue.Track{Title: "song", Artist: "artist", SearchQuery: "artist song"})
	p.Play("chan1")

	waitFor(t, func() bool { return p.State() == StateIdle }, "never finished")

	opener.mu.Lock()
	defer opener.mu.Unlock()
	if len(opener.urls) != 1 || opener.urls[0] != "https://youtube.example/watch?v=resolved" {
		t.Errorf("opened urls = %v, want the resolved URL", opener.urls)
	}
}

func TestLateResolutionFailureAdvances(t *testing.T) {
	opener := &fakeOpener{auto: true}
	search := func(_ context.Context, query string) (string, error) {
		if query == "bad query" {
			return "", errors.New("nothing found")
		}
		return "https://youtube.example/watch?v=ok", nil
	}
	p, _ := newTestPlayer(opener, search)

	p.Enqueue(
		queue.Track{Title: "bad", SearchQuery: "bad query"},
		queue.Track{Title: "good", SearchQuery: "good query"},
	)
	p.Play("chan1")

	waitFor(t, func() bool { return p.State() == StateIdle }, "never finished")

	got := opener.openedTitles()
	if len(got) != 1 || got[0] != "good" {
		t.Errorf("opened %v, want only the resolvable track", got)
	}
}

func TestPlayJoinFailureLeavesIdle(t *testing.T) {
	opener := &fakeOpener{}
	joiner := &fakeJoiner{err: errors.New("gateway timeout")}
	p := New(zerolog.Nop(), "guild1", queue.New(100), joiner, opener.open, nil)

	p.Enqueue(track("a"))
	err := p.Play("chan1")

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Play = %v, want ConnectionError", err)
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle", p.State())
	}
	if p.Queue().Len() != 1 {
		t.Errorf("queue length = %d, want 1 (untouched)", p.Queue().Len())
	}
}

func TestPlayWhilePlayingIsNoOp(t *testing.T) {
	opener := &fakeOpener{}
	p, joiner := newTestPlayer(opener, nil)

	p.Enqueue(track("a"))
	p.Play("chan1")
	opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	if err := p.Play("chan1"); err != nil {
		t.Fatalf("second Play: %v", err)
	}
	if joiner.joins != 1 {
		t.Errorf("joins = %d, want 1", joiner.joins)
	}
}

func TestDrainRecheckPicksUpLateEnqueue(t *testing.T) {
	p, _ := newTestPlayer(&fakeOpener{}, nil)

	p.Queue().Enqueue(track("late"))
	if p.goIdle() {
		t.Error("loop parked with a track still queued")
	}

	p.Queue().Clear()
	if !p.goIdle() {
		t.Error("loop did not park on an empty queue")
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle", p.State())
	}
}

func TestStopClosesStatusChannel(t *testing.T) {
	opener := &fakeOpener{}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"))
	p.Play("chan1")
	opener.session(t, 0)
	waitFor(t, func() bool { return p.State() == StatePlaying }, "never started playing")

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	sawStopped := false
	for s := range p.Status {
		if s.Kind == StatusStopped {
			sawStopped = true
		}
	}
	if !sawStopped {
		t.Error("stopped event not delivered before close")
	}
}

func TestStatusEventsEmitted(t *testing.T) {
	opener := &fakeOpener{auto: true}
	p, _ := newTestPlayer(opener, nil)

	p.Enqueue(track("a"))
	p.Play("chan1")
	waitFor(t, func() bool { return p.State() == StateIdle }, "never finished")

	var kinds []StatusKind
	for {
		select {
		case s := <-p.Status:
			kinds = append(kinds, s.Kind)
			continue
		default:
		}
		break
	}

	sawPlaying, sawIdle := false, false
	for _, k := range kinds {
		if k == StatusPlaying {
			sawPlaying = true
		}
		if k == StatusIdle {
			sawIdle = true
		}
	}
	if !sawPlaying || !sawIdle {
		t.Errorf("events = %v, want playing and idle", kinds)
	}
}
