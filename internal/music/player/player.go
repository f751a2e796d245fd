// Package player drives per-guild playback: a state machine over the track
// queue, a voice connection and one audio session at a time.
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"quaver/internal/music/queue"

	"github.com/rs/zerolog"
)

type State int32

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type StatusKind int

const (
	StatusPlaying StatusKind = iota
	StatusAdded
	StatusPaused
	StatusResumed
	StatusStopped
	StatusIdle
	StatusError
)

// Status is an event emitted on the player's channel for announcers.
type Status struct {
	Kind  StatusKind
	Track queue.Track
	Err   error
}

// VoiceConn is the slice of a voice connection the player depends on.
type VoiceConn interface {
	Speaking(bool) error
	WriteOpus(ctx context.Context, frame []byte) error
	Disconnect() error
}

// Joiner establishes voice connections.
type Joiner interface {
	Join(guildID, channelID string) (VoiceConn, error)
}

// Session is one track's worth of audio being pumped to a connection.
type Session interface {
	Run(ctx context.Context) error
	SetPaused(bool)
	Position() time.Duration
}

// SessionFactory opens an audio session for a track. It may fill in
// metadata the track is missing.
type SessionFactory func(ctx context.Context, track *queue.Track, conn VoiceConn) (Session, error)

// SearchFunc late-resolves a search query to a playable URL. Used for
// tracks that arrive with only metadata, like Spotify imports.
type SearchFunc func(ctx context.Context, query string) (string, error)

type Player struct {
	guildID string
	queue   *queue.Queue
	joiner  Joiner
	open    SessionFactory
	search  SearchFunc
	log     zerolog.Logger

	mu          sync.Mutex
	state       State
	current     *queue.Track
	conn        VoiceConn
	channelID   string
	session     Session
	cancelTrack context.CancelFunc
	cancelLoop  context.CancelFunc
	loopDone    chan struct{}
	idleSince   time.Time

	// Status is buffered so a slow or absent consumer never blocks
	// playback; emits are dropped when full.
	Status chan Status
}

func New(log zerolog.Logger, guildID string, q *queue.Queue, joiner Joiner, open SessionFactory, search SearchFunc) *Player {
	return &Player{
		guildID:   guildID,
		queue:     q,
		joiner:    joiner,
		open:      open,
		search:    search,
		log:       log.With().Str("component", "player").Str("guild", guildID).Logger(),
		idleSince: time.Now(),
		Status:    make(chan Status, 10),
	}
}

func (p *Player) emit(s Status) {
	select {
	case p.Status <- s:
	default:
	}
}

// Enqueue appends tracks and reports how many fit under the queue cap.
func (p *Player) Enqueue(tracks ...queue.Track) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateStopped {
		return 0, ErrStopped
	}

	added := p.queue.Enqueue(tracks...)
	p.log.Debug().Int("added", added).Int("queue_len", p.queue.Len()).Msg("tracks enqueued")
	if added > 0 && p.current != nil {
		p.emit(Status{Kind: StatusAdded, Track: tracks[0]})
	}
	return added, nil
}

// Play connects to the channel if needed and starts draining the queue.
// Calling it while already playing or paused is a no-op.
func (p *Player) Play(channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateStopped:
		return ErrStopped
	case StatePlaying, StatePaused:
		return nil
	}

	if p.conn == nil || p.channelID != channelID {
		if p.conn != nil {
			p.conn.Disconnect()
			p.conn = nil
		}
		conn, err := p.joiner.Join(p.guildID, channelID)
		if err != nil {
			return &ConnectionError{GuildID: p.guildID, ChannelID: channelID, Err: err}
		}
		p.conn = conn
		p.channelID = channelID
	}

	if p.loopDone != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancelLoop = cancel
	p.loopDone = make(chan struct{})
	go p.run(loopCtx, p.loopDone)
	return nil
}

// Pause suspends the current session without losing position.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// session is nil between one track ending and the next one opening,
	// even though state is still Playing.
	if p.state != StatePlaying || p.session == nil {
		return &InvalidTransitionError{Op: "pause", State: p.state}
	}

	p.session.SetPaused(true)
	p.state = StatePaused
	if p.current != nil {
		p.emit(Status{Kind: StatusPaused, Track: *p.current})
	}
	return nil
}

// Resume continues a paused session.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePaused || p.session == nil {
		return &InvalidTransitionError{Op: "resume", State: p.state}
	}

	p.session.SetPaused(false)
	p.state = StatePlaying
	if p.current != nil {
		p.emit(Status{Kind: StatusResumed, Track: *p.current})
	}
	return nil
}

// Skip discards the current track. The run loop advances to the next
// queued track, or goes idle when the queue is empty.
func (p *Player) Skip() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying && p.state != StatePaused {
		return &InvalidTransitionError{Op: "skip", State: p.state}
	}

	if p.session != nil {
		p.session.SetPaused(false)
	}
	if p.cancelTrack != nil {
		p.cancelTrack()
	}
	return nil
}

// Stop tears the whole session down: cancels playback, clears the queue
// and disconnects. It is idempotent and safe to call mid-resolution.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return nil
	}
	p.state = StateStopped
	cancel := p.cancelLoop
	done := p.loopDone
	if p.session != nil {
		p.session.SetPaused(false)
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.queue.Clear()

	p.mu.Lock()
	if p.conn != nil {
		p.conn.Disconnect()
		p.conn = nil
	}
	p.current = nil
	p.session = nil
	p.channelID = ""
	// Closing Status lets watchers exit even if the Stopped event was
	// dropped by a full buffer. Nothing can send after this: the run loop
	// has been waited out above, and every other emit is state-guarded
	// under mu.
	p.emit(Status{Kind: StatusStopped})
	close(p.Status)
	p.mu.Unlock()

	p.log.Info().Msg("playback stopped")
	return nil
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the playing track, if any.
func (p *Player) Current() (queue.Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return queue.Track{}, false
	}
	return *p.current, true
}

func (p *Player) Queue() *queue.Queue { return p.queue }

// Position reports how far into the current track playback is.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return 0
	}
	return p.session.Position()
}

// IdleSince reports when the player last went idle; zero time means it is
// active. Used by the manager's reaper.
func (p *Player) IdleSince() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return time.Time{}, false
	}
	return p.idleSince, true
}

// run drains the queue one track at a time until it empties or the loop
// context is canceled.
func (p *Player) run(loopCtx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if loopCtx.Err() != nil {
			p.finishLoop()
			return
		}

		track, ok := p.queue.DequeueNext()
		if !ok {
			if p.goIdle() {
				return
			}
			continue
		}

		p.playTrack(loopCtx, track)
	}
}

func (p *Player) playTrack(loopCtx context.Context, track queue.Track) {
	trackCtx, cancel := context.WithCancel(loopCtx)
	defer cancel()

	if track.NeedsResolution() {
		if p.search == nil {
			p.log.Error().Str("track", track.String()).Msg("track needs resolution but no search configured")
			p.emit(Status{Kind: StatusError, Track: track, Err: errors.New("no search backend configured")})
			return
		}
		url, err := p.search(trackCtx, track.SearchQuery)
		if err != nil {
			if trackCtx.Err() != nil {
				return
			}
			p.log.Warn().Str("query", track.SearchQuery).Err(err).Msg("late resolution failed, skipping track")
			p.emit(Status{Kind: StatusError, Track: track, Err: err})
			return
		}
		track.URL = url
	}

	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	conn := p.conn
	p.session = nil
	p.mu.Unlock()

	sess, err := p.open(trackCtx, &track, conn)
	if err != nil {
		if trackCtx.Err() != nil {
			return
		}
		p.log.Warn().Str("track", track.String()).Err(err).Msg("failed to open stream, skipping track")
		p.emit(Status{Kind: StatusError, Track: track, Err: err})
		return
	}

	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.state = StatePlaying
	p.current = &track
	p.session = sess
	p.cancelTrack = cancel
	p.mu.Unlock()

	p.log.Info().Str("track", track.String()).Msg("now playing")
	p.emit(Status{Kind: StatusPlaying, Track: track})

	err = sess.Run(trackCtx)

	p.mu.Lock()
	p.current = nil
	p.session = nil
	p.cancelTrack = nil
	p.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) && loopCtx.Err() == nil {
		p.log.Warn().Str("track", track.String()).Err(err).Msg("playback error, advancing to next track")
		p.emit(Status{Kind: StatusError, Track: track, Err: err})
	}
}

// goIdle parks the loop once the queue drains. It rechecks the queue under
// the lock so a track enqueued mid-drain keeps the loop alive instead of
// being stranded; it reports false when the loop should keep going.
func (p *Player) goIdle() bool {
	p.mu.Lock()
	if p.state != StateStopped && p.queue.Len() > 0 {
		p.mu.Unlock()
		return false
	}
	if p.state != StateStopped {
		p.state = StateIdle
		p.idleSince = time.Now()
		p.emit(Status{Kind: StatusIdle})
	}
	p.cancelLoop = nil
	p.loopDone = nil
	p.mu.Unlock()

	p.log.Debug().Msg("queue drained, going idle")
	return true
}

func (p *Player) finishLoop() {
	p.mu.Lock()
	p.cancelLoop = nil
	p.loopDone = nil
	p.mu.Unlock()
}
