// Package queue holds the per-guild FIFO of pending tracks.
package queue

import (
	"fmt"
	"sync"
	"time"
)

// Track is a single playable audio item.
type Track struct {
	Title  string
	Artist string

	// URL is the playable location. Empty for tracks that still need a
	// search-time match (Spotify imports); see SearchQuery.
	URL         string
	SearchQuery string

	Duration  time.Duration
	Source    string
	Requester string

	// Parsers lists the stream backends to try, in order.
	Parsers []string
}

// NeedsResolution reports whether the track must be matched to a playable
// URL before streaming.
func (t Track) NeedsResolution() bool { return t.URL == "" }

func (t Track) String() string {
	if t.Artist != "" {
		return fmt.Sprintf("%s - %s", t.Artist, t.Title)
	}
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

// Queue is a bounded FIFO. All methods are safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	tracks  []Track
	maxSize int
}

// New creates a queue capped at maxSize tracks; 0 or negative means
// unbounded.
func New(maxSize int) *Queue {
	return &Queue{maxSize: maxSize}
}

// Enqueue appends tracks in order and returns how many fit under the cap.
func (q *Queue) Enqueue(tracks ...Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	added := 0
	for _, t := range tracks {
		if q.maxSize > 0 && len(q.tracks) >= q.maxSize {
			break
		}
		q.tracks = append(q.tracks, t)
		added++
	}
	return added
}

// DequeueNext removes and returns the head of the queue.
func (q *Queue) DequeueNext() (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return Track{}, false
	}
	head := q.tracks[0]
	q.tracks = q.tracks[1:]
	return head, true
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return Track{}, false
	}
	return q.tracks[0], true
}

// Clear empties the queue and returns how many tracks were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.tracks)
	q.tracks = nil
	return n
}

// Remove drops the track at index (0 = head).
func (q *Queue) Remove(index int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

// Tracks returns a snapshot copy of the pending tracks.
func (q *Queue) Tracks() []Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}
