// Package jobmgr runs named background jobs with cancellation and
// in-memory tracking. It is intentionally minimal: no retries, no
// persistence; jobs are removed automatically on completion.
package jobmgr

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type job struct {
	name   string
	cancel context.CancelFunc
}

// Manager orchestrates starting, stopping and tracking jobs. Safe for
// concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup
	log  zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		jobs: make(map[string]*job),
		log:  log.With().Str("component", "jobmgr").Logger(),
	}
}

// Start runs the job in its own goroutine with a context derived from
// parent. Starting a name that is already running is an error.
func (m *Manager) Start(parent context.Context, name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job %q is already running", name)
	}

	ctx, cancel := context.WithCancel(parent)
	m.jobs[name] = &job{name: name, cancel: cancel}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.log.Debug().Str("job", name).Msg("job started")

		if err := runner(ctx); err != nil && ctx.Err() == nil {
			m.log.Error().Str("job", name).Err(err).Msg("job failed")
		} else {
			m.log.Debug().Str("job", name).Msg("job finished")
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
		cancel()
	}()

	return nil
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	j.cancel()
	delete(m.jobs, name)
	return nil
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	for name, j := range m.jobs {
		j.cancel()
		delete(m.jobs, name)
	}
	m.mu.Unlock()
}

// Wait blocks until all started jobs have returned.
func (m *Manager) Wait() { m.wg.Wait() }

// List returns the active job names.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		out = append(out, name)
	}
	return out
}
