package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ha1tch/deluxecanvas/internal/editor"
	"github.com/ha1tch/deluxecanvas/internal/metrics"
)

// ErrSessionNotFound is returned for ids that were never mounted or are gone.
var ErrSessionNotFound = errors.New("session not found")

type session struct {
	editor   *editor.Editor
	mu       sync.Mutex
	lastUsed time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Registry holds the mounted sessions. Each session owns one editor, which
// is closed when the session is deleted, reaped or the registry shuts down.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session

	newEditor func(id string) (*editor.Editor, error)
	idle      time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewRegistry returns an empty registry. Sessions unused for longer than
// idle are reaped by Run; zero disables reaping.
func NewRegistry(newEditor func(id string) (*editor.Editor, error), idle time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions:  make(map[string]*session),
		newEditor: newEditor,
		idle:      idle,
		now:       time.Now,
		logger:    logger,
	}
}

// Create mounts a new session.
func (r *Registry) Create() (string, *editor.Editor, error) {
	id := uuid.NewString()
	ed, err := r.newEditor(id)
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	r.sessions[id] = &session{editor: ed, lastUsed: r.now()}
	r.mu.Unlock()

	metrics.SessionOpened()
	r.logger.Info("session mounted", "session", id)
	return id, ed, nil
}

// Get returns the editor of a session and marks it used.
func (r *Registry) Get(id string) (*editor.Editor, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s.editor, nil
}

// Delete unmounts a session and releases its surface.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	r.release(id, s, "deleted")
	return nil
}

func (r *Registry) release(id string, s *session, reason string) {
	metrics.SessionClosed()
	if err := s.editor.Close(); err != nil {
		r.logger.Warn("close session", "session", id, "error", err)
	}
	r.logger.Info("session unmounted", "session", id, "reason", reason)
}

// Len returns the number of mounted sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap unmounts sessions idle for longer than the idle timeout and returns
// how many it removed.
func (r *Registry) Reap() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	stale := make(map[string]*session)
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			stale[id] = s
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for id, s := range stale {
		r.release(id, s, "idle")
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.idle <= 0 {
		return
	}
	interval := max(r.idle/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reap(); n > 0 {
				r.logger.Debug("reaped idle sessions", "count", n)
			}
		}
	}
}

// CloseAll unmounts every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for id, s := range all {
		r.release(id, s, "shutdown")
	}
}
