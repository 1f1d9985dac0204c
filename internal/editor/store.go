package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Conceptual-Machines/riffcard-api/internal/logger"
	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/google/uuid"
)

// SessionStore holds the live editing sessions of this process
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

func NewSessionStore(opts Options) *SessionStore {
	if opts.DefaultBPM <= 0 {
		opts.DefaultBPM = models.DefaultBPM
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Create starts a session on song, or on a blank document when song is nil
func (st *SessionStore) Create(song *models.Song, instruments []models.Instrument) (*Session, error) {
	if song == nil {
		song = models.NewSong(st.opts.DefaultBPM)
	} else if err := song.Validate(st.parseOptions()); err != nil {
		return nil, err
	}
	resolved, err := models.ResolveInstruments(instruments, len(song.Tracks))
	if err != nil {
		return nil, err
	}

	s := newSession(uuid.New().String(), song, resolved, st.opts)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, nil
}

// Get returns a live session
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Delete drops a session
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
func (st *SessionStore) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor prunes idle sessions every interval until ctx is done
func (st *SessionStore) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := st.Prune(maxIdle)
			fields := logger.Fields{"pruned": n, "remaining": st.Len()}
			if n > 0 {
				logger.Info("Pruned idle editing sessions", fields)
			} else {
				logger.Debug("Idle session sweep", fields)
			}
		}
	}
}

func (st *SessionStore) parseOptions() notation.ParseOptions {
	return notation.ParseOptions{Strict: st.opts.Strict}
}
