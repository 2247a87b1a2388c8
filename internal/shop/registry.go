package shop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-mart/internal/events"
	"github.com/noah-isme/backend-mart/internal/obs"
)

// ErrSessionNotFound indicates the session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Registry owns the live sessions. Each session gets a stop function from
// OnCreate (typically cancelling its promotion scheduler) that runs when
// the session is deleted, swept or the registry shuts down.
type Registry struct {
	TTL      time.Duration
	Now      func() time.Time
	OnCreate func(s *Session) (stop func())
	Bus      *events.Bus
	Logger   zerolog.Logger

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	session *Session
	stop    func()
}

// NewRegistry builds an empty registry with the given session TTL.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		TTL:     ttl,
		Now:     time.Now,
		Logger:  zerolog.Nop(),
		entries: make(map[string]*registryEntry),
	}
}

func (r *Registry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Create seeds a new session, runs the OnCreate hook and registers it.
func (r *Registry) Create(ctx context.Context) *Session {
	session := NewSession(uuid.NewString(), r.Now)
	entry := &registryEntry{session: session}
	if r.OnCreate != nil {
		entry.stop = r.OnCreate(session)
	}

	r.mu.Lock()
	if r.entries == nil {
		r.entries = make(map[string]*registryEntry)
	}
	r.entries[session.ID] = entry
	count := len(r.entries)
	r.mu.Unlock()

	if obs.SessionsActive != nil {
		obs.SessionsActive.Set(float64(count))
	}
	if _, err := r.Bus.Emit(ctx, events.TopicSessionCreated, session.ID, nil); err != nil {
		r.Logger.Warn().Err(err).Msg("emit session created")
	}
	return session
}

// Get returns the session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.session.Touch()
	return entry.session, nil
}

// Delete removes the session and stops its promotion scheduler.
func (r *Registry) Delete(ctx context.Context, id string) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	count := len(r.entries)
	r.mu.Unlock()
	if !ok {
		return
	}
	if entry.stop != nil {
		entry.stop()
	}
	if obs.SessionsActive != nil {
		obs.SessionsActive.Set(float64(count))
	}
	if _, err := r.Bus.Emit(ctx, events.TopicSessionExpired, id, nil); err != nil {
		r.Logger.Warn().Err(err).Msg("emit session expired")
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps expired sessions until ctx is cancelled. Sessions idle for
// longer than the TTL are dropped and their schedulers stopped.
func (r *Registry) Run(ctx context.Context, sweepEvery time.Duration) {
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Registry) sweep(ctx context.Context) {
	if r.TTL <= 0 {
		return
	}
	cutoff := r.now().Add(-r.TTL)

	r.mu.Lock()
	var expired []string
	for id, entry := range r.entries {
		if entry.session.TouchedAt().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		r.Delete(ctx, id)
		if obs.SessionsExpiredTotal != nil {
			obs.SessionsExpiredTotal.Inc()
		}
		r.Logger.Debug().Str("session_id", id).Msg("session expired")
	}
}

// StopAll stops every session's scheduler. Used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	entries := make([]*registryEntry, 0, len(r.entries))
	for id, entry := range r.entries {
		entries = append(entries, entry)
		delete(r.entries, id)
	}
	r.mu.Unlock()
	for _, entry := range entries {
		if entry.stop != nil {
			entry.stop()
		}
	}
	if obs.SessionsActive != nil {
		obs.SessionsActive.Set(0)
	}
}
