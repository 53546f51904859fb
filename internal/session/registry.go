package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/reconcile"
	"go-myshop-agent/internal/store"
)

// DefaultIdleTTL is how long an unused session stays loaded.
const DefaultIdleTTL = time.Hour

type entry struct {
	s        *Session
	lastSeen time.Time
}

// Registry keeps one Session per identity while it is signed in and in use.
// Each session gets its own reconciler so sync status is per identity.
// Sessions idle for longer than the idle TTL are signed out by Sweep; the
// next request of a still valid token opens a fresh one.
type Registry struct {
	gw      store.Gateway
	mode    reconcile.SalesMode
	log     *logrus.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	// retired tracks reconciliation still running in dropped sessions.
	retired sync.WaitGroup
}

// NewRegistry builds an empty registry. A non-positive idleTTL means
// DefaultIdleTTL.
func NewRegistry(gw store.Gateway, mode reconcile.SalesMode, log *logrus.Logger, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		gw:       gw,
		mode:     mode,
		log:      log,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Open returns the session of id, signing it in on first use.
func (r *Registry) Open(ctx context.Context, id models.Identity) (*Session, error) {
	if s, ok := r.Get(id); ok {
		return s, nil
	}

	s := New(r.gw, reconcile.New(r.gw, r.mode, r.log), r.log)
	if err := s.SignIn(ctx, id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id.SessionKey()]; ok {
		// Lost a race with a concurrent Open.
		existing.lastSeen = r.now()
		return existing.s, nil
	}
	r.sessions[id.SessionKey()] = &entry{s: s, lastSeen: r.now()}
	r.log.WithField("session", id.SessionKey()).Info("session opened")
	return s, nil
}

// Get returns the open session of id and marks it as used.
func (r *Registry) Get(id models.Identity) (*Session, bool) {
	if id == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id.SessionKey()]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.s, true
}

// Close signs the session out and drops it. In-flight reconciliation keeps
// running to completion.
func (r *Registry) Close(id models.Identity) {
	if id == nil {
		return
	}
	r.mu.Lock()
	e, ok := r.sessions[id.SessionKey()]
	delete(r.sessions, id.SessionKey())
	r.mu.Unlock()

	if ok {
		r.retire(e.s)
		r.log.WithField("session", id.SessionKey()).Info("session closed")
	}
}

// Sweep signs out and drops every session unused for longer than the idle
// TTL. It returns how many were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var expired []*Session
	for key, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		r.retire(s)
	}
	if len(expired) > 0 {
		r.log.WithField("count", len(expired)).Info("idle sessions evicted")
	}
	return len(expired)
}

// RunJanitor sweeps every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) retire(s *Session) {
	s.SignOut()
	r.retired.Go(s.Wait)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Wait blocks until every session, open or dropped, has finished
// reconciling.
func (r *Registry) Wait() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		sessions = append(sessions, e.s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Wait()
	}
	r.retired.Wait()
}
