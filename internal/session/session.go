// Package session owns the business state snapshot of one signed-in
// identity and is the only place that replaces it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go-myshop-agent/internal/config"
	"go-myshop-agent/internal/demo"
	"go-myshop-agent/internal/gate"
	"go-myshop-agent/internal/mapper"
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/reconcile"
	"go-myshop-agent/internal/store"
)

var ErrSignedOut = errors.New("session is signed out")

// Session holds the identity, its profile and its business state. Mutations
// commit locally under the session lock before any remote call starts.
type Session struct {
	gw  store.Gateway
	rec *reconcile.Reconciler
	log *logrus.Logger
	now func() time.Time

	mu      sync.RWMutex
	id      models.Identity
	state   models.BusinessState
	profile models.Profile
	version uint64 // bumped on every local commit
}

func New(gw store.Gateway, rec *reconcile.Reconciler, log *logrus.Logger) *Session {
	return &Session{gw: gw, rec: rec, log: log, now: time.Now, state: models.EmptyState()}
}

// SignIn binds the session to id and loads everything the owner has. Guests
// start with an empty shop. Fetch failures are logged, never returned.
func (s *Session) SignIn(ctx context.Context, id models.Identity) error {
	if id == nil {
		return fmt.Errorf("sign in: %w", ErrSignedOut)
	}

	s.mu.Lock()
	s.id = id
	s.state = models.EmptyState()
	s.profile = defaultProfile(id)
	s.version++
	s.mu.Unlock()

	_, err := s.Refresh(ctx)
	return err
}

// SignOut forgets the identity and everything loaded for it.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = nil
	s.state = models.EmptyState()
	s.profile = models.Profile{}
	s.version++
}

func (s *Session) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// State returns the current snapshot. Callers must treat it as read-only.
func (s *Session) State() models.BusinessState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Profile() models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) SyncStatus() reconcile.Status {
	return s.rec.Status()
}

// Replace commits next as the new state and starts reconciling the
// difference. The returned plan lists the calls that were started.
func (s *Session) Replace(ctx context.Context, next models.BusinessState) (reconcile.Plan, error) {
	_, plan, err := s.Apply(ctx, func(models.BusinessState) (models.BusinessState, error) {
		return next, nil
	})
	return plan, err
}

// Apply derives the next state from the current one and commits it like
// Replace. fn runs under the session lock, so concurrent Applys never lose
// each other's changes. When fn fails nothing is committed.
func (s *Session) Apply(ctx context.Context, fn func(models.BusinessState) (models.BusinessState, error)) (models.BusinessState, reconcile.Plan, error) {
	s.mu.Lock()
	if s.id == nil {
		s.mu.Unlock()
		return models.BusinessState{}, reconcile.Plan{}, ErrSignedOut
	}
	prev := s.state
	next, err := fn(prev)
	if err != nil {
		s.mu.Unlock()
		return prev, reconcile.Plan{}, err
	}
	s.state = next
	s.version++
	id := s.id
	s.mu.Unlock()

	return next, s.rec.Reconcile(ctx, prev, next, id), nil
}

// Refresh refetches the whole state and profile of an account. For guests it
// returns the local state unchanged. When a local commit lands while the
// fetch is running, the fetched copy is dropped and the local state kept.
func (s *Session) Refresh(ctx context.Context) (models.BusinessState, error) {
	s.mu.RLock()
	id, version := s.id, s.version
	s.mu.RUnlock()
	if id == nil {
		return models.BusinessState{}, ErrSignedOut
	}
	ownerID, remote := gate.Remote(id)
	if !remote {
		return s.State(), nil
	}

	state, profile := s.fetch(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		s.log.WithField("owner_id", ownerID).Debug("state changed during refresh, keeping local copy")
		return s.state, nil
	}
	s.state = state
	s.profile = profile
	return state, nil
}

// fetch loads the four collections and the profile concurrently. A failing
// collection comes back empty.
func (s *Session) fetch(ctx context.Context, ownerID string) (models.BusinessState, models.Profile) {
	state := models.EmptyState()
	profile := models.Profile{BusinessName: models.DefaultBusinessName}

	var g errgroup.Group
	g.Go(func() error {
		if rows, ok := s.selectRows(ctx, store.Inventory, ownerID); ok {
			state.Inventory = mapper.FromRows(rows, mapper.ProductFromRow)
		}
		return nil
	})
	g.Go(func() error {
		if rows, ok := s.selectRows(ctx, store.Sales, ownerID); ok {
			state.Sales = mapper.FromRows(rows, mapper.SaleFromRow)
		}
		return nil
	})
	g.Go(func() error {
		if rows, ok := s.selectRows(ctx, store.Customers, ownerID); ok {
			state.Customers = mapper.FromRows(rows, mapper.CustomerFromRow)
		}
		return nil
	})
	g.Go(func() error {
		if rows, ok := s.selectRows(ctx, store.Expenses, ownerID); ok {
			state.Expenses = mapper.FromRows(rows, mapper.ExpenseFromRow)
		}
		return nil
	})
	g.Go(func() error {
		row, err := s.gw.SelectProfile(ctx, ownerID)
		if err != nil {
			config.LogError(s.log, "session", "fetch", "select profile", logrus.Fields{"owner_id": ownerID}, err)
			return nil
		}
		profile = mapper.ProfileFromRow(row)
		return nil
	})
	_ = g.Wait()
	return state, profile
}

func (s *Session) selectRows(ctx context.Context, c store.Collection, ownerID string) ([]store.Row, bool) {
	rows, err := s.gw.Select(ctx, c, ownerID)
	if err != nil {
		config.LogError(s.log, "session", "fetch", "select "+string(c), logrus.Fields{"owner_id": ownerID}, err)
		return nil, false
	}
	return rows, true
}

// LoadDemo replaces the shop with the sample data. An account gets the rows
// written remotely first and then refetched; a guest only sees them locally.
func (s *Session) LoadDemo(ctx context.Context) (models.BusinessState, error) {
	id := s.Identity()
	if id == nil {
		return models.BusinessState{}, ErrSignedOut
	}
	data := demo.State(s.now())

	ownerID, remote := gate.Remote(id)
	if !remote {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state = data
		s.version++
		return data, nil
	}

	execErr := s.rec.Run(ctx, reconcile.LoadPlan(data, ownerID))
	state, err := s.Refresh(ctx)
	if execErr != nil {
		return state, fmt.Errorf("load demo: %w", execErr)
	}
	return state, err
}

// ClearData empties the shop. Local state is cleared even when the remote
// delete fails.
func (s *Session) ClearData(ctx context.Context) error {
	s.mu.Lock()
	id := s.id
	if id == nil {
		s.mu.Unlock()
		return ErrSignedOut
	}
	s.state = models.EmptyState()
	s.version++
	s.mu.Unlock()

	ownerID, remote := gate.Remote(id)
	if !remote {
		return nil
	}
	if err := s.rec.Run(ctx, reconcile.ClearPlan(ownerID)); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}

// UpdateProfile commits p locally and, for an account, writes it through.
func (s *Session) UpdateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.BusinessName == "" {
		p.BusinessName = models.DefaultBusinessName
	}

	s.mu.Lock()
	id := s.id
	if id == nil {
		s.mu.Unlock()
		return models.Profile{}, ErrSignedOut
	}
	s.profile = p
	s.version++
	s.mu.Unlock()

	ownerID, remote := gate.Remote(id)
	if !remote {
		return p, nil
	}
	if err := s.gw.UpsertProfile(ctx, ownerID, mapper.ProfileToRow(p, ownerID)); err != nil {
		config.LogError(s.log, "session", "UpdateProfile", "upsert profile", logrus.Fields{"owner_id": ownerID}, err)
		return p, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// Wait blocks until background reconciliation has finished.
func (s *Session) Wait() {
	s.rec.Wait()
}

func defaultProfile(id models.Identity) models.Profile {
	if gate.IsGuest(id) {
		return models.Profile{BusinessName: demo.BusinessName}
	}
	return models.Profile{BusinessName: models.DefaultBusinessName}
}
