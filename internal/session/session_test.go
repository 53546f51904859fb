package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/mapper"
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/reconcile"
	"go-myshop-agent/internal/store"
)

var errDown = errors.New("store is down")

// flakyGateway counts every call on top of a MemoryStore and fails the
// collections listed in failSelect or failWrite.
type flakyGateway struct {
	*store.MemoryStore

	mu         sync.Mutex
	calls      int
	failSelect map[store.Collection]bool
	failWrite  bool
	onSelect   func(store.Collection)
}

func newFlaky() *flakyGateway {
	return &flakyGateway{MemoryStore: store.NewMemoryStore(), failSelect: map[store.Collection]bool{}}
}

func (g *flakyGateway) hit() {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
}

func (g *flakyGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *flakyGateway) Select(ctx context.Context, c store.Collection, ownerID string) ([]store.Row, error) {
	g.hit()
	if g.onSelect != nil {
		g.onSelect(c)
	}
	if g.failSelect[c] {
		return nil, errDown
	}
	return g.MemoryStore.Select(ctx, c, ownerID)
}

func (g *flakyGateway) Upsert(ctx context.Context, c store.Collection, rows []store.Row) error {
	g.hit()
	if g.failWrite {
		return errDown
	}
	return g.MemoryStore.Upsert(ctx, c, rows)
}

func (g *flakyGateway) Insert(ctx context.Context, c store.Collection, rows []store.Row) error {
	g.hit()
	if g.failWrite {
		return errDown
	}
	return g.MemoryStore.Insert(ctx, c, rows)
}

func (g *flakyGateway) Delete(ctx context.Context, c store.Collection, ownerID string, ids []string) error {
	g.hit()
	if g.failWrite {
		return errDown
	}
	return g.MemoryStore.Delete(ctx, c, ownerID, ids)
}

func (g *flakyGateway) DeleteAll(ctx context.Context, c store.Collection, ownerID string) error {
	g.hit()
	if g.failWrite {
		return errDown
	}
	return g.MemoryStore.DeleteAll(ctx, c, ownerID)
}

func (g *flakyGateway) SelectProfile(ctx context.Context, ownerID string) (store.Row, error) {
	g.hit()
	return g.MemoryStore.SelectProfile(ctx, ownerID)
}

func (g *flakyGateway) UpsertProfile(ctx context.Context, ownerID string, row store.Row) error {
	g.hit()
	if g.failWrite {
		return errDown
	}
	return g.MemoryStore.UpsertProfile(ctx, ownerID, row)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var (
	owner = models.Authenticated{ID: "owner-1", Email: "owner@shop.test"}
	guest = models.Guest{SessionID: "g-1"}
)

func newSession(gw store.Gateway) *Session {
	return New(gw, reconcile.New(gw, reconcile.SalesInsertOnly, quietLogger()), quietLogger())
}

func seed(t *testing.T, gw store.Gateway) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, gw.Upsert(ctx, store.Inventory, []store.Row{
		mapper.ProductToRow(models.Product{ID: "p1", Name: "Rice", Price: 50, Quantity: 10, Categories: []string{"Food"}}, owner.ID),
		{"id": "p-legacy", "owner_id": owner.ID, "name": "Tea", "category": "Drinks"},
		mapper.ProductToRow(models.Product{ID: "p-other", Name: "Not mine"}, "someone-else"),
	}))
	require.NoError(t, gw.Upsert(ctx, store.Customers, []store.Row{
		mapper.CustomerToRow(models.Customer{ID: "c1", Name: "Rina", TotalSpent: 120}, owner.ID),
	}))
	require.NoError(t, gw.Upsert(ctx, store.Sales, []store.Row{
		mapper.SaleToRow(models.Sale{ID: "s1", Date: "2024-01-01T00:00:00Z", TotalAmount: 50}, owner.ID),
		mapper.SaleToRow(models.Sale{ID: "s2", Date: "2024-02-01T00:00:00Z", TotalAmount: 70}, owner.ID),
	}))
}

func TestSignIn_FetchesOwnerRows(t *testing.T) {
	gw := newFlaky()
	seed(t, gw)
	require.NoError(t, gw.UpsertProfile(context.Background(), owner.ID, store.Row{"business_name": "Rina's Corner"}))
	s := newSession(gw)

	require.NoError(t, s.SignIn(context.Background(), owner))

	st := s.State()
	require.Len(t, st.Inventory, 2)
	assert.Equal(t, "p-legacy", st.Inventory[0].ID)
	assert.Equal(t, []string{"Drinks"}, st.Inventory[0].Categories)
	assert.Equal(t, []string{"s2", "s1"}, []string{st.Sales[0].ID, st.Sales[1].ID})
	assert.Equal(t, 120.0, st.Customers[0].TotalSpent)
	assert.NotNil(t, st.Expenses)
	assert.Empty(t, st.Expenses)
	assert.Equal(t, "Rina's Corner", s.Profile().BusinessName)
}

func TestSignIn_MissingProfileDefaults(t *testing.T) {
	s := newSession(newFlaky())
	require.NoError(t, s.SignIn(context.Background(), owner))
	assert.Equal(t, models.DefaultBusinessName, s.Profile().BusinessName)
}

func TestSignIn_FailedCollectionFallsBackToEmpty(t *testing.T) {
	gw := newFlaky()
	seed(t, gw)
	gw.failSelect[store.Inventory] = true
	s := newSession(gw)

	require.NoError(t, s.SignIn(context.Background(), owner))

	st := s.State()
	assert.NotNil(t, st.Inventory)
	assert.Empty(t, st.Inventory)
	assert.Len(t, st.Sales, 2, "other collections still load")
}

func TestReplace_SyncsToStore(t *testing.T) {
	gw := newFlaky()
	s := newSession(gw)
	require.NoError(t, s.SignIn(context.Background(), owner))

	next, _, err := actions.AddProduct(s.State(), actions.ProductInput{Name: "Rice", Price: 50, Quantity: 10})
	require.NoError(t, err)
	plan, err := s.Replace(context.Background(), next)
	require.NoError(t, err)
	s.Wait()

	assert.Len(t, plan.Ops, 1)
	assert.Equal(t, 1, gw.Count(store.Inventory, owner.ID))
	assert.Equal(t, next, s.State())
	assert.False(t, s.SyncStatus().Failed)
}

func TestReplace_OptimisticUnderFailure(t *testing.T) {
	run := func(failWrite bool) (models.BusinessState, reconcile.Status) {
		gw := newFlaky()
		s := newSession(gw)
		require.NoError(t, s.SignIn(context.Background(), owner))
		gw.failWrite = failWrite

		next := models.BusinessState{
			Inventory: []models.Product{{ID: "p1", Name: "Rice", Categories: []string{}}},
			Sales:     []models.Sale{{ID: "s1", Items: []models.SaleItem{}}},
			Customers: []models.Customer{{ID: "c1"}},
			Expenses:  []models.Expense{{ID: "e1", Amount: 5}},
		}
		_, err := s.Replace(context.Background(), next)
		require.NoError(t, err)
		s.Wait()
		return s.State(), s.SyncStatus()
	}

	okState, okStatus := run(false)
	failState, failStatus := run(true)

	assert.Equal(t, okState, failState)
	assert.False(t, okStatus.Failed)
	assert.True(t, failStatus.Failed)
	assert.Contains(t, failStatus.LastError, errDown.Error())
}

func TestApply_ErrorCommitsNothing(t *testing.T) {
	gw := newFlaky()
	s := newSession(gw)
	require.NoError(t, s.SignIn(context.Background(), owner))
	before := gw.Calls()

	_, _, err := s.Apply(context.Background(), func(st models.BusinessState) (models.BusinessState, error) {
		return actions.DeleteProduct(st, "missing")
	})

	assert.ErrorIs(t, err, actions.ErrNotFound)
	assert.Empty(t, s.State().Inventory)
	assert.Equal(t, before, gw.Calls())
}

func TestGuest_NeverTouchesStore(t *testing.T) {
	gw := newFlaky()
	s := newSession(gw)
	ctx := context.Background()

	require.NoError(t, s.SignIn(ctx, guest))
	assert.Equal(t, "My Demo Shop", s.Profile().BusinessName)

	demoState, err := s.LoadDemo(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, demoState.Inventory)
	assert.Equal(t, demoState, s.State())

	_, _, err = s.Apply(ctx, func(st models.BusinessState) (models.BusinessState, error) {
		next, _, err := actions.AddExpense(st, actions.ExpenseInput{Description: "Tea", Category: "Others", Amount: 20})
		return next, err
	})
	require.NoError(t, err)

	_, err = s.UpdateProfile(ctx, models.Profile{BusinessName: "Guest Shop"})
	require.NoError(t, err)
	_, err = s.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, s.ClearData(ctx))
	s.Wait()

	assert.Equal(t, 0, gw.Calls())
	assert.Empty(t, s.State().Inventory)
	assert.Equal(t, "Guest Shop", s.Profile().BusinessName)
}

func TestRefresh_KeepsCommitMadeDuringFetch(t *testing.T) {
	gw := newFlaky()
	seed(t, gw)
	s := newSession(gw)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, owner))

	var once sync.Once
	committed := make(chan struct{})
	gw.onSelect = func(c store.Collection) {
		if c != store.Inventory {
			return
		}
		once.Do(func() {
			_, _, err := s.Apply(ctx, func(st models.BusinessState) (models.BusinessState, error) {
				next, _, err := actions.AddProduct(st, actions.ProductInput{Name: "Sugar", Price: 3})
				return next, err
			})
			assert.NoError(t, err)
			close(committed)
		})
	}

	state, err := s.Refresh(ctx)
	require.NoError(t, err)
	<-committed
	s.Wait()

	names := make([]string, 0, len(state.Inventory))
	for _, p := range state.Inventory {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "Sugar")
	assert.Equal(t, state, s.State())
}

func TestLoadDemo_WritesThenRefetches(t *testing.T) {
	gw := newFlaky()
	s := newSession(gw)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, owner))

	st, err := s.LoadDemo(ctx)
	require.NoError(t, err)

	assert.Equal(t, len(st.Inventory), gw.Count(store.Inventory, owner.ID))
	assert.Equal(t, len(st.Sales), gw.Count(store.Sales, owner.ID))
	assert.NotEmpty(t, st.Customers)
	assert.NotEmpty(t, st.Expenses)
	assert.Equal(t, st, s.State())
}

func TestLoadDemo_FailureShowsInSyncStatus(t *testing.T) {
	gw := newFlaky()
	s := newSession(gw)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, owner))
	gw.failWrite = true

	_, err := s.LoadDemo(ctx)

	assert.ErrorIs(t, err, errDown)
	st := s.SyncStatus()
	assert.True(t, st.Failed)
	assert.False(t, st.Syncing)
}

func TestClearData(t *testing.T) {
	gw := newFlaky()
	seed(t, gw)
	s := newSession(gw)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, owner))
	require.NotEmpty(t, s.State().Inventory)

	require.NoError(t, s.ClearData(ctx))

	assert.Equal(t, models.EmptyState(), s.State())
	for _, c := range store.Collections {
		assert.Zero(t, gw.Count(c, owner.ID), c)
	}
	assert.Equal(t, 1, gw.Count(store.Inventory, "someone-else"))
}

func TestClearData_RemoteFailureStillClearsLocal(t *testing.T) {
	gw := newFlaky()
	seed(t, gw)
	s := newSession(gw)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, owner))
	gw.failWrite = true

	err := s.ClearData(ctx)

	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, models.EmptyState(), s.State())
	assert.True(t, s.SyncStatus().Failed, "bulk delete shows in sync status")
}

func TestUpdateProfile_WritesThrough(t *testing.T) {
	gw := newFlaky()
	s := newSession(gw)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, owner))

	p, err := s.UpdateProfile(ctx, models.Profile{BusinessName: "", ProfilePicture: "/uploads/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBusinessName, p.BusinessName)

	row, err := gw.SelectProfile(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.jpg", row["profile_picture"])
}

func TestSignOut(t *testing.T) {
	gw := newFlaky()
	seed(t, gw)
	s := newSession(gw)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, owner))

	s.SignOut()

	assert.Nil(t, s.Identity())
	assert.Equal(t, models.EmptyState(), s.State())
	_, err := s.Replace(ctx, models.EmptyState())
	assert.ErrorIs(t, err, ErrSignedOut)
	assert.ErrorIs(t, s.SignIn(ctx, nil), ErrSignedOut)
}

func TestRegistry(t *testing.T) {
	gw := newFlaky()
	seed(t, gw)
	r := NewRegistry(gw, reconcile.SalesInsertOnly, quietLogger(), 0)
	ctx := context.Background()

	s1, err := r.Open(ctx, owner)
	require.NoError(t, err)
	s2, err := r.Open(ctx, owner)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Len(t, s1.State().Inventory, 2)

	g, err := r.Open(ctx, guest)
	require.NoError(t, err)
	assert.NotSame(t, s1, g)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(owner)
	require.True(t, ok)
	assert.Same(t, s1, got)

	r.Close(owner)
	_, ok = r.Get(owner)
	assert.False(t, ok)
	assert.Nil(t, s1.Identity(), "closed session is signed out")
	assert.Equal(t, 1, r.Len())

	_, err = r.Open(ctx, nil)
	assert.Error(t, err)
	r.Wait()
}

func TestRegistry_SweepEvictsIdleSessions(t *testing.T) {
	gw := newFlaky()
	r := NewRegistry(gw, reconcile.SalesInsertOnly, quietLogger(), time.Hour)
	clock := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	ctx := context.Background()

	idle, err := r.Open(ctx, models.Guest{SessionID: "idle"})
	require.NoError(t, err)
	_, err = r.Open(ctx, models.Guest{SessionID: "busy"})
	require.NoError(t, err)

	clock = clock.Add(40 * time.Minute)
	_, ok := r.Get(models.Guest{SessionID: "busy"})
	require.True(t, ok)

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	_, ok = r.Get(models.Guest{SessionID: "idle"})
	assert.False(t, ok)
	assert.Nil(t, idle.Identity(), "evicted session is signed out")

	again, err := r.Open(ctx, models.Guest{SessionID: "idle"})
	require.NoError(t, err)
	assert.NotSame(t, idle, again)

	clock = clock.Add(2 * time.Hour)
	assert.Equal(t, 2, r.Sweep())
	assert.Zero(t, r.Len())
	r.Wait()
}

func TestRegistry_RunJanitorStopsWithContext(t *testing.T) {
	r := NewRegistry(newFlaky(), reconcile.SalesInsertOnly, quietLogger(), time.Nanosecond)
	_, err := r.Open(context.Background(), guest)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
