// Package reconcile converges the remote store to an optimistically
// committed local business state.
//
// The caller commits the next state locally first and then hands the
// previous and next states to Reconcile, which returns the plan at once and
// runs its gateway calls in the background. A failed call is logged and
// recorded in Status; local state is never rolled back and nothing is
// retried. Cycles may overlap: remote writes are last-write-wins per owner.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go-myshop-agent/internal/config"
	"go-myshop-agent/internal/gate"
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/store"
)

// Status is what a UI shows next to the data: whether writes are in flight
// and whether the last finished cycle failed.
type Status struct {
	Syncing      bool      `json:"syncing"`
	InFlight     int       `json:"in_flight"`
	Failed       bool      `json:"failed"`
	LastError    string    `json:"last_error,omitempty"`
	LastSyncedAt time.Time `json:"last_synced_at,omitempty"`
}

type Reconciler struct {
	gw   store.Gateway
	mode SalesMode
	log  *logrus.Logger
	now  func() time.Time

	wg     sync.WaitGroup
	mu     sync.Mutex
	status Status
}

func New(gw store.Gateway, mode SalesMode, log *logrus.Logger) *Reconciler {
	return &Reconciler{gw: gw, mode: mode, log: log, now: time.Now}
}

func (r *Reconciler) Mode() SalesMode { return r.mode }

// Reconcile plans the gateway calls that take the remote store from prev to
// next and starts them without waiting. Guests and identities without an
// owner get an empty plan and no call is made.
func (r *Reconciler) Reconcile(ctx context.Context, prev, next models.BusinessState, id models.Identity) Plan {
	ownerID, ok := gate.Remote(id)
	if !ok {
		return Plan{}
	}

	plan := BuildPlan(prev, next, ownerID, r.mode)
	if plan.Empty() {
		return plan
	}
	r.Start(ctx, plan)
	return plan
}

// Start runs plan in the background. The calls outlive ctx's cancellation.
func (r *Reconciler) Start(ctx context.Context, plan Plan) {
	r.begin()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := r.Execute(context.WithoutCancel(ctx), plan)
		r.finish(err)
	}()
}

// Run executes plan in the caller's goroutine and records it in Status like
// a background cycle.
func (r *Reconciler) Run(ctx context.Context, plan Plan) error {
	r.begin()
	err := r.Execute(ctx, plan)
	r.finish(err)
	return err
}

// Execute runs every op of plan concurrently and waits for all of them. A
// failing op does not stop the others; the joined error lists every failure.
func (r *Reconciler) Execute(ctx context.Context, plan Plan) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, op := range plan.Ops {
		g.Go(func() error {
			if err := r.run(ctx, plan.OwnerID, op); err != nil {
				config.LogError(r.log, "reconcile", "Execute", string(op.Collection)+" "+string(op.Kind),
					logrus.Fields{"owner_id": plan.OwnerID, "rows": len(op.Rows), "ids": op.IDs}, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (r *Reconciler) run(ctx context.Context, ownerID string, op Op) error {
	var err error
	switch op.Kind {
	case OpUpsert:
		err = r.gw.Upsert(ctx, op.Collection, op.Rows)
	case OpInsert:
		err = r.gw.Insert(ctx, op.Collection, op.Rows)
	case OpDelete:
		err = r.gw.Delete(ctx, op.Collection, ownerID, op.IDs)
	case OpDeleteAll:
		err = r.gw.DeleteAll(ctx, op.Collection, ownerID)
	default:
		err = fmt.Errorf("unknown op kind %q", op.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", op.Kind, op.Collection, err)
	}
	return nil
}

func (r *Reconciler) begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.InFlight++
	r.status.Syncing = true
}

func (r *Reconciler) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.InFlight--
	r.status.Syncing = r.status.InFlight > 0
	if err != nil {
		r.status.Failed = true
		r.status.LastError = err.Error()
		return
	}
	r.status.Failed = false
	r.status.LastError = ""
	r.status.LastSyncedAt = r.now()
}

func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Wait blocks until every started cycle has finished.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
