package reconcile

import (
	"fmt"

	"go-myshop-agent/internal/mapper"
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/store"
)

// SalesMode picks how sales are synchronized.
type SalesMode string

const (
	// SalesInsertOnly inserts new sales and deletes removed ones; a sale id
	// present on both sides is never rewritten.
	SalesInsertOnly SalesMode = "insert-only"
	// SalesFullCRUD diffs sales like every other collection.
	SalesFullCRUD SalesMode = "crud"
)

func ParseSalesMode(s string) (SalesMode, error) {
	switch SalesMode(s) {
	case SalesInsertOnly, "":
		return SalesInsertOnly, nil
	case SalesFullCRUD:
		return SalesFullCRUD, nil
	}
	return "", fmt.Errorf("unknown sales sync mode %q", s)
}

type OpKind string

const (
	OpUpsert    OpKind = "upsert"
	OpInsert    OpKind = "insert"
	OpDelete    OpKind = "delete"
	OpDeleteAll OpKind = "delete_all"
)

// Op is one gateway call.
type Op struct {
	Collection store.Collection
	Kind       OpKind
	Rows       []store.Row // upsert, insert
	IDs        []string    // delete
}

// Plan is the set of gateway calls that converge the remote store of one
// owner to a local state.
type Plan struct {
	OwnerID string
	Ops     []Op
}

func (p Plan) Empty() bool { return len(p.Ops) == 0 }

// Find returns the op of the given kind for c, if any.
func (p Plan) Find(c store.Collection, kind OpKind) (Op, bool) {
	for _, op := range p.Ops {
		if op.Collection == c && op.Kind == kind {
			return op, true
		}
	}
	return Op{}, false
}

// BuildPlan diffs prev against next collection by collection. It does no I/O
// and does not consult the guest gate.
func BuildPlan(prev, next models.BusinessState, ownerID string, mode SalesMode) Plan {
	plan := Plan{OwnerID: ownerID}

	plan.Ops = append(plan.Ops, collectionOps(store.Inventory, prev.Inventory, next.Inventory, ownerID, true, OpUpsert, mapper.ProductToRow)...)

	salesWrite, salesUpdates := OpInsert, false
	if mode == SalesFullCRUD {
		salesWrite, salesUpdates = OpUpsert, true
	}
	plan.Ops = append(plan.Ops, collectionOps(store.Sales, prev.Sales, next.Sales, ownerID, salesUpdates, salesWrite, mapper.SaleToRow)...)

	plan.Ops = append(plan.Ops, collectionOps(store.Customers, prev.Customers, next.Customers, ownerID, true, OpUpsert, mapper.CustomerToRow)...)
	plan.Ops = append(plan.Ops, collectionOps(store.Expenses, prev.Expenses, next.Expenses, ownerID, true, OpUpsert, mapper.ExpenseToRow)...)
	return plan
}

func collectionOps[T Record[T]](
	c store.Collection,
	prev, next []T,
	ownerID string,
	trackUpdates bool,
	write OpKind,
	toRow func(T, string) store.Row,
) []Op {
	if sameSlice(prev, next) {
		return nil
	}

	ch := Diff(prev, next, trackUpdates)
	var ops []Op
	if len(ch.Upserts) > 0 {
		ops = append(ops, Op{Collection: c, Kind: write, Rows: mapper.ToRows(ch.Upserts, ownerID, toRow)})
	}
	if len(ch.Removed) > 0 {
		ops = append(ops, Op{Collection: c, Kind: OpDelete, IDs: ch.Removed})
	}
	return ops
}

// LoadPlan upserts every record of state, for bulk loads.
func LoadPlan(state models.BusinessState, ownerID string) Plan {
	plan := Plan{OwnerID: ownerID}
	rows := mapper.StateToRows(state, ownerID)
	for _, c := range store.Collections {
		if len(rows[c]) > 0 {
			plan.Ops = append(plan.Ops, Op{Collection: c, Kind: OpUpsert, Rows: rows[c]})
		}
	}
	return plan
}

// ClearPlan deletes every row of the owner in every collection.
func ClearPlan(ownerID string) Plan {
	plan := Plan{OwnerID: ownerID}
	for _, c := range store.Collections {
		plan.Ops = append(plan.Ops, Op{Collection: c, Kind: OpDeleteAll})
	}
	return plan
}
