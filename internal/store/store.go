package store

import (
	"context"
	"errors"

	"go-myshop-agent/internal/models"
)

// Collection names one remote table of business records.
type Collection string

const (
	Inventory Collection = "inventory"
	Sales     Collection = "sales"
	Customers Collection = "customers"
	Expenses  Collection = "expenses"
)

// Collections lists every business collection in fetch order.
var Collections = []Collection{Inventory, Sales, Customers, Expenses}

// OrderedByDate reports whether Select returns newest rows first.
func (c Collection) OrderedByDate() bool {
	return c == Sales || c == Expenses
}

func (c Collection) Valid() bool {
	switch c {
	case Inventory, Sales, Customers, Expenses:
		return true
	}
	return false
}

// Row is a record in its remote shape. Keys are remote column names.
type Row map[string]any

// Well-known row columns.
const (
	ColumnID      = "id"
	ColumnOwnerID = "owner_id"
	ColumnDate    = "date"
)

// ID returns the row id or "" if missing.
func (r Row) ID() string {
	s, _ := r[ColumnID].(string)
	return s
}

// OwnerID returns the row owner or "" if missing.
func (r Row) OwnerID() string {
	s, _ := r[ColumnOwnerID].(string)
	return s
}

func (r Row) date() string {
	s, _ := r[ColumnDate].(string)
	return s
}

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrMissingID         = errors.New("row has no id")
	ErrMissingOwner      = errors.New("row has no owner_id")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// Gateway is the remote multi-table store. Every call is scoped by owner;
// the store, not the caller, enforces that an owner only sees its rows.
type Gateway interface {
	// Select returns all rows of the owner. Sales and expenses come back
	// newest first.
	Select(ctx context.Context, c Collection, ownerID string) ([]Row, error)
	// Upsert inserts or replaces each row keyed by (owner_id, id). A row
	// never replaces another owner's row with the same id.
	Upsert(ctx context.Context, c Collection, rows []Row) error
	// Insert adds rows that must not exist yet.
	Insert(ctx context.Context, c Collection, rows []Row) error
	// Delete removes the rows with the given ids that belong to the owner.
	Delete(ctx context.Context, c Collection, ownerID string, ids []string) error
	// DeleteAll removes every row of the owner.
	DeleteAll(ctx context.Context, c Collection, ownerID string) error
	// SelectProfile returns nil without error when the owner has no profile.
	SelectProfile(ctx context.Context, ownerID string) (Row, error)
	UpsertProfile(ctx context.Context, ownerID string, row Row) error
}

// UserRepository stores the accounts of the email/password auth provider.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

func checkRows(c Collection, rows []Row) error {
	if !c.Valid() {
		return ErrUnknownCollection
	}
	for _, r := range rows {
		if r.ID() == "" {
			return ErrMissingID
		}
		if r.OwnerID() == "" {
			return ErrMissingOwner
		}
	}
	return nil
}
