package store

import (
	"context"
	"maps"
	"sort"
	"sync"

	"go-myshop-agent/internal/models"
)

// MemoryStore keeps everything in process. It backs the "memory" driver and
// the tests of the packages above the store.
type MemoryStore struct {
	mu       sync.Mutex
	tables   map[Collection]map[rowKey]Row
	profiles map[string]Row
	users    map[string]models.User
}

// rowKey scopes an id to its owner, like the composite key of the SQL tables.
type rowKey struct {
	owner, id string
}

func keyOf(r Row) rowKey { return rowKey{owner: r.OwnerID(), id: r.ID()} }

func NewMemoryStore() *MemoryStore {
	tables := make(map[Collection]map[rowKey]Row, len(Collections))
	for _, c := range Collections {
		tables[c] = make(map[rowKey]Row)
	}
	return &MemoryStore{
		tables:   tables,
		profiles: make(map[string]Row),
		users:    make(map[string]models.User),
	}
}

func (m *MemoryStore) Select(ctx context.Context, c Collection, ownerID string) ([]Row, error) {
	if !c.Valid() {
		return nil, ErrUnknownCollection
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]Row, 0)
	for _, r := range m.tables[c] {
		if r.OwnerID() == ownerID {
			rows = append(rows, maps.Clone(r))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c.OrderedByDate() && rows[i].date() != rows[j].date() {
			return rows[i].date() > rows[j].date()
		}
		return rows[i].ID() < rows[j].ID()
	})
	return rows, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, c Collection, rows []Row) error {
	if err := checkRows(c, rows); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range rows {
		m.tables[c][keyOf(r)] = maps.Clone(r)
	}
	return nil
}

func (m *MemoryStore) Insert(ctx context.Context, c Collection, rows []Row) error {
	if err := checkRows(c, rows); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range rows {
		if _, exists := m.tables[c][keyOf(r)]; exists {
			return ErrDuplicateID
		}
	}
	for _, r := range rows {
		m.tables[c][keyOf(r)] = maps.Clone(r)
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, c Collection, ownerID string, ids []string) error {
	if !c.Valid() {
		return ErrUnknownCollection
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.tables[c], rowKey{owner: ownerID, id: id})
	}
	return nil
}

func (m *MemoryStore) DeleteAll(ctx context.Context, c Collection, ownerID string) error {
	if !c.Valid() {
		return ErrUnknownCollection
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.tables[c] {
		if k.owner == ownerID {
			delete(m.tables[c], k)
		}
	}
	return nil
}

func (m *MemoryStore) SelectProfile(ctx context.Context, ownerID string) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.profiles[ownerID]
	if !ok {
		return nil, nil
	}
	return maps.Clone(r), nil
}

func (m *MemoryStore) UpsertProfile(ctx context.Context, ownerID string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[ownerID] = maps.Clone(row)
	return nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Email]; exists {
		return ErrUserExists
	}
	m.users[user.Email] = *user
	return nil
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// Count returns how many rows the owner has in c.
func (m *MemoryStore) Count(c Collection, ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.tables[c] {
		if r.OwnerID() == ownerID {
			n++
		}
	}
	return n
}
