// ABOUTME: Row-level storage primitives behind the local record client
// ABOUTME: Includes an in-memory Store used by tests and the memory backend
package record

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrRecordNotFound is returned by stores when a row does not exist.
var ErrRecordNotFound = errors.New("record not found")

// Row is one stored record. Fields never contain "Id".
type Row struct {
	ID     int
	Fields map[string]any
}

// Store persists rows per table. Implementations must return Scan results
// in ascending ID order.
type Store interface {
	Scan(ctx context.Context, table string) ([]Row, error)
	Load(ctx context.Context, table string, id int) (Row, error)
	Insert(ctx context.Context, table string, fields map[string]any) (int, error)
	Save(ctx context.Context, table string, row Row) error
	Remove(ctx context.Context, table string, id int) error
}

// MemoryStore keeps rows in process memory. Ids are assigned per table.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID map[string]int
	tables map[string]map[int]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: make(map[string]int),
		tables: make(map[string]map[int]map[string]any),
	}
}

func (m *MemoryStore) Scan(_ context.Context, table string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]Row, 0, len(m.tables[table]))
	for id, fields := range m.tables[table] {
		rows = append(rows, Row{ID: id, Fields: cloneFields(fields)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (m *MemoryStore) Load(_ context.Context, table string, id int) (Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.tables[table][id]
	if !ok {
		return Row{}, ErrRecordNotFound
	}
	return Row{ID: id, Fields: cloneFields(fields)}, nil
}

func (m *MemoryStore) Insert(_ context.Context, table string, fields map[string]any) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID[table]++
	id := m.nextID[table]
	if m.tables[table] == nil {
		m.tables[table] = make(map[int]map[string]any)
	}
	m.tables[table][id] = cloneFields(fields)
	return id, nil
}

func (m *MemoryStore) Save(_ context.Context, table string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table][row.ID]; !ok {
		return ErrRecordNotFound
	}
	m.tables[table][row.ID] = cloneFields(row.Fields)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, table string, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table][id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.tables[table], id)
	return nil
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "Id" {
			continue
		}
		out[k] = v
	}
	return out
}
