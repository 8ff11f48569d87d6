package store

import (
	"context"
	"sort"
	"sync"

	"lexver/internal/provision"
)

// MemoryStore is an in-memory ProvisionStore used by tests and small
// fixtures. Safe for concurrent readers after loading.
type MemoryStore struct {
	mu      sync.RWMutex
	rows    map[int]map[string]provision.Row
	edges   []provision.Edge
	records []provision.ChangeRecord
}

var _ ProvisionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int]map[string]provision.Row)}
}

// AddRows loads rows into the store.
func (m *MemoryStore) AddRows(rows ...provision.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		year := m.rows[r.Year]
		if year == nil {
			year = make(map[string]provision.Row)
			m.rows[r.Year] = year
		}
		year[r.ID] = r
	}
}

// AddEdges loads graph edges into the store.
func (m *MemoryStore) AddEdges(edges ...provision.Edge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edges...)
}

// AddChangeRecords loads change records into the store.
func (m *MemoryStore) AddChangeRecords(records ...provision.ChangeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// FetchSubtree implements ProvisionStore.
func (m *MemoryStore) FetchSubtree(_ context.Context, rootID string, year int) ([]provision.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []provision.Row
	for _, r := range m.rows[year] {
		if provision.IsDescendantOf(r.ID, rootID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FetchNode implements ProvisionStore.
func (m *MemoryStore) FetchNode(_ context.Context, id string, year int) (*provision.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := m.rows[year][id]; ok {
		row := r
		return &row, nil
	}
	return nil, nil
}

// FetchChangeRecords implements ProvisionStore.
func (m *MemoryStore) FetchChangeRecords(_ context.Context, scopeIDs []string, yearStart, yearEnd int) ([]provision.ChangeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inScope := func(id string) bool {
		if len(scopeIDs) == 0 {
			return true
		}
		for _, s := range scopeIDs {
			if provision.IsDescendantOf(id, s) {
				return true
			}
		}
		return false
	}

	var out []provision.ChangeRecord
	for _, r := range m.records {
		if r.Year >= yearStart && r.Year <= yearEnd && inScope(r.ID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FetchGraphEdges implements ProvisionStore. Hierarchy edges are
// derived from the loaded rows, matching the SQLite backend.
func (m *MemoryStore) FetchGraphEdges(_ context.Context, id string, year int, types []provision.EdgeType) ([]provision.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wantHierarchy := false
	allowed := make(map[provision.EdgeType]bool)
	for _, t := range types {
		if t == provision.EdgeHierarchy {
			wantHierarchy = true
			continue
		}
		allowed[t] = true
	}

	var out []provision.Edge
	for _, e := range m.edges {
		if !allowed[e.Type] {
			continue
		}
		if _, _, ok := e.Other(id, year); ok {
			out = append(out, e)
		}
	}

	if wantHierarchy {
		if parentID := provision.ParentID(id); parentID != "" {
			if _, ok := m.rows[year][parentID]; ok {
				out = append(out, provision.Edge{
					From: parentID, FromYear: year, To: id, ToYear: year,
					Type: provision.EdgeHierarchy,
				})
			}
		}
		var childIDs []string
		for _, r := range m.rows[year] {
			if provision.IsChildOf(r.ID, id) {
				childIDs = append(childIDs, r.ID)
			}
		}
		sort.Strings(childIDs)
		for _, childID := range childIDs {
			out = append(out, provision.Edge{
				From: id, FromYear: year, To: childID, ToYear: year,
				Type: provision.EdgeHierarchy,
			})
		}
	}

	return out, nil
}
