package store

import (
	"context"
	"testing"

	"lexver/internal/provision"
)

func TestMemoryStoreFetchSubtree(t *testing.T) {
	m := NewMemoryStore()
	m.AddRows(testRows(1993)...)

	rows, err := m.FetchSubtree(context.Background(), "/t18/s922", 1993)
	if err != nil {
		t.Fatalf("FetchSubtree failed: %v", err)
	}

	want := []string{"/t18/s922", "/t18/s922/a", "/t18/s922/a/1", "/t18/s922/d"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, id := range want {
		if rows[i].ID != id {
			t.Errorf("row %d: expected %s, got %s", i, id, rows[i].ID)
		}
	}
}

func TestMemoryStoreFetchNode(t *testing.T) {
	m := NewMemoryStore()
	m.AddRows(testRows(1993)...)

	node, err := m.FetchNode(context.Background(), "/t18/s922/a/1", 1993)
	if err != nil {
		t.Fatalf("FetchNode failed: %v", err)
	}
	if node == nil || node.Text != "First paragraph." {
		t.Fatalf("unexpected node: %+v", node)
	}

	missing, err := m.FetchNode(context.Background(), "/t18/s999", 1993)
	if err != nil {
		t.Fatalf("FetchNode failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing node, got %+v", missing)
	}
}

func TestMemoryStoreChangeRecordOrdering(t *testing.T) {
	m := NewMemoryStore()
	m.AddChangeRecords(
		provision.ChangeRecord{ID: "/t18/s924", Year: 1994, Type: provision.ChangeModified},
		provision.ChangeRecord{ID: "/t18/s922/a/1", Year: 1996, Type: provision.ChangeModified},
		provision.ChangeRecord{ID: "/t18/s922/a/1", Year: 1994, Type: provision.ChangeModified},
	)

	records, err := m.FetchChangeRecords(context.Background(), nil, 1990, 2000)
	if err != nil {
		t.Fatalf("FetchChangeRecords failed: %v", err)
	}
	want := []struct {
		id   string
		year int
	}{
		{"/t18/s922/a/1", 1994},
		{"/t18/s924", 1994},
		{"/t18/s922/a/1", 1996},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, w := range want {
		if records[i].ID != w.id || records[i].Year != w.year {
			t.Errorf("record %d: expected %s/%d, got %s/%d", i, w.id, w.year, records[i].ID, records[i].Year)
		}
	}
}

func TestMemoryStoreGraphEdgesMatchSQLiteShape(t *testing.T) {
	m := NewMemoryStore()
	m.AddRows(testRows(1993)...)
	m.AddEdges(provision.Edge{
		From: "/t18/s922/d", FromYear: 1993, To: "/t18/s802", ToYear: 1993,
		Type: provision.EdgeReference,
	})

	edges, err := m.FetchGraphEdges(context.Background(), "/t18/s922", 1993,
		[]provision.EdgeType{provision.EdgeHierarchy, provision.EdgeReference})
	if err != nil {
		t.Fatalf("FetchGraphEdges failed: %v", err)
	}

	// Same shape the SQLite backend produces: parent edge, then the
	// direct children in id order, no grandchildren, no unrelated refs.
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d: %+v", len(edges), edges)
	}
	if edges[0].From != "/t18" || edges[0].To != "/t18/s922" {
		t.Errorf("expected parent edge first, got %+v", edges[0])
	}
	if edges[1].To != "/t18/s922/a" || edges[2].To != "/t18/s922/d" {
		t.Errorf("unexpected child edges: %+v", edges[1:])
	}
}
