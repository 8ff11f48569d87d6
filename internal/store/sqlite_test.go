package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"lexver/internal/logging"
	"lexver/internal/provision"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	logger := logging.NewLogger(logging.Config{Output: io.Discard, Level: logging.ErrorLevel})
	db, err := Open(filepath.Join(t.TempDir(), "corpus.db"), logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRows(year int) []provision.Row {
	return []provision.Row{
		{ID: "/t18", Year: year, Level: provision.LevelTitle, Num: "18"},
		{ID: "/t18/s922", Year: year, Level: provision.LevelSection, Num: "922", Heading: "Unlawful acts"},
		{ID: "/t18/s922/a", Year: year, Level: provision.LevelSubsection, Num: "a"},
		{ID: "/t18/s922/a/1", Year: year, Level: provision.LevelParagraph, Num: "1", Text: "First paragraph."},
		{ID: "/t18/s922/d", Year: year, Level: provision.LevelSubsection, Num: "d", Text: "Cross reference text."},
		{ID: "/t18/s924", Year: year, Level: provision.LevelSection, Num: "924", Heading: "Penalties"},
	}
}

func TestOpenReopen(t *testing.T) {
	logger := logging.NewLogger(logging.Config{Output: io.Discard, Level: logging.ErrorLevel})
	path := filepath.Join(t.TempDir(), "corpus.db")

	db, err := Open(path, logger)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := db.InsertSnapshot(context.Background(), 1993, testRows(1993)); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db2, err := Open(path, logger)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db2.Close()

	count, err := db2.CountSubtree(context.Background(), "/t18", 1993)
	if err != nil {
		t.Fatalf("CountSubtree failed: %v", err)
	}
	if count != 6 {
		t.Errorf("expected 6 rows after reopen, got %d", count)
	}
}

func TestFetchSubtree(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.InsertSnapshot(ctx, 1993, testRows(1993)); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}

	rows, err := db.FetchSubtree(ctx, "/t18/s922", 1993)
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

	// /t18/s922 must not match the sibling /t18/s924 or a hypothetical
	// /t18/s9221; the prefix boundary is the path separator.
	for _, r := range rows {
		if r.ID == "/t18/s924" {
			t.Error("sibling section leaked into subtree")
		}
	}
}

func TestFetchSubtreeMissingYear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.InsertSnapshot(ctx, 1993, testRows(1993)); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}

	rows, err := db.FetchSubtree(ctx, "/t18/s922", 1994)
	if err != nil {
		t.Fatalf("FetchSubtree failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows for missing year, got %d", len(rows))
	}
}

func TestInsertSnapshotReplacesYear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.InsertSnapshot(ctx, 1993, testRows(1993)); err != nil {
		t.Fatalf("first InsertSnapshot failed: %v", err)
	}

	smaller := testRows(1993)[:2]
	if err := db.InsertSnapshot(ctx, 1993, smaller); err != nil {
		t.Fatalf("second InsertSnapshot failed: %v", err)
	}

	count, err := db.CountSubtree(ctx, "/t18", 1993)
	if err != nil {
		t.Fatalf("CountSubtree failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected replacement load of 2 rows, got %d", count)
	}
}

func TestFetchNode(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.InsertSnapshot(ctx, 1993, testRows(1993)); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}

	node, err := db.FetchNode(ctx, "/t18/s922/a/1", 1993)
	if err != nil {
		t.Fatalf("FetchNode failed: %v", err)
	}
	if node == nil {
		t.Fatal("expected node, got nil")
	}
	if node.Text != "First paragraph." {
		t.Errorf("unexpected text: %q", node.Text)
	}

	missing, err := db.FetchNode(ctx, "/t18/s999", 1993)
	if err != nil {
		t.Fatalf("FetchNode for missing id failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing node, got %+v", missing)
	}
}

func TestFetchChangeRecordsScoping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	records := []provision.ChangeRecord{
		{ID: "/t18/s922/a/1", Year: 1994, Type: provision.ChangeModified, Magnitude: 0.4, TextDelta: -12},
		{ID: "/t18/s922/a/2", Year: 1994, Type: provision.ChangeAdded, Magnitude: 1.0, TextDelta: 40},
		{ID: "/t18/s924", Year: 1994, Type: provision.ChangeModified, Magnitude: 0.1, TextDelta: 3},
		{ID: "/t18/s922/a/1", Year: 1996, Type: provision.ChangeModified, Magnitude: 0.2, TextDelta: 5},
	}
	if err := db.InsertChangeRecords(ctx, records); err != nil {
		t.Fatalf("InsertChangeRecords failed: %v", err)
	}

	tests := []struct {
		name      string
		scopeIDs  []string
		yearStart int
		yearEnd   int
		wantIDs   []string
	}{
		{
			name:      "subtree scope",
			scopeIDs:  []string{"/t18/s922"},
			yearStart: 1994, yearEnd: 1996,
			wantIDs: []string{"/t18/s922/a/1", "/t18/s922/a/2", "/t18/s922/a/1"},
		},
		{
			name:      "exact id scope",
			scopeIDs:  []string{"/t18/s924"},
			yearStart: 1994, yearEnd: 1996,
			wantIDs: []string{"/t18/s924"},
		},
		{
			name:      "no scope means all",
			yearStart: 1994, yearEnd: 1994,
			wantIDs: []string{"/t18/s922/a/1", "/t18/s922/a/2", "/t18/s924"},
		},
		{
			name:      "year window excludes later records",
			scopeIDs:  []string{"/t18/s922"},
			yearStart: 1994, yearEnd: 1995,
			wantIDs: []string{"/t18/s922/a/1", "/t18/s922/a/2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FetchChangeRecords(ctx, tt.scopeIDs, tt.yearStart, tt.yearEnd)
			if err != nil {
				t.Fatalf("FetchChangeRecords failed: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d records, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("record %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestFetchGraphEdges(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.InsertSnapshot(ctx, 1993, testRows(1993)); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
	stored := []provision.Edge{
		{From: "/t18/s922/d", FromYear: 1993, To: "/t18/s802", ToYear: 1993, Type: provision.EdgeReference},
		{From: "/t18/s922", FromYear: 1994, To: "/t18/s922", ToYear: 1993, Type: provision.EdgeAmendment},
	}
	if err := db.InsertEdges(ctx, stored); err != nil {
		t.Fatalf("InsertEdges failed: %v", err)
	}

	t.Run("reference edges match either endpoint", func(t *testing.T) {
		edges, err := db.FetchGraphEdges(ctx, "/t18/s802", 1993, []provision.EdgeType{provision.EdgeReference})
		if err != nil {
			t.Fatalf("FetchGraphEdges failed: %v", err)
		}
		if len(edges) != 1 || edges[0].From != "/t18/s922/d" {
			t.Errorf("expected the incoming reference edge, got %+v", edges)
		}
	})

	t.Run("amendment edges are year-specific", func(t *testing.T) {
		edges, err := db.FetchGraphEdges(ctx, "/t18/s922", 1993, []provision.EdgeType{provision.EdgeAmendment})
		if err != nil {
			t.Fatalf("FetchGraphEdges failed: %v", err)
		}
		if len(edges) != 1 {
			t.Fatalf("expected 1 amendment edge at 1993, got %d", len(edges))
		}
		if edges[0].FromYear != 1994 || edges[0].ToYear != 1993 {
			t.Errorf("unexpected edge years: %+v", edges[0])
		}
	})

	t.Run("hierarchy edges derived from ids", func(t *testing.T) {
		edges, err := db.FetchGraphEdges(ctx, "/t18/s922", 1993, []provision.EdgeType{provision.EdgeHierarchy})
		if err != nil {
			t.Fatalf("FetchGraphEdges failed: %v", err)
		}

		// Parent edge from /t18 plus the two direct children a and d.
		// The grandchild a/1 must not appear.
		if len(edges) != 3 {
			t.Fatalf("expected 3 hierarchy edges, got %d: %+v", len(edges), edges)
		}
		if edges[0].From != "/t18" || edges[0].To != "/t18/s922" {
			t.Errorf("expected parent edge first, got %+v", edges[0])
		}
		if edges[1].To != "/t18/s922/a" || edges[2].To != "/t18/s922/d" {
			t.Errorf("unexpected child edges: %+v", edges[1:])
		}
	})
}

func TestYears(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, year := range []int{1994, 1993, 1996} {
		if err := db.InsertSnapshot(ctx, year, testRows(year)); err != nil {
			t.Fatalf("InsertSnapshot %d failed: %v", year, err)
		}
	}

	years, err := db.Years(ctx)
	if err != nil {
		t.Fatalf("Years failed: %v", err)
	}
	want := []int{1993, 1994, 1996}
	if len(years) != len(want) {
		t.Fatalf("expected %d years, got %d", len(want), len(years))
	}
	for i, y := range want {
		if years[i] != y {
			t.Errorf("year %d: expected %d, got %d", i, y, years[i])
		}
	}
}
