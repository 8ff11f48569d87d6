package engine

import (
	"context"
	"io"
	"testing"

	"lexver/internal/config"
	"lexver/internal/hierdiff"
	"lexver/internal/inlinediff"
	"lexver/internal/lexerr"
	"lexver/internal/logging"
	"lexver/internal/provision"
	"lexver/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	logger := logging.NewLogger(logging.Config{Output: io.Discard, Level: logging.ErrorLevel})
	return New(st, config.DefaultConfig(), logger), st
}

func loadCompareFixture(st *store.MemoryStore) {
	st.AddRows(
		provision.Row{ID: "/t18/s922/a", Year: 1994, Level: provision.LevelSubsection, Num: "a"},
		provision.Row{ID: "/t18/s922/a/1", Year: 1994, Level: provision.LevelParagraph, Num: "1", Text: "Old text."},
		provision.Row{ID: "/t18/s922/a", Year: 2024, Level: provision.LevelSubsection, Num: "a"},
		provision.Row{ID: "/t18/s922/a/1", Year: 2024, Level: provision.LevelParagraph, Num: "1", Text: "New text."},
		provision.Row{ID: "/t18/s922/a/2", Year: 2024, Level: provision.LevelParagraph, Num: "2", Text: "Added text."},
	)
}

func TestCompareHierarchical(t *testing.T) {
	eng, st := newTestEngine(t)
	loadCompareFixture(st)

	result, err := eng.CompareHierarchical(context.Background(), CompareRequest{
		RootID:  "/t18/s922/a",
		YearOld: 1994,
		YearNew: 2024,
	})
	if err != nil {
		t.Fatalf("CompareHierarchical failed: %v", err)
	}

	if result.Granularity != inlinediff.GranularityWord {
		t.Errorf("expected default word granularity, got %s", result.Granularity)
	}
	if result.Provenance.RequestID == "" {
		t.Error("expected a request id")
	}

	root := result.Root
	if root.Status != hierdiff.StatusUnchanged {
		t.Errorf("container root should be unchanged, got %s", root.Status)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}

	modified := root.Children[0]
	if modified.ID != "/t18/s922/a/1" || modified.Status != hierdiff.StatusModified {
		t.Errorf("expected /a/1 modified, got %s %s", modified.ID, modified.Status)
	}
	if modified.InlineDiff == nil || len(modified.InlineDiff[inlinediff.GranularityWord]) == 0 {
		t.Error("expected inline diff on the modified leaf")
	}

	added := root.Children[1]
	if added.ID != "/t18/s922/a/2" || added.Status != hierdiff.StatusAdded {
		t.Errorf("expected /a/2 added, got %s %s", added.ID, added.Status)
	}
	if added.OldText != nil {
		t.Error("added node must carry no old text")
	}
}

func TestCompareHierarchicalRootOnlyInNewYear(t *testing.T) {
	eng, st := newTestEngine(t)
	st.AddRows(
		provision.Row{ID: "/t18/s926A", Year: 2024, Level: provision.LevelSection, Num: "926A", Text: "New section."},
	)

	result, err := eng.CompareHierarchical(context.Background(), CompareRequest{
		RootID:  "/t18/s926A",
		YearOld: 1994,
		YearNew: 2024,
	})
	if err != nil {
		t.Fatalf("CompareHierarchical failed: %v", err)
	}
	if result.Root.Status != hierdiff.StatusAdded {
		t.Errorf("expected whole-subtree added, got %s", result.Root.Status)
	}
}

func TestCompareHierarchicalErrors(t *testing.T) {
	eng, st := newTestEngine(t)
	loadCompareFixture(st)

	tests := []struct {
		name string
		req  CompareRequest
		want lexerr.Code
	}{
		{
			name: "inverted year range",
			req:  CompareRequest{RootID: "/t18/s922/a", YearOld: 2024, YearNew: 1994},
			want: lexerr.InvalidYearRange,
		},
		{
			name: "equal years",
			req:  CompareRequest{RootID: "/t18/s922/a", YearOld: 2024, YearNew: 2024},
			want: lexerr.InvalidYearRange,
		},
		{
			name: "unknown granularity",
			req:  CompareRequest{RootID: "/t18/s922/a", YearOld: 1994, YearNew: 2024, Granularity: "character"},
			want: lexerr.InvalidGranularity,
		},
		{
			name: "root absent in both years",
			req:  CompareRequest{RootID: "/t18/s999", YearOld: 1994, YearNew: 2024},
			want: lexerr.ProvisionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.CompareHierarchical(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := lexerr.CodeOf(err); code != tt.want {
				t.Errorf("expected code %s, got %s (%v)", tt.want, code, err)
			}
		})
	}
}

func TestCompareHierarchicalTreeTooLarge(t *testing.T) {
	st := store.NewMemoryStore()
	logger := logging.NewLogger(logging.Config{Output: io.Discard, Level: logging.ErrorLevel})
	cfg := config.DefaultConfig()
	cfg.Diff.MaxTreeRows = 2
	eng := New(st, cfg, logger)

	st.AddRows(
		provision.Row{ID: "/t18/s922", Year: 2024, Level: provision.LevelSection, Num: "922"},
		provision.Row{ID: "/t18/s922/a", Year: 2024, Level: provision.LevelSubsection, Num: "a"},
		provision.Row{ID: "/t18/s922/b", Year: 2024, Level: provision.LevelSubsection, Num: "b"},
	)

	_, err := eng.CompareHierarchical(context.Background(), CompareRequest{
		RootID: "/t18/s922", YearOld: 1994, YearNew: 2024,
	})
	if code := lexerr.CodeOf(err); code != lexerr.TreeTooLarge {
		t.Errorf("expected TREE_TOO_LARGE, got %s (%v)", code, err)
	}
}

func TestImpactRadiusReferencesOnly(t *testing.T) {
	eng, st := newTestEngine(t)
	st.AddRows(
		provision.Row{ID: "/t18/s922/d", Year: 2024, Level: provision.LevelSubsection, Num: "d", Text: "Refers elsewhere."},
		provision.Row{ID: "/t18/s802", Year: 2024, Level: provision.LevelSection, Num: "802"},
		provision.Row{ID: "/t18/s924", Year: 2024, Level: provision.LevelSection, Num: "924"},
		provision.Row{ID: "/t18/s922", Year: 2024, Level: provision.LevelSection, Num: "922"},
	)
	st.AddEdges(
		provision.Edge{From: "/t18/s922/d", FromYear: 2024, To: "/t18/s802", ToYear: 2024, Type: provision.EdgeReference},
		provision.Edge{From: "/t18/s924", FromYear: 2024, To: "/t18/s922/d", ToYear: 2024, Type: provision.EdgeReference},
	)

	result, err := eng.ImpactRadius(context.Background(), RadiusRequest{
		SeedID:            "/t18/s922/d",
		Year:              2024,
		Depth:             1,
		IncludeReferences: true,
	})
	if err != nil {
		t.Fatalf("ImpactRadius failed: %v", err)
	}

	nodes := result.Radius.Nodes
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d: %+v", len(nodes), nodes)
	}
	if nodes[0].ID != "/t18/s922/d" || nodes[0].Distance != 0 {
		t.Errorf("expected seed at distance 0, got %+v", nodes[0])
	}
	for _, n := range nodes[1:] {
		if n.Distance != 1 {
			t.Errorf("expected distance 1 for %s, got %d", n.ID, n.Distance)
		}
		if n.ID == "/t18/s922" {
			t.Error("hierarchy-only neighbor leaked into references-only traversal")
		}
	}
}

func TestImpactRadiusDefaults(t *testing.T) {
	eng, st := newTestEngine(t)
	st.AddRows(
		provision.Row{ID: "/t18/s922", Year: 2024, Level: provision.LevelSection, Num: "922"},
		provision.Row{ID: "/t18/s922/a", Year: 2024, Level: provision.LevelSubsection, Num: "a"},
	)

	// No edge-type flag set: all three types enabled, depth from config.
	result, err := eng.ImpactRadius(context.Background(), RadiusRequest{
		SeedID: "/t18/s922",
		Year:   2024,
	})
	if err != nil {
		t.Fatalf("ImpactRadius failed: %v", err)
	}
	if result.Depth != config.DefaultConfig().Traversal.DefaultDepth {
		t.Errorf("expected default depth, got %d", result.Depth)
	}
	if len(result.Radius.Nodes) != 2 {
		t.Errorf("expected hierarchy child to be reached, got %+v", result.Radius.Nodes)
	}
}

func TestImpactRadiusErrors(t *testing.T) {
	eng, st := newTestEngine(t)
	st.AddRows(provision.Row{ID: "/t18/s922", Year: 2024, Level: provision.LevelSection, Num: "922"})

	tests := []struct {
		name string
		req  RadiusRequest
		want lexerr.Code
	}{
		{"depth too deep", RadiusRequest{SeedID: "/t18/s922", Year: 2024, Depth: 4}, lexerr.InvalidDepth},
		{"negative depth", RadiusRequest{SeedID: "/t18/s922", Year: 2024, Depth: -1}, lexerr.InvalidDepth},
		{"missing seed", RadiusRequest{SeedID: "/t18/s999", Year: 2024, Depth: 1}, lexerr.ProvisionNotFound},
		{"seed absent for year", RadiusRequest{SeedID: "/t18/s922", Year: 1994, Depth: 1}, lexerr.ProvisionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.ImpactRadius(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := lexerr.CodeOf(err); code != tt.want {
				t.Errorf("expected code %s, got %s (%v)", tt.want, code, err)
			}
		})
	}
}

func TestConstellation(t *testing.T) {
	eng, st := newTestEngine(t)
	st.AddChangeRecords(
		provision.ChangeRecord{ID: "/t18/s922/a/1", Year: 1994, Type: provision.ChangeModified, Magnitude: 0.4, TextDelta: -12},
		provision.ChangeRecord{ID: "/t18/s922/a/2", Year: 1994, Type: provision.ChangeAdded, Magnitude: 1.0, TextDelta: 40},
		provision.ChangeRecord{ID: "/t18/s924/b", Year: 1994, Type: provision.ChangeModified, Magnitude: 0.2, TextDelta: 5},
	)

	result, err := eng.Constellation(context.Background(), ConstellationRequest{
		YearStart: 1993,
		YearEnd:   1995,
	})
	if err != nil {
		t.Fatalf("Constellation failed: %v", err)
	}

	clusters := result.Constellation.Clusters
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d: %+v", len(clusters), clusters)
	}
	if clusters[0].ParentID != "/t18/s922/a" || clusters[0].Count != 2 {
		t.Errorf("unexpected first cluster: %+v", clusters[0])
	}
	if clusters[1].ParentID != "/t18/s924" || clusters[1].Count != 1 {
		t.Errorf("unexpected second cluster: %+v", clusters[1])
	}
}

func TestConstellationInvalidRange(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Constellation(context.Background(), ConstellationRequest{YearStart: 2000, YearEnd: 2000})
	if code := lexerr.CodeOf(err); code != lexerr.InvalidYearRange {
		t.Errorf("expected INVALID_YEAR_RANGE, got %s (%v)", code, err)
	}
}

func TestConstellationEmptyResultIsNotAnError(t *testing.T) {
	eng, _ := newTestEngine(t)

	result, err := eng.Constellation(context.Background(), ConstellationRequest{YearStart: 1990, YearEnd: 1991})
	if err != nil {
		t.Fatalf("Constellation failed: %v", err)
	}
	if len(result.Constellation.Clusters) != 0 {
		t.Errorf("expected no clusters, got %+v", result.Constellation.Clusters)
	}
}

func TestChangeSummary(t *testing.T) {
	eng, st := newTestEngine(t)
	st.AddChangeRecords(
		provision.ChangeRecord{ID: "/t18/s922/a/1", Year: 1994, Type: provision.ChangeModified, Magnitude: 0.4, TextDelta: -12},
		provision.ChangeRecord{ID: "/t18/s922/a/2", Year: 1994, Type: provision.ChangeAdded, Magnitude: 1.0, TextDelta: 40},
		provision.ChangeRecord{ID: "/t18/s922/b", Year: 1996, Type: provision.ChangeRemoved, Magnitude: 1.0, TextDelta: -30},
		provision.ChangeRecord{ID: "/t26/s1", Year: 1994, Type: provision.ChangeModified, Magnitude: 0.1, TextDelta: 2},
	)

	result, err := eng.ChangeSummary(context.Background(), SummaryRequest{
		ScopeID:   "/t18",
		YearStart: 1993,
		YearEnd:   1997,
	})
	if err != nil {
		t.Fatalf("ChangeSummary failed: %v", err)
	}

	if len(result.Years) != 2 {
		t.Fatalf("expected 2 summarized years, got %d: %+v", len(result.Years), result.Years)
	}

	y1994 := result.Years[0]
	if y1994.Year != 1994 || y1994.TotalChanges != 2 || y1994.NetTextDelta != 28 {
		t.Errorf("unexpected 1994 summary: %+v", y1994)
	}
	if y1994.ByChangeType[provision.ChangeModified] != 1 || y1994.ByChangeType[provision.ChangeAdded] != 1 {
		t.Errorf("unexpected 1994 type counts: %+v", y1994.ByChangeType)
	}

	y1996 := result.Years[1]
	if y1996.Year != 1996 || y1996.NetTextDelta != -30 {
		t.Errorf("unexpected 1996 summary: %+v", y1996)
	}
}

func TestCancelledCompareIsClassified(t *testing.T) {
	eng, st := newTestEngine(t)
	loadCompareFixture(st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.CompareHierarchical(ctx, CompareRequest{
		RootID: "/t18/s922/a", YearOld: 1994, YearNew: 2024,
	})
	if code := lexerr.CodeOf(err); code != lexerr.Cancelled {
		t.Errorf("expected CANCELLED, got %s (%v)", code, err)
	}
}
