package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lexver/internal/provision"
)

// Snapshot is one year of the corpus as loaded from a snapshot file:
// the flat row list plus explicit reference/amendment edges and,
// optionally, pre-computed change records.
type Snapshot struct {
	Year    int              `yaml:"year"`
	Rows    []snapshotRow    `yaml:"rows"`
	Edges   []snapshotEdge   `yaml:"edges,omitempty"`
	Changes []snapshotChange `yaml:"changes,omitempty"`
}

type snapshotRow struct {
	ID      string `yaml:"id"`
	Level   string `yaml:"level"`
	Num     string `yaml:"num"`
	Heading string `yaml:"heading,omitempty"`
	Text    string `yaml:"text,omitempty"`
}

type snapshotEdge struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Type     string `yaml:"type"`
	FromYear int    `yaml:"fromYear,omitempty"`
	ToYear   int    `yaml:"toYear,omitempty"`
}

type snapshotChange struct {
	ID        string  `yaml:"id"`
	Type      string  `yaml:"changeType"`
	Magnitude float64 `yaml:"magnitude"`
	TextDelta int     `yaml:"textDelta"`
}

// LoadSnapshot parses a snapshot YAML file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.Year == 0 {
		return nil, fmt.Errorf("snapshot %s: missing year", path)
	}
	if len(snap.Rows) == 0 {
		return nil, fmt.Errorf("snapshot %s: no rows", path)
	}
	return &snap, nil
}

// ProvisionRows converts the snapshot rows to domain rows.
func (s *Snapshot) ProvisionRows() []provision.Row {
	rows := make([]provision.Row, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, provision.Row{
			ID:      r.ID,
			Year:    s.Year,
			Level:   provision.Level(r.Level),
			Num:     r.Num,
			Heading: r.Heading,
			Text:    r.Text,
		})
	}
	return rows
}

// ProvisionEdges converts the snapshot edges to domain edges. Edge
// years default to the snapshot year when unspecified.
func (s *Snapshot) ProvisionEdges() []provision.Edge {
	edges := make([]provision.Edge, 0, len(s.Edges))
	for _, e := range s.Edges {
		fromYear := e.FromYear
		if fromYear == 0 {
			fromYear = s.Year
		}
		toYear := e.ToYear
		if toYear == 0 {
			toYear = s.Year
		}
		edges = append(edges, provision.Edge{
			From:     e.From,
			FromYear: fromYear,
			To:       e.To,
			ToYear:   toYear,
			Type:     provision.EdgeType(e.Type),
		})
	}
	return edges
}

// ProvisionChangeRecords converts pre-computed change records.
func (s *Snapshot) ProvisionChangeRecords() []provision.ChangeRecord {
	records := make([]provision.ChangeRecord, 0, len(s.Changes))
	for _, c := range s.Changes {
		records = append(records, provision.ChangeRecord{
			ID:        c.ID,
			Year:      s.Year,
			Type:      provision.ChangeType(c.Type),
			Magnitude: c.Magnitude,
			TextDelta: c.TextDelta,
		})
	}
	return records
}

// ImportSnapshot loads one snapshot into the database. When the
// snapshot carries no pre-computed change records and a prior snapshot
// year exists, records for this year are derived against the closest
// earlier year.
func (db *DB) ImportSnapshot(ctx context.Context, snap *Snapshot) error {
	if err := db.InsertSnapshot(ctx, snap.Year, snap.ProvisionRows()); err != nil {
		return err
	}
	if edges := snap.ProvisionEdges(); len(edges) > 0 {
		if err := db.InsertEdges(ctx, edges); err != nil {
			return err
		}
	}

	records := snap.ProvisionChangeRecords()
	if len(records) == 0 {
		derived, err := db.deriveAgainstPriorYear(ctx, snap.Year)
		if err != nil {
			return err
		}
		records = derived
	}
	if len(records) > 0 {
		if err := db.InsertChangeRecords(ctx, records); err != nil {
			return err
		}
	}

	db.logger.Info("Snapshot imported", map[string]interface{}{
		"year":    snap.Year,
		"rows":    len(snap.Rows),
		"edges":   len(snap.Edges),
		"changes": len(records),
	})
	return nil
}

func (db *DB) deriveAgainstPriorYear(ctx context.Context, year int) ([]provision.ChangeRecord, error) {
	years, err := db.Years(ctx)
	if err != nil {
		return nil, err
	}

	prior := 0
	for _, y := range years {
		if y < year && y > prior {
			prior = y
		}
	}
	if prior == 0 {
		return nil, nil
	}

	prevRows, err := db.AllRows(ctx, prior)
	if err != nil {
		return nil, err
	}
	curRows, err := db.AllRows(ctx, year)
	if err != nil {
		return nil, err
	}
	return DeriveChangeRecords(prevRows, curRows, year), nil
}
