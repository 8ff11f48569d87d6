package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lexver/internal/provision"
)

// InsertSnapshot loads one year's rows into the provisions table,
// replacing any prior load of the same year. Snapshots are immutable
// history; replacement exists only to make re-ingestion idempotent.
func (db *DB) InsertSnapshot(ctx context.Context, year int, rows []provision.Row) error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM provisions WHERE year = ?", year); err != nil {
			return fmt.Errorf("clear year %d: %w", year, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO provisions (id, year, level, num, heading, text)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.ID, year, r.Level, r.Num, r.Heading, r.Text); err != nil {
				return fmt.Errorf("insert provision %s: %w", r.ID, err)
			}
		}

		db.logger.Info("Snapshot loaded", map[string]interface{}{
			"year": year,
			"rows": len(rows),
		})
		return nil
	})
}

// InsertEdges loads graph edges, replacing duplicates.
func (db *DB) InsertEdges(ctx context.Context, edges []provision.Edge) error {
	return db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO graph_edges (from_id, from_year, to_id, to_year, edge_type)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range edges {
			if _, err := stmt.ExecContext(ctx, e.From, e.FromYear, e.To, e.ToYear, e.Type); err != nil {
				return fmt.Errorf("insert edge %s -> %s: %w", e.From, e.To, err)
			}
		}
		return nil
	})
}

// InsertChangeRecords loads change records, replacing duplicates.
func (db *DB) InsertChangeRecords(ctx context.Context, records []provision.ChangeRecord) error {
	return db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO change_records (id, year, change_type, magnitude, text_delta)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range records {
			if _, err := stmt.ExecContext(ctx, r.ID, r.Year, r.Type, r.Magnitude, r.TextDelta); err != nil {
				return fmt.Errorf("insert change record %s/%d: %w", r.ID, r.Year, err)
			}
		}
		return nil
	})
}

// DeriveChangeRecords compares the full row sets of two snapshot years
// and returns the change records for the later year: added, removed, or
// modified provisions with signed char-count delta against the prior
// year. Unchanged provisions produce no record.
func DeriveChangeRecords(prev, cur []provision.Row, year int) []provision.ChangeRecord {
	prevByID := make(map[string]provision.Row, len(prev))
	for _, r := range prev {
		prevByID[r.ID] = r
	}
	curByID := make(map[string]provision.Row, len(cur))
	for _, r := range cur {
		curByID[r.ID] = r
	}

	var records []provision.ChangeRecord

	for _, r := range cur {
		old, existed := prevByID[r.ID]
		if !existed {
			records = append(records, provision.ChangeRecord{
				ID: r.ID, Year: year,
				Type:      provision.ChangeAdded,
				Magnitude: 1.0,
				TextDelta: len(r.Text),
			})
			continue
		}
		if strings.TrimSpace(old.Text) == strings.TrimSpace(r.Text) {
			continue
		}
		delta := len(r.Text) - len(old.Text)
		records = append(records, provision.ChangeRecord{
			ID: r.ID, Year: year,
			Type:      provision.ChangeModified,
			Magnitude: changeMagnitude(len(old.Text), len(r.Text)),
			TextDelta: delta,
		})
	}

	for _, r := range prev {
		if _, exists := curByID[r.ID]; !exists {
			records = append(records, provision.ChangeRecord{
				ID: r.ID, Year: year,
				Type:      provision.ChangeRemoved,
				Magnitude: 1.0,
				TextDelta: -len(r.Text),
			})
		}
	}

	return records
}

// changeMagnitude normalizes the size of a modification into [0,1]:
// the absolute char delta relative to the larger of the two versions.
// Same-length rewrites still register as a small nonzero change.
func changeMagnitude(oldLen, newLen int) float64 {
	larger := oldLen
	if newLen > larger {
		larger = newLen
	}
	if larger == 0 {
		return 0
	}
	delta := newLen - oldLen
	if delta < 0 {
		delta = -delta
	}
	m := float64(delta) / float64(larger)
	if m < 0.05 {
		m = 0.05
	}
	if m > 1 {
		m = 1
	}
	return m
}

// AllRows returns every provision row for one year, in document order.
// Used by change derivation during ingestion.
func (db *DB) AllRows(ctx context.Context, year int) ([]provision.Row, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, year, level, num, heading, text
		FROM provisions
		WHERE year = ?
		ORDER BY id
	`, year)
	if err != nil {
		return nil, fmt.Errorf("fetch rows for %d: %w", year, err)
	}
	defer rows.Close()

	return scanRows(rows)
}
