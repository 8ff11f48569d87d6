package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"lexver/internal/logging"
	"lexver/internal/provision"
)

// DB is the SQLite-backed provision store.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

var _ ProvisionStore = (*DB)(nil)

// Open opens or creates the corpus database at dbPath.
func Open(dbPath string, logger *logging.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-64000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger.Named("store"),
		dbPath: dbPath,
	}

	if !dbExists {
		db.logger.Info("Creating new corpus database", map[string]interface{}{
			"path": dbPath,
		})
		if err := db.initializeSchema(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	} else {
		if err := db.runMigrations(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// WithTx executes fn within a transaction, rolling back on error.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", map[string]interface{}{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FetchSubtree implements ProvisionStore.
func (db *DB) FetchSubtree(ctx context.Context, rootID string, year int) ([]provision.Row, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, year, level, num, heading, text
		FROM provisions
		WHERE year = ? AND (id = ? OR id LIKE ? || '/%')
		ORDER BY id
	`, year, rootID, rootID)
	if err != nil {
		return nil, fmt.Errorf("fetch subtree %s: %w", rootID, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// FetchNode implements ProvisionStore.
func (db *DB) FetchNode(ctx context.Context, id string, year int) (*provision.Row, error) {
	var r provision.Row
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, year, level, num, heading, text
		FROM provisions
		WHERE year = ? AND id = ?
	`, year, id).Scan(&r.ID, &r.Year, &r.Level, &r.Num, &r.Heading, &r.Text)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch node %s: %w", id, err)
	}
	return &r, nil
}

// FetchChangeRecords implements ProvisionStore.
func (db *DB) FetchChangeRecords(ctx context.Context, scopeIDs []string, yearStart, yearEnd int) ([]provision.ChangeRecord, error) {
	query := `
		SELECT id, year, change_type, magnitude, text_delta
		FROM change_records
		WHERE year >= ? AND year <= ?
	`
	args := []interface{}{yearStart, yearEnd}

	if len(scopeIDs) > 0 {
		var clauses []string
		for _, scope := range scopeIDs {
			clauses = append(clauses, "(id = ? OR id LIKE ? || '/%')")
			args = append(args, scope, scope)
		}
		query += " AND (" + strings.Join(clauses, " OR ") + ")"
	}
	query += " ORDER BY year, id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch change records: %w", err)
	}
	defer rows.Close()

	var records []provision.ChangeRecord
	for rows.Next() {
		var r provision.ChangeRecord
		if err := rows.Scan(&r.ID, &r.Year, &r.Type, &r.Magnitude, &r.TextDelta); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// FetchGraphEdges implements ProvisionStore. Reference and amendment
// edges come from the graph_edges table; hierarchy edges are derived
// from the provisions table (the id prefix structure is the hierarchy).
func (db *DB) FetchGraphEdges(ctx context.Context, id string, year int, types []provision.EdgeType) ([]provision.Edge, error) {
	wantHierarchy := false
	var stored []string
	for _, t := range types {
		if t == provision.EdgeHierarchy {
			wantHierarchy = true
		} else {
			stored = append(stored, string(t))
		}
	}

	var edges []provision.Edge

	if len(stored) > 0 {
		placeholders := strings.Repeat("?,", len(stored))
		placeholders = placeholders[:len(placeholders)-1]
		query := fmt.Sprintf(`
			SELECT from_id, from_year, to_id, to_year, edge_type
			FROM graph_edges
			WHERE edge_type IN (%s)
			  AND ((from_id = ? AND from_year = ?) OR (to_id = ? AND to_year = ?))
			ORDER BY from_id, to_id
		`, placeholders)

		args := make([]interface{}, 0, len(stored)+4)
		for _, t := range stored {
			args = append(args, t)
		}
		args = append(args, id, year, id, year)

		rows, err := db.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("fetch graph edges for %s: %w", id, err)
		}
		defer rows.Close()

		for rows.Next() {
			var e provision.Edge
			if err := rows.Scan(&e.From, &e.FromYear, &e.To, &e.ToYear, &e.Type); err != nil {
				return nil, err
			}
			edges = append(edges, e)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	if wantHierarchy {
		derived, err := db.hierarchyEdges(ctx, id, year)
		if err != nil {
			return nil, err
		}
		edges = append(edges, derived...)
	}

	return edges, nil
}

func (db *DB) hierarchyEdges(ctx context.Context, id string, year int) ([]provision.Edge, error) {
	var edges []provision.Edge

	if parentID := provision.ParentID(id); parentID != "" {
		parent, err := db.FetchNode(ctx, parentID, year)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			edges = append(edges, provision.Edge{
				From: parentID, FromYear: year, To: id, ToYear: year,
				Type: provision.EdgeHierarchy,
			})
		}
	}

	// Direct children only: one segment below id.
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id FROM provisions
		WHERE year = ? AND id LIKE ? || '/%' AND id NOT LIKE ? || '/%/%'
		ORDER BY id
	`, year, id, id)
	if err != nil {
		return nil, fmt.Errorf("fetch children of %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var childID string
		if err := rows.Scan(&childID); err != nil {
			return nil, err
		}
		edges = append(edges, provision.Edge{
			From: id, FromYear: year, To: childID, ToYear: year,
			Type: provision.EdgeHierarchy,
		})
	}
	return edges, rows.Err()
}

// CountSubtree returns the number of rows in the subtree without
// materializing them, for pre-checking diff budgets.
func (db *DB) CountSubtree(ctx context.Context, rootID string, year int) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM provisions
		WHERE year = ? AND (id = ? OR id LIKE ? || '/%')
	`, year, rootID, rootID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subtree %s: %w", rootID, err)
	}
	return count, nil
}

// Years returns the distinct snapshot years present, ascending.
func (db *DB) Years(ctx context.Context) ([]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT year FROM provisions ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("fetch years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func scanRows(rows *sql.Rows) ([]provision.Row, error) {
	var out []provision.Row
	for rows.Next() {
		var r provision.Row
		if err := rows.Scan(&r.ID, &r.Year, &r.Level, &r.Num, &r.Heading, &r.Text); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
