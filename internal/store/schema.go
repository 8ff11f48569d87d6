package store

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database.
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createProvisionsTable(tx); err != nil {
			return err
		}
		if err := createChangeRecordsTable(tx); err != nil {
			return err
		}
		if err := createGraphEdgesTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})
		return nil
	})
}

// runMigrations runs any pending schema migrations.
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	// No migrations yet; future versions chain upgrades here.
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createProvisionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS provisions (
			id      TEXT    NOT NULL,
			year    INTEGER NOT NULL,
			level   TEXT    NOT NULL,
			num     TEXT    NOT NULL DEFAULT '',
			heading TEXT    NOT NULL DEFAULT '',
			text    TEXT    NOT NULL DEFAULT '',
			PRIMARY KEY (year, id)
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_provisions_id ON provisions (id)`)
	return err
}

func createChangeRecordsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS change_records (
			id          TEXT    NOT NULL,
			year        INTEGER NOT NULL,
			change_type TEXT    NOT NULL,
			magnitude   REAL    NOT NULL DEFAULT 0,
			text_delta  INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (year, id)
		)
	`)
	return err
}

func createGraphEdgesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS graph_edges (
			from_id   TEXT    NOT NULL,
			from_year INTEGER NOT NULL,
			to_id     TEXT    NOT NULL,
			to_year   INTEGER NOT NULL,
			edge_type TEXT    NOT NULL,
			PRIMARY KEY (from_id, from_year, to_id, to_year, edge_type)
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_graph_edges_to ON graph_edges (to_id, to_year)`)
	return err
}
