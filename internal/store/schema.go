package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

const currentSchemaVersion = 2

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

const contentTable = `
CREATE TABLE IF NOT EXISTS content_documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	section TEXT NOT NULL,
	content TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_content_section ON content_documents(section, title);
CREATE INDEX IF NOT EXISTS idx_content_category ON content_documents(category);
`

const metaTable = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// initSchema brings the database up to currentSchemaVersion.
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		version = 0
	} else if err != nil {
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		log.Debug("Schema is up to date", "version", version)
		return nil
	}

	log.Debug("Migrating schema", "from", version, "to", currentSchemaVersion)

	migrations := []func(*sql.DB) error{migrateV1, migrateV2}
	for v := version; v < currentSchemaVersion; v++ {
		if err := applyMigration(db, v+1, migrations[v]); err != nil {
			return fmt.Errorf("failed to migrate to v%d: %w", v+1, err)
		}
	}

	return nil
}

func applyMigration(db *sql.DB, version int, migrate func(*sql.DB) error) error {
	log.Debug("Applying migration", "version", version)

	if err := migrate(db); err != nil {
		return err
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

// migrateV1 creates the content table.
func migrateV1(db *sql.DB) error {
	_, err := db.Exec(contentTable)
	return err
}

// migrateV2 adds the key/value meta table.
func migrateV2(db *sql.DB) error {
	_, err := db.Exec(metaTable)
	return err
}
