// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	tbl TEXT NOT NULL,
	id INTEGER NOT NULL,
	fields TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (tbl, id)
);

-- Ids are allocated per table and never reused after a delete.
CREATE TABLE IF NOT EXISTS sequences (
	tbl TEXT PRIMARY KEY,
	last_id INTEGER NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
