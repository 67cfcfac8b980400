// ABOUTME: Database schema definitions for the local record store
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT NOT NULL,
	section TEXT NOT NULL,
	external_id TEXT,
	display_name TEXT NOT NULL,
	status TEXT,
	rank TEXT,
	fields TEXT NOT NULL,
	last_contacted_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (section, id)
);

CREATE INDEX IF NOT EXISTS idx_records_section ON records(section);
CREATE INDEX IF NOT EXISTS idx_records_external_id ON records(external_id);
CREATE INDEX IF NOT EXISTS idx_records_status ON records(section, status);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
