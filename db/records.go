// ABOUTME: Record store operations for the local database
// ABOUTME: Handles upserts, lookups by id or external id, section listings, and status counts
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adrata/pipenav/models"
)

// UpsertRecord writes a record into a section, replacing any previous row.
// The opaque field map is stored as JSON; denormalized columns exist only
// for indexed listing.
func UpsertRecord(db *sql.DB, section models.Section, rec models.Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode record fields: %w", err)
	}

	var lastContacted *time.Time
	if ts, ok := rec.LastContactedAt(); ok {
		lastContacted = &ts
	}

	now := time.Now()
	_, err = db.Exec(`
		INSERT INTO records (id, section, external_id, display_name, status, rank, fields, last_contacted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(section, id) DO UPDATE SET
			external_id = excluded.external_id,
			display_name = excluded.display_name,
			status = excluded.status,
			rank = excluded.rank,
			fields = excluded.fields,
			last_contacted_at = excluded.last_contacted_at,
			updated_at = excluded.updated_at
	`, rec.ID, string(section), rec.ExternalID(), rec.DisplayName(), rec.Status(), rec.Rank(), string(fields), lastContacted, now, now)

	return err
}

// GetRecord looks a record up by id, or by the alternate external id carried
// by demo/seed data. Returns nil when not found.
func GetRecord(db *sql.DB, section models.Section, id string) (*models.Record, error) {
	var (
		recID  string
		fields string
	)

	err := db.QueryRow(`
		SELECT id, fields FROM records
		WHERE section = ? AND (id = ? OR external_id = ?)
	`, string(section), id, id).Scan(&recID, &fields)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec, err := decodeRecord(recID, fields)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords returns up to limit records for a section plus the section's
// total row count, for "N of M" display over partial collections.
func ListRecords(db *sql.DB, section models.Section, limit int) ([]models.Record, int, error) {
	if limit <= 0 {
		limit = 100
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM records WHERE section = ?`, string(section)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Query(`
		SELECT id, fields FROM records
		WHERE section = ?
		ORDER BY rank, id
		LIMIT ?
	`, string(section), limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var id, fields string
		if err := rows.Scan(&id, &fields); err != nil {
			return nil, 0, err
		}
		rec, err := decodeRecord(id, fields)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// CountByStatus returns the per-status record counts for a section.
func CountByStatus(db *sql.DB, section models.Section) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT COALESCE(status, ''), COUNT(*) FROM records
		WHERE section = ?
		GROUP BY status
	`, string(section))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// DeleteRecord removes a record from a section.
func DeleteRecord(db *sql.DB, section models.Section, id string) error {
	_, err := db.Exec(`DELETE FROM records WHERE section = ? AND id = ?`, string(section), id)
	return err
}

func decodeRecord(id, rawFields string) (models.Record, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(rawFields), &fields); err != nil {
		return models.Record{}, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return models.NewRecord(id, fields), nil
}
