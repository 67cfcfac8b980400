// ABOUTME: Tests for the local record store
// ABOUTME: Covers schema init, upserts, lookups, listings, counts, and demo seeding
package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/adrata/pipenav/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDatabase(t *testing.T) {
	db := setupTestDB(t)

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL mode, got %s", mode)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		t.Fatalf("records table missing: %v", err)
	}
}

func TestUpsertAndGetRecord(t *testing.T) {
	db := setupTestDB(t)

	rec := models.NewRecord("p1", map[string]any{
		"fullName":   "Ada Lovelace",
		"status":     "LEAD",
		"rank":       "1A",
		"externalId": "seed-1",
	})
	if err := UpsertRecord(db, models.SectionLeads, rec); err != nil {
		t.Fatalf("UpsertRecord failed: %v", err)
	}

	found, err := GetRecord(db, models.SectionLeads, "p1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if found == nil || found.DisplayName() != "Ada Lovelace" {
		t.Fatalf("GetRecord = %v", found)
	}

	// Alternate external-id lookup for demo data.
	byExternal, err := GetRecord(db, models.SectionLeads, "seed-1")
	if err != nil {
		t.Fatalf("GetRecord by external id failed: %v", err)
	}
	if byExternal == nil || byExternal.ID != "p1" {
		t.Fatalf("external id lookup = %v", byExternal)
	}

	// Upsert replaces.
	rec.Fields["fullName"] = "Ada L."
	if err := UpsertRecord(db, models.SectionLeads, rec); err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}
	found, _ = GetRecord(db, models.SectionLeads, "p1")
	if found.DisplayName() != "Ada L." {
		t.Errorf("upsert did not replace, got %s", found.DisplayName())
	}
}

func TestGetRecordMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	found, err := GetRecord(db, models.SectionLeads, "nope")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if found != nil {
		t.Error("expected nil for missing record")
	}
}

func TestDeleteRecord(t *testing.T) {
	db := setupTestDB(t)

	rec := models.NewRecord("p1", map[string]any{"fullName": "Ada Lovelace"})
	if err := UpsertRecord(db, models.SectionLeads, rec); err != nil {
		t.Fatalf("UpsertRecord failed: %v", err)
	}

	if err := DeleteRecord(db, models.SectionLeads, "p1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}

	found, err := GetRecord(db, models.SectionLeads, "p1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if found != nil {
		t.Error("expected nil after delete")
	}

	// Deleting an absent record is not an error.
	if err := DeleteRecord(db, models.SectionLeads, "p1"); err != nil {
		t.Errorf("deleting missing record errored: %v", err)
	}
}

func TestListRecordsReturnsTotal(t *testing.T) {
	db := setupTestDB(t)

	for _, id := range []string{"a", "b", "c"} {
		rec := models.NewRecord(id, map[string]any{"name": "Rec " + id, "rank": id})
		if err := UpsertRecord(db, models.SectionCompanies, rec); err != nil {
			t.Fatalf("UpsertRecord failed: %v", err)
		}
	}

	records, total, err := ListRecords(db, models.SectionCompanies, 2)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}
}

func TestCountByStatus(t *testing.T) {
	db := setupTestDB(t)

	for i, status := range []string{"LEAD", "LEAD", "PROSPECT"} {
		rec := models.NewRecord(string(rune('a'+i)), map[string]any{"status": status})
		if err := UpsertRecord(db, models.SectionLeads, rec); err != nil {
			t.Fatalf("UpsertRecord failed: %v", err)
		}
	}

	counts, err := CountByStatus(db, models.SectionLeads)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts["LEAD"] != 2 || counts["PROSPECT"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	n, err := SeedDemo(db)
	if err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}
	if n == 0 {
		t.Fatal("SeedDemo seeded nothing")
	}

	var before int
	if err := db.QueryRow("SELECT COUNT(*) FROM records").Scan(&before); err != nil {
		t.Fatal(err)
	}

	if _, err := SeedDemo(db); err != nil {
		t.Fatalf("second SeedDemo failed: %v", err)
	}

	var after int
	if err := db.QueryRow("SELECT COUNT(*) FROM records").Scan(&after); err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Errorf("reseeding changed row count: %d -> %d", before, after)
	}
}
