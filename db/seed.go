// ABOUTME: Demo pipeline seeding for the local record store
// ABOUTME: Loads a small multi-section dataset so the whole resolution chain runs offline
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adrata/pipenav/models"
)

type seedRow struct {
	section models.Section
	fields  map[string]any
}

// SeedDemo loads the demo pipeline. Existing rows with the same external id
// keep their generated id; everything else gets a fresh uuid.
func SeedDemo(db *sql.DB) (int, error) {
	days := func(n int) string {
		return time.Now().Add(-time.Duration(n) * 24 * time.Hour).Format(time.RFC3339)
	}

	rows := []seedRow{
		{models.SectionLeads, map[string]any{
			"fullName": "Maya Chen", "title": "VP Engineering", "company": "Mux Technologies",
			"email": "maya@mux.example", "status": "LEAD", "rank": "1A",
			"industry": "Media", "revenue": 8_000_000, "employeeCount": 85,
			"externalId": "seed-lead-1", "lastContactedAt": days(12),
		}},
		{models.SectionLeads, map[string]any{
			"fullName": "Tom Alvarez", "title": "Head of Data", "company": "Mux Technologies",
			"email": "tom@mux.example", "status": "LEAD", "rank": "1B",
			"industry": "Media", "revenue": 8_000_000, "employeeCount": 85,
			"externalId": "seed-lead-2", "lastContactedAt": days(40),
		}},
		{models.SectionLeads, map[string]any{
			"fullName": "Priya Nair", "title": "CTO", "company": "Clumio Systems",
			"email": "priya@clumio.example", "status": "LEAD", "rank": "2A",
			"industry": "Storage", "revenue": 45_000_000, "employeeCount": 320,
			"externalId": "seed-lead-3", "lastContactedAt": days(3),
		}},
		{models.SectionProspects, map[string]any{
			"fullName": "Dan Kowalski", "title": "Director of IT", "company": "Yello Corp",
			"email": "dan@yello.example", "status": "PROSPECT", "rank": "1A",
			"industry": "HR Tech", "revenue": 22_000_000, "employeeCount": 150,
			"externalId": "seed-prospect-1", "lastContactedAt": days(95),
		}},
		{models.SectionProspects, map[string]any{
			"fullName": "Sofia Rossi", "title": "Procurement Lead", "company": "Yello Corp",
			"email": "sofia@yello.example", "status": "PROSPECT", "rank": "1B",
			"industry": "HR Tech", "revenue": 22_000_000, "employeeCount": 150,
			"externalId": "seed-prospect-2", "lastContactedAt": days(8),
		}},
		{models.SectionOpportunities, map[string]any{
			"fullName": "Liang Wei", "title": "CIO", "company": "Clumio Systems",
			"email": "liang@clumio.example", "status": "OPPORTUNITY", "rank": "1A",
			"industry": "Storage", "revenue": 45_000_000, "employeeCount": 320,
			"externalId": "seed-opp-1", "lastContactedAt": days(1),
		}},
		{models.SectionCompanies, map[string]any{
			"name": "Mux Technologies", "industry": "Media", "rank": "1",
			"revenue": 8_000_000, "employeeCount": 85, "externalId": "seed-co-1",
		}},
		{models.SectionCompanies, map[string]any{
			"name": "Clumio Systems", "industry": "Storage", "rank": "2",
			"revenue": 45_000_000, "employeeCount": 320, "externalId": "seed-co-2",
		}},
		{models.SectionCompanies, map[string]any{
			"name": "Yello Corp", "industry": "HR Tech", "rank": "3",
			"revenue": 22_000_000, "employeeCount": 150, "externalId": "seed-co-3",
		}},
		{models.SectionPeople, map[string]any{
			"firstName": "Ada", "lastName": "Lovelace", "title": "Advisor",
			"email": "ada@example.com", "rank": "1", "externalId": "seed-person-1",
		}},
		{models.SectionSpeedrun, map[string]any{
			"fullName": "Speedrun Target One", "company": "Mux Technologies",
			"rank": "1A", "externalId": "seed-speedrun-1",
		}},
		{models.SectionSpeedrun, map[string]any{
			"fullName": "Speedrun Target Two", "company": "Clumio Systems",
			"rank": "2A", "externalId": "seed-speedrun-2",
		}},
	}

	seeded := 0
	for _, row := range rows {
		id, err := existingIDForExternal(db, row.section, row.fields["externalId"].(string))
		if err != nil {
			return seeded, err
		}
		if id == "" {
			id = uuid.New().String()
		}
		if err := UpsertRecord(db, row.section, models.NewRecord(id, row.fields)); err != nil {
			return seeded, fmt.Errorf("failed to seed %s record: %w", row.section, err)
		}
		seeded++
	}
	return seeded, nil
}

func existingIDForExternal(db *sql.DB, section models.Section, externalID string) (string, error) {
	var id string
	err := db.QueryRow(`
		SELECT id FROM records WHERE section = ? AND external_id = ?
	`, string(section), externalID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}
