// ABOUTME: Tests for working-set ordering, indexing, and neighbor resolution
// ABOUTME: Covers rank ordering, prospects default sort, boundaries, and name fallback
package workingset

import (
	"testing"
	"time"

	"github.com/adrata/pipenav/models"
)

func rec(id string, fields map[string]any) models.Record {
	return models.NewRecord(id, fields)
}

func TestBuildOrdersByRankComposite(t *testing.T) {
	collection := []models.Record{
		rec("c", map[string]any{"rank": "2A"}),
		rec("a", map[string]any{"rank": "1A"}),
		rec("d", map[string]any{"rank": "2B"}),
		rec("b", map[string]any{"rank": "1B"}),
	}

	ws := Build(models.SectionLeads, collection, Filter{}, Sort{})

	var got []string
	for _, r := range ws.Records {
		got = append(got, r.ID)
	}
	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestProspectsDefaultOrdersOldestContactFirst(t *testing.T) {
	old := time.Now().Add(-60 * 24 * time.Hour).Format(time.RFC3339)
	recent := time.Now().Add(-2 * 24 * time.Hour).Format(time.RFC3339)

	collection := []models.Record{
		rec("fresh", map[string]any{"lastContactedAt": recent}),
		rec("stale", map[string]any{"lastContactedAt": old}),
		rec("never", map[string]any{}),
	}

	ws := Build(models.SectionProspects, collection, Filter{}, Sort{})

	if ws.Records[0].ID != "stale" || ws.Records[1].ID != "fresh" || ws.Records[2].ID != "never" {
		t.Fatalf("prospects order wrong: %v %v %v", ws.Records[0].ID, ws.Records[1].ID, ws.Records[2].ID)
	}
}

func TestExplicitSortOverride(t *testing.T) {
	collection := []models.Record{
		rec("a", map[string]any{"revenue": float64(100), "rank": "1"}),
		rec("b", map[string]any{"revenue": float64(900), "rank": "2"}),
	}

	ws := Build(models.SectionCompanies, collection, Filter{}, Sort{Field: "revenue", Direction: Descending})
	if ws.Records[0].ID != "b" {
		t.Fatalf("descending revenue sort should put b first, got %s", ws.Records[0].ID)
	}
}

func TestIndexOfMiss(t *testing.T) {
	ws := Build(models.SectionLeads, []models.Record{rec("a", nil)}, Filter{}, Sort{})
	if ws.IndexOf("nope") != -1 {
		t.Error("IndexOf miss should be -1")
	}
}

func TestNeighborResolution(t *testing.T) {
	collection := []models.Record{
		rec("A", map[string]any{"rank": "1"}),
		rec("B", map[string]any{"rank": "2"}),
		rec("C", map[string]any{"rank": "3"}),
	}
	ws := Build(models.SectionLeads, collection, Filter{}, Sort{})

	i := ws.IndexOf("B")
	if i != 1 {
		t.Fatalf("IndexOf(B) = %d", i)
	}

	if prev, _, ok := ws.Prev(i); !ok || prev.ID != "A" {
		t.Errorf("Prev(B) = %v, %v", prev.ID, ok)
	}
	if next, _, ok := ws.Next(i); !ok || next.ID != "C" {
		t.Errorf("Next(B) = %v, %v", next.ID, ok)
	}

	// Boundaries are no-ops.
	if _, _, ok := ws.Prev(0); ok {
		t.Error("Prev at index 0 must be a no-op")
	}
	if _, _, ok := ws.Next(len(ws.Records) - 1); ok {
		t.Error("Next at last index must be a no-op")
	}
}

func TestNeighborsSkipInvalidIDs(t *testing.T) {
	ws := WorkingSet{Records: []models.Record{
		rec("A", nil),
		rec("undefined", nil),
		rec("C", nil),
	}}

	next, idx, ok := ws.Next(0)
	if !ok || next.ID != "C" || idx != 2 {
		t.Errorf("Next should skip invalid ids, got %v at %d (%v)", next.ID, idx, ok)
	}
	prev, _, ok := ws.Prev(2)
	if !ok || prev.ID != "A" {
		t.Errorf("Prev should skip invalid ids, got %v (%v)", prev.ID, ok)
	}
}

func TestFilterConjunction(t *testing.T) {
	ts := time.Now().Add(-3 * 24 * time.Hour).Format(time.RFC3339)
	r := rec("x", map[string]any{
		"name":            "Ada Lovelace",
		"email":           "ada@acme.com",
		"industry":        "Software",
		"status":          "PROSPECT",
		"revenue":         float64(5_000_000),
		"employeeCount":   float64(120),
		"lastContactedAt": ts,
	})

	all := Filter{
		Search:      "ada",
		Industry:    "software",
		Status:      "prospect",
		Revenue:     Revenue1To10M,
		CompanySize: SizeMedium,
		LastContact: ContactedWeek,
	}
	if !all.Match(r) {
		t.Error("record should match every configured sub-predicate")
	}

	// Flip each sub-predicate in turn: the conjunction must fail.
	for name, f := range map[string]Filter{
		"search":   {Search: "zzz"},
		"industry": {Industry: "Finance"},
		"status":   {Status: "LEAD"},
		"revenue":  {Revenue: RevenueOver100M},
		"size":     {CompanySize: SizeMicro},
		"recency":  {LastContact: ContactedOlder},
	} {
		if f.Match(r) {
			t.Errorf("%s sub-predicate should reject the record", name)
		}
	}

	// Default filter matches everything.
	if !(Filter{}).Match(r) {
		t.Error("zero filter must match all records")
	}
}

func TestFindByNameFuzzy(t *testing.T) {
	ws := Build(models.SectionPeople, []models.Record{
		rec("p1", map[string]any{"fullName": "John Doe"}),
		rec("p2", map[string]any{"fullName": "Jane Roe"}),
	}, Filter{}, Sort{})

	got, ok := ws.FindByName("john-doe")
	if !ok || got.ID != "p1" {
		t.Errorf("FindByName(john-doe) = %v, %v", got.ID, ok)
	}

	if _, ok := ws.FindByName("nobody"); ok {
		t.Error("FindByName should miss for unknown names")
	}
}
