// ABOUTME: Ordered working set: the filtered, sorted sequence a user browses
// ABOUTME: Computes deterministic ordering, index lookup, and previous/next neighbors
package workingset

import (
	"sort"
	"strings"

	"github.com/adrata/pipenav/models"
)

// SortDirection controls explicit sort overrides.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// Sort is an explicit override of the section's default ordering. A zero
// Sort (empty Field) keeps the default.
type Sort struct {
	Field     string
	Direction SortDirection
}

// WorkingSet is an immutable ordered sequence of records for one section.
// Rebuild it whenever the filter, sort, or underlying collection changes;
// it is never mutated in place.
type WorkingSet struct {
	Section models.Section
	Records []models.Record
}

// Build applies the filter and ordering to a collection. Ordering is
// deterministic for fixed inputs: ties break on record id.
func Build(section models.Section, collection []models.Record, f Filter, s Sort) WorkingSet {
	var kept []models.Record
	for _, rec := range collection {
		if f.Match(rec) {
			kept = append(kept, rec)
		}
	}

	less := lessFunc(section, s)
	sort.SliceStable(kept, func(i, j int) bool {
		if c := less(kept[i], kept[j]); c != 0 {
			return c < 0
		}
		return kept[i].ID < kept[j].ID
	})

	return WorkingSet{Section: section, Records: kept}
}

// lessFunc picks the comparator: an explicit sort override when set,
// otherwise the section default. Prospects default to last-contact ascending
// (oldest contact first, "needs follow-up"), everything else to rank
// ascending.
func lessFunc(section models.Section, s Sort) func(a, b models.Record) int {
	if s.Field != "" {
		return fieldComparator(s)
	}
	if section == models.SectionProspects {
		return compareLastContact
	}
	return func(a, b models.Record) int {
		return models.CompareRanks(a.Rank(), b.Rank())
	}
}

func fieldComparator(s Sort) func(a, b models.Record) int {
	cmp := func(a, b models.Record) int {
		if s.Field == "rank" {
			return models.CompareRanks(a.Rank(), b.Rank())
		}
		av, aok := a.Num(s.Field)
		bv, bok := b.Num(s.Field)
		if aok && bok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
		return strings.Compare(strings.ToLower(a.Str(s.Field)), strings.ToLower(b.Str(s.Field)))
	}
	if s.Direction == Descending {
		return func(a, b models.Record) int { return -cmp(a, b) }
	}
	return cmp
}

// compareLastContact orders oldest contact first; never-contacted records
// sort after everything (they have no backlog age to act on).
func compareLastContact(a, b models.Record) int {
	at, aok := a.LastContactedAt()
	bt, bok := b.LastContactedAt()
	switch {
	case aok && bok:
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return 0
}

// IndexOf returns the record's position, or -1. Callers treat -1 as
// "not navigable", never as an error.
func (ws WorkingSet) IndexOf(id string) int {
	for i, rec := range ws.Records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// Next returns the nearest following record with a valid id, skipping
// invalid entries. ok is false at the boundary (the operation is a no-op).
func (ws WorkingSet) Next(i int) (models.Record, int, bool) {
	for j := i + 1; j < len(ws.Records); j++ {
		if models.ValidID(ws.Records[j].ID) {
			return ws.Records[j], j, true
		}
	}
	return models.Record{}, -1, false
}

// Prev is the mirror of Next.
func (ws WorkingSet) Prev(i int) (models.Record, int, bool) {
	for j := i - 1; j >= 0 && j < len(ws.Records); j-- {
		if models.ValidID(ws.Records[j].ID) {
			return ws.Records[j], j, true
		}
	}
	return models.Record{}, -1, false
}

// FindByName does the best-effort display-name fallback used when a fetch
// 404s: normalized containment in either direction.
func (ws WorkingSet) FindByName(fragment string) (models.Record, bool) {
	needle := normalizeName(fragment)
	if needle == "" {
		return models.Record{}, false
	}
	for _, rec := range ws.Records {
		name := normalizeName(rec.DisplayName())
		if name == "" {
			continue
		}
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			return rec, true
		}
	}
	return models.Record{}, false
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
