// ABOUTME: Core record and section types for pipeline navigation
// ABOUTME: Defines Record with opaque fields, display-name resolution, and section enumeration
package models

import (
	"errors"
	"strings"
	"time"
)

// ErrUnsupportedSection is returned when a section name has no backend endpoint.
var ErrUnsupportedSection = errors.New("unsupported section")

// Section scopes which working set and cache namespace a record belongs to.
type Section string

const (
	SectionLeads         Section = "leads"
	SectionProspects     Section = "prospects"
	SectionOpportunities Section = "opportunities"
	SectionCompanies     Section = "companies"
	SectionPeople        Section = "people"
	SectionSpeedrun      Section = "speedrun"
)

// Sections lists every supported section in display order.
func Sections() []Section {
	return []Section{
		SectionLeads,
		SectionProspects,
		SectionOpportunities,
		SectionCompanies,
		SectionPeople,
		SectionSpeedrun,
	}
}

// ParseSection validates a section name from a URL or CLI argument.
func ParseSection(name string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Sections() {
		if s == known {
			return s, nil
		}
	}
	return "", ErrUnsupportedSection
}

// Pipeline status values. A record's status can imply a target section
// different from the one it was loaded under.
const (
	StatusLead        = "LEAD"
	StatusProspect    = "PROSPECT"
	StatusOpportunity = "OPPORTUNITY"
)

// Record is an opaque field map representing a business entity (person,
// company, deal). ID is the authoritative key; everything else is probed
// through accessors because the backend's shape varies per section.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// NewRecord builds a record from an id and a field map. The "id" key inside
// the map, if present, is dropped in favor of the explicit id.
func NewRecord(id string, fields map[string]any) Record {
	if fields == nil {
		fields = map[string]any{}
	}
	delete(fields, "id")
	return Record{ID: id, Fields: fields}
}

// Str returns the string value for key, or "" when absent or not a string.
func (r Record) Str(key string) string {
	if v, ok := r.Fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Num returns the numeric value for key. JSON decoding yields float64 for
// all numbers, so int values written locally are handled too.
func (r Record) Num(key string) (float64, bool) {
	switch v := r.Fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// displayNameFallback is what DisplayName returns when no candidate field is
// populated. Resolution must never fail.
const displayNameFallback = "record"

// DisplayName resolves the record's human-readable name from the prioritized
// candidate fields: fullName, name, firstName (+ lastName when present).
func (r Record) DisplayName() string {
	if s := strings.TrimSpace(r.Str("fullName")); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Str("name")); s != "" {
		return s
	}
	first := strings.TrimSpace(r.Str("firstName"))
	if first != "" {
		if last := strings.TrimSpace(r.Str("lastName")); last != "" {
			return first + " " + last
		}
		return first
	}
	return displayNameFallback
}

// Rank returns the record's ordering key. Numeric ranks are rendered back to
// a plain integer string so "2" and 2.0 compare identically.
func (r Record) Rank() string {
	if s := r.Str("rank"); s != "" {
		return s
	}
	if n, ok := r.Num("rank"); ok {
		return formatRankNumber(n)
	}
	return ""
}

// Status returns the record's pipeline status, upper-cased.
func (r Record) Status() string {
	return strings.ToUpper(strings.TrimSpace(r.Str("status")))
}

// ExternalID returns the alternate identifier carried by demo/seed data.
func (r Record) ExternalID() string {
	return r.Str("externalId")
}

// LastContactedAt parses the record's last-contact timestamp, if any.
func (r Record) LastContactedAt() (time.Time, bool) {
	s := r.Str("lastContactedAt")
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ImpliedSection maps the record's status to the section it belongs in.
// Returns the given current section when status implies nothing else.
func (r Record) ImpliedSection(current Section) Section {
	switch r.Status() {
	case StatusLead:
		return SectionLeads
	case StatusProspect:
		return SectionProspects
	case StatusOpportunity:
		return SectionOpportunities
	}
	return current
}

// ValidID reports whether id is usable for navigation. Empty ids and the
// literals "undefined"/"null" leak from upstream bugs and are never valid.
func ValidID(id string) bool {
	return id != "" && id != "undefined" && id != "null"
}
