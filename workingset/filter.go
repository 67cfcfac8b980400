// ABOUTME: Filter predicate for working sets
// ABOUTME: Conjunction of independent sub-predicates; unset sub-filters match everything
package workingset

import (
	"strings"
	"time"

	"github.com/adrata/pipenav/models"
)

// Revenue buckets (annual, USD).
const (
	RevenueUnder1M  = "lt1m"
	Revenue1To10M   = "1m-10m"
	Revenue10To100M = "10m-100m"
	RevenueOver100M = "gt100m"
)

// Company-size buckets (employee count).
const (
	SizeMicro  = "1-10"
	SizeSmall  = "11-50"
	SizeMedium = "51-200"
	SizeLarge  = "201-1000"
	SizeXL     = "1000+"
)

// Last-contact recency buckets.
const (
	ContactedWeek    = "7d"
	ContactedMonth   = "30d"
	ContactedQuarter = "90d"
	ContactedOlder   = "older"
)

// Filter is a conjunction of independent sub-predicates. The zero Filter
// matches every record. Evaluation is order-independent: all configured
// sub-predicates must agree.
type Filter struct {
	Search      string // free text over name/title/company/email
	Industry    string
	Status      string // exact status/stage match
	Revenue     string // revenue bucket constant
	CompanySize string // size bucket constant
	LastContact string // recency bucket constant
}

// Match evaluates the conjunction for one record.
func (f Filter) Match(r models.Record) bool {
	return f.matchSearch(r) &&
		f.matchIndustry(r) &&
		f.matchStatus(r) &&
		f.matchRevenue(r) &&
		f.matchSize(r) &&
		f.matchRecency(r)
}

func (f Filter) matchSearch(r models.Record) bool {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	for _, field := range []string{r.DisplayName(), r.Str("title"), r.Str("company"), r.Str("email")} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (f Filter) matchIndustry(r models.Record) bool {
	if f.Industry == "" {
		return true
	}
	return strings.EqualFold(r.Str("industry"), f.Industry)
}

func (f Filter) matchStatus(r models.Record) bool {
	if f.Status == "" {
		return true
	}
	return r.Status() == strings.ToUpper(f.Status)
}

func (f Filter) matchRevenue(r models.Record) bool {
	if f.Revenue == "" {
		return true
	}
	rev, ok := r.Num("revenue")
	if !ok {
		return false
	}
	switch f.Revenue {
	case RevenueUnder1M:
		return rev < 1_000_000
	case Revenue1To10M:
		return rev >= 1_000_000 && rev < 10_000_000
	case Revenue10To100M:
		return rev >= 10_000_000 && rev < 100_000_000
	case RevenueOver100M:
		return rev >= 100_000_000
	}
	return false
}

func (f Filter) matchSize(r models.Record) bool {
	if f.CompanySize == "" {
		return true
	}
	n, ok := r.Num("employeeCount")
	if !ok {
		return false
	}
	switch f.CompanySize {
	case SizeMicro:
		return n >= 1 && n <= 10
	case SizeSmall:
		return n >= 11 && n <= 50
	case SizeMedium:
		return n >= 51 && n <= 200
	case SizeLarge:
		return n >= 201 && n <= 1000
	case SizeXL:
		return n > 1000
	}
	return false
}

func (f Filter) matchRecency(r models.Record) bool {
	if f.LastContact == "" {
		return true
	}
	ts, ok := r.LastContactedAt()
	if !ok {
		// Never-contacted records only show up in the "older" bucket.
		return f.LastContact == ContactedOlder
	}
	age := time.Since(ts)
	switch f.LastContact {
	case ContactedWeek:
		return age <= 7*24*time.Hour
	case ContactedMonth:
		return age <= 30*24*time.Hour
	case ContactedQuarter:
		return age <= 90*24*time.Hour
	case ContactedOlder:
		return age > 90*24*time.Hour
	}
	return false
}
