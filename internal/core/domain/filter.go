package domain

import "strings"

// Filter defaults. YearMax is an open upper bound; the dataset's Year column
// is a plain integer, not a timestamp.
const (
	DefaultYearMin = 0
	DefaultYearMax = 9999

	// TypeAll disables the crash-type clause.
	TypeAll = "All"
)

// FilterCriteria selects a subset of the dataset. Criteria are rebuilt from
// the dashboard's inputs on every apply; they carry no identity.
//
// Precipitation, WindMin, WindMax and Visibility are accepted from the
// dashboard's weather inputs but do not participate in matching. They are an
// unimplemented extension point, kept so the UI contract stays stable if
// weather-based filtering ever lands.
type FilterCriteria struct {
	YearMin       int
	YearMax       int
	Type          string
	Region        string
	MinFatalities int

	Precipitation string
	WindMin       float64
	WindMax       float64
	Visibility    string
}

// NewFilterCriteria returns criteria that match every record.
func NewFilterCriteria() FilterCriteria {
	return FilterCriteria{
		YearMin: DefaultYearMin,
		YearMax: DefaultYearMax,
		Type:    TypeAll,
	}
}

// Matches reports whether the record passes all four active clauses: year
// range (inclusive), exact type (unless "All"), case-insensitive country
// substring, and the fatality floor.
func (c FilterCriteria) Matches(r CrashRecord) bool {
	if r.Year < c.YearMin || r.Year > c.YearMax {
		return false
	}
	if c.Type != "" && c.Type != TypeAll && r.Type != c.Type {
		return false
	}
	if c.Region != "" && !strings.Contains(strings.ToLower(r.Country), strings.ToLower(c.Region)) {
		return false
	}
	return r.Fatalities >= c.MinFatalities
}

// FilterRecords derives a new slice of the records passing the criteria.
// The input is never mutated, so the full dataset stays intact for reset.
func FilterRecords(records []CrashRecord, c FilterCriteria) []CrashRecord {
	out := make([]CrashRecord, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
