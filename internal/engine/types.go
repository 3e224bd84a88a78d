package engine

import "fmt"

// ProfileInfo identifies a comparable profile.
type ProfileInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LicenseName string `json:"licenseName,omitempty"`
}

// OptionLabel formats the profile for selection inputs, e.g. "Standard User (Salesforce)".
func (p ProfileInfo) OptionLabel() string {
	license := p.LicenseName
	if license == "" {
		license = "N/A"
	}
	return fmt.Sprintf("%s (%s)", p.Name, license)
}

// ComparisonRow is one top-level entity in a comparison: an app, object,
// permission, class, or page. Left and Right hold the entity's display value
// in the first and second profile.
type ComparisonRow struct {
	Key         string `json:"key"`
	Label       string `json:"label,omitempty"`
	Left        string `json:"left"`
	Right       string `json:"right"`
	IsDifferent bool   `json:"isDifferent"`
}

// DetailRow is a second-level entity (one field of an object), scoped under a
// parent ComparisonRow key.
type DetailRow = ComparisonRow

// CategoryCount holds the total and differing row counts of one category.
type CategoryCount struct {
	Total     int `json:"total"`
	Different int `json:"different"`
}

// Summary holds per-category counts.
type Summary map[Category]CategoryCount

// Count returns the counts for c, zero if absent.
func (s Summary) Count(c Category) CategoryCount {
	return s[c]
}

// TotalDifferent returns the number of differing rows across all categories.
func (s Summary) TotalDifferent() int {
	n := 0
	for _, c := range s {
		n += c.Different
	}
	return n
}

// Summarize counts rows per category. It ignores any filtering the caller applies.
func Summarize(rows map[Category][]ComparisonRow) Summary {
	summary := make(Summary, numCategories)
	for _, c := range AllCategories() {
		count := CategoryCount{Total: len(rows[c])}
		for _, r := range rows[c] {
			if r.IsDifferent {
				count.Different++
			}
		}
		summary[c] = count
	}
	return summary
}

// Result is the comparison tree returned by one Compare call.
type Result struct {
	Profile1 ProfileInfo                  `json:"profile1"`
	Profile2 ProfileInfo                  `json:"profile2"`
	Summary  Summary                      `json:"summary"`
	Rows     map[Category][]ComparisonRow `json:"rows"`
}

// RowsFor returns the rows of one category in source order.
func (r *Result) RowsFor(c Category) []ComparisonRow {
	if r == nil {
		return nil
	}
	return r.Rows[c]
}
