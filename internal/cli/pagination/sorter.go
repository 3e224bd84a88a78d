package pagination

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rshade/profdiff/internal/engine"
)

// Profile sort fields.
const (
	SortFieldName    = "name"
	SortFieldID      = "id"
	SortFieldLicense = "license"
)

// ProfileSorter sorts profile listings.
type ProfileSorter struct {
	validFields map[string]bool
}

// NewProfileSorter creates a sorter for name, id and license.
func NewProfileSorter() *ProfileSorter {
	return &ProfileSorter{
		validFields: map[string]bool{
			SortFieldName:    true,
			SortFieldID:      true,
			SortFieldLicense: true,
		},
	}
}

// IsValidField reports whether field can be sorted on.
func (s *ProfileSorter) IsValidField(field string) bool {
	return s.validFields[field]
}

// ValidFields returns the sortable fields in alphabetical order.
func (s *ProfileSorter) ValidFields() []string {
	fields := make([]string, 0, len(s.validFields))
	for f := range s.validFields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// Validate checks field against the valid fields. The empty field is valid.
func (s *ProfileSorter) Validate(field string) error {
	if field == "" || s.IsValidField(field) {
		return nil
	}
	return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.ValidFields(), ", "))
}

// Sort returns a sorted copy of profiles. Ties keep their input order.
func (s *ProfileSorter) Sort(profiles []engine.ProfileInfo, field, order string) []engine.ProfileInfo {
	out := slices.Clone(profiles)
	if field == "" {
		return out
	}

	key := func(p engine.ProfileInfo) string {
		switch field {
		case SortFieldID:
			return p.ID
		case SortFieldLicense:
			return strings.ToLower(p.LicenseName)
		default:
			return strings.ToLower(p.Name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == SortOrderDesc {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})
	return out
}
