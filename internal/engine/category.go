package engine

import (
	"fmt"
	"strings"
)

// Category is one of the fixed top-level partitions of a comparison.
type Category int

const (
	// CategoryApps covers assigned (visible) apps.
	CategoryApps Category = iota
	// CategoryObjects covers object CRUD settings. Rows expand into field-level detail.
	CategoryObjects
	// CategorySystemPermissions covers boolean system permissions.
	CategorySystemPermissions
	// CategoryApexClasses covers Apex class access.
	CategoryApexClasses
	// CategoryPages covers Visualforce page access.
	CategoryPages
	// CategoryCustomPermissions covers custom permission grants.
	CategoryCustomPermissions
)

// numCategories is the number of defined categories.
const numCategories = 6

type categoryInfo struct {
	name       string
	label      string
	shortLabel string
}

//nolint:gochecknoglobals // Static lookup table indexed by Category.
var categoryTable = [numCategories]categoryInfo{
	{name: "apps", label: "Assigned Apps", shortLabel: "Apps"},
	{name: "objects", label: "Object Settings", shortLabel: "Objects"},
	{name: "system_permissions", label: "System Permissions", shortLabel: "System Perms"},
	{name: "apex_classes", label: "Apex Classes", shortLabel: "Apex"},
	{name: "vf_pages", label: "Visualforce Pages", shortLabel: "VF Pages"},
	{name: "custom_permissions", label: "Custom Permissions", shortLabel: "Custom Perms"},
}

// AllCategories returns every category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryApps,
		CategoryObjects,
		CategorySystemPermissions,
		CategoryApexClasses,
		CategoryPages,
		CategoryCustomPermissions,
	}
}

// Valid reports whether c is a defined category.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < numCategories
}

// String returns the machine name, e.g. "system_permissions".
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryTable[c].name
}

// Label returns the tab label, e.g. "Object Settings".
func (c Category) Label() string {
	if !c.Valid() {
		return c.String()
	}
	return categoryTable[c].label
}

// ShortLabel returns the summary card label, e.g. "Objects".
func (c Category) ShortLabel() string {
	if !c.Valid() {
		return c.String()
	}
	return categoryTable[c].shortLabel
}

// SupportsDetail reports whether rows of this category have second-level detail.
func (c Category) SupportsDetail() bool {
	return c == CategoryObjects
}

// ParseCategory parses a machine name. Matching is case-insensitive and
// accepts hyphens in place of underscores.
func ParseCategory(s string) (Category, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, info := range categoryTable {
		if info.name == norm {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler so categories can key JSON maps.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
