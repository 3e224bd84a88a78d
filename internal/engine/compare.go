package engine

import (
	"cmp"
	"slices"
	"strings"
)

// Display values used in comparison rows.
const (
	ValueEnabled  = "Enabled"
	ValueDisabled = "Disabled"
	ValueVisible  = "Visible"
	ValueDefault  = "Visible (Default)"
	ValueHidden   = "Hidden"
	ValueReadEdit = "Read/Edit"
	ValueRead     = "Read"
	ValueNone     = "None"
)

// crudFlags are the letters rendered for object access, in order:
// Create, Read, Edit, Delete, View All, Modify All.
const crudFlags = "CREDVM"

// CompareProfiles builds the full comparison tree of two snapshots.
// Rows in each category are ordered by key.
func CompareProfiles(p1, p2 *Profile) *Result {
	rows := map[Category][]ComparisonRow{
		CategoryApps:              compareApps(p1.Apps, p2.Apps),
		CategoryObjects:           compareObjects(p1.Objects, p2.Objects),
		CategorySystemPermissions: compareFlags(p1.SystemPermissions, p2.SystemPermissions),
		CategoryApexClasses:       compareSets(p1.ApexClasses, p2.ApexClasses),
		CategoryPages:             compareSets(p1.Pages, p2.Pages),
		CategoryCustomPermissions: compareSets(p1.CustomPermissions, p2.CustomPermissions),
	}
	return &Result{
		Profile1: p1.Info(),
		Profile2: p2.Info(),
		Summary:  Summarize(rows),
		Rows:     rows,
	}
}

// CompareFields returns the field-level comparison of one object. An object
// absent from both profiles yields an empty, non-nil slice.
func CompareFields(p1, p2 *Profile, objectName string) []DetailRow {
	f1 := fieldsOf(p1, objectName)
	f2 := fieldsOf(p2, objectName)

	left := make(map[string]FieldAccess, len(f1))
	for _, f := range f1 {
		left[f.Name] = f
	}
	right := make(map[string]FieldAccess, len(f2))
	for _, f := range f2 {
		right[f.Name] = f
	}

	rows := make([]DetailRow, 0, len(left)+len(right))
	for _, name := range unionKeys(left, right) {
		a, b := left[name], right[name]
		l, r := fieldValue(a), fieldValue(b)
		rows = append(rows, DetailRow{
			Key:         name,
			Label:       firstNonEmpty(a.Label, b.Label, name),
			Left:        l,
			Right:       r,
			IsDifferent: l != r,
		})
	}
	return rows
}

func fieldsOf(p *Profile, objectName string) []FieldAccess {
	for _, o := range p.Objects {
		if o.Name == objectName {
			return o.Fields
		}
	}
	return nil
}

func fieldValue(f FieldAccess) string {
	switch {
	case f.Editable:
		return ValueReadEdit
	case f.Readable:
		return ValueRead
	default:
		return ValueNone
	}
}

func compareApps(a1, a2 []AppAccess) []ComparisonRow {
	left := make(map[string]AppAccess, len(a1))
	for _, a := range a1 {
		left[a.Name] = a
	}
	right := make(map[string]AppAccess, len(a2))
	for _, a := range a2 {
		right[a.Name] = a
	}

	rows := make([]ComparisonRow, 0, len(left)+len(right))
	for _, name := range unionKeys(left, right) {
		a, b := left[name], right[name]
		l, r := appValue(a), appValue(b)
		rows = append(rows, ComparisonRow{
			Key:         name,
			Label:       firstNonEmpty(a.Label, b.Label, name),
			Left:        l,
			Right:       r,
			IsDifferent: l != r,
		})
	}
	return rows
}

func appValue(a AppAccess) string {
	switch {
	case a.Visible && a.Default:
		return ValueDefault
	case a.Visible:
		return ValueVisible
	default:
		return ValueHidden
	}
}

func compareObjects(o1, o2 []ObjectAccess) []ComparisonRow {
	left := make(map[string]ObjectAccess, len(o1))
	for _, o := range o1 {
		left[o.Name] = o
	}
	right := make(map[string]ObjectAccess, len(o2))
	for _, o := range o2 {
		right[o.Name] = o
	}

	rows := make([]ComparisonRow, 0, len(left)+len(right))
	for _, name := range unionKeys(left, right) {
		a, b := left[name], right[name]
		l, r := CRUDString(a), CRUDString(b)
		rows = append(rows, ComparisonRow{
			Key:         name,
			Label:       firstNonEmpty(a.Label, b.Label, name),
			Left:        l,
			Right:       r,
			IsDifferent: l != r,
		})
	}
	return rows
}

// CRUDString renders object access as six flag letters, "-" for each missing
// permission. Full access is "CREDVM", read-only is "-R----".
func CRUDString(o ObjectAccess) string {
	flags := [len(crudFlags)]bool{o.Create, o.Read, o.Edit, o.Delete, o.ViewAll, o.ModifyAll}
	var sb strings.Builder
	for i, set := range flags {
		if set {
			sb.WriteByte(crudFlags[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func compareFlags(m1, m2 map[string]bool) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(m1)+len(m2))
	for _, name := range unionKeys(m1, m2) {
		l, r := enabledValue(m1[name]), enabledValue(m2[name])
		rows = append(rows, ComparisonRow{
			Key:         name,
			Label:       name,
			Left:        l,
			Right:       r,
			IsDifferent: l != r,
		})
	}
	return rows
}

func compareSets(s1, s2 []string) []ComparisonRow {
	return compareFlags(toSet(s1), toSet(s2))
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func enabledValue(b bool) string {
	if b {
		return ValueEnabled
	}
	return ValueDisabled
}

// unionKeys returns the sorted union of both maps' keys. Ordering is
// case-insensitive with the raw key as tie-breaker.
func unionKeys[V any](a, b map[string]V) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for _, m := range []map[string]V{a, b} {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(x, y string) int {
		if c := cmp.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
