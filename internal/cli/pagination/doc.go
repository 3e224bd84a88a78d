// Package pagination provides paging and sorting for CLI list output.
//
//   - Params: --limit/--offset and --page/--page-size flags with validation
//   - Meta: page metadata for JSON output
//   - ProfileSorter: field-validated sorting of profile listings
package pagination
