package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// Pagination defaults and sort orders.
const (
	DefaultSortOrder = "asc"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Common validation errors.
var (
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'name:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Params holds CLI pagination flags. Offset-based (--limit, --offset) and
// page-based (--page, --page-size) modes are mutually exclusive. A zero
// Limit means no limit.
type Params struct {
	Limit     int
	Offset    int
	Page      int
	PageSize  int
	SortField string
	SortOrder string
}

// Validate checks that the parameters are consistent.
func (p Params) Validate() error {
	if p.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if p.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	if p.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if p.PageSize < 0 {
		return errors.New("page-size cannot be negative")
	}
	if p.Page > 0 && (p.Offset > 0 || p.Limit > 0) {
		return errors.New("page and offset/limit parameters are mutually exclusive")
	}
	if p.Page == 0 && p.PageSize > 0 {
		return errors.New("page must be specified when using page-size")
	}
	if p.PageSize == 0 && p.Page > 0 {
		return errors.New("page-size must be specified when using page")
	}
	return nil
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses "field" or "field:order". The empty string means no sort.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if sortStr == "" {
		return "", DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}

// IsPageBased reports whether page-based pagination is active.
func (p Params) IsPageBased() bool {
	return p.Page > 0
}

// EffectiveLimit returns PageSize in page mode and Limit otherwise.
func (p Params) EffectiveLimit() int {
	if p.IsPageBased() {
		return p.PageSize
	}
	return p.Limit
}

// EffectiveOffset returns the number of items to skip.
func (p Params) EffectiveOffset() int {
	if p.IsPageBased() {
		return (p.Page - 1) * p.PageSize
	}
	return p.Offset
}

// Apply returns the window of items selected by p.
func Apply[T any](items []T, p Params) []T {
	offset := min(p.EffectiveOffset(), len(items))
	end := len(items)
	if limit := p.EffectiveLimit(); limit > 0 {
		end = min(offset+limit, len(items))
	}
	return items[offset:end]
}
