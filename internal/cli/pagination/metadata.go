package pagination

// Meta describes a page of results.
type Meta struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewMeta builds page metadata for totalCount items.
func NewMeta(p Params, totalCount int) Meta {
	pageSize := p.EffectiveLimit()
	if pageSize == 0 {
		pageSize = totalCount
	}

	currentPage := p.Page
	if currentPage == 0 && p.Offset > 0 && pageSize > 0 {
		currentPage = (p.Offset / pageSize) + 1
	}
	if currentPage == 0 {
		currentPage = 1
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}

	return Meta{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		HasPrevious: currentPage > 1,
		HasNext:     currentPage < totalPages,
	}
}
