package domain

import "math"

const MaxPageSize = 100

type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func NewPagedResult[T any](items []T, total, page, pageSize int) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return &PagedResult[T]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}

// NormalizePage fills in defaults for missing paging values and caps the page
// size. The page is capped so its offset still fits in an int.
func NormalizePage(page, pageSize, defaultSize int) (int, int) {
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	page = min(max(page, 1), maxPage(pageSize))
	return page, pageSize
}

func maxPage(pageSize int) int {
	if pageSize < 1 {
		return math.MaxInt
	}
	return math.MaxInt/pageSize + 1
}

// Offset is the number of rows to skip for the given page.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	page = min(page, maxPage(pageSize))
	return (page - 1) * pageSize
}
