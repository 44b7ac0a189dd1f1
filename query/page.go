package query

// Page size limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Result is one page of a list.
type Result[T any] struct {
	Count       int  `json:"count"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	Results     []T  `json:"results"`
}

// NormalizePage clamps a requested page and page size. Zero values select
// page 1 and DefaultPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	pageSize = max(1, min(MaxPageSize, pageSize))
	return page, pageSize
}

// Paginate returns the requested page of items. A page past the end is
// clamped to the last page.
func Paginate[T any](items []T, page, pageSize int) Result[T] {
	page, pageSize = NormalizePage(page, pageSize)

	count := len(items)
	totalPages := max(1, (count+pageSize-1)/pageSize)
	page = min(page, totalPages)

	start := min((page-1)*pageSize, count)
	end := min(start+pageSize, count)
	results := make([]T, end-start)
	copy(results, items[start:end])

	return Result[T]{
		Count:       count,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
		Results:     results,
	}
}

// Map converts the results of a page, keeping its counters.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{
		Count:       r.Count,
		Page:        r.Page,
		PageSize:    r.PageSize,
		TotalPages:  r.TotalPages,
		HasNext:     r.HasNext,
		HasPrevious: r.HasPrevious,
		Results:     make([]U, len(r.Results)),
	}
	for i, v := range r.Results {
		out.Results[i] = fn(v)
	}
	return out
}
