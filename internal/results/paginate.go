package results

const (
	EntryPageSize = 10
	JobPageSize   = 20
	MaxPageSize   = 100
)

// Page is one slice of a filtered, sorted list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// Paginate returns the 1-based page of items. Out-of-range pages are clamped into
// [1, TotalPages]; an empty list yields page 1 with zero total pages.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = EntryPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      append(make([]T, 0, end-start), items[start:end]...),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
	}
}
