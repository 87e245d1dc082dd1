package view

import (
	"slices"
	"strings"
)

const DefaultPageSize = 10

type Order int

const (
	Asc Order = iota
	Desc
)

func (o Order) String() string {
	if o == Desc {
		return "desc"
	}
	return "asc"
}

func (o Order) Toggle() Order {
	if o == Desc {
		return Asc
	}
	return Desc
}

func ParseOrder(raw string) Order {
	if strings.EqualFold(strings.TrimSpace(raw), "desc") {
		return Desc
	}
	return Asc
}

// Query is everything a page can vary about the visible slice.
type Query struct {
	Search string
	// Filters maps a filter key to the exact value to keep; "" disables it.
	Filters  map[string]string
	Order    Order
	Page     int
	PageSize int
}

type Result[T any] struct {
	Items      []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Schema describes how a row type is searched, filtered and ordered.
type Schema[T any] struct {
	SearchFields func(row T) []string
	FilterValue  func(row T, key string) string
	Compare      func(a T, b T) int
}

// Run applies search, filter, stable sort and pagination in that order. It
// never modifies rows.
func Run[T any](rows []T, schema Schema[T], q Query) Result[T] {
	matched := Search(rows, schema.SearchFields, q.Search)
	matched = Filter(matched, schema.FilterValue, q.Filters)
	matched = Sort(matched, schema.Compare, q.Order)
	return Paginate(matched, q.Page, q.PageSize)
}

// Search keeps rows where the lower-cased term is a substring of any
// searchable field. An empty term keeps every row.
func Search[T any](rows []T, fields func(T) []string, term string) []T {
	if term == "" || fields == nil {
		return slices.Clone(rows)
	}

	needle := strings.ToLower(term)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		for _, field := range fields(row) {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func Filter[T any](rows []T, value func(T, string) string, filters map[string]string) []T {
	active := make(map[string]string, len(filters))
	for key, want := range filters {
		if want != "" {
			active[key] = want
		}
	}
	if len(active) == 0 || value == nil {
		return slices.Clone(rows)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		keep := true
		for key, want := range active {
			if value(row, key) != want {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// Sort orders rows by compare. Equal keys keep their input order in both
// directions.
func Sort[T any](rows []T, compare func(T, T) int, order Order) []T {
	out := slices.Clone(rows)
	if compare == nil {
		return out
	}
	if order == Desc {
		slices.SortStableFunc(out, func(a T, b T) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// TotalPages is ceil(count/size) with a minimum of one page.
func TotalPages(count int, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the 1-based page of rows. A page outside the valid range
// resets to 1.
func Paginate[T any](rows []T, page int, size int) Result[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := TotalPages(len(rows), size)
	if page < 1 || page > total {
		page = 1
	}

	start := (page - 1) * size
	end := min(start+size, len(rows))
	items := make([]T, 0, end-start)
	items = append(items, rows[start:end]...)

	return Result[T]{
		Items:      items,
		Total:      len(rows),
		Page:       page,
		PageSize:   size,
		TotalPages: total,
	}
}
