package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownField is returned when sorting by a field the record type does
// not expose.
var ErrUnknownField = errors.New("unknown field")

// Searchable records list the text fields free-text search matches against.
type Searchable interface {
	SearchText() []string
}

// Filterable records expose field values to filter predicates.
//
// A scalar field returns a single value, a list field every element. Derived
// fields like "year" return the extracted value. ok is false for fields the
// type does not know, which never match.
type Filterable interface {
	FilterValues(field string) (values []string, ok bool)
}

// Sortable records expose sort keys. ok is false for unknown fields.
type Sortable interface {
	SortKey(field string) (Key, bool)
}

// Record is what Run needs.
type Record interface {
	Searchable
	Filterable
	Sortable
}

// Order is a sort direction.
type Order int

const (
	// Asc sorts smallest first.
	Asc Order = iota
	// Desc sorts largest first.
	Desc
)

// ParseOrder maps "asc" and "desc" (any case) to an Order. Empty is Asc.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("invalid sort order %q", s)
	}
}

func (o Order) String() string {
	if o == Desc {
		return "desc"
	}
	return "asc"
}

// Search returns the records where at least one search field contains q,
// ignoring case, in their original order. An empty q returns items as is.
func Search[T Searchable](items []T, q string) []T {
	if q == "" {
		return items
	}
	needle := strings.ToLower(q)
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range item.SearchText() {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Criteria maps field names to the expected value. Empty values are
// ignored.
type Criteria map[string]string

// Filter returns the records matching every non-empty criterion, in their
// original order. A list field matches when it contains the value, a scalar
// when it equals it.
func Filter[T Filterable](items []T, c Criteria) []T {
	active := make(Criteria, len(c))
	for field, want := range c {
		if want != "" {
			active[field] = want
		}
	}
	if len(active) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, active) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item Filterable, c Criteria) bool {
	for field, want := range c {
		values, ok := item.FilterValues(field)
		if !ok || !slices.Contains(values, want) {
			return false
		}
	}
	return true
}

// Sort returns a copy of items ordered by field. Records with equal keys
// keep their relative order in both directions.
func Sort[T Sortable](items []T, field string, order Order) ([]T, error) {
	keys := make([]Key, len(items))
	for i, item := range items {
		k, ok := item.SortKey(field)
		if !ok {
			return nil, fmt.Errorf("sort by %q: %w", field, ErrUnknownField)
		}
		keys[i] = k
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if order == Desc {
			return CompareKeys(keys[b], keys[a])
		}
		return CompareKeys(keys[a], keys[b])
	})
	out := make([]T, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out, nil
}

// Page is one window over a result set.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Paginate returns the window [(page-1)*pageSize, page*pageSize). Pages
// count from 1; a page below 1 is treated as 1 and a page past the end is
// empty. A pageSize of 0 or less disables pagination and returns every
// record as page 1.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		p := Page[T]{Items: items, Total: total, Page: 1, PageSize: total}
		if total > 0 {
			p.TotalPages = 1
		}
		if p.Items == nil {
			p.Items = []T{}
		}
		return p
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	p := Page[T]{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
	// page-1 < pages keeps (page-1)*pageSize below total.
	if page-1 >= pages {
		p.Items = []T{}
		return p
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, total-start)
	p.Items = items[start:end:end]
	return p
}

// Options drives Run.
type Options struct {
	Query    string
	Filters  Criteria
	SortBy   string
	Order    Order
	Page     int
	PageSize int
}

// Run applies search, filter, sort and pagination in that order. Sorting is
// skipped when SortBy is empty.
func Run[T Record](items []T, o Options) (Page[T], error) {
	items = Search(items, o.Query)
	items = Filter(items, o.Filters)
	if o.SortBy != "" {
		var err error
		if items, err = Sort(items, o.SortBy, o.Order); err != nil {
			return Page[T]{}, err
		}
	}
	return Paginate(items, o.Page, o.PageSize), nil
}
