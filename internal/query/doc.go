// Package query implements search, filtering, sorting, pagination and
// similarity ranking over in-memory collections.
//
// Operations are independent and compose left to right in [Run]: search,
// filter, sort, paginate. None of them mutate their input slice.
//
// Record types describe themselves through three small interfaces:
// [Searchable] lists the text fields free-text search looks at, [Filterable]
// exposes field values for equality and membership predicates, and
// [Sortable] exposes comparable keys.
package query
