package storage

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/lumina-fans/idolcms/internal/clock"
	"github.com/lumina-fans/idolcms/internal/jsondoc"
	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/rid"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Record is a storable record.
type Record interface {
	query.Record
	GetID() string
	Meta() *entity.Base
}

// Slugged is a record addressable by slug.
type Slugged interface {
	GetSlug() string
}

// Check is an extra precondition evaluated by Create against the current
// records, under the collection's lock.
type Check[T any] func(existing []T, rec T) error

// Guard vets an existing record before it is replaced or deleted.
type Guard[T any] func(existing T) error

// Env holds what collections of the same store share.
type Env struct {
	Dir   string
	Clock clock.Clock
	IDs   rid.Generator
	Locks *Locks
}

// Collection is a typed view of one JSON document.
type Collection[T Record] struct {
	name   string
	prefix string
	doc    *jsondoc.Doc[T]
	schema *Schema[T]
	env    *Env
}

// NewCollection binds <env.Dir>/<name>.json. New identifiers get prefix.
func NewCollection[T Record](env *Env, name, prefix string) *Collection[T] {
	return &Collection[T]{
		name:   name,
		prefix: prefix,
		doc:    jsondoc.Open[T](filepath.Join(env.Dir, name+".json")),
		schema: NewSchema[T](name),
		env:    env,
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Path returns the document's file path.
func (c *Collection[T]) Path() string { return c.doc.Path() }

// JSONSchema returns the record schema.
func (c *Collection[T]) JSONSchema() *jsonschema.Schema { return c.schema.JSON() }

// Schema returns the record validator.
func (c *Collection[T]) Schema() *Schema[T] { return c.schema }

// List returns every record in storage order.
func (c *Collection[T]) List() ([]T, error) {
	items, err := c.doc.Load()
	if err != nil {
		return nil, err
	}
	if err := c.checkAll(items); err != nil {
		return nil, err
	}
	return items, nil
}

// Count loads and validates the document, returning its record count.
func (c *Collection[T]) Count() (int, error) {
	items, err := c.List()
	return len(items), err
}

// Get returns the record with the given ID.
func (c *Collection[T]) Get(id string) (T, error) {
	return c.Find(func(item T) bool { return item.GetID() == id }, id)
}

// GetBySlug returns the record with the given slug. Collections without
// slugs never match.
func (c *Collection[T]) GetBySlug(slug string) (T, error) {
	return c.Find(func(item T) bool {
		s, ok := any(item).(Slugged)
		return ok && s.GetSlug() == slug
	}, slug)
}

// Find returns the first record satisfying match. key names the lookup in the
// not found error.
func (c *Collection[T]) Find(match func(T) bool, key string) (T, error) {
	var zero T
	items, err := c.List()
	if err != nil {
		return zero, err
	}
	i := slices.IndexFunc(items, match)
	if i < 0 {
		return zero, c.notFound(key)
	}
	return items[i], nil
}

// Create assigns an ID and timestamps to rec and appends it. The slug, when
// the record has one, must be unused.
func (c *Collection[T]) Create(rec T, checks ...Check[T]) (T, error) {
	var zero T
	now := entity.FormatTime(c.env.Clock.Now())
	m := rec.Meta()
	m.ID = c.env.IDs.New(c.prefix)
	m.CreatedAt = now
	m.UpdatedAt = now
	_, err := c.Mutate(func(items []T) ([]T, error) {
		for _, item := range items {
			if item.GetID() == m.ID {
				return nil, fmt.Errorf("%s %q: id %w", c.name, m.ID, ErrConflict)
			}
		}
		if s, ok := any(rec).(Slugged); ok {
			for _, item := range items {
				if o, ok := any(item).(Slugged); ok && o.GetSlug() == s.GetSlug() {
					return nil, fmt.Errorf("%s: slug %q: %w", c.name, s.GetSlug(), ErrConflict)
				}
			}
		}
		for _, check := range checks {
			if err := check(items, rec); err != nil {
				return nil, err
			}
		}
		return append(items, rec), nil
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Update applies fn to the record with the given ID. The ID and creation time
// cannot be changed; the update time is refreshed.
func (c *Collection[T]) Update(id string, fn func(T) error) (T, error) {
	var updated T
	_, err := c.Mutate(func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, func(item T) bool { return item.GetID() == id })
		if i < 0 {
			return nil, c.notFound(id)
		}
		orig := *items[i].Meta()
		if err := fn(items[i]); err != nil {
			return nil, err
		}
		c.touch(items[i], orig)
		updated = items[i]
		return items, nil
	})
	return updated, err
}

// Replace swaps the record with the given ID for rec, keeping the stored ID
// and creation time. Guards see the stored record first.
func (c *Collection[T]) Replace(id string, rec T, guards ...Guard[T]) (T, error) {
	var zero T
	_, err := c.Mutate(func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, func(item T) bool { return item.GetID() == id })
		if i < 0 {
			return nil, c.notFound(id)
		}
		for _, g := range guards {
			if err := g(items[i]); err != nil {
				return nil, err
			}
		}
		orig := *items[i].Meta()
		items[i] = rec
		c.touch(rec, orig)
		return items, nil
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Delete removes the record with the given ID.
func (c *Collection[T]) Delete(id string, guards ...Guard[T]) error {
	_, err := c.Mutate(func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, func(item T) bool { return item.GetID() == id })
		if i < 0 {
			return nil, c.notFound(id)
		}
		for _, g := range guards {
			if err := g(items[i]); err != nil {
				return nil, err
			}
		}
		return slices.Delete(items, i, i+1), nil
	})
	return err
}

// Mutate runs a read-modify-write cycle under the collection's lock. The
// records are validated before transform sees them and again before they are
// written.
func (c *Collection[T]) Mutate(transform func([]T) ([]T, error)) ([]T, error) {
	unlock := c.env.Locks.Lock(c.doc.Path())
	defer unlock()
	return c.doc.Mutate(func(items []T) ([]T, error) {
		if err := c.checkAll(items); err != nil {
			return nil, err
		}
		next, err := transform(items)
		if err != nil {
			return nil, err
		}
		for _, item := range next {
			if err := c.schema.Validate(item); err != nil {
				return nil, fmt.Errorf("%s %s: %w", c.name, describe(item), err)
			}
		}
		return next, nil
	})
}

func (c *Collection[T]) touch(rec T, orig entity.Base) {
	m := rec.Meta()
	m.ID = orig.ID
	m.CreatedAt = orig.CreatedAt
	m.UpdatedAt = entity.FormatTime(c.env.Clock.Now())
}

func (c *Collection[T]) checkAll(items []T) error {
	for i, item := range items {
		if err := c.schema.Validate(item); err != nil {
			return &jsondoc.MalformedError{Path: c.doc.Path(), Index: i, Err: err}
		}
	}
	return nil
}

func (c *Collection[T]) notFound(key string) error {
	return fmt.Errorf("%s %q: %w", c.name, key, ErrNotFound)
}

func describe(item Record) string {
	if id := item.GetID(); id != "" {
		return strconv.Quote(id)
	}
	return "record"
}
