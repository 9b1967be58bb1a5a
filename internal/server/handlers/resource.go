// Generic handlers for the collections exposed as REST resources.

package handlers

import (
	"context"

	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Mutator performs the writes of a resource on behalf of an actor.
type Mutator[P any] interface {
	Create(actor entity.Actor, rec P) (P, error)
	Replace(actor entity.Actor, id string, rec P) (P, error)
	Delete(actor entity.Actor, id string) error
}

// Resource serves list, get, create, replace and delete for one collection.
// E is the record struct and P its pointer, which the collection stores.
type Resource[E any, P interface {
	*E
	storage.Record
}] struct {
	coll *storage.Collection[P]
	mut  Mutator[P]
}

// NewResource serves coll, writing through mut.
func NewResource[E any, P interface {
	*E
	storage.Record
}](coll *storage.Collection[P], mut Mutator[P]) *Resource[E, P] {
	return &Resource[E, P]{coll: coll, mut: mut}
}

// List searches, filters, sorts and paginates the collection.
func (h *Resource[E, P]) List(ctx context.Context, req *dto.ListRequest) (*query.Page[P], error) {
	items, err := h.coll.List()
	if err != nil {
		return nil, err
	}
	page, err := query.Run(items, req.Options())
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one record by ID.
func (h *Resource[E, P]) Get(ctx context.Context, req *dto.IDRequest) (*E, error) {
	rec, err := h.coll.Get(req.ID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetBySlug returns one record by slug.
func (h *Resource[E, P]) GetBySlug(ctx context.Context, req *dto.SlugRequest) (*E, error) {
	rec, err := h.coll.GetBySlug(req.Slug)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create stores the record in the request body.
func (h *Resource[E, P]) Create(ctx context.Context, actor entity.Actor, req *dto.CreateRequest[E]) (*E, error) {
	rec, err := h.mut.Create(actor, P(&req.Record))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Replace overwrites a record with the request body.
func (h *Resource[E, P]) Replace(ctx context.Context, actor entity.Actor, req *dto.ReplaceRequest[E]) (*E, error) {
	rec, err := h.mut.Replace(actor, req.ID, P(&req.Record))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record.
func (h *Resource[E, P]) Delete(ctx context.Context, actor entity.Actor, req *dto.IDRequest) (*dto.OkResponse, error) {
	if err := h.mut.Delete(actor, req.ID); err != nil {
		return nil, err
	}
	return &dto.OkResponse{Ok: true}, nil
}
