package handlers

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
)

// SchemaHandler describes the collections of the store.
type SchemaHandler struct {
	store *storage.Store
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(store *storage.Store) *SchemaHandler {
	return &SchemaHandler{store: store}
}

// List returns every collection with its record count. A malformed document
// fails the request.
func (h *SchemaHandler) List(ctx context.Context, req *dto.ListCollectionsRequest) (*dto.CollectionsResponse, error) {
	colls := h.store.Collections()
	resp := &dto.CollectionsResponse{Collections: make([]dto.CollectionInfo, 0, len(colls))}
	for _, c := range colls {
		n, err := c.Count()
		if err != nil {
			return nil, err
		}
		resp.Collections = append(resp.Collections, dto.CollectionInfo{Name: c.Name(), Count: n})
	}
	return resp, nil
}

// Get returns the JSON Schema records of a collection must satisfy.
func (h *SchemaHandler) Get(ctx context.Context, req *dto.SchemaRequest) (*jsonschema.Schema, error) {
	c, ok := h.store.Collection(req.Collection)
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", req.Collection, storage.ErrNotFound)
	}
	return c.JSONSchema(), nil
}
