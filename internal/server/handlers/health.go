package handlers

import (
	"context"

	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
)

// HealthHandler reports liveness and what the server is serving.
type HealthHandler struct {
	version     string
	collections int
	push        bool
}

// NewHealthHandler describes store. push tells whether Web Push is
// configured.
func NewHealthHandler(version string, store *storage.Store, push bool) *HealthHandler {
	return &HealthHandler{version: version, collections: len(store.Collections()), push: push}
}

// Health handles health check requests.
func (h *HealthHandler) Health(ctx context.Context, req *dto.HealthRequest) (*dto.HealthResponse, error) {
	return &dto.HealthResponse{
		Status:      "ok",
		Version:     h.version,
		Collections: h.collections,
		Push:        h.push,
	}, nil
}
