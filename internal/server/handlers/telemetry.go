package handlers

import (
	"context"

	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/server/reqctx"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// TelemetryHandler records page events sent by the site.
type TelemetryHandler struct {
	svc *storage.TelemetryService
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(svc *storage.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{svc: svc}
}

// Record stores one event. Anyone may send events.
func (h *TelemetryHandler) Record(ctx context.Context, actor entity.Actor, req *dto.CreateRequest[entity.Event]) (*entity.Event, error) {
	return h.svc.Record(ctx, storage.Visit{
		IP:        reqctx.ClientIP(ctx),
		UserAgent: reqctx.UserAgent(ctx),
		UserID:    actor.UserID,
	}, &req.Record)
}

// List queries recorded events. Editors and above only.
func (h *TelemetryHandler) List(ctx context.Context, actor entity.Actor, req *dto.ListRequest) (*query.Page[*entity.Event], error) {
	if err := storage.Authorize(actor, entity.RoleEditor); err != nil {
		return nil, err
	}
	items, err := h.svc.Collection().List()
	if err != nil {
		return nil, err
	}
	page, err := query.Run(items, req.Options())
	if err != nil {
		return nil, err
	}
	return &page, nil
}
