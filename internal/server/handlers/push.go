package handlers

import (
	"context"

	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// PushHandler manages Web Push subscriptions.
type PushHandler struct {
	svc *storage.PushService
	cfg *Config
}

// NewPushHandler creates a new push handler.
func NewPushHandler(svc *storage.PushService, cfg *Config) *PushHandler {
	return &PushHandler{svc: svc, cfg: cfg}
}

// Key returns the VAPID public key browsers need to subscribe.
func (h *PushHandler) Key(ctx context.Context, req *dto.PushKeyRequest) (*dto.PushKeyResponse, error) {
	return &dto.PushKeyResponse{PublicKey: h.cfg.VAPIDPublicKey}, nil
}

// Subscribe registers a browser. The caller, if known, is recorded.
func (h *PushHandler) Subscribe(ctx context.Context, actor entity.Actor, req *dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	sub, err := h.svc.Subscribe(&entity.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
		UserID:   actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &dto.SubscribeResponse{ID: sub.ID}, nil
}

// Unsubscribe forgets a browser.
func (h *PushHandler) Unsubscribe(ctx context.Context, req *dto.UnsubscribeRequest) (*dto.OkResponse, error) {
	if err := h.svc.Unsubscribe(req.Endpoint); err != nil {
		return nil, err
	}
	return &dto.OkResponse{Ok: true}, nil
}
