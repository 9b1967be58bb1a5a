package handlers

import (
	"context"

	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// UserHandler handles account requests. Password hashes never leave it.
type UserHandler struct {
	svc *storage.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *storage.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register creates an account.
func (h *UserHandler) Register(ctx context.Context, actor entity.Actor, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	u, err := h.svc.Register(actor, storage.NewUser{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        req.Role,
	})
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}

// Login checks a password and returns the account. The client keeps the
// returned user; there is no session.
func (h *UserHandler) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{User: u.Public()}, nil
}

// List lists accounts. Administrators only.
func (h *UserHandler) List(ctx context.Context, actor entity.Actor, req *dto.ListRequest) (*query.Page[entity.PublicUser], error) {
	page, err := h.svc.List(actor, req.Options())
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one account.
func (h *UserHandler) Get(ctx context.Context, req *dto.IDRequest) (*dto.UserResponse, error) {
	u, err := h.svc.Collection().Get(req.ID)
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}

// SetRole changes an account's role. Administrators only.
func (h *UserHandler) SetRole(ctx context.Context, actor entity.Actor, req *dto.SetRoleRequest) (*dto.UserResponse, error) {
	u, err := h.svc.SetRole(actor, req.ID, req.Role)
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}

// Delete removes an account.
func (h *UserHandler) Delete(ctx context.Context, actor entity.Actor, req *dto.IDRequest) (*dto.OkResponse, error) {
	if err := h.svc.Delete(actor, req.ID); err != nil {
		return nil, err
	}
	return &dto.OkResponse{Ok: true}, nil
}
