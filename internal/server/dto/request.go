package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// --- Common ---

// HealthRequest is a request to check the server.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// IDRequest addresses one record.
type IDRequest struct {
	ID string `path:"id"`
}

// Validate validates the ID.
func (r *IDRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// SlugRequest addresses one record by slug.
type SlugRequest struct {
	Slug string `path:"slug"`
}

// Validate validates the slug.
func (r *SlugRequest) Validate() error {
	if r.Slug == "" {
		return MissingField("slug")
	}
	return nil
}

// ListRequest drives a collection listing.
//
// Query parameters other than the named ones are filters: ?category=dance
// keeps the records whose category is dance.
type ListRequest struct {
	Query    string            `query:"q"`
	Sort     string            `query:"sort"`
	Order    string            `query:"order"`
	Page     int               `query:"page"`
	PageSize int               `query:"pageSize"`
	Filters  map[string]string `query:"*"`
}

// Validate validates the list request fields.
func (r *ListRequest) Validate() error {
	if _, err := query.ParseOrder(r.Order); err != nil {
		return InvalidField("order", "must be asc or desc")
	}
	if r.Page < 0 {
		return InvalidField("page", "must not be negative")
	}
	if r.PageSize < 0 {
		return InvalidField("pageSize", "must not be negative")
	}
	return nil
}

// Options converts the request for query.Run.
func (r *ListRequest) Options() query.Options {
	order, _ := query.ParseOrder(r.Order)
	return query.Options{
		Query:    r.Query,
		Filters:  query.Criteria(r.Filters),
		SortBy:   r.Sort,
		Order:    order,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
}

// CreateRequest carries a new record as the whole request body. Identity and
// timestamps sent by the client are overwritten.
type CreateRequest[E any] struct {
	Record E
}

// Validate defers to the collection schema, checked on write.
func (r *CreateRequest[E]) Validate() error {
	return nil
}

// UnmarshalJSON decodes the body into Record, rejecting unknown fields.
func (r *CreateRequest[E]) UnmarshalJSON(b []byte) error {
	return decodeStrict(b, &r.Record)
}

// ReplaceRequest carries the new version of a record.
type ReplaceRequest[E any] struct {
	ID     string `path:"id"`
	Record E
}

// Validate validates the ID.
func (r *ReplaceRequest[E]) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// UnmarshalJSON decodes the body into Record, rejecting unknown fields.
func (r *ReplaceRequest[E]) UnmarshalJSON(b []byte) error {
	return decodeStrict(b, &r.Record)
}

func decodeStrict(b []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()
	return d.Decode(v)
}

// --- Catalog ---

// SimilarRequest asks for the tracks closest to one track.
type SimilarRequest struct {
	ID string `path:"id"`
	N  int    `query:"n"`
}

// Validate validates the similar request fields.
func (r *SimilarRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	if r.N < 0 {
		return InvalidField("n", "must not be negative")
	}
	return nil
}

// LyricsRequest asks for a track's lyrics, optionally positioned on the line
// sung at a playback time.
type LyricsRequest struct {
	ID       string `path:"id"`
	Language string `query:"lang"`
	At       string `query:"at"`
}

// Validate validates the lyrics request fields.
func (r *LyricsRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	if _, _, err := r.Position(); err != nil {
		return InvalidField("at", "must be a non-negative number of milliseconds")
	}
	return nil
}

// Position returns the playback position in milliseconds and whether one was
// given.
func (r *LyricsRequest) Position() (int64, bool, error) {
	if r.At == "" {
		return 0, false, nil
	}
	ms, err := strconv.ParseInt(r.At, 10, 64)
	if err == nil && ms < 0 {
		err = strconv.ErrRange
	}
	if err != nil {
		return 0, false, err
	}
	return ms, true, nil
}

// --- Users ---

// LoginRequest is a request to check a user's password.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the login request fields.
func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return MissingField("username")
	}
	if r.Password == "" {
		return MissingField("password")
	}
	return nil
}

// RegisterRequest is a request to create an account.
type RegisterRequest struct {
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	DisplayName string      `json:"displayName,omitempty"`
	Email       string      `json:"email,omitempty"`
	Role        entity.Role `json:"role,omitempty"`
}

// Validate validates the register request fields.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return MissingField("username")
	}
	if r.Password == "" {
		return MissingField("password")
	}
	if r.Role != "" && !r.Role.Valid() {
		return InvalidField("role", "must be user, editor or admin")
	}
	return nil
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	ID   string      `path:"id"`
	Role entity.Role `json:"role"`
}

// Validate validates the role change fields.
func (r *SetRoleRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	if r.Role == "" {
		return MissingField("role")
	}
	if !r.Role.Valid() {
		return InvalidField("role", "must be user, editor or admin")
	}
	return nil
}

// --- Push ---

// PushKeys are a subscription's encryption keys, as browsers serialize them.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// SubscribeRequest is the JSON form of a browser PushSubscription.
type SubscribeRequest struct {
	Endpoint       string   `json:"endpoint"`
	ExpirationTime *int64   `json:"expirationTime,omitempty"`
	Keys           PushKeys `json:"keys"`
}

// Validate validates the subscription fields.
func (r *SubscribeRequest) Validate() error {
	if r.Endpoint == "" {
		return MissingField("endpoint")
	}
	if !strings.HasPrefix(r.Endpoint, "https://") {
		return InvalidField("endpoint", "must be an https URL")
	}
	if r.Keys.P256dh == "" {
		return MissingField("keys.p256dh")
	}
	if r.Keys.Auth == "" {
		return MissingField("keys.auth")
	}
	return nil
}

// UnsubscribeRequest removes a subscription by endpoint.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Validate validates the endpoint.
func (r *UnsubscribeRequest) Validate() error {
	if r.Endpoint == "" {
		return MissingField("endpoint")
	}
	return nil
}

// --- Schemas ---

// SchemaRequest asks for a collection's JSON Schema.
type SchemaRequest struct {
	Collection string `path:"collection"`
}

// Validate validates the collection name.
func (r *SchemaRequest) Validate() error {
	if r.Collection == "" {
		return MissingField("collection")
	}
	return nil
}

// PushKeyRequest asks for the VAPID public key.
type PushKeyRequest struct{}

// Validate is a no-op for PushKeyRequest.
func (r *PushKeyRequest) Validate() error {
	return nil
}

// ListCollectionsRequest asks for every collection with its size.
type ListCollectionsRequest struct{}

// Validate is a no-op for ListCollectionsRequest.
func (r *ListCollectionsRequest) Validate() error {
	return nil
}
