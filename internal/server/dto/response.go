package dto

import (
	"github.com/lumina-fans/idolcms/internal/lyrics"
	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// OkResponse is a simple success response.
type OkResponse struct {
	Ok bool `json:"ok"`
}

// HealthResponse reports the server status.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Collections int    `json:"collections"`
	Push        bool   `json:"push"`
}

// ItemsResponse wraps an unpaginated list.
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// Items returns an ItemsResponse, never holding a nil slice.
func Items[T any](items []T) *ItemsResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ItemsResponse[T]{Items: items}
}

// SimilarResponse lists scored tracks, best first.
type SimilarResponse = ItemsResponse[query.Scored[*entity.Track]]

// LyricsResponse holds every lyrics version of a track. When the request
// carries a playback position, Lines is the timeline of the first synced
// version and Active the index of the line sung at that position, -1 before
// the first line.
type LyricsResponse struct {
	Lyrics []*entity.Lyrics `json:"lyrics"`
	Lines  []lyrics.Line    `json:"lines,omitempty"`
	Active *int             `json:"active,omitempty"`
}

// LoginResponse returns the account the password belongs to.
type LoginResponse struct {
	User entity.PublicUser `json:"user"`
}

// UserResponse is a single account without credentials.
type UserResponse = entity.PublicUser

// SubscribeResponse acknowledges a push subscription.
type SubscribeResponse struct {
	ID string `json:"id"`
}

// PushKeyResponse exposes the VAPID public key browsers subscribe with.
type PushKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// CollectionInfo describes one collection.
type CollectionInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CollectionsResponse lists the collections of the store.
type CollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
}
