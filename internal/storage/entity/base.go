package entity

import (
	"time"

	"github.com/lumina-fans/idolcms/internal/query"
)

// TimeLayout is the timestamp format stored in documents: ISO-8601, UTC,
// millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Base holds the fields every record carries.
type Base struct {
	ID        string `json:"id" jsonschema:"required,minLength=1"`
	CreatedAt string `json:"createdAt" jsonschema:"required,minLength=1"`
	UpdatedAt string `json:"updatedAt" jsonschema:"required,minLength=1"`
}

// GetID returns the record ID.
func (b *Base) GetID() string { return b.ID }

// Meta gives write access to the common fields.
func (b *Base) Meta() *Base { return b }

// filterValues serves the fields every record has.
func (b *Base) filterValues(field string) ([]string, bool) {
	switch field {
	case "id":
		return []string{b.ID}, true
	case "createdYear":
		return []string{query.Year(b.CreatedAt)}, true
	}
	return nil, false
}

// sortKey serves the fields every record has.
func (b *Base) sortKey(field string) (query.Key, bool) {
	switch field {
	case "createdAt":
		return query.Date(b.CreatedAt), true
	case "updatedAt":
		return query.Date(b.UpdatedAt), true
	}
	return query.Key{}, false
}

// Role is a user's privilege level.
type Role string

// Roles, weakest first.
const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleWeights = map[Role]int{
	RoleUser:   1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleWeights[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	return roleWeights[r] >= roleWeights[required]
}

// Actor is the caller of a mutation.
//
// Identity is taken from the client as is; there is no session.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func one(s string) []string {
	return []string{s}
}
