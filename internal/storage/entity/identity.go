package entity

import "github.com/lumina-fans/idolcms/internal/query"

// User is a site account.
type User struct {
	Base
	Username     string `json:"username" jsonschema:"required,minLength=1"`
	DisplayName  string `json:"displayName,omitempty"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"passwordHash" jsonschema:"required,minLength=1"`
	Role         Role   `json:"role" jsonschema:"required,enum=user,enum=editor,enum=admin"`
}

// PublicUser is a User without its credentials.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        Role   `json:"role"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Public strips the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// SearchText implements query.Searchable.
func (u *User) SearchText() []string {
	return []string{u.Username, u.DisplayName, u.Email}
}

// FilterValues implements query.Filterable.
func (u *User) FilterValues(field string) ([]string, bool) {
	if field == "role" {
		return one(string(u.Role)), true
	}
	return u.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (u *User) SortKey(field string) (query.Key, bool) {
	if field == "username" || field == "title" {
		return query.Text(u.Username), true
	}
	return u.Base.sortKey(field)
}

// PushSubscription is a browser's Web Push endpoint.
type PushSubscription struct {
	Base
	Endpoint string `json:"endpoint" jsonschema:"required,minLength=1"`
	P256dh   string `json:"p256dh" jsonschema:"required,minLength=1"`
	Auth     string `json:"auth" jsonschema:"required,minLength=1"`
	UserID   string `json:"userId,omitempty"`
}

// SearchText implements query.Searchable.
func (p *PushSubscription) SearchText() []string {
	return []string{p.Endpoint}
}

// FilterValues implements query.Filterable.
func (p *PushSubscription) FilterValues(field string) ([]string, bool) {
	if field == "user" {
		return one(p.UserID), true
	}
	return p.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (p *PushSubscription) SortKey(field string) (query.Key, bool) {
	return p.Base.sortKey(field)
}
