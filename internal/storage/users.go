package storage

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password, in runes.
const MinPasswordLength = 8

// NewUser is a registration request.
type NewUser struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Role        entity.Role
}

// UserService manages accounts and verifies passwords.
type UserService struct {
	coll *Collection[*entity.User]
	cost int
}

// NewUserService hashes passwords with the given bcrypt cost; 0 selects
// bcrypt.DefaultCost.
func NewUserService(coll *Collection[*entity.User], cost int) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{coll: coll, cost: cost}
}

// Collection returns the underlying collection.
func (s *UserService) Collection() *Collection[*entity.User] {
	return s.coll
}

// Register creates an account. Usernames are unique regardless of case.
// Roles above user are granted only by an administrator, except to the first
// account, which bootstraps the site.
func (s *UserService) Register(actor entity.Actor, req NewUser) (*entity.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, &FieldError{Field: "username", Reason: "is required"}
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return nil, &FieldError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	role := req.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !role.Valid() {
		return nil, &FieldError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &entity.User{
		Username:     username,
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	return s.coll.Create(u, func(existing []*entity.User, u *entity.User) error {
		for _, o := range existing {
			if strings.EqualFold(o.Username, u.Username) {
				return fmt.Errorf("username %q: %w", u.Username, ErrConflict)
			}
		}
		if u.Role != entity.RoleUser && len(existing) > 0 && !actor.IsAdmin() {
			return fmt.Errorf("granting role %s: %w", u.Role, ErrPermissionDenied)
		}
		return nil
	})
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(username, password string) (*entity.User, error) {
	u, err := s.coll.Find(func(u *entity.User) bool {
		return strings.EqualFold(u.Username, strings.TrimSpace(username))
	}, username)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SetRole changes a user's role. Only administrators may do so.
func (s *UserService) SetRole(actor entity.Actor, id string, role entity.Role) (*entity.User, error) {
	if !role.Valid() {
		return nil, &FieldError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}
	return s.coll.Update(id, func(u *entity.User) error {
		if err := Authorize(actor, entity.RoleAdmin); err != nil {
			return err
		}
		u.Role = role
		return nil
	})
}

// Delete removes an account. Users may delete themselves; administrators may
// delete anyone.
func (s *UserService) Delete(actor entity.Actor, id string) error {
	return s.coll.Delete(id, func(u *entity.User) error {
		if actor.IsAdmin() || (actor.UserID != "" && actor.UserID == u.ID) {
			return nil
		}
		return fmt.Errorf("deleting user %q: %w", id, ErrPermissionDenied)
	})
}

// List runs o over the accounts and returns the page without credentials.
// Administrators only.
func (s *UserService) List(actor entity.Actor, o query.Options) (query.Page[entity.PublicUser], error) {
	if err := Authorize(actor, entity.RoleAdmin); err != nil {
		return query.Page[entity.PublicUser]{}, err
	}
	users, err := s.coll.List()
	if err != nil {
		return query.Page[entity.PublicUser]{}, err
	}
	page, err := query.Run(users, o)
	if err != nil {
		return query.Page[entity.PublicUser]{}, err
	}
	out := query.Page[entity.PublicUser]{
		Items:      make([]entity.PublicUser, len(page.Items)),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
	for i, u := range page.Items {
		out.Items[i] = u.Public()
	}
	return out, nil
}
