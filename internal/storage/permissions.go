package storage

import (
	"fmt"

	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Authorize fails with ErrPermissionDenied unless actor holds at least the
// required role.
func Authorize(actor entity.Actor, required entity.Role) error {
	if !actor.Role.AtLeast(required) {
		return fmt.Errorf("%s role required: %w", required, ErrPermissionDenied)
	}
	return nil
}

// RoleCheck is Authorize as a Create precondition, so a denied create fails
// inside the mutation.
func RoleCheck[T any](actor entity.Actor, required entity.Role) Check[T] {
	return func([]T, T) error {
		return Authorize(actor, required)
	}
}

// RoleGuard is Authorize as a Replace or Delete guard.
func RoleGuard[T any](actor entity.Actor, required entity.Role) Guard[T] {
	return func(T) error {
		return Authorize(actor, required)
	}
}
