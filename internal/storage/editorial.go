package storage

import "github.com/lumina-fans/idolcms/internal/storage/entity"

// EditorialService is plain CRUD over a collection whose writes are reserved
// to editors and administrators.
type EditorialService[T Record] struct {
	coll *Collection[T]
}

// NewEditorialService serves coll.
func NewEditorialService[T Record](coll *Collection[T]) *EditorialService[T] {
	return &EditorialService[T]{coll: coll}
}

// Collection returns the underlying collection.
func (s *EditorialService[T]) Collection() *Collection[T] {
	return s.coll
}

// Create stores rec.
func (s *EditorialService[T]) Create(actor entity.Actor, rec T) (T, error) {
	return s.coll.Create(rec, RoleCheck[T](actor, entity.RoleEditor))
}

// Replace overwrites the record with the given ID.
func (s *EditorialService[T]) Replace(actor entity.Actor, id string, rec T) (T, error) {
	return s.coll.Replace(id, rec, RoleGuard[T](actor, entity.RoleEditor))
}

// Delete removes the record with the given ID.
func (s *EditorialService[T]) Delete(actor entity.Actor, id string) error {
	return s.coll.Delete(id, RoleGuard[T](actor, entity.RoleEditor))
}
