// Package storage provides typed collections over the site's JSON documents
// and the domain services built on them.
//
// # Collections
//
// A [Collection] wraps one document (see package jsondoc) with:
//   - identifier and timestamp assignment on create,
//   - slug uniqueness for slugged records, checked at creation only,
//   - schema validation on read and on write (see [Schema]),
//   - a per-document lock around every read-modify-write (see [Locks]).
//
// Reads do not take the lock; the document is replaced atomically so a
// reader sees a consistent snapshot.
//
// # Errors
//
// Domain failures wrap the sentinels [ErrNotFound], [ErrConflict],
// [ErrPermissionDenied] and [ErrInvalid]. They are raised from inside the
// mutation, so a failed operation never writes anything. Undecodable or
// schema-violating documents surface as jsondoc.ErrMalformed.
package storage
