// Package jsondoc reads and rewrites JSON documents holding a single
// top-level array of records.
//
// # Semantics
//
// [Load] decodes the document. A document that does not exist yet is an empty
// collection, so a fresh data directory works without seeding.
//
// [Mutate] is a full read-modify-write cycle: load, apply a transform, then
// overwrite the document with the transform's result. The transform runs
// synchronously. If it returns an error nothing is written and the document
// is left byte-for-byte untouched.
//
// # Atomicity
//
// Writes go to a temporary file in the same directory which is then renamed
// over the document, so a concurrent reader sees either the previous or the
// next content, never a torn write.
//
// # Concurrency
//
// The package holds no locks. Two concurrent Mutate calls on the same path
// can lose an update; callers that need exclusion take a lock around Mutate
// (see storage.Locks).
package jsondoc
