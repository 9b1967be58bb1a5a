// Package entity defines the records stored in the site's JSON documents.
//
// Every record embeds [Base] (identifier and timestamps). Records addressed
// by URL also carry a slug. Relations between records are plain ID lists;
// nothing here checks that referenced records exist.
//
// Struct tags drive two things: the JSON encoding on disk and, through the
// jsonschema tags, the schema records are validated against when read and
// written.
//
// Each record type implements query.Searchable, query.Filterable and
// query.Sortable so list endpoints can search, filter and sort it.
package entity
