// Package sqlite stores the chunks, manifest and (optionally) vectors of
// one index in a single SQLite file, index.db, inside the index directory.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation, so the
// index format does not depend on cgo.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Vectors
//
// When the sqlite vector backend is selected, embeddings are stored as
// little-endian float32 blobs and searched in memory after loading.
package sqlite
