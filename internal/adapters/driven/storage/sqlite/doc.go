// Package sqlite provides SQLite-backed implementations of the vector store
// and session store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Both stores share a single database connection:
//
//   - VectorStore: chunks with float32 embeddings, scanned with cosine similarity
//   - SessionStore: dialog sessions as JSON, expired after an idle TTL
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.zenji/zenji.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
