// Package adapters provides database adapter implementations for the
// PostgreSQL library engine.
//
// This package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgx.Pool, sql.DB, and sqlx.DB. All adapters expose the
// same transactional session through a common DBAdapter interface: one
// transaction per session with parameterized query/execute and explicit
// commit/rollback, where rollback is always safe to call, even after a commit
// or a prior partial failure.
package adapters
