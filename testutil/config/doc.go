// Package config provides PostgreSQL database configuration for library
// engine testing.
//
// This package contains factory functions for creating database connections
// using the supported PostgreSQL adapters (pgx.Pool, sql.DB, sqlx.DB) with a
// pre-configured test database DSN that can be overridden through the
// POSTGRES_TEST_DSN environment variable.
package config
