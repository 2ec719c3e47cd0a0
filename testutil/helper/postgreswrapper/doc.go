// Package postgreswrapper provides test wrappers for running the library
// engine tests against different database adapters.
//
// The adapter is selected through the ADAPTER_TYPE environment variable
// (pgx.pool, sql.db or sqlx.db), defaulting to pgx.pool, so the same test
// suite exercises every supported adapter.
package postgreswrapper
