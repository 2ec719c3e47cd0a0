// Package postgresengine provides the PostgreSQL implementation of the
// library lending core.
//
// This package implements catalog, membership and circulation management on
// top of PostgreSQL, supporting multiple database adapters (pgx, sql.DB,
// sqlx) with one transaction per operation and row-level locking for stock
// updates.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Transactional operations with rollback on any business rule violation
//   - Row-locked stock adjustments shared by catalog and circulation
//   - Configurable table prefix and dual-logger support
//   - Optional metrics and tracing through dependency-free ports
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	library, _ := postgresengine.NewLibraryFromPGXPool(db)
//
//	// With operational logging (production-safe)
//	library, _ := postgresengine.NewLibraryFromPGXPool(
//		db,
//		postgresengine.WithTablePrefix("lending_"),
//		postgresengine.WithContextualLogger(opsLogger),
//	)
//
//	err := library.StoreBook(ctx, &book)
//	err = library.BorrowBook(ctx, cardID, book.ID, borrowTime)
//	books, _ := library.QueryBooks(ctx, librarycore.NewBookQueryConditions())
package postgresengine
