package adapters

import "context"

// DBAdapter opens transactional sessions against the underlying database.
type DBAdapter interface {
	Begin(ctx context.Context) (DBTx, error)
}

// DBTx is one transactional session: parameterized query execution plus
// explicit commit and rollback. Every operation of the library engine runs
// on exactly one DBTx for its full duration.
//
// Rollback after a successful Commit is a no-op returning nil, so callers can
// defer it unconditionally.
type DBTx interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
