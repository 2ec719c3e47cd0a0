package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine/internal/adapters"
)

const (
	defaultBookTableName   = "book"
	defaultCardTableName   = "card"
	defaultBorrowTableName = "borrow"

	colBookID      = "book_id"
	colCategory    = "category"
	colTitle       = "title"
	colPress       = "press"
	colPublishYear = "publish_year"
	colAuthor      = "author"
	colPrice       = "price"
	colStock       = "stock"
	colCardID      = "card_id"
	colName        = "name"
	colDepartment  = "department"
	colType        = "type"
	colBorrowTime  = "borrow_time"
	colReturnTime  = "return_time"

	dialectPostgres = "postgres"

	opStoreBook         = "store_book"
	opStoreBooks        = "store_books"
	opIncBookStock      = "inc_book_stock"
	opModifyBookInfo    = "modify_book_info"
	opRemoveBook        = "remove_book"
	opQueryBooks        = "query_books"
	opRegisterCard      = "register_card"
	opRemoveCard        = "remove_card"
	opShowCards         = "show_cards"
	opBorrowBook        = "borrow_book"
	opReturnBook        = "return_book"
	opShowBorrowHistory = "show_borrow_history"
	opResetSchema       = "reset_schema"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// Library is the transactional business-rule layer over the three catalog
// tables. Every public operation opens exactly one transaction against the
// configured database adapter, performs all reads and writes on it, and
// either commits (success) or rolls back (any business-rule violation or
// storage failure).
//
// Nested stock adjustments performed by circulation operations run on the
// outer operation's transaction, never on a second one.
type Library struct {
	db               adapters.DBAdapter
	tablePrefix      string
	logger           librarycore.Logger
	contextualLogger librarycore.ContextualLogger
	metricsCollector librarycore.MetricsCollector
	tracingCollector librarycore.TracingCollector
}

// NewLibraryFromPGXPool creates a new Library using a pgx pool with optional configuration.
func NewLibraryFromPGXPool(db *pgxpool.Pool, options ...Option) (Library, error) {
	if db == nil {
		return Library{}, librarycore.ErrNilDatabaseConnection
	}

	return applyOptions(Library{db: adapters.NewPGXAdapter(db)}, options...)
}

// NewLibraryFromSQLDB creates a new Library using a sql.DB with optional configuration.
func NewLibraryFromSQLDB(db *sql.DB, options ...Option) (Library, error) {
	if db == nil {
		return Library{}, librarycore.ErrNilDatabaseConnection
	}

	return applyOptions(Library{db: adapters.NewSQLAdapter(db)}, options...)
}

// NewLibraryFromSQLX creates a new Library using a sqlx.DB with optional configuration.
func NewLibraryFromSQLX(db *sqlx.DB, options ...Option) (Library, error) {
	if db == nil {
		return Library{}, librarycore.ErrNilDatabaseConnection
	}

	return applyOptions(Library{db: adapters.NewSQLXAdapter(db)}, options...)
}

func applyOptions(library Library, options ...Option) (Library, error) {
	for _, option := range options {
		if err := option(&library); err != nil {
			return Library{}, err
		}
	}

	return library, nil
}

func (l Library) bookTable() string {
	return l.tablePrefix + defaultBookTableName
}

func (l Library) cardTable() string {
	return l.tablePrefix + defaultCardTableName
}

func (l Library) borrowTable() string {
	return l.tablePrefix + defaultBorrowTableName
}

// builder returns the goqu dialect builder all statements are built with.
func (l Library) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

/***** transaction lifecycle *****/

// beginTx opens the single transaction every public operation runs on.
func (l Library) beginTx(ctx context.Context) (adapters.DBTx, error) {
	tx, beginErr := l.db.Begin(ctx)
	if beginErr != nil {
		l.logError(ctx, logMsgBeginTxFailed, beginErr)
		return nil, errors.Join(librarycore.ErrCollaboratorFailure, beginErr)
	}

	return tx, nil
}

// rollbackQuietly is deferred on every transaction; it is a no-op once the
// transaction was committed.
func (l Library) rollbackQuietly(ctx context.Context, tx adapters.DBTx) {
	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		l.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
	}
}

// commitTx commits and maps failures to the collaborator error.
func (l Library) commitTx(ctx context.Context, tx adapters.DBTx) error {
	if commitErr := tx.Commit(ctx); commitErr != nil {
		l.logError(ctx, logMsgCommitTxFailed, commitErr)
		return errors.Join(librarycore.ErrCollaboratorFailure, commitErr)
	}

	return nil
}

/***** statement execution *****/

// queryTx executes a parameterized query on the transaction with debug-level
// SQL logging. Storage errors come back wrapped as collaborator failures.
func (l Library) queryTx(ctx context.Context, tx adapters.DBTx, query sqlQueryString, args []any) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := tx.Query(ctx, query, args...)
	l.logQueryWithDuration(ctx, query, time.Since(start))

	if queryErr != nil {
		l.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, query)
		return nil, errors.Join(librarycore.ErrCollaboratorFailure, queryErr)
	}

	return rows, nil
}

// execTx executes a parameterized statement on the transaction with
// debug-level SQL logging and returns the affected-row count.
func (l Library) execTx(ctx context.Context, tx adapters.DBTx, query sqlQueryString, args []any) (rowsAffectedInt64, error) {
	start := time.Now()
	result, execErr := tx.Exec(ctx, query, args...)
	l.logQueryWithDuration(ctx, query, time.Since(start))

	if execErr != nil {
		l.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, query)
		return 0, errors.Join(librarycore.ErrCollaboratorFailure, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		l.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(librarycore.ErrCollaboratorFailure, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (l Library) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		l.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// buildSQL converts a goqu dataset into a parameterized statement; build
// failures abort the operation like any other storage failure.
type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func (l Library) buildSQL(ctx context.Context, stmt sqlBuilder) (sqlQueryString, []any, error) {
	query, args, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		l.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return "", nil, errors.Join(librarycore.ErrCollaboratorFailure, toSQLErr)
	}

	return query, args, nil
}

/***** row helpers *****/

// existsTx builds and runs the given select on the transaction and reports
// whether it returned at least one row.
func (l Library) existsTx(ctx context.Context, tx adapters.DBTx, stmt sqlBuilder) (bool, error) {
	query, args, buildErr := l.buildSQL(ctx, stmt)
	if buildErr != nil {
		return false, buildErr
	}

	rows, queryErr := l.queryTx(ctx, tx, query, args)
	if queryErr != nil {
		return false, queryErr
	}
	defer l.closeRows(ctx, rows)

	found := rows.Next()

	if rowsErr := rows.Err(); rowsErr != nil {
		l.logError(ctx, logMsgScanRowFailed, rowsErr)
		return false, errors.Join(librarycore.ErrCollaboratorFailure, rowsErr)
	}

	return found, nil
}

// insertReturningID builds and runs an INSERT ... RETURNING statement on the
// transaction and scans back the generated key.
func (l Library) insertReturningID(ctx context.Context, tx adapters.DBTx, stmt sqlBuilder) (int64, error) {
	query, args, buildErr := l.buildSQL(ctx, stmt)
	if buildErr != nil {
		return 0, buildErr
	}

	rows, queryErr := l.queryTx(ctx, tx, query, args)
	if queryErr != nil {
		return 0, queryErr
	}
	defer l.closeRows(ctx, rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			l.logError(ctx, logMsgScanRowFailed, rowsErr)
			return 0, errors.Join(librarycore.ErrCollaboratorFailure, rowsErr)
		}

		return 0, errors.Join(librarycore.ErrCollaboratorFailure, errNoGeneratedKey)
	}

	var id int64
	if scanErr := rows.Scan(&id); scanErr != nil {
		l.logError(ctx, logMsgScanRowFailed, scanErr)
		return 0, errors.Join(librarycore.ErrCollaboratorFailure, scanErr)
	}

	return id, nil
}

var errNoGeneratedKey = errors.New("insert did not return a generated key")
var errUnexpectedRowCount = errors.New("statement affected an unexpected number of rows")
