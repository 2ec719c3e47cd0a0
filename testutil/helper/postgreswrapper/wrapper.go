package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine"
	"github.com/quercus-labs/library-lending-core-go/testutil/config"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different adapter types
type Wrapper interface {
	GetLibrary() postgresengine.Library
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool    *pgxpool.Pool
	library postgresengine.Library
}

func (w *PGXPoolWrapper) GetLibrary() postgresengine.Library {
	return w.library
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db      *sql.DB
	library postgresengine.Library
}

func (w *SQLDBWrapper) GetLibrary() postgresengine.Library {
	return w.library
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db      *sqlx.DB
	library postgresengine.Library
}

func (w *SQLXWrapper) GetLibrary() postgresengine.Library {
	return w.library
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable, defaulting to pgx.pool.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolTestConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		library, err := postgresengine.NewLibraryFromPGXPool(connPool, options...)
		assert.NoError(t, err, "error creating library in test setup")

		return &PGXPoolWrapper{pool: connPool, library: library}

	case typeSQLDB:
		db := config.PostgresSQLDBTestConfig()

		library, err := postgresengine.NewLibraryFromSQLDB(db, options...)
		assert.NoError(t, err, "error creating library in test setup")

		return &SQLDBWrapper{db: db, library: library}

	case typeSQLXDB:
		db := config.PostgresSQLXTestConfig()

		library, err := postgresengine.NewLibraryFromSQLX(db, options...)
		assert.NoError(t, err, "error creating library in test setup")

		return &SQLXWrapper{db: db, library: library}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// CountOpenLoans counts the open loans of one card directly in the database,
// bypassing the library engine.
func CountOpenLoans(t testing.TB, wrapper Wrapper, cardID int64) int {
	const query = `SELECT count(*) FROM borrow WHERE card_id = $1 AND return_time = 0`

	var count int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), query, cardID)
		err = row.Scan(&count)

	case *SQLDBWrapper:
		row := w.db.QueryRow(query, cardID)
		err = row.Scan(&count)

	case *SQLXWrapper:
		row := w.db.QueryRow(query, cardID)
		err = row.Scan(&count)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error in verifying test data")

	return count
}
