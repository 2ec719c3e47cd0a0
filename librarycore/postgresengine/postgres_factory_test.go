package postgresengine_test

import (
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine"
	"github.com/quercus-labs/library-lending-core-go/testutil/config"
)

func Test_NewLibraryFromPGXPool_With_NilConnection(t *testing.T) {
	_, err := postgresengine.NewLibraryFromPGXPool(nil)

	assert.ErrorIs(t, err, librarycore.ErrNilDatabaseConnection)
}

func Test_NewLibraryFromSQLDB_With_NilConnection(t *testing.T) {
	_, err := postgresengine.NewLibraryFromSQLDB(nil)

	assert.ErrorIs(t, err, librarycore.ErrNilDatabaseConnection)
}

func Test_NewLibraryFromSQLX_With_NilConnection(t *testing.T) {
	_, err := postgresengine.NewLibraryFromSQLX(nil)

	assert.ErrorIs(t, err, librarycore.ErrNilDatabaseConnection)
}

func Test_NewLibrary_With_EmptyTablePrefix(t *testing.T) {
	pool, err := pgxpool.NewWithConfig(t.Context(), config.PostgresPGXPoolTestConfig())
	require.NoError(t, err, "error connecting to DB pool in test setup")
	defer pool.Close()

	_, err = postgresengine.NewLibraryFromPGXPool(pool, postgresengine.WithTablePrefix(""))

	assert.ErrorIs(t, err, librarycore.ErrEmptyTablePrefix)
}

func Test_NewLibrary_With_Options(t *testing.T) {
	pool, err := pgxpool.NewWithConfig(t.Context(), config.PostgresPGXPoolTestConfig())
	require.NoError(t, err, "error connecting to DB pool in test setup")
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	library, err := postgresengine.NewLibraryFromPGXPool(
		pool,
		postgresengine.WithTablePrefix("lending_"),
		postgresengine.WithLogger(logger),
	)

	assert.NoError(t, err)
	assert.NotNil(t, library)
}

func Test_NewLibraryFromSQLDB_Construction(t *testing.T) {
	db := config.PostgresSQLDBTestConfig()
	defer func(db *sql.DB) { _ = db.Close() }(db)

	library, err := postgresengine.NewLibraryFromSQLDB(db)

	assert.NoError(t, err)
	assert.NotNil(t, library)
}

func Test_NewLibraryFromSQLX_Construction(t *testing.T) {
	db := config.PostgresSQLXTestConfig()
	defer func(db *sqlx.DB) { _ = db.Close() }(db)

	library, err := postgresengine.NewLibraryFromSQLX(db)

	assert.NoError(t, err)
	assert.NotNil(t, library)
}
