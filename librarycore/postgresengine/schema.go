package postgresengine

import (
	"context"
	"fmt"
)

// ResetSchema drops and recreates the three library tables in a single
// transaction, wiping all catalog, membership and circulation state.
//
// It is meant for test setup and administrative resets, never for regular
// operation.
func (l Library) ResetSchema(ctx context.Context) (err error) {
	ctx, finish := l.instrument(ctx, opResetSchema)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	statements := []sqlQueryString{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, l.borrowTable()),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, l.bookTable()),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, l.cardTable()),
		fmt.Sprintf(`CREATE TABLE %s (
			card_id BIGSERIAL PRIMARY KEY,
			name VARCHAR(63) NOT NULL DEFAULT '',
			department VARCHAR(63) NOT NULL DEFAULT '',
			type CHAR(1) NOT NULL DEFAULT ''
		)`, l.cardTable()),
		fmt.Sprintf(`CREATE TABLE %s (
			book_id BIGSERIAL PRIMARY KEY,
			category VARCHAR(63) NOT NULL DEFAULT '',
			title VARCHAR(255) NOT NULL DEFAULT '',
			press VARCHAR(255) NOT NULL DEFAULT '',
			publish_year INTEGER NOT NULL DEFAULT 0,
			author VARCHAR(63) NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0.0,
			stock INTEGER NOT NULL DEFAULT 0
		)`, l.bookTable()),
		fmt.Sprintf(`CREATE TABLE %s (
			card_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			borrow_time BIGINT NOT NULL DEFAULT 0,
			return_time BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (card_id, book_id, borrow_time),
			FOREIGN KEY (card_id) REFERENCES %s (card_id) ON DELETE RESTRICT,
			FOREIGN KEY (book_id) REFERENCES %s (book_id) ON DELETE RESTRICT
		)`, l.borrowTable(), l.cardTable(), l.bookTable()),
	}

	for _, statement := range statements {
		if _, err = l.execTx(ctx, tx, statement, nil); err != nil {
			return err
		}
	}

	return l.commitTx(ctx, tx)
}
