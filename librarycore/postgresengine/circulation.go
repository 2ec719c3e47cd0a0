package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine/internal/adapters"
)

// BorrowBook creates a new loan of one book for one card at the given borrow
// time, decrementing the book's stock by one in the same transaction.
//
// It fails with librarycore.ErrAlreadyBorrowed if the card already holds an
// open loan of this book, with librarycore.ErrNotFound if the book does not
// exist and with librarycore.ErrInvalidStock if no copy is in stock. Any
// failure rolls back the whole operation, leaving stock and loan state
// unchanged.
func (l Library) BorrowBook(ctx context.Context, cardID int64, bookID int64, borrowTime int64) (err error) {
	ctx, finish := l.instrument(ctx, opBorrowBook)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	openLoanExists, err := l.openLoanExists(ctx, tx, cardID, bookID)
	if err != nil {
		return err
	}

	if openLoanExists {
		l.recordRuleViolation(ctx, opBorrowBook, ruleAlreadyBorrowed)
		return fmt.Errorf("%w: card %d has not returned book %d yet",
			librarycore.ErrAlreadyBorrowed, cardID, bookID)
	}

	// the stock decrement shares this operation's transaction, so a later
	// failure rolls it back together with the loan insert
	if err = l.adjustStock(ctx, tx, opBorrowBook, bookID, -1); err != nil {
		return err
	}

	insertStmt := l.builder().
		Insert(l.borrowTable()).
		Prepared(true).
		Cols(colCardID, colBookID, colBorrowTime, colReturnTime).
		Vals(goqu.Vals{cardID, bookID, borrowTime, librarycore.OpenLoanSentinel})

	query, args, err := l.buildSQL(ctx, insertStmt)
	if err != nil {
		return err
	}

	rowsAffected, err := l.execTx(ctx, tx, query, args)
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return errors.Join(librarycore.ErrCollaboratorFailure, errUnexpectedRowCount)
	}

	return l.commitTx(ctx, tx)
}

// ReturnBook closes the open loan identified by the exact
// (cardID, bookID, borrowTime) key, setting its return time and incrementing
// the book's stock by one in the same transaction.
//
// It fails with librarycore.ErrInvalidTimeOrder if returnTime is earlier than
// borrowTime and with librarycore.ErrNotFound if no open loan matches the
// key. Any failure rolls back the whole operation.
func (l Library) ReturnBook(ctx context.Context, cardID int64, bookID int64, borrowTime int64, returnTime int64) (err error) {
	ctx, finish := l.instrument(ctx, opReturnBook)
	defer func() { finish(err) }()

	if returnTime < borrowTime {
		l.recordRuleViolation(ctx, opReturnBook, ruleInvalidTimeOrder)
		return fmt.Errorf("%w: return time %d is earlier than borrow time %d",
			librarycore.ErrInvalidTimeOrder, returnTime, borrowTime)
	}

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	loanExists, err := l.openLoanExistsAt(ctx, tx, cardID, bookID, borrowTime)
	if err != nil {
		return err
	}

	if !loanExists {
		l.recordRuleViolation(ctx, opReturnBook, ruleNotFound)
		return fmt.Errorf("%w: no open loan of book %d for card %d borrowed at %d",
			librarycore.ErrNotFound, bookID, cardID, borrowTime)
	}

	if err = l.adjustStock(ctx, tx, opReturnBook, bookID, +1); err != nil {
		return err
	}

	updateStmt := l.builder().
		Update(l.borrowTable()).
		Prepared(true).
		Set(goqu.Record{colReturnTime: returnTime}).
		Where(
			goqu.C(colCardID).Eq(cardID),
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colBorrowTime).Eq(borrowTime),
			goqu.C(colReturnTime).Eq(librarycore.OpenLoanSentinel),
		)

	query, args, err := l.buildSQL(ctx, updateStmt)
	if err != nil {
		return err
	}

	rowsAffected, err := l.execTx(ctx, tx, query, args)
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return errors.Join(librarycore.ErrCollaboratorFailure, errUnexpectedRowCount)
	}

	return l.commitTx(ctx, tx)
}

// ShowBorrowHistory returns the full loan history of one card joined with
// the book records, ordered by borrow time descending with book id ascending
// as tie-break. It never fails on business rules, only on collaborator
// errors.
func (l Library) ShowBorrowHistory(ctx context.Context, cardID int64) (items []librarycore.BorrowHistoryItem, err error) {
	ctx, finish := l.instrument(ctx, opShowBorrowHistory)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer l.rollbackQuietly(ctx, tx)

	borrowCol := func(column string) string { return l.borrowTable() + "." + column }
	bookCol := func(column string) string { return l.bookTable() + "." + column }

	selectStmt := l.builder().
		From(l.borrowTable()).
		Prepared(true).
		Join(
			goqu.T(l.bookTable()),
			goqu.On(goqu.I(borrowCol(colBookID)).Eq(goqu.I(bookCol(colBookID)))),
		).
		Select(
			borrowCol(colCardID),
			borrowCol(colBookID),
			bookCol(colCategory),
			bookCol(colTitle),
			bookCol(colPress),
			bookCol(colPublishYear),
			bookCol(colAuthor),
			bookCol(colPrice),
			borrowCol(colBorrowTime),
			borrowCol(colReturnTime),
		).
		Where(goqu.I(borrowCol(colCardID)).Eq(cardID)).
		Order(
			goqu.I(borrowCol(colBorrowTime)).Desc(),
			goqu.I(borrowCol(colBookID)).Asc(),
		)

	query, args, err := l.buildSQL(ctx, selectStmt)
	if err != nil {
		return nil, err
	}

	rows, err := l.queryTx(ctx, tx, query, args)
	if err != nil {
		return nil, err
	}

	items, err = l.scanBorrowHistory(ctx, rows)
	if err != nil {
		return nil, err
	}

	if err = l.commitTx(ctx, tx); err != nil {
		return nil, err
	}

	return items, nil
}

/***** circulation internals *****/

func (l Library) openLoanExists(ctx context.Context, tx adapters.DBTx, cardID int64, bookID int64) (bool, error) {
	selectStmt := l.builder().
		From(l.borrowTable()).
		Prepared(true).
		Select(colBorrowTime).
		Where(
			goqu.C(colCardID).Eq(cardID),
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colReturnTime).Eq(librarycore.OpenLoanSentinel),
		)

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) openLoanExistsAt(ctx context.Context, tx adapters.DBTx, cardID int64, bookID int64, borrowTime int64) (bool, error) {
	selectStmt := l.builder().
		From(l.borrowTable()).
		Prepared(true).
		Select(colBorrowTime).
		Where(
			goqu.C(colCardID).Eq(cardID),
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colBorrowTime).Eq(borrowTime),
			goqu.C(colReturnTime).Eq(librarycore.OpenLoanSentinel),
		)

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) scanBorrowHistory(ctx context.Context, rows adapters.DBRows) ([]librarycore.BorrowHistoryItem, error) {
	defer l.closeRows(ctx, rows)

	items := make([]librarycore.BorrowHistoryItem, 0)

	for rows.Next() {
		var item librarycore.BorrowHistoryItem

		scanErr := rows.Scan(
			&item.CardID,
			&item.BookID,
			&item.Category,
			&item.Title,
			&item.Press,
			&item.PublishYear,
			&item.Author,
			&item.Price,
			&item.BorrowTime,
			&item.ReturnTime,
		)
		if scanErr != nil {
			l.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(librarycore.ErrCollaboratorFailure, scanErr)
		}

		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		l.logError(ctx, logMsgScanRowFailed, rowsErr)
		return nil, errors.Join(librarycore.ErrCollaboratorFailure, rowsErr)
	}

	return items, nil
}
