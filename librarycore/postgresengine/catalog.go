package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine/internal/adapters"
)

const (
	ruleDuplicateEntity  = "duplicate_entity"
	ruleNotFound         = "not_found"
	ruleInvalidStock     = "invalid_stock"
	ruleConflict         = "conflict"
	ruleAlreadyBorrowed  = "already_borrowed"
	ruleInvalidTimeOrder = "invalid_time_order"
)

// StoreBook registers one new book in the catalog.
//
// It fails with librarycore.ErrDuplicateEntity if a book with the same
// natural key (category, title, press, publish year, author) is already
// stored. On success the generated id is assigned onto the given record.
func (l Library) StoreBook(ctx context.Context, book *librarycore.Book) (err error) {
	ctx, finish := l.instrument(ctx, opStoreBook)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	exists, err := l.bookWithNaturalKeyExists(ctx, tx, *book)
	if err != nil {
		return err
	}

	if exists {
		l.recordRuleViolation(ctx, opStoreBook, ruleDuplicateEntity)
		return fmt.Errorf("%w: a book with the same category, title, press, publish year and author is already stored",
			librarycore.ErrDuplicateEntity)
	}

	id, err := l.insertBook(ctx, tx, *book)
	if err != nil {
		return err
	}

	if err = l.commitTx(ctx, tx); err != nil {
		return err
	}

	book.ID = id

	return nil
}

// StoreBooks registers a whole batch of books as one transaction.
//
// The batch is first checked pairwise for natural-key collisions by value;
// any collision fails the whole batch with librarycore.ErrDuplicateEntity
// before storage is touched. Each book is then checked against existing rows
// and inserted in list order; the first collision aborts the entire batch
// with no partial insertion. On success every book's generated id is
// assigned onto its record.
func (l Library) StoreBooks(ctx context.Context, books []*librarycore.Book) (err error) {
	ctx, finish := l.instrument(ctx, opStoreBooks)
	defer func() { finish(err) }()

	for i := 0; i < len(books); i++ {
		for j := i + 1; j < len(books); j++ {
			if books[i].NaturalKeyEquals(*books[j]) {
				l.recordRuleViolation(ctx, opStoreBooks, ruleDuplicateEntity)
				return fmt.Errorf("%w: books at positions %d and %d of the batch share the same natural key",
					librarycore.ErrDuplicateEntity, i, j)
			}
		}
	}

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	generatedIDs := make([]int64, len(books))

	for i, book := range books {
		exists, existsErr := l.bookWithNaturalKeyExists(ctx, tx, *book)
		if existsErr != nil {
			return existsErr
		}

		if exists {
			l.recordRuleViolation(ctx, opStoreBooks, ruleDuplicateEntity)
			return fmt.Errorf("%w: the book at position %d of the batch is already stored",
				librarycore.ErrDuplicateEntity, i)
		}

		id, insertErr := l.insertBook(ctx, tx, *book)
		if insertErr != nil {
			return insertErr
		}

		generatedIDs[i] = id
	}

	if err = l.commitTx(ctx, tx); err != nil {
		return err
	}

	for i, book := range books {
		book.ID = generatedIDs[i]
	}

	return nil
}

// IncBookStock adjusts the stock of a book by a signed delta.
//
// It fails with librarycore.ErrNotFound if the book does not exist and with
// librarycore.ErrInvalidStock if the adjustment would drive stock negative,
// in which case stock is left unchanged. This is the only sanctioned path to
// mutate stock; circulation operations delegate to the same logic inside
// their own transaction.
func (l Library) IncBookStock(ctx context.Context, bookID int64, delta int) (err error) {
	ctx, finish := l.instrument(ctx, opIncBookStock)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	if err = l.adjustStock(ctx, tx, opIncBookStock, bookID, delta); err != nil {
		return err
	}

	return l.commitTx(ctx, tx)
}

// ModifyBookInfo overwrites the descriptive fields of a stored book:
// category, title, press, publish year, author and price. The id and the
// stock are immutable through this path.
//
// It fails with librarycore.ErrNotFound if the book's id does not exist.
func (l Library) ModifyBookInfo(ctx context.Context, book librarycore.Book) (err error) {
	ctx, finish := l.instrument(ctx, opModifyBookInfo)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	exists, err := l.bookExists(ctx, tx, book.ID)
	if err != nil {
		return err
	}

	if !exists {
		l.recordRuleViolation(ctx, opModifyBookInfo, ruleNotFound)
		return fmt.Errorf("%w: no book with id %d", librarycore.ErrNotFound, book.ID)
	}

	updateStmt := l.builder().
		Update(l.bookTable()).
		Prepared(true).
		Set(goqu.Record{
			colCategory:    book.Category,
			colTitle:       book.Title,
			colPress:       book.Press,
			colPublishYear: book.PublishYear,
			colAuthor:      book.Author,
			colPrice:       book.Price,
		}).
		Where(goqu.C(colBookID).Eq(book.ID))

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

// RemoveBook deletes a book from the catalog.
//
// It fails with librarycore.ErrNotFound if the book does not exist and with
// librarycore.ErrConflict while any loan of the book is still open.
func (l Library) RemoveBook(ctx context.Context, bookID int64) (err error) {
	ctx, finish := l.instrument(ctx, opRemoveBook)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	exists, err := l.bookExists(ctx, tx, bookID)
	if err != nil {
		return err
	}

	if !exists {
		l.recordRuleViolation(ctx, opRemoveBook, ruleNotFound)
		return fmt.Errorf("%w: no book with id %d", librarycore.ErrNotFound, bookID)
	}

	openLoanExists, err := l.openLoanExistsForBook(ctx, tx, bookID)
	if err != nil {
		return err
	}

	if openLoanExists {
		l.recordRuleViolation(ctx, opRemoveBook, ruleConflict)
		return fmt.Errorf("%w: book %d still has un-returned loans", librarycore.ErrConflict, bookID)
	}

	deleteStmt := l.builder().
		Delete(l.bookTable()).
		Prepared(true).
		Where(goqu.C(colBookID).Eq(bookID))

	query, args, err := l.buildSQL(ctx, deleteStmt)
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

// QueryBooks returns the books matching the given conditions, ordered by the
// requested sort column and direction with book_id ascending as the
// deterministic tie-break. It never fails on business rules, only on
// collaborator errors.
func (l Library) QueryBooks(ctx context.Context, conditions librarycore.BookQueryConditions) (books []librarycore.Book, err error) {
	ctx, finish := l.instrument(ctx, opQueryBooks)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer l.rollbackQuietly(ctx, tx)

	query, args, err := l.buildSQL(ctx, l.buildBookSelect(conditions))
	if err != nil {
		return nil, err
	}

	rows, err := l.queryTx(ctx, tx, query, args)
	if err != nil {
		return nil, err
	}

	books, err = l.scanBooks(ctx, rows)
	if err != nil {
		return nil, err
	}

	if err = l.commitTx(ctx, tx); err != nil {
		return nil, err
	}

	return books, nil
}

/***** catalog internals *****/

// adjustStock applies a bounded delta to the stock row of one book on the
// given transaction. The row is locked with FOR UPDATE so concurrent
// adjustments of the same book serialize on the storage engine.
func (l Library) adjustStock(ctx context.Context, tx adapters.DBTx, operation string, bookID int64, delta int) error {
	stock, found, err := l.selectStockForUpdate(ctx, tx, bookID)
	if err != nil {
		return err
	}

	if !found {
		l.recordRuleViolation(ctx, operation, ruleNotFound)
		return fmt.Errorf("%w: no book with id %d", librarycore.ErrNotFound, bookID)
	}

	newStock := stock + delta
	if newStock < 0 {
		l.recordRuleViolation(ctx, operation, ruleInvalidStock)
		return fmt.Errorf("%w: stock %d of book %d cannot absorb delta %d",
			librarycore.ErrInvalidStock, stock, bookID, delta)
	}

	updateStmt := l.builder().
		Update(l.bookTable()).
		Prepared(true).
		Set(goqu.Record{colStock: newStock}).
		Where(goqu.C(colBookID).Eq(bookID))

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

	return nil
}

// selectStockForUpdate reads and row-locks the stock of one book. The rows
// iterator is fully consumed before returning so the transaction can issue
// the follow-up update.
func (l Library) selectStockForUpdate(ctx context.Context, tx adapters.DBTx, bookID int64) (int, bool, error) {
	selectStmt := l.builder().
		From(l.bookTable()).
		Prepared(true).
		Select(colStock).
		Where(goqu.C(colBookID).Eq(bookID)).
		ForUpdate(exp.Wait)

	query, args, err := l.buildSQL(ctx, selectStmt)
	if err != nil {
		return 0, false, err
	}

	rows, err := l.queryTx(ctx, tx, query, args)
	if err != nil {
		return 0, false, err
	}
	defer l.closeRows(ctx, rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			l.logError(ctx, logMsgScanRowFailed, rowsErr)
			return 0, false, errors.Join(librarycore.ErrCollaboratorFailure, rowsErr)
		}

		return 0, false, nil
	}

	var stock int
	if scanErr := rows.Scan(&stock); scanErr != nil {
		l.logError(ctx, logMsgScanRowFailed, scanErr)
		return 0, false, errors.Join(librarycore.ErrCollaboratorFailure, scanErr)
	}

	return stock, true, nil
}

func (l Library) bookWithNaturalKeyExists(ctx context.Context, tx adapters.DBTx, book librarycore.Book) (bool, error) {
	selectStmt := l.builder().
		From(l.bookTable()).
		Prepared(true).
		Select(colBookID).
		Where(goqu.Ex{
			colCategory:    book.Category,
			colTitle:       book.Title,
			colPress:       book.Press,
			colPublishYear: book.PublishYear,
			colAuthor:      book.Author,
		})

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) bookExists(ctx context.Context, tx adapters.DBTx, bookID int64) (bool, error) {
	selectStmt := l.builder().
		From(l.bookTable()).
		Prepared(true).
		Select(colBookID).
		Where(goqu.C(colBookID).Eq(bookID))

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) openLoanExistsForBook(ctx context.Context, tx adapters.DBTx, bookID int64) (bool, error) {
	selectStmt := l.builder().
		From(l.borrowTable()).
		Prepared(true).
		Select(colCardID).
		Where(
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colReturnTime).Eq(librarycore.OpenLoanSentinel),
		)

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) insertBook(ctx context.Context, tx adapters.DBTx, book librarycore.Book) (int64, error) {
	insertStmt := l.builder().
		Insert(l.bookTable()).
		Prepared(true).
		Cols(colCategory, colTitle, colPress, colPublishYear, colAuthor, colPrice, colStock).
		Vals(goqu.Vals{book.Category, book.Title, book.Press, book.PublishYear, book.Author, book.Price, book.Stock}).
		Returning(colBookID)

	return l.insertReturningID(ctx, tx, insertStmt)
}

// buildBookSelect assembles the catalog query from the active conditions.
func (l Library) buildBookSelect(conditions librarycore.BookQueryConditions) *goqu.SelectDataset {
	selectStmt := l.builder().
		From(l.bookTable()).
		Prepared(true).
		Select(colBookID, colCategory, colTitle, colPress, colPublishYear, colAuthor, colPrice, colStock)

	if category, ok := conditions.Category(); ok {
		selectStmt = selectStmt.Where(goqu.C(colCategory).Eq(category))
	}

	if title, ok := conditions.TitleContains(); ok {
		selectStmt = selectStmt.Where(goqu.C(colTitle).Like("%" + title + "%"))
	}

	if press, ok := conditions.PressContains(); ok {
		selectStmt = selectStmt.Where(goqu.C(colPress).Like("%" + press + "%"))
	}

	if author, ok := conditions.AuthorContains(); ok {
		selectStmt = selectStmt.Where(goqu.C(colAuthor).Like("%" + author + "%"))
	}

	if minYear, ok := conditions.MinPublishYear(); ok {
		selectStmt = selectStmt.Where(goqu.C(colPublishYear).Gte(minYear))
	}

	if maxYear, ok := conditions.MaxPublishYear(); ok {
		selectStmt = selectStmt.Where(goqu.C(colPublishYear).Lte(maxYear))
	}

	if minPrice, ok := conditions.MinPrice(); ok {
		selectStmt = selectStmt.Where(goqu.C(colPrice).Gte(minPrice))
	}

	if maxPrice, ok := conditions.MaxPrice(); ok {
		selectStmt = selectStmt.Where(goqu.C(colPrice).Lte(maxPrice))
	}

	sortColumn := goqu.I(string(conditions.SortBy()))
	if conditions.SortOrder() == librarycore.SortDesc {
		selectStmt = selectStmt.Order(sortColumn.Desc())
	} else {
		selectStmt = selectStmt.Order(sortColumn.Asc())
	}

	// book_id ascending is the deterministic tie-break for equal sort keys
	if conditions.SortBy() != librarycore.BookSortByID {
		selectStmt = selectStmt.OrderAppend(goqu.I(colBookID).Asc())
	}

	return selectStmt
}

func (l Library) scanBooks(ctx context.Context, rows adapters.DBRows) ([]librarycore.Book, error) {
	defer l.closeRows(ctx, rows)

	books := make([]librarycore.Book, 0)

	for rows.Next() {
		var book librarycore.Book

		scanErr := rows.Scan(
			&book.ID,
			&book.Category,
			&book.Title,
			&book.Press,
			&book.PublishYear,
			&book.Author,
			&book.Price,
			&book.Stock,
		)
		if scanErr != nil {
			l.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(librarycore.ErrCollaboratorFailure, scanErr)
		}

		books = append(books, book)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		l.logError(ctx, logMsgScanRowFailed, rowsErr)
		return nil, errors.Join(librarycore.ErrCollaboratorFailure, rowsErr)
	}

	return books, nil
}
