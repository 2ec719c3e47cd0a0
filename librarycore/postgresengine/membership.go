package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine/internal/adapters"
)

// RegisterCard registers one new membership card.
//
// It fails with librarycore.ErrDuplicateEntity if a card with the same
// natural key (name, department, type) is already registered. On success the
// generated id is assigned onto the given record.
func (l Library) RegisterCard(ctx context.Context, card *librarycore.Card) (err error) {
	ctx, finish := l.instrument(ctx, opRegisterCard)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	exists, err := l.cardWithNaturalKeyExists(ctx, tx, *card)
	if err != nil {
		return err
	}

	if exists {
		l.recordRuleViolation(ctx, opRegisterCard, ruleDuplicateEntity)
		return fmt.Errorf("%w: a card with the same name, department and type is already registered",
			librarycore.ErrDuplicateEntity)
	}

	insertStmt := l.builder().
		Insert(l.cardTable()).
		Prepared(true).
		Cols(colName, colDepartment, colType).
		Vals(goqu.Vals{card.Name, card.Department, card.Type.Code()}).
		Returning(colCardID)

	id, err := l.insertReturningID(ctx, tx, insertStmt)
	if err != nil {
		return err
	}

	if err = l.commitTx(ctx, tx); err != nil {
		return err
	}

	card.ID = id

	return nil
}

// RemoveCard deletes a membership card.
//
// It fails with librarycore.ErrNotFound if the card does not exist and with
// librarycore.ErrConflict while any loan of the card is still open.
func (l Library) RemoveCard(ctx context.Context, cardID int64) (err error) {
	ctx, finish := l.instrument(ctx, opRemoveCard)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return err
	}
	defer l.rollbackQuietly(ctx, tx)

	exists, err := l.cardExists(ctx, tx, cardID)
	if err != nil {
		return err
	}

	if !exists {
		l.recordRuleViolation(ctx, opRemoveCard, ruleNotFound)
		return fmt.Errorf("%w: no card with id %d", librarycore.ErrNotFound, cardID)
	}

	openLoanExists, err := l.openLoanExistsForCard(ctx, tx, cardID)
	if err != nil {
		return err
	}

	if openLoanExists {
		l.recordRuleViolation(ctx, opRemoveCard, ruleConflict)
		return fmt.Errorf("%w: card %d still has un-returned loans", librarycore.ErrConflict, cardID)
	}

	deleteStmt := l.builder().
		Delete(l.cardTable()).
		Prepared(true).
		Where(goqu.C(colCardID).Eq(cardID))

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

// ShowCards returns all registered cards, ordered by card id ascending.
// It never fails on business rules, only on collaborator errors.
func (l Library) ShowCards(ctx context.Context) (cards []librarycore.Card, err error) {
	ctx, finish := l.instrument(ctx, opShowCards)
	defer func() { finish(err) }()

	tx, err := l.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer l.rollbackQuietly(ctx, tx)

	selectStmt := l.builder().
		From(l.cardTable()).
		Prepared(true).
		Select(colCardID, colName, colDepartment, colType).
		Order(goqu.I(colCardID).Asc())

	query, args, err := l.buildSQL(ctx, selectStmt)
	if err != nil {
		return nil, err
	}

	rows, err := l.queryTx(ctx, tx, query, args)
	if err != nil {
		return nil, err
	}

	cards, err = l.scanCards(ctx, rows)
	if err != nil {
		return nil, err
	}

	if err = l.commitTx(ctx, tx); err != nil {
		return nil, err
	}

	return cards, nil
}

/***** membership internals *****/

func (l Library) cardWithNaturalKeyExists(ctx context.Context, tx adapters.DBTx, card librarycore.Card) (bool, error) {
	selectStmt := l.builder().
		From(l.cardTable()).
		Prepared(true).
		Select(colCardID).
		Where(goqu.Ex{
			colName:       card.Name,
			colDepartment: card.Department,
			colType:       card.Type.Code(),
		})

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) cardExists(ctx context.Context, tx adapters.DBTx, cardID int64) (bool, error) {
	selectStmt := l.builder().
		From(l.cardTable()).
		Prepared(true).
		Select(colCardID).
		Where(goqu.C(colCardID).Eq(cardID))

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) openLoanExistsForCard(ctx context.Context, tx adapters.DBTx, cardID int64) (bool, error) {
	selectStmt := l.builder().
		From(l.borrowTable()).
		Prepared(true).
		Select(colBookID).
		Where(
			goqu.C(colCardID).Eq(cardID),
			goqu.C(colReturnTime).Eq(librarycore.OpenLoanSentinel),
		)

	return l.existsTx(ctx, tx, selectStmt)
}

func (l Library) scanCards(ctx context.Context, rows adapters.DBRows) ([]librarycore.Card, error) {
	defer l.closeRows(ctx, rows)

	cards := make([]librarycore.Card, 0)

	for rows.Next() {
		var card librarycore.Card
		var typeCode string

		if scanErr := rows.Scan(&card.ID, &card.Name, &card.Department, &typeCode); scanErr != nil {
			l.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(librarycore.ErrCollaboratorFailure, scanErr)
		}

		card.Type = librarycore.CardTypeFromCode(typeCode)
		cards = append(cards, card)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		l.logError(ctx, logMsgScanRowFailed, rowsErr)
		return nil, errors.Join(librarycore.ErrCollaboratorFailure, rowsErr)
	}

	return cards, nil
}
