package helper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine"
)

// GivenUniqueBook builds a book with a unique natural key so concurrent test
// runs never collide on duplicate checks.
func GivenUniqueBook(t testing.TB, stock int) librarycore.Book {
	suffix := givenUniqueSuffix(t)

	return librarycore.Book{
		Category:    "Computer Science",
		Title:       "Database Systems " + suffix,
		Press:       "Test Press",
		PublishYear: 2017,
		Author:      "Author " + suffix,
		Price:       59.99,
		Stock:       stock,
	}
}

// GivenUniqueCard builds a card with a unique natural key.
func GivenUniqueCard(t testing.TB) librarycore.Card {
	suffix := givenUniqueSuffix(t)

	return librarycore.Card{
		Name:       "Reader " + suffix,
		Department: "Test Department",
		Type:       librarycore.CardTypeStudent,
	}
}

// GivenStoredBook stores a unique book and returns it with its generated id.
func GivenStoredBook(t testing.TB, ctx context.Context, library postgresengine.Library, stock int) librarycore.Book {
	book := GivenUniqueBook(t, stock)

	err := library.StoreBook(ctx, &book)
	assert.NoError(t, err, "error in arranging test data")

	return book
}

// GivenRegisteredCard registers a unique card and returns it with its
// generated id.
func GivenRegisteredCard(t testing.TB, ctx context.Context, library postgresengine.Library) librarycore.Card {
	card := GivenUniqueCard(t)

	err := library.RegisterCard(ctx, &card)
	assert.NoError(t, err, "error in arranging test data")

	return card
}

// GivenOpenLoan opens a loan of the given book for the given card as part of
// the arrange phase.
func GivenOpenLoan(t testing.TB, ctx context.Context, library postgresengine.Library, cardID int64, bookID int64, borrowTime int64) {
	err := library.BorrowBook(ctx, cardID, bookID, borrowTime)
	assert.NoError(t, err, "error in arranging test data")
}

// GivenCleanSchema drops and recreates the library tables.
func GivenCleanSchema(t testing.TB, ctx context.Context, library postgresengine.Library) {
	err := library.ResetSchema(ctx)
	assert.NoError(t, err, "error in arranging test data")
}

func givenUniqueSuffix(t testing.TB) string {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id.String()
}
