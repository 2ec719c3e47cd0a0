package postgresengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	. "github.com/quercus-labs/library-lending-core-go/testutil/helper"                 //nolint:revive
	. "github.com/quercus-labs/library-lending-core-go/testutil/helper/postgreswrapper" //nolint:revive
)

func Test_BorrowBook_DecrementsStockAndOpensLoan(t *testing.T) {
	ctx, library, wrapper := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)

	err := library.BorrowBook(ctx, card.ID, book.ID, 100)

	require.NoError(t, err)
	assert.Equal(t, 4, findBookByID(t, ctx, library, book.ID).Stock)
	assert.Equal(t, 1, CountOpenLoans(t, wrapper, card.ID))
}

func Test_BorrowBook_When_SameBookIsStillBorrowed(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)

	err := library.BorrowBook(ctx, card.ID, book.ID, 200)

	assert.ErrorIs(t, err, librarycore.ErrAlreadyBorrowed)
	assert.Equal(t, 4, findBookByID(t, ctx, library, book.ID).Stock, "stock must stay unchanged on rejection")
}

func Test_BorrowBook_When_OutOfStock(t *testing.T) {
	ctx, library, wrapper := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 1)
	firstCard := GivenRegisteredCard(t, ctx, library)
	secondCard := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, firstCard.ID, book.ID, 100)

	err := library.BorrowBook(ctx, secondCard.ID, book.ID, 200)

	assert.ErrorIs(t, err, librarycore.ErrInvalidStock)
	assert.Equal(t, 0, CountOpenLoans(t, wrapper, secondCard.ID), "no loan must be opened on rejection")
}

func Test_BorrowBook_When_BookDoesNotExist(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	card := GivenRegisteredCard(t, ctx, library)

	err := library.BorrowBook(ctx, card.ID, 4711, 100)

	assert.ErrorIs(t, err, librarycore.ErrNotFound)
}

func Test_BorrowBook_AfterReturn_IsAllowedAgain(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 1)
	card := GivenRegisteredCard(t, ctx, library)

	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)
	require.NoError(t, library.ReturnBook(ctx, card.ID, book.ID, 100, 200))

	err := library.BorrowBook(ctx, card.ID, book.ID, 300)

	assert.NoError(t, err)
	assert.Equal(t, 0, findBookByID(t, ctx, library, book.ID).Stock)
}

func Test_ReturnBook_RestoresStockAndClosesLoan(t *testing.T) {
	ctx, library, wrapper := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)

	err := library.ReturnBook(ctx, card.ID, book.ID, 100, 250)

	require.NoError(t, err)
	assert.Equal(t, 5, findBookByID(t, ctx, library, book.ID).Stock)
	assert.Equal(t, 0, CountOpenLoans(t, wrapper, card.ID))
}

func Test_ReturnBook_When_ReturnTimeBeforeBorrowTime(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)

	err := library.ReturnBook(ctx, card.ID, book.ID, 100, 99)

	assert.ErrorIs(t, err, librarycore.ErrInvalidTimeOrder)
	assert.Equal(t, 4, findBookByID(t, ctx, library, book.ID).Stock, "stock must stay unchanged on rejection")
}

func Test_ReturnBook_AtExactlyBorrowTime_IsAllowed(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)

	err := library.ReturnBook(ctx, card.ID, book.ID, 100, 100)

	assert.NoError(t, err, "return time equal to borrow time is not earlier")
}

func Test_ReturnBook_When_BorrowTimeDoesNotMatch(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)

	err := library.ReturnBook(ctx, card.ID, book.ID, 101, 250)

	assert.ErrorIs(t, err, librarycore.ErrNotFound, "the loan is identified by its exact borrow time")
}

func Test_ReturnBook_When_LoanAlreadyReturned(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)
	require.NoError(t, library.ReturnBook(ctx, card.ID, book.ID, 100, 200))

	err := library.ReturnBook(ctx, card.ID, book.ID, 100, 300)

	assert.ErrorIs(t, err, librarycore.ErrNotFound, "a closed loan cannot be returned twice")
	assert.Equal(t, 5, findBookByID(t, ctx, library, book.ID).Stock, "stock must not be inflated by double returns")
}

func Test_ShowBorrowHistory_OrderedByBorrowTimeDescending(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	firstBook := GivenStoredBook(t, ctx, library, 5)
	secondBook := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)

	GivenOpenLoan(t, ctx, library, card.ID, firstBook.ID, 100)
	require.NoError(t, library.ReturnBook(ctx, card.ID, firstBook.ID, 100, 150))
	GivenOpenLoan(t, ctx, library, card.ID, secondBook.ID, 300)

	items, err := library.ShowBorrowHistory(ctx, card.ID)

	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, secondBook.ID, items[0].BookID, "most recent borrow first")
	assert.Equal(t, int64(300), items[0].BorrowTime)
	assert.Equal(t, librarycore.OpenLoanSentinel, items[0].ReturnTime, "open loan carries the open sentinel")

	assert.Equal(t, firstBook.ID, items[1].BookID)
	assert.Equal(t, int64(150), items[1].ReturnTime)
}

func Test_ShowBorrowHistory_TieBreakOnBookID(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	firstBook := GivenStoredBook(t, ctx, library, 5)
	secondBook := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)

	// two loans opened at the same instant
	GivenOpenLoan(t, ctx, library, card.ID, secondBook.ID, 100)
	GivenOpenLoan(t, ctx, library, card.ID, firstBook.ID, 100)

	items, err := library.ShowBorrowHistory(ctx, card.ID)

	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, firstBook.ID, items[0].BookID, "equal borrow times resolved by ascending book id")
	assert.Equal(t, secondBook.ID, items[1].BookID)
}

func Test_ShowBorrowHistory_JoinsBookFields(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)

	items, err := library.ShowBorrowHistory(ctx, card.ID)

	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, card.ID, items[0].CardID)
	assert.Equal(t, book.Title, items[0].Title)
	assert.Equal(t, book.Author, items[0].Author)
	assert.Equal(t, book.Category, items[0].Category)
	assert.Equal(t, book.Press, items[0].Press)
	assert.Equal(t, book.PublishYear, items[0].PublishYear)
	assert.InDelta(t, book.Price, items[0].Price, 0.0001)
}

func Test_ShowBorrowHistory_OnlyForTheRequestedCard(t *testing.T) {
	ctx, library, _ := setUpLibrary(t)

	book := GivenStoredBook(t, ctx, library, 5)
	cardWithLoan := GivenRegisteredCard(t, ctx, library)
	otherCard := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, cardWithLoan.ID, book.ID, 100)

	items, err := library.ShowBorrowHistory(ctx, otherCard.ID)

	require.NoError(t, err)
	assert.Empty(t, items)
}
