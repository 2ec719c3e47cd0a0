package librarycore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
)

func Test_Book_NaturalKeyEquals_MatchesOnValueEquality(t *testing.T) {
	book := librarycore.Book{
		Category:    "CS",
		Title:       "Database Systems",
		Press:       "MIT Press",
		PublishYear: 2017,
		Author:      "Gray",
		Price:       89.99,
		Stock:       10,
	}

	// distinct instances with equal key fields must match
	other := librarycore.Book{
		ID:          999,
		Category:    "CS",
		Title:       "Database Systems",
		Press:       "MIT Press",
		PublishYear: 2017,
		Author:      "Gray",
		Price:       12.50,
		Stock:       0,
	}

	assert.True(t, book.NaturalKeyEquals(other), "books with equal natural keys should match")
}

func Test_Book_NaturalKeyEquals_IgnoresPriceStockAndID(t *testing.T) {
	book := librarycore.Book{Category: "CS", Title: "T", Press: "P", PublishYear: 2000, Author: "A", Price: 1, Stock: 1}
	other := book
	other.ID = 42
	other.Price = 99
	other.Stock = 77

	assert.True(t, book.NaturalKeyEquals(other), "price, stock and id are not part of the natural key")
}

func Test_Book_NaturalKeyEquals_DetectsDifferences(t *testing.T) {
	base := librarycore.Book{Category: "CS", Title: "T", Press: "P", PublishYear: 2000, Author: "A"}

	tests := []struct {
		name   string
		mutate func(b *librarycore.Book)
	}{
		{name: "category differs", mutate: func(b *librarycore.Book) { b.Category = "Math" }},
		{name: "title differs", mutate: func(b *librarycore.Book) { b.Title = "Other" }},
		{name: "press differs", mutate: func(b *librarycore.Book) { b.Press = "Other" }},
		{name: "publish year differs", mutate: func(b *librarycore.Book) { b.PublishYear = 2001 }},
		{name: "author differs", mutate: func(b *librarycore.Book) { b.Author = "Other" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			other := base
			tc.mutate(&other)

			assert.False(t, base.NaturalKeyEquals(other), "differing key field should not match")
		})
	}
}

func Test_BookSortColumn_IsValid(t *testing.T) {
	valid := []librarycore.BookSortColumn{
		librarycore.BookSortByID,
		librarycore.BookSortByCategory,
		librarycore.BookSortByTitle,
		librarycore.BookSortByPress,
		librarycore.BookSortByPublishYear,
		librarycore.BookSortByAuthor,
		librarycore.BookSortByPrice,
		librarycore.BookSortByStock,
	}

	for _, column := range valid {
		assert.True(t, column.IsValid(), "column %s should be valid", column)
	}

	assert.False(t, librarycore.BookSortColumn("bogus").IsValid(), "unknown column should be invalid")
	assert.False(t, librarycore.BookSortColumn("").IsValid(), "empty column should be invalid")
}

func Test_SortOrder_IsValid(t *testing.T) {
	assert.True(t, librarycore.SortAsc.IsValid())
	assert.True(t, librarycore.SortDesc.IsValid())
	assert.False(t, librarycore.SortOrder("sideways").IsValid())
}
