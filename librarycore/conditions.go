package librarycore

import (
	"strings"
)

// BookQueryConditions collects the independently-optional filters of a catalog
// query plus the requested sort column and direction. All active filters are
// combined with AND; book_id ascending is always the deterministic tie-break
// for equal sort-key values.
//
// The zero value is not usable; build conditions with NewBookQueryConditions
// and the With.../SortedBy methods, which operate on copies so a conditions
// value can be shared safely:
//
//	conditions := librarycore.NewBookQueryConditions().
//		WithCategory("Computer Science").
//		WithMinPublishYear(2008).
//		SortedBy(librarycore.BookSortByPrice, librarycore.SortDesc)
type BookQueryConditions struct {
	category string
	title    string
	press    string
	author   string

	minPublishYear *int
	maxPublishYear *int
	minPrice       *float64
	maxPrice       *float64

	sortBy    BookSortColumn
	sortOrder SortOrder
}

// NewBookQueryConditions creates empty conditions: no filters, sorted by
// book_id ascending.
func NewBookQueryConditions() BookQueryConditions {
	return BookQueryConditions{
		sortBy:    BookSortByID,
		sortOrder: SortAsc,
	}
}

// WithCategory adds an exact-match category filter.
// Empty or all-whitespace input leaves the conditions unchanged.
func (c BookQueryConditions) WithCategory(category string) BookQueryConditions {
	c.category = strings.TrimSpace(category)
	return c
}

// WithTitleContains adds a substring filter on the title.
// Empty or all-whitespace input leaves the conditions unchanged.
func (c BookQueryConditions) WithTitleContains(title string) BookQueryConditions {
	c.title = strings.TrimSpace(title)
	return c
}

// WithPressContains adds a substring filter on the press.
// Empty or all-whitespace input leaves the conditions unchanged.
func (c BookQueryConditions) WithPressContains(press string) BookQueryConditions {
	c.press = strings.TrimSpace(press)
	return c
}

// WithAuthorContains adds a substring filter on the author.
// Empty or all-whitespace input leaves the conditions unchanged.
func (c BookQueryConditions) WithAuthorContains(author string) BookQueryConditions {
	c.author = strings.TrimSpace(author)
	return c
}

// WithMinPublishYear adds an inclusive lower bound on the publish year.
func (c BookQueryConditions) WithMinPublishYear(year int) BookQueryConditions {
	c.minPublishYear = &year
	return c
}

// WithMaxPublishYear adds an inclusive upper bound on the publish year.
func (c BookQueryConditions) WithMaxPublishYear(year int) BookQueryConditions {
	c.maxPublishYear = &year
	return c
}

// WithMinPrice adds an inclusive lower bound on the price.
func (c BookQueryConditions) WithMinPrice(price float64) BookQueryConditions {
	c.minPrice = &price
	return c
}

// WithMaxPrice adds an inclusive upper bound on the price.
func (c BookQueryConditions) WithMaxPrice(price float64) BookQueryConditions {
	c.maxPrice = &price
	return c
}

// SortedBy sets the sort column and direction. Invalid input falls back to
// the defaults (book_id ascending).
func (c BookQueryConditions) SortedBy(column BookSortColumn, order SortOrder) BookQueryConditions {
	if !column.IsValid() {
		column = BookSortByID
	}

	if !order.IsValid() {
		order = SortAsc
	}

	c.sortBy = column
	c.sortOrder = order

	return c
}

// Category returns the exact-match category filter, if one is active.
func (c BookQueryConditions) Category() (string, bool) {
	return c.category, c.category != ""
}

// TitleContains returns the title substring filter, if one is active.
func (c BookQueryConditions) TitleContains() (string, bool) {
	return c.title, c.title != ""
}

// PressContains returns the press substring filter, if one is active.
func (c BookQueryConditions) PressContains() (string, bool) {
	return c.press, c.press != ""
}

// AuthorContains returns the author substring filter, if one is active.
func (c BookQueryConditions) AuthorContains() (string, bool) {
	return c.author, c.author != ""
}

// MinPublishYear returns the inclusive publish-year lower bound, if active.
func (c BookQueryConditions) MinPublishYear() (int, bool) {
	if c.minPublishYear == nil {
		return 0, false
	}
	return *c.minPublishYear, true
}

// MaxPublishYear returns the inclusive publish-year upper bound, if active.
func (c BookQueryConditions) MaxPublishYear() (int, bool) {
	if c.maxPublishYear == nil {
		return 0, false
	}
	return *c.maxPublishYear, true
}

// MinPrice returns the inclusive price lower bound, if active.
func (c BookQueryConditions) MinPrice() (float64, bool) {
	if c.minPrice == nil {
		return 0, false
	}
	return *c.minPrice, true
}

// MaxPrice returns the inclusive price upper bound, if active.
func (c BookQueryConditions) MaxPrice() (float64, bool) {
	if c.maxPrice == nil {
		return 0, false
	}
	return *c.maxPrice, true
}

// SortBy returns the sort column; BookSortByID when none was requested.
func (c BookQueryConditions) SortBy() BookSortColumn {
	if !c.sortBy.IsValid() {
		return BookSortByID
	}
	return c.sortBy
}

// SortOrder returns the sort direction; SortAsc when none was requested.
func (c BookQueryConditions) SortOrder() SortOrder {
	if !c.sortOrder.IsValid() {
		return SortAsc
	}
	return c.sortOrder
}
