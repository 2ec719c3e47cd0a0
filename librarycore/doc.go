// Package librarycore provides the core abstractions and types for the
// transactional library management core.
//
// This package defines the entities of the catalog, membership and circulation
// domain, the error taxonomy shared by all engine implementations, the result
// envelope used at host boundaries, and the query-conditions builder for
// catalog searches.
//
// Key types:
//   - Book, Card, Borrow: the persisted entities and their natural keys
//   - BookQueryConditions: criteria for catalog queries (point, fuzzy and
//     range filters plus sorting)
//   - Result: the uniform success/failure/payload envelope for hosts
//
// Common usage pattern:
//
//	conditions := librarycore.NewBookQueryConditions().
//		WithPressContains("Press").
//		WithMinPublishYear(2008).
//		SortedBy(librarycore.BookSortByStock, librarycore.SortDesc)
//
//	books, err := library.QueryBooks(ctx, conditions)
//	if err != nil {
//		// handle error
//	}
//
// The error taxonomy is built on sentinel errors so callers can branch with
// errors.Is; storage failures are wrapped with ErrCollaboratorFailure and
// never escape as raw driver errors.
package librarycore
