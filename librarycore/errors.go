package librarycore

import (
	"errors"
)

var (
	// ErrDuplicateEntity signals a natural-key collision on insert.
	ErrDuplicateEntity = errors.New("entity with the same natural key already exists")

	// ErrNotFound signals that a referenced id or record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals that a deletion is blocked by an existing open loan.
	ErrConflict = errors.New("operation blocked by an open loan")

	// ErrInvalidStock signals that a stock adjustment would drive stock negative.
	ErrInvalidStock = errors.New("stock must not become negative")

	// ErrAlreadyBorrowed signals a duplicate open loan for the same card and book.
	ErrAlreadyBorrowed = errors.New("this card already holds an open loan for this book")

	// ErrInvalidTimeOrder signals a return time earlier than the borrow time.
	ErrInvalidTimeOrder = errors.New("return time must not be earlier than borrow time")

	// ErrCollaboratorFailure wraps any lower-level storage error, including
	// connectivity loss. The underlying error is always joined in.
	ErrCollaboratorFailure = errors.New("storage collaborator failure")
)

var (
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")
	ErrEmptyTablePrefix      = errors.New("empty table prefix supplied")
)
