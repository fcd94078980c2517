package ledger

import "errors"

var (
	// ErrDuplicate marks a record whose (date, type, foreignAmount,
	// exchangeRate) already exist. Reported per record; the batch continues.
	ErrDuplicate = errors.New("duplicate record")

	// ErrValidation marks a missing or malformed input field.
	ErrValidation = errors.New("invalid record")

	// ErrNotFound marks a delete against an absent id.
	ErrNotFound = errors.New("record not found")

	// ErrStorage wraps persistence failures. The enclosing transaction is
	// rolled back in full; a match is never partially applied.
	ErrStorage = errors.New("storage failure")
)
