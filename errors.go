package xlsx

import "errors"

// Error kinds. Every failure returned by this package wraps one of these, so
// callers can branch on errors.Is independent of the message wording.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("file does not exist")
	ErrMalformed        = errors.New("malformed document")
	ErrSheetNotFound    = errors.New("sheet not found")
	ErrCorruptReference = errors.New("corrupt reference")
)
