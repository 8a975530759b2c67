package library

import "github.com/pkg/errors"

// Circulation errors returned by Patron operations.
var (
	ErrInvalidItemKind = errors.New("not a catalog item")
	ErrItemNotBorrowed = errors.New("item is not borrowed by patron")
	ErrItemNotInBranch = errors.New("item is not held by branch")
	ErrInvalidBranch   = errors.New("branch is required")
	ErrInvalidAmount   = errors.New("amount must not be negative")
)

// Parsing errors for configuration and manifest values.
var (
	ErrUnknownItemKind     = errors.New("unknown item kind")
	ErrUnknownBranchPolicy = errors.New("unknown branch policy")
)

// ErrJournalClosed is returned by journal operations after Close.
var ErrJournalClosed = errors.New("journal is closed")
