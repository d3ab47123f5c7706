package shared

import "errors"

// Error kinds shared by every domain package. Domain sentinels wrap one of
// these so the transport layer can map them without knowing the domain.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the request payload violates a rule.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the request clashes with current state.
	ErrConflict = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NewError returns an error with its own message that still matches kind
// under errors.Is.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
