package conflict

import (
	"errors"
	"fmt"
)

// Parse failures. They are always wrapped in a *ParseError.
var (
	ErrOrphanEnd            = errors.New("conflict end marker without start marker")
	ErrOrphanBase           = errors.New("conflict base marker without start marker")
	ErrOrphanSeparator      = errors.New("conflict separator marker without start marker")
	ErrMissingBase          = errors.New("conflict is missing the base content, try running: git config --global merge.conflictstyle diff3")
	ErrMissingSeparator     = errors.New("conflict end marker before the separator marker")
	ErrNestedConflict       = errors.New("conflict start marker inside a conflict")
	ErrMalformedConflict    = errors.New("conflict markers out of order")
	ErrUnterminatedConflict = errors.New("conflict not closed before end of file")
)

// ParseError locates a marker that made a file unparseable.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
