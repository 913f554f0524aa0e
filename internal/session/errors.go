package session

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSelection = errors.New("invalid card selection")
	ErrNoMatch          = errors.New("no match for this session")
	ErrForbidden        = errors.New("admin privileges required")
	ErrUnknownSession   = errors.New("unknown session")
)

// PersistenceError reports a storage call that failed after the in-memory
// state was already updated. The result returned alongside it is valid.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
