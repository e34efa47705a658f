package ledger

import (
	"errors"
	"fmt"
)

var ErrPersistence = errors.New("ledger persistence failed")

// PersistenceError wraps a failure of the durable slot. Op is "load" or
// "write". It matches ErrPersistence.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s ledger: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
