package schedule

import (
	"errors"
	"fmt"

	"github.com/dukerupert/eventledger/internal/model"
)

var (
	ErrValidation = errors.New("invalid event")
	ErrClash      = errors.New("event clashes with an existing event")
	ErrNotFound   = errors.New("event not found")
	ErrCapacity   = errors.New("event is full")
)

// ValidationError describes a malformed candidate. It matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ClashError reports the first stored event whose span overlaps the
// candidate. It matches ErrClash.
type ClashError struct {
	Conflict model.Event
}

func (e *ClashError) Error() string {
	return fmt.Sprintf("clashes with %q on %s %s-%s",
		e.Conflict.Name, e.Conflict.Date, e.Conflict.StartTime, e.Conflict.EndTime)
}

func (e *ClashError) Is(target error) bool { return target == ErrClash }
