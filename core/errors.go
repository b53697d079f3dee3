package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Argument and lifecycle errors are returned synchronously
// from the call that caused them; computation faults are stored on the task
// and only surface when its result is read.
var (
	// ErrInvalidArgument is the root of all bad-argument errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is the root of all lifecycle misuse errors.
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrInvalidPoolSize  = fmt.Errorf("%w: pool size must be positive", ErrInvalidArgument)
	ErrNilJob           = fmt.Errorf("%w: job is nil", ErrInvalidArgument)
	ErrPoolClosed       = fmt.Errorf("%w: pool is closed", ErrInvalidState)
	ErrTaskClosed       = fmt.Errorf("%w: task is closed", ErrInvalidState)
	ErrAlreadySubmitted = fmt.Errorf("%w: task already submitted", ErrInvalidState)
)

// PanicError is the fault recorded when a computation panics instead of
// returning an error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
