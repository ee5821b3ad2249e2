package service

import (
	"errors"
	"strings"
)

// ValidationError is a client caused rejection with one message per failed check.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid payload: " + strings.Join(e.Messages, "; ")
}

// PersistenceError wraps a store failure. Its cause is logged, never returned to callers.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persisting measurement: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Sentinel errors for the command dispatcher.
var (
	ErrUnknownMethod   = errors.New("unknown method")
	ErrHardwareMissing = errors.New("hardware not found")
	ErrNotSupported    = errors.New("method not supported by target")
	ErrThrottled       = errors.New("not enough time elapsed since last call")
	ErrDispatch        = errors.New("device invocation failed")
)
