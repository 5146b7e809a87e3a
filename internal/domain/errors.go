package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMessages is returned by a mail client when the list call is empty.
	ErrNoMessages = errors.New("no messages")
	// ErrStepLimitExceeded marks an agent turn that ran out of steps.
	ErrStepLimitExceeded = errors.New("agent step limit exceeded")
	ErrNotFound          = errors.New("not found")
)

// AuthError reports a missing or rejected session or provider token.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unauthorized", e.Op)
	}
	return fmt.Sprintf("%s: unauthorized: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProviderError wraps any mail provider failure other than authorization.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: mail provider error: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ModelSchemaError reports structured model output that failed decoding or
// validation against its schema.
type ModelSchemaError struct {
	Schema string
	Raw    string
	Err    error
}

func (e *ModelSchemaError) Error() string {
	return fmt.Sprintf("model output does not match schema %s: %v", e.Schema, e.Err)
}

func (e *ModelSchemaError) Unwrap() error { return e.Err }

// PersistenceError wraps a store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence error: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsModelSchemaError(err error) bool {
	var me *ModelSchemaError
	return errors.As(err, &me)
}
