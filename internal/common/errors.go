// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage failure")

	// Validation / admission errors.
	ErrValidation = errors.New("validation error")
	ErrUnknownTag = errors.New("unknown asset tag")

	// Auth errors: token missing, expired, or rejected by the server.
	// The local session must be cleared and the user re-authenticated.
	ErrAuthRequired = errors.New("authentication required")

	ErrInvalidToken = errors.New("invalid token")

	// Service-level errors.
	ErrInternal = errors.New("internal error")
)

// ConflictError reports an admission conflict: the asset tag is already
// assigned to a different serial. ExistingSerial names the current
// assignment so it can be surfaced to the operator.
type ConflictError struct {
	Tag            string
	ExistingSerial string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("asset tag %s is already paired with serial %s", e.Tag, e.ExistingSerial)
}

// RemoteError reports a non-auth HTTP failure from the authority: a non-2xx
// status other than 401, or a transport fault (Status 0).
type RemoteError struct {
	Status int
	Body   string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote fault: %v", e.Err)
	}
	return fmt.Sprintf("remote fault: status %d: %s", e.Status, e.Body)
}

func (e *RemoteError) Unwrap() error { return e.Err }
