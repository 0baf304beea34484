package trackapi

import (
	"errors"
	"fmt"
)

// The tracking API reports every failure the same way on the wire: success
// is absent and an error text is present. Callers react very differently
// depending on what kind of failure it was, so responses are classified into
// distinct error types here, at the protocol boundary:
//
//   - AuthError aborts the whole trip; no order can proceed without a session.
//   - TransientError is retried inside the client and only escapes when the
//     retry budget is exhausted.
//   - SemanticError fails the order (or stop) that caused it and nothing else.
//   - ProtocolError means the response could not be understood at all.

// AuthError indicates a failed login or a rejected session.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("tracking authentication failed: %s", e.Message)
}

// SessionInvalid marks the error as fatal for the whole trip.
// Implements ports.SessionError.
func (e *AuthError) SessionInvalid() bool {
	return true
}

// TransientError wraps a failure worth retrying: a network error, a timeout
// or a server-side 5xx response.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("tracking call %s failed transiently: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// SemanticError is a rejection by the tracking system's business rules, such
// as an unknown unit or an oversized split. Error returns the remote error
// text verbatim so it can be stored on the failed order unchanged.
type SemanticError struct {
	Message string
	Code    string
}

func (e *SemanticError) Error() string {
	return e.Message
}

// ProtocolError indicates a response the client could not interpret: invalid
// JSON, a missing field or a payload shape the API contract does not allow.
type ProtocolError struct {
	Op      string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("tracking call %s returned malformed response: %s", e.Op, e.Message)
}

// IsTransient reports whether err is a TransientError anywhere in its chain.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsAuth reports whether err is an AuthError anywhere in its chain.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// IsSemantic reports whether err is a SemanticError anywhere in its chain.
func IsSemantic(err error) bool {
	var s *SemanticError
	return errors.As(err, &s)
}
