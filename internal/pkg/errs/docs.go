// Package errs provides standardized error types for the trip execution service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// This standardized approach enables error classification with errors.Is at
// adapter boundaries (HTTP status mapping, repository not-found handling)
// while keeping domain validation messages uniform.
package errs
