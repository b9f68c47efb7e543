package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested server or target was not found.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName indicates a server with the same name already exists
	// in the registry.
	ErrDuplicateName = errors.New("duplicate server name")

	// ErrTargetUnavailable indicates the deployment target's config location
	// does not resolve on this machine.
	ErrTargetUnavailable = errors.New("target unavailable")

	// ErrConfigurationInvalid indicates a server definition failed
	// structural validation.
	ErrConfigurationInvalid = errors.New("invalid server configuration")

	// ErrConflictCritical indicates a critical conflict blocked the batch.
	ErrConflictCritical = errors.New("critical conflict")

	// ErrTransactionIO indicates a disk read/write failure during commit.
	// The whole transaction is rolled back when this occurs.
	ErrTransactionIO = errors.New("transaction I/O failure")

	// ErrSnapshotRestoreFailed indicates rollback itself failed, leaving a
	// target in an indeterminate state. This is never silently swallowed.
	ErrSnapshotRestoreFailed = errors.New("snapshot restore failed")

	// ErrServerDeployed indicates a server still has live deployments and
	// cannot be removed without force.
	ErrServerDeployed = errors.New("server has live deployments")
)

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
