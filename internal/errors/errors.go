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

	// ExitSystem indicates a system-related error (I/O, toolchain, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrEnvironmentMissing indicates the platform's toolchain is not installed
	// or not invocable. Recoverable only by the user installing it.
	ErrEnvironmentMissing = errors.New("required toolchain not found")

	// ErrProjectNotFound indicates no recognizable project descriptor exists
	// in the project directory.
	ErrProjectNotFound = errors.New("no project file found")

	// ErrToolInvocationFailed indicates an external build command exited
	// non-zero. The wrapping message carries the captured stderr verbatim.
	ErrToolInvocationFailed = errors.New("tool invocation failed")

	// ErrArtifactMissing indicates a build reported success but the expected
	// output directory is absent. Always an internal-consistency fault.
	ErrArtifactMissing = errors.New("build artifact missing")

	// ErrManifestDetectionFailed indicates no unambiguous entry point could
	// be located in the produced artifact.
	ErrManifestDetectionFailed = errors.New("manifest detection failed")

	// ErrPlatformUndetected indicates no known platform markers were found,
	// so no builder can be selected.
	ErrPlatformUndetected = errors.New("platform undetected")

	// ErrUnsafeOutputPath indicates the resolved artifact directory is the
	// project directory itself or one of its ancestors, so replacing it
	// would delete project sources.
	ErrUnsafeOutputPath = errors.New("output path contains project directory")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")
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
// If err is nil, the returned ExitError will have a nil Err field.
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

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: deploypack doctor",
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
