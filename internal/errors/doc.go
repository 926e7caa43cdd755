// Package errors provides error handling conventions for the deploypack CLI.
//
// This package defines sentinel errors for the build pipeline's failure
// taxonomy, an ExitError type for CLI exit code handling, and exit code
// constants following standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, dperrors.ErrProjectNotFound) {
//	    // handle missing project descriptor
//	}
//
// Each sentinel marks one category of pipeline failure:
//
//   - ErrEnvironmentMissing: toolchain absent, user must install it
//   - ErrProjectNotFound: no project descriptor in the directory
//   - ErrToolInvocationFailed: build command exited non-zero
//   - ErrArtifactMissing: build succeeded but output directory absent
//   - ErrManifestDetectionFailed: no unambiguous entry point in artifact
//   - ErrPlatformUndetected: no platform markers, no builder selectable
//   - ErrUnsafeOutputPath: artifact directory resolves onto the project
//     directory or an ancestor of it
//
// None of these are retried automatically; external toolchains are assumed
// idempotent on rerun, but retries are a caller-level policy.
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion for CLI applications. It supports error unwrapping via
// [errors.Unwrap] and [errors.As]:
//
//	err := dperrors.NewUserError(dperrors.ErrPlatformUndetected, "pass a project subdirectory")
//	var exitErr *dperrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
