// Package cmd holds build metadata injected at link time.
package cmd

// Set via -ldflags "-X github.com/jmsierra/deploypack/cmd.Version=..." and
// friends; the defaults identify a local development build.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
