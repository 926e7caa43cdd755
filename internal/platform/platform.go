package platform

import (
	"context"
	"log/slog"

	"github.com/jmsierra/deploypack/internal/execx"
)

// Platform identifies a project's primary technology stack.
type Platform string

const (
	// DotNet is a .NET project (csproj/fsproj/vbproj).
	DotNet Platform = "dotnet"

	// Node is a Node.js project (package.json or top-level js/ts sources).
	Node Platform = "node"

	// Python is a Python project (requirements.txt, setup.py, pyproject.toml
	// or top-level py sources).
	Python Platform = "python"

	// Unknown means no recognized markers were found. No builder exists for
	// Unknown; callers must surface the condition instead of defaulting.
	Unknown Platform = "unknown"
)

// Platforms returns the buildable platforms in detection priority order.
func Platforms() []Platform {
	return []Platform{DotNet, Node, Python}
}

// Tools carries the collaborators every lifecycle call receives explicitly:
// the command executor and the diagnostics logger. It is immutable, so one
// value may be shared across concurrent builds.
type Tools struct {
	Exec execx.Executor
	Log  *slog.Logger
}

// Manifest is the normalized description of how to start a built artifact.
// It is the sole contract handed to downstream deployment tooling and must
// not change shape.
//
// Command must be directly executable with the artifact directory as the
// working directory, with no further path resolution.
type Manifest struct {
	Platform string `json:"platform"`
	Version  string `json:"version"`
	Command  string `json:"command"`
}

// Builder drives one platform's full build lifecycle.
//
// Implementations hold no mutable state keyed by project identity: every
// method receives the project directory explicitly, so a single Builder
// instance may serve concurrent builds of distinct directories. The steps
// for one project directory are strictly sequential; concurrent builds of
// the same directory into the same output path are a caller error.
type Builder interface {
	// Name returns the platform this builder serves.
	Name() Platform

	// ValidateEnvironment confirms the platform's toolchain is installed and
	// invocable. It returns false, never an error, on absence; callers must
	// treat false as an abort with an actionable message, not retry.
	ValidateEnvironment(ctx context.Context, tools Tools) bool

	// Clean removes prior build state for the resolved project file.
	// It fails with ErrProjectNotFound if no recognizable project descriptor
	// exists in projectDir, and with ErrToolInvocationFailed (carrying the
	// captured stderr) if the underlying clean command exits non-zero.
	Clean(ctx context.Context, tools Tools, projectDir string) error

	// Build runs the full pipeline: resolve project file, restore
	// dependencies, remove any pre-existing artifact directory at outputPath,
	// then package into outputPath, streaming output live when verbose is
	// set. The artifact directory is always a replacement, never a merge.
	// It returns the artifact path, and verifies as a postcondition that the
	// path exists (ErrArtifactMissing otherwise). Each sub-step failure
	// aborts the remaining sub-steps and names the failed step.
	Build(ctx context.Context, tools Tools, projectDir, outputPath string, verbose bool) (string, error)

	// CreateManifest derives the platform tag, a best-effort runtime version
	// and a start command from the artifact layout and project metadata.
	// It never re-invokes the build; inspection is read-only. It fails with
	// ErrManifestDetectionFailed when no unambiguous entry point exists; the
	// artifact remains on disk regardless.
	CreateManifest(ctx context.Context, tools Tools, projectDir, artifactPath string) (*Manifest, error)

	// ConvertEnvironmentToDeploymentSettings translates the project's
	// environment variables into the deployment system's settings format.
	// Platforms whose deployment target consumes .env directly implement
	// this as a no-op that trivially succeeds.
	ConvertEnvironmentToDeploymentSettings(ctx context.Context, tools Tools, projectDir, resourceGroup, appName string, verbose bool) error
}
