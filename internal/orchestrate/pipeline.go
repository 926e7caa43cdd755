// Package orchestrate runs the platform-agnostic build pipeline:
// detect, select a builder, then validate, clean, build and create the
// deployment manifest, each step gated on the previous step's success.
package orchestrate

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/jmsierra/deploypack/internal/config"
	dperrors "github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/platform"
	"github.com/jmsierra/deploypack/internal/platform/dotnet"
	"github.com/jmsierra/deploypack/internal/platform/nodejs"
	"github.com/jmsierra/deploypack/internal/platform/python"
	"github.com/jmsierra/deploypack/pkg/fileutil"
)

// ManifestFileName is the manifest written into the artifact directory.
const ManifestFileName = "deploypack.manifest.json"

// Step identifies one pipeline stage.
type Step string

const (
	StepDetect   Step = "detect"
	StepValidate Step = "validate"
	StepClean    Step = "clean"
	StepBuild    Step = "build"
	StepManifest Step = "manifest"
)

// StepResult records one executed step and its outcome, so callers can see
// which step failed and why without unwinding wrapped errors.
type StepResult struct {
	Step Step
	Err  error
}

// Options configure one pipeline run.
type Options struct {
	// ProjectDir is the project to build. It must exist and is never
	// mutated except for the artifact directory Build produces.
	ProjectDir string

	// OutputPath is the artifact directory, relative to ProjectDir unless
	// absolute. A pre-existing directory is deleted and recreated by Build.
	OutputPath string

	// Verbose streams toolchain output live.
	Verbose bool

	// SkipClean skips the clean step.
	SkipClean bool

	// WriteManifest persists the manifest into the artifact directory as
	// ManifestFileName.
	WriteManifest bool
}

// Result is the outcome of a pipeline run. Steps records every step that
// ran, in order; on failure the last entry carries the error and Result
// fields populated by later steps stay zero.
type Result struct {
	Platform     platform.Platform
	ArtifactPath string
	Manifest     *platform.Manifest
	ManifestPath string
	Steps        []StepResult
}

// Pipeline runs builds. One Pipeline may serve concurrent runs of distinct
// project directories; running the same directory concurrently into the
// same output path is a caller error.
type Pipeline struct {
	registry *platform.Registry
	tools    platform.Tools
}

// New creates a Pipeline with the given builder registry and collaborators.
func New(registry *platform.Registry, tools platform.Tools) *Pipeline {
	return &Pipeline{registry: registry, tools: tools}
}

// DefaultRegistry builds the registry of all supported platforms using the
// configured fallback runtime versions.
func DefaultRegistry(cfg *config.Config) (*platform.Registry, error) {
	r := platform.NewRegistry()
	builders := []platform.Builder{
		dotnet.New(cfg.FallbackVersions.DotNet),
		nodejs.New(cfg.FallbackVersions.Node),
		python.New(cfg.FallbackVersions.Python),
	}
	for _, b := range builders {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run executes the lifecycle for one project directory. Steps run strictly
// in order and the first fatal step aborts the rest; partial artifacts from
// a failed build are left on disk for inspection.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}
	log := p.tools.Log

	detected := platform.Detect(opts.ProjectDir, log)
	res.Platform = detected
	if detected == platform.Unknown {
		err := errors.Wrapf(dperrors.ErrPlatformUndetected, "%s", opts.ProjectDir)
		res.record(StepDetect, err)
		return res, err
	}
	res.record(StepDetect, nil)
	log.Info("detected platform", "platform", detected, "dir", opts.ProjectDir)

	builder, ok := p.registry.ForPlatform(detected)
	if !ok {
		// Registry and detector cover the same closed set; a miss here is
		// a wiring bug, not a user error.
		err := errors.Newf("no builder registered for platform %q", detected)
		res.record(StepValidate, err)
		return res, err
	}

	if !builder.ValidateEnvironment(ctx, p.tools) {
		err := errors.Wrapf(dperrors.ErrEnvironmentMissing,
			"install the %s toolchain and ensure it is on PATH", detected)
		res.record(StepValidate, err)
		return res, err
	}
	res.record(StepValidate, nil)

	if opts.SkipClean {
		log.Debug("skipping clean step")
	} else {
		if err := builder.Clean(ctx, p.tools, opts.ProjectDir); err != nil {
			res.record(StepClean, err)
			return res, err
		}
		res.record(StepClean, nil)
	}

	outputPath := opts.OutputPath
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(opts.ProjectDir, outputPath)
	}
	if err := guardOutputPath(opts.ProjectDir, outputPath); err != nil {
		res.record(StepBuild, err)
		return res, err
	}

	artifact, err := builder.Build(ctx, p.tools, opts.ProjectDir, outputPath, opts.Verbose)
	if err != nil {
		res.record(StepBuild, err)
		return res, err
	}
	res.ArtifactPath = artifact
	res.record(StepBuild, nil)

	manifest, err := builder.CreateManifest(ctx, p.tools, opts.ProjectDir, artifact)
	if err != nil {
		// The artifact stays on disk; build success is independent of
		// manifest derivability.
		res.record(StepManifest, err)
		return res, err
	}
	res.Manifest = manifest

	if opts.WriteManifest {
		path := filepath.Join(artifact, ManifestFileName)
		if err := fileutil.AtomicWriteJSON(path, manifest); err != nil {
			res.record(StepManifest, err)
			return res, err
		}
		res.ManifestPath = path
	}
	res.record(StepManifest, nil)

	log.Info("pipeline complete",
		"platform", manifest.Platform,
		"version", manifest.Version,
		"command", manifest.Command)
	return res, nil
}

// guardOutputPath rejects output paths whose replacement would take project
// sources with it: builders remove the artifact directory wholesale before
// packaging, so the project directory itself and every ancestor of it are
// off limits. Anything else, inside the project or elsewhere, is fine.
func guardOutputPath(projectDir, outputPath string) error {
	absProject, err := filepath.Abs(projectDir)
	if err != nil {
		return errors.Wrap(err, "resolving project directory")
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return errors.Wrap(err, "resolving output path")
	}

	rel, err := filepath.Rel(absOutput, absProject)
	if err != nil {
		// Different volumes cannot nest
		return nil
	}
	if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.Wrapf(dperrors.ErrUnsafeOutputPath,
			"%s resolves to or above %s", outputPath, absProject)
	}
	return nil
}

func (r *Result) record(step Step, err error) {
	r.Steps = append(r.Steps, StepResult{Step: step, Err: err})
}

// FailedStep returns the step that failed, if any.
func (r *Result) FailedStep() (Step, bool) {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Step, true
		}
	}
	return "", false
}
