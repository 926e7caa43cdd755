// Package python implements the Python platform builder on top of pip.
//
// pip installs into the interpreter's environment rather than an output
// directory, so the lifecycle maps as: Build installs requirements into a
// site-packages directory inside the artifact, then stages the project
// sources next to it. The runtime loads dependencies by adding that
// directory to PYTHONPATH, which the deployment target does for staged
// site-packages layouts.
package python

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"

	dperrors "github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/execx"
	"github.com/jmsierra/deploypack/internal/platform"
	"github.com/jmsierra/deploypack/pkg/fileutil"
)

// descriptorFiles are the recognized Python project descriptors, in
// preference order.
var descriptorFiles = []string{"requirements.txt", "setup.py", "pyproject.toml"}

// entryCandidates are probed, in order, when project metadata declares no
// entry point.
var entryCandidates = []string{"main.py", "app.py", "__main__.py"}

// sitePackagesDir is where Build installs requirements inside the artifact.
const sitePackagesDir = "site-packages"

// versionRe extracts a numeric version from requires-python constraints and
// interpreter probe output, e.g. ">=3.11" -> "3.11", "Python 3.12.1" -> "3.12.1".
var versionRe = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// pyproject is the subset of pyproject.toml the builder inspects.
type pyproject struct {
	Project struct {
		RequiresPython string            `toml:"requires-python"`
		Scripts        map[string]string `toml:"scripts"`
	} `toml:"project"`
}

// Builder builds Python projects with pip. It is stateless with respect to
// project identity.
type Builder struct {
	// FallbackVersion is used when neither pyproject.toml nor the installed
	// interpreter yields a version.
	FallbackVersion string
}

var _ platform.Builder = (*Builder)(nil)

// New creates a Python builder with the given fallback runtime version.
func New(fallbackVersion string) *Builder {
	return &Builder{FallbackVersion: fallbackVersion}
}

// Name returns the platform this builder serves.
func (b *Builder) Name() platform.Platform {
	return platform.Python
}

// ValidateEnvironment probes for a Python 3 interpreter, preferring
// python3 over python.
func (b *Builder) ValidateEnvironment(ctx context.Context, tools platform.Tools) bool {
	_, ok := interpreter(ctx, tools)
	return ok
}

// Clean removes cached build state: __pycache__, egg-info and the pip
// staging leftovers. Python has no toolchain clean verb.
func (b *Builder) Clean(ctx context.Context, tools platform.Tools, projectDir string) error {
	if _, err := resolveDescriptor(projectDir, tools); err != nil {
		return err
	}

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return errors.Wrap(err, "reading project directory")
	}

	for _, e := range entries {
		name := e.Name()
		if name == "__pycache__" || name == "build" || name == "dist" ||
			strings.HasSuffix(name, ".egg-info") {
			if err := os.RemoveAll(filepath.Join(projectDir, name)); err != nil {
				return errors.Wrapf(err, "removing %s", name)
			}
		}
	}

	tools.Log.Info("cleaned project", "dir", projectDir)
	return nil
}

// Build installs requirements into the artifact's site-packages and stages
// the project sources into outputPath.
func (b *Builder) Build(ctx context.Context, tools platform.Tools, projectDir, outputPath string, verbose bool) (string, error) {
	if _, err := resolveDescriptor(projectDir, tools); err != nil {
		return "", err
	}

	python, ok := interpreter(ctx, tools)
	if !ok {
		return "", errors.Wrap(dperrors.ErrEnvironmentMissing, "restore step")
	}

	// The artifact directory is a replacement, never a merge.
	if err := os.RemoveAll(outputPath); err != nil {
		return "", errors.Wrap(err, "package step: removing stale artifact directory")
	}

	skip := map[string]bool{
		".git":          true,
		"__pycache__":   true,
		".venv":         true,
		"venv":          true,
		sitePackagesDir: true,
	}
	if err := fileutil.CopyDir(projectDir, outputPath, skip); err != nil {
		return "", errors.Wrap(err, "package step: staging project sources")
	}

	reqs := filepath.Join(projectDir, "requirements.txt")
	if _, err := os.Stat(reqs); err == nil {
		spec := execx.Spec{
			Program: python,
			Args: []string{"-m", "pip", "install",
				"-r", reqs,
				"--target", filepath.Join(outputPath, sitePackagesDir)},
			Dir: projectDir,
		}

		var res execx.Result
		if verbose {
			res = tools.Exec.Stream(ctx, spec)
		} else {
			res = tools.Exec.Run(ctx, spec)
		}
		if !res.Success {
			return "", errors.Wrapf(dperrors.ErrToolInvocationFailed,
				"restore step: pip install exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		}
	}

	if info, err := os.Stat(outputPath); err != nil || !info.IsDir() {
		return "", errors.Wrapf(dperrors.ErrArtifactMissing,
			"packaging reported success but %s does not exist", outputPath)
	}

	tools.Log.Info("packaged project", "dir", projectDir, "output", outputPath)
	return outputPath, nil
}

// CreateManifest derives the version and start command from pyproject.toml
// and the artifact layout.
func (b *Builder) CreateManifest(ctx context.Context, tools platform.Tools, projectDir, artifactPath string) (*platform.Manifest, error) {
	if _, err := resolveDescriptor(projectDir, tools); err != nil {
		return nil, err
	}

	meta := readPyproject(projectDir)
	version := b.runtimeVersion(ctx, tools, meta)

	entry, err := locateEntry(artifactPath)
	if err != nil {
		return nil, err
	}

	return &platform.Manifest{
		Platform: string(platform.Python),
		Version:  version,
		Command:  "python " + entry,
	}, nil
}

// ConvertEnvironmentToDeploymentSettings is a no-op: the Python deployment
// target consumes .env directly.
func (b *Builder) ConvertEnvironmentToDeploymentSettings(ctx context.Context, tools platform.Tools, projectDir, resourceGroup, appName string, verbose bool) error {
	tools.Log.Debug("deployment target consumes .env directly, nothing to convert",
		"app", appName)
	return nil
}

func (b *Builder) runtimeVersion(ctx context.Context, tools platform.Tools, meta *pyproject) string {
	if meta != nil {
		if m := versionRe.FindString(meta.Project.RequiresPython); m != "" {
			return m
		}
	}

	if python, ok := interpreter(ctx, tools); ok {
		res := tools.Exec.Run(ctx, execx.Spec{Program: python, Args: []string{"--version"}})
		if res.Success {
			// Some interpreters print the version banner on stderr.
			probe := strings.TrimSpace(res.Stdout + " " + res.Stderr)
			if m := versionRe.FindString(probe); m != "" {
				tools.Log.Debug("runtime version taken from installed toolchain", "version", m)
				return m
			}
		}
	}

	tools.Log.Debug("runtime version fell back to fixed default", "version", b.FallbackVersion)
	return b.FallbackVersion
}

// locateEntry resolves the start command's entry file: well-known entry
// files first, then a lone top-level .py file.
func locateEntry(artifactPath string) (string, error) {
	for _, candidate := range entryCandidates {
		if _, err := os.Stat(filepath.Join(artifactPath, candidate)); err == nil {
			return candidate, nil
		}
	}

	entries, err := os.ReadDir(artifactPath)
	if err != nil {
		return "", errors.Wrapf(dperrors.ErrManifestDetectionFailed,
			"reading artifact directory %s", artifactPath)
	}

	var sources []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".py") && e.Name() != "setup.py" {
			sources = append(sources, e.Name())
		}
	}
	if len(sources) == 1 {
		return sources[0], nil
	}

	return "", errors.Wrapf(dperrors.ErrManifestDetectionFailed,
		"expected one unambiguous entry file in %s, found %d candidates", artifactPath, len(sources))
}

// resolveDescriptor finds the project descriptor, preferring explicit
// descriptor files over bare .py sources. Multiple descriptors pick the
// highest-preference one with a warning.
func resolveDescriptor(projectDir string, tools platform.Tools) (string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return "", errors.Wrapf(dperrors.ErrProjectNotFound, "reading %s", projectDir)
	}

	present := make(map[string]bool)
	hasSource := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		present[e.Name()] = true
		if strings.HasSuffix(e.Name(), ".py") {
			hasSource = true
		}
	}

	var found []string
	for _, name := range descriptorFiles {
		if present[name] {
			found = append(found, name)
		}
	}

	if len(found) == 0 {
		if hasSource {
			// Bare sources without a descriptor are still a valid project.
			return projectDir, nil
		}
		return "", errors.Wrapf(dperrors.ErrProjectNotFound,
			"no %s or .py file in %s", strings.Join(descriptorFiles, "/"), projectDir)
	}

	if len(found) > 1 {
		tools.Log.Warn("multiple project descriptors found, using first",
			"chosen", found[0],
			"ignored", strings.Join(found[1:], ", "))
	}

	return filepath.Join(projectDir, found[0]), nil
}

// readPyproject parses pyproject.toml when present; nil otherwise.
func readPyproject(projectDir string) *pyproject {
	data, err := fileutil.ReadFileWithLimit(filepath.Join(projectDir, "pyproject.toml"))
	if err != nil {
		return nil
	}

	var meta pyproject
	if err := toml.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return &meta
}

// interpreter picks the Python 3 interpreter, preferring python3.
func interpreter(ctx context.Context, tools platform.Tools) (string, bool) {
	for _, program := range []string{"python3", "python"} {
		res := tools.Exec.Run(ctx, execx.Spec{Program: program, Args: []string{"--version"}})
		if res.Success {
			return program, true
		}
	}
	tools.Log.Debug("no python interpreter found")
	return "", false
}
