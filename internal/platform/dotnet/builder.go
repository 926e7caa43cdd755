// Package dotnet implements the .NET platform builder. It is the reference
// implementation of the lifecycle every platform builder follows: resolve
// the project descriptor, restore, replace the artifact directory, publish,
// then derive a manifest by read-only inspection.
package dotnet

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	dperrors "github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/execx"
	"github.com/jmsierra/deploypack/internal/platform"
	"github.com/jmsierra/deploypack/internal/settings"
	"github.com/jmsierra/deploypack/pkg/fileutil"
)

// projectExts are the recognized .NET project descriptor extensions.
var projectExts = []string{".csproj", ".fsproj", ".vbproj"}

// targetFrameworkRe extracts the runtime version from a project file's
// TargetFramework element, e.g. <TargetFramework>net8.0</TargetFramework>.
var targetFrameworkRe = regexp.MustCompile(`<TargetFramework>\s*net(\d+\.\d+)\s*</TargetFramework>`)

// versionPrefixRe extracts major.minor from a toolchain version probe,
// e.g. "8.0.204" -> "8.0".
var versionPrefixRe = regexp.MustCompile(`^(\d+\.\d+)`)

// Builder builds .NET projects with the dotnet CLI.
//
// Builder is stateless with respect to project identity; one instance may
// serve concurrent builds of distinct directories.
type Builder struct {
	// FallbackVersion is the runtime version recorded in the manifest when
	// neither the project file nor the installed toolchain yields one.
	FallbackVersion string
}

var _ platform.Builder = (*Builder)(nil)

// New creates a .NET builder with the given fallback runtime version.
func New(fallbackVersion string) *Builder {
	return &Builder{FallbackVersion: fallbackVersion}
}

// Name returns the platform this builder serves.
func (b *Builder) Name() platform.Platform {
	return platform.DotNet
}

// ValidateEnvironment probes for the dotnet CLI.
func (b *Builder) ValidateEnvironment(ctx context.Context, tools platform.Tools) bool {
	res := tools.Exec.Run(ctx, execx.Spec{Program: "dotnet", Args: []string{"--version"}})
	if !res.Success {
		tools.Log.Debug("dotnet toolchain not found", "stderr", strings.TrimSpace(res.Stderr))
	}
	return res.Success
}

// Clean runs `dotnet clean` against the resolved project file.
func (b *Builder) Clean(ctx context.Context, tools platform.Tools, projectDir string) error {
	proj, err := resolveProject(projectDir, tools)
	if err != nil {
		return err
	}

	res := tools.Exec.Run(ctx, execx.Spec{
		Program: "dotnet",
		Args:    []string{"clean", proj},
		Dir:     projectDir,
	})
	if !res.Success {
		return errors.Wrapf(dperrors.ErrToolInvocationFailed,
			"dotnet clean exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	tools.Log.Info("cleaned project", "project", filepath.Base(proj))
	return nil
}

// Build restores, clears any stale artifact directory at outputPath, and
// publishes a Release build into it.
func (b *Builder) Build(ctx context.Context, tools platform.Tools, projectDir, outputPath string, verbose bool) (string, error) {
	proj, err := resolveProject(projectDir, tools)
	if err != nil {
		return "", err
	}

	restore := execx.Spec{Program: "dotnet", Args: []string{"restore", proj}, Dir: projectDir}
	res := invoke(ctx, tools, restore, verbose)
	if !res.Success {
		return "", errors.Wrapf(dperrors.ErrToolInvocationFailed,
			"restore step: dotnet restore exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	// The artifact directory is a replacement, never a merge.
	if err := os.RemoveAll(outputPath); err != nil {
		return "", errors.Wrap(err, "publish step: removing stale artifact directory")
	}

	publish := execx.Spec{
		Program: "dotnet",
		Args:    []string{"publish", proj, "-c", "Release", "-o", outputPath},
		Dir:     projectDir,
	}
	res = invoke(ctx, tools, publish, verbose)
	if !res.Success {
		return "", errors.Wrapf(dperrors.ErrToolInvocationFailed,
			"publish step: dotnet publish exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	if info, err := os.Stat(outputPath); err != nil || !info.IsDir() {
		return "", errors.Wrapf(dperrors.ErrArtifactMissing,
			"publish reported success but %s does not exist", outputPath)
	}

	tools.Log.Info("published project", "project", filepath.Base(proj), "output", outputPath)
	return outputPath, nil
}

// CreateManifest derives the runtime version and start command from the
// resolved project file and the published artifact. It never re-invokes
// the build.
func (b *Builder) CreateManifest(ctx context.Context, tools platform.Tools, projectDir, artifactPath string) (*platform.Manifest, error) {
	proj, err := resolveProject(projectDir, tools)
	if err != nil {
		return nil, err
	}

	version := b.runtimeVersion(ctx, tools, proj)

	assembly, err := locateAssembly(proj, artifactPath)
	if err != nil {
		return nil, err
	}

	return &platform.Manifest{
		Platform: string(platform.DotNet),
		Version:  version,
		Command:  "dotnet " + assembly,
	}, nil
}

// ConvertEnvironmentToDeploymentSettings converts the project's .env into
// the deployment system's app-settings JSON.
func (b *Builder) ConvertEnvironmentToDeploymentSettings(ctx context.Context, tools platform.Tools, projectDir, resourceGroup, appName string, verbose bool) error {
	_, err := settings.Convert(projectDir, resourceGroup, appName, tools.Log)
	return err
}

// runtimeVersion resolves the manifest version: project metadata first,
// then the installed toolchain's own version, then the fixed fallback.
func (b *Builder) runtimeVersion(ctx context.Context, tools platform.Tools, proj string) string {
	if data, err := fileutil.ReadFileWithLimit(proj); err == nil {
		if m := targetFrameworkRe.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}

	res := tools.Exec.Run(ctx, execx.Spec{Program: "dotnet", Args: []string{"--version"}})
	if res.Success {
		if m := versionPrefixRe.FindString(strings.TrimSpace(res.Stdout)); m != "" {
			tools.Log.Debug("runtime version taken from installed toolchain", "version", m)
			return m
		}
	}

	tools.Log.Debug("runtime version fell back to fixed default", "version", b.FallbackVersion)
	return b.FallbackVersion
}

// resolveProject scans projectDir's top level for a .NET project file.
// Zero matches fail; multiple matches pick the first in sorted order with
// a warning, since multi-project repositories are common and a sensible
// default must still let the pipeline proceed.
func resolveProject(projectDir string, tools platform.Tools) (string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return "", errors.Wrapf(dperrors.ErrProjectNotFound, "reading %s", projectDir)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range projectExts {
			if ext == want {
				matches = append(matches, e.Name())
			}
		}
	}

	if len(matches) == 0 {
		return "", errors.Wrapf(dperrors.ErrProjectNotFound,
			"no %s file in %s", strings.Join(projectExts, "/"), projectDir)
	}

	sort.Strings(matches)
	if len(matches) > 1 {
		tools.Log.Warn("multiple project files found, using first",
			"chosen", matches[0],
			"ignored", strings.Join(matches[1:], ", "))
	}

	return filepath.Join(projectDir, matches[0]), nil
}

// locateAssembly finds the runnable assembly in the artifact directory.
// The project file's base name is authoritative; when that dll is absent,
// a lone dll with a matching deps.json is accepted instead.
func locateAssembly(proj, artifactPath string) (string, error) {
	want := strings.TrimSuffix(filepath.Base(proj), filepath.Ext(proj)) + ".dll"
	if _, err := os.Stat(filepath.Join(artifactPath, want)); err == nil {
		return want, nil
	}

	entries, err := os.ReadDir(artifactPath)
	if err != nil {
		return "", errors.Wrapf(dperrors.ErrManifestDetectionFailed,
			"reading artifact directory %s", artifactPath)
	}

	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".deps.json") {
			continue
		}
		dll := strings.TrimSuffix(name, ".deps.json") + ".dll"
		if _, err := os.Stat(filepath.Join(artifactPath, dll)); err == nil {
			candidates = append(candidates, dll)
		}
	}

	if len(candidates) != 1 {
		return "", errors.Wrapf(dperrors.ErrManifestDetectionFailed,
			"expected one runnable assembly in %s, found %d", artifactPath, len(candidates))
	}
	return candidates[0], nil
}

// invoke streams output when verbose, captures quietly otherwise.
func invoke(ctx context.Context, tools platform.Tools, spec execx.Spec, verbose bool) execx.Result {
	if verbose {
		return tools.Exec.Stream(ctx, spec)
	}
	return tools.Exec.Run(ctx, spec)
}
