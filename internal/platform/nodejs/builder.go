// Package nodejs implements the Node.js platform builder on top of npm.
//
// npm has no clean verb and no publish-to-directory verb, so the lifecycle
// maps as: Clean runs the project's own `clean` script when one exists and
// drops node_modules; Build restores with npm ci/install and stages the
// project tree (including node_modules) into the artifact directory.
package nodejs

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	dperrors "github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/execx"
	"github.com/jmsierra/deploypack/internal/platform"
	"github.com/jmsierra/deploypack/pkg/fileutil"
)

const descriptorFile = "package.json"

// entryCandidates are probed, in order, when package.json declares neither
// a start script nor a main module.
var entryCandidates = []string{"server.js", "index.js", "app.js"}

// versionRe extracts a numeric version prefix from engine constraints and
// probe output, e.g. ">=20.11" -> "20.11", "v22.3.0" -> "22.3".
var versionRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// packageJSON is the subset of package.json the builder inspects.
type packageJSON struct {
	Main    string            `json:"main"`
	Scripts map[string]string `json:"scripts"`
	Engines struct {
		Node string `json:"node"`
	} `json:"engines"`
}

// Builder builds Node.js projects with npm. It is stateless with respect
// to project identity.
type Builder struct {
	// FallbackVersion is used when neither package.json engines nor the
	// installed node yields a version.
	FallbackVersion string
}

var _ platform.Builder = (*Builder)(nil)

// New creates a Node.js builder with the given fallback runtime version.
func New(fallbackVersion string) *Builder {
	return &Builder{FallbackVersion: fallbackVersion}
}

// Name returns the platform this builder serves.
func (b *Builder) Name() platform.Platform {
	return platform.Node
}

// ValidateEnvironment probes for node and npm.
func (b *Builder) ValidateEnvironment(ctx context.Context, tools platform.Tools) bool {
	for _, program := range []string{"node", "npm"} {
		res := tools.Exec.Run(ctx, execx.Spec{Program: program, Args: []string{"--version"}})
		if !res.Success {
			tools.Log.Debug("toolchain probe failed", "program", program,
				"stderr", strings.TrimSpace(res.Stderr))
			return false
		}
	}
	return true
}

// Clean runs the project's clean script when one exists and removes
// node_modules.
func (b *Builder) Clean(ctx context.Context, tools platform.Tools, projectDir string) error {
	if _, err := readDescriptor(projectDir); err != nil {
		return err
	}

	res := tools.Exec.Run(ctx, execx.Spec{
		Program: "npm",
		Args:    []string{"run", "clean", "--if-present"},
		Dir:     projectDir,
	})
	if !res.Success {
		return errors.Wrapf(dperrors.ErrToolInvocationFailed,
			"npm run clean exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	if err := os.RemoveAll(filepath.Join(projectDir, "node_modules")); err != nil {
		return errors.Wrap(err, "removing node_modules")
	}

	tools.Log.Info("cleaned project", "dir", projectDir)
	return nil
}

// Build restores dependencies and stages the project tree into outputPath.
func (b *Builder) Build(ctx context.Context, tools platform.Tools, projectDir, outputPath string, verbose bool) (string, error) {
	if _, err := readDescriptor(projectDir); err != nil {
		return "", err
	}

	install := []string{"install"}
	if _, err := os.Stat(filepath.Join(projectDir, "package-lock.json")); err == nil {
		install = []string{"ci"}
	}
	spec := execx.Spec{Program: "npm", Args: install, Dir: projectDir}

	var res execx.Result
	if verbose {
		res = tools.Exec.Stream(ctx, spec)
	} else {
		res = tools.Exec.Run(ctx, spec)
	}
	if !res.Success {
		return "", errors.Wrapf(dperrors.ErrToolInvocationFailed,
			"restore step: npm %s exited %d: %s", install[0], res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	// The artifact directory is a replacement, never a merge.
	if err := os.RemoveAll(outputPath); err != nil {
		return "", errors.Wrap(err, "package step: removing stale artifact directory")
	}

	skip := map[string]bool{".git": true}
	if err := fileutil.CopyDir(projectDir, outputPath, skip); err != nil {
		return "", errors.Wrap(err, "package step: staging project tree")
	}

	if info, err := os.Stat(outputPath); err != nil || !info.IsDir() {
		return "", errors.Wrapf(dperrors.ErrArtifactMissing,
			"packaging reported success but %s does not exist", outputPath)
	}

	tools.Log.Info("packaged project", "dir", projectDir, "output", outputPath)
	return outputPath, nil
}

// CreateManifest derives the version and start command from package.json
// and the artifact layout.
func (b *Builder) CreateManifest(ctx context.Context, tools platform.Tools, projectDir, artifactPath string) (*platform.Manifest, error) {
	pkg, err := readDescriptor(projectDir)
	if err != nil {
		return nil, err
	}

	version := b.runtimeVersion(ctx, tools, pkg)

	command, err := startCommand(pkg, artifactPath)
	if err != nil {
		return nil, err
	}

	return &platform.Manifest{
		Platform: string(platform.Node),
		Version:  version,
		Command:  command,
	}, nil
}

// ConvertEnvironmentToDeploymentSettings is a no-op: the Node.js deployment
// target consumes .env directly.
func (b *Builder) ConvertEnvironmentToDeploymentSettings(ctx context.Context, tools platform.Tools, projectDir, resourceGroup, appName string, verbose bool) error {
	tools.Log.Debug("deployment target consumes .env directly, nothing to convert",
		"app", appName)
	return nil
}

func (b *Builder) runtimeVersion(ctx context.Context, tools platform.Tools, pkg *packageJSON) string {
	if m := versionRe.FindString(pkg.Engines.Node); m != "" {
		return m
	}

	res := tools.Exec.Run(ctx, execx.Spec{Program: "node", Args: []string{"--version"}})
	if res.Success {
		if m := versionRe.FindString(strings.TrimSpace(res.Stdout)); m != "" {
			tools.Log.Debug("runtime version taken from installed toolchain", "version", m)
			return m
		}
	}

	tools.Log.Debug("runtime version fell back to fixed default", "version", b.FallbackVersion)
	return b.FallbackVersion
}

// startCommand resolves the manifest command: an explicit start script wins,
// then the declared main module, then well-known entry files in the artifact.
func startCommand(pkg *packageJSON, artifactPath string) (string, error) {
	if _, ok := pkg.Scripts["start"]; ok {
		return "npm start", nil
	}

	if pkg.Main != "" {
		if _, err := os.Stat(filepath.Join(artifactPath, pkg.Main)); err == nil {
			return "node " + pkg.Main, nil
		}
	}

	for _, candidate := range entryCandidates {
		if _, err := os.Stat(filepath.Join(artifactPath, candidate)); err == nil {
			return "node " + candidate, nil
		}
	}

	return "", errors.Wrapf(dperrors.ErrManifestDetectionFailed,
		"no start script, main module or entry file in %s", artifactPath)
}

func readDescriptor(projectDir string) (*packageJSON, error) {
	path := filepath.Join(projectDir, descriptorFile)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(dperrors.ErrProjectNotFound, "no %s in %s", descriptorFile, projectDir)
	}

	var pkg packageJSON
	if err := fileutil.ReadJSON(path, &pkg); err != nil {
		return nil, errors.Wrapf(dperrors.ErrProjectNotFound, "unreadable %s: %v", descriptorFile, err)
	}
	return &pkg, nil
}
