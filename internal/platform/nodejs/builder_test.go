package nodejs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dperrors "github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/execx"
	"github.com/jmsierra/deploypack/internal/logging"
	"github.com/jmsierra/deploypack/internal/platform"
)

func testTools(t *testing.T, fake *execx.Fake) platform.Tools {
	t.Helper()
	return platform.Tools{Exec: fake, Log: logging.ForTest(t)}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestValidateEnvironment_RequiresNodeAndNpm(t *testing.T) {
	fake := &execx.Fake{Handler: func(spec execx.Spec) execx.Result {
		if spec.Program == "npm" {
			return execx.Result{Success: false, ExitCode: 127}
		}
		return execx.Result{Success: true}
	}}

	if New("20").ValidateEnvironment(context.Background(), testTools(t, fake)) {
		t.Error("ValidateEnvironment() = true with npm missing")
	}
}

func TestClean_NoDescriptor(t *testing.T) {
	err := New("20").Clean(context.Background(), testTools(t, &execx.Fake{}), t.TempDir())
	if !errors.Is(err, dperrors.ErrProjectNotFound) {
		t.Errorf("Clean() error = %v, want ErrProjectNotFound", err)
	}
}

func TestClean_RemovesNodeModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, "node_modules/left-pad/index.js", "")

	if err := New("20").Clean(context.Background(), testTools(t, &execx.Fake{}), dir); err != nil {
		t.Fatalf("Clean() returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "node_modules")); !os.IsNotExist(err) {
		t.Error("node_modules survived Clean")
	}
}

func TestBuild_UsesCIWithLockfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, "package-lock.json", `{}`)
	out := filepath.Join(t.TempDir(), "publish")

	fake := &execx.Fake{}
	if _, err := New("20").Build(context.Background(), testTools(t, fake), dir, out, false); err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	lines := fake.CommandLines()
	if len(lines) != 1 || lines[0] != "npm ci" {
		t.Errorf("commands = %v, want [npm ci]", lines)
	}
}

func TestBuild_StagesProjectTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"main":"index.js"}`)
	writeFile(t, dir, "index.js", "console.log('hi')")
	writeFile(t, dir, ".git/HEAD", "ref")
	out := filepath.Join(t.TempDir(), "publish")

	got, err := New("20").Build(context.Background(), testTools(t, &execx.Fake{}), dir, out, false)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if got != out {
		t.Errorf("Build() = %q, want %q", got, out)
	}

	if _, err := os.Stat(filepath.Join(out, "index.js")); err != nil {
		t.Errorf("staged entry file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, ".git")); !os.IsNotExist(err) {
		t.Error(".git was staged into the artifact")
	}
}

func TestBuild_InstallFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)

	fake := &execx.Fake{Handler: func(execx.Spec) execx.Result {
		return execx.Result{Success: false, ExitCode: 1, Stderr: "ERESOLVE unable to resolve"}
	}}

	_, err := New("20").Build(context.Background(), testTools(t, fake), dir, filepath.Join(t.TempDir(), "out"), false)
	if !errors.Is(err, dperrors.ErrToolInvocationFailed) {
		t.Fatalf("Build() error = %v, want ErrToolInvocationFailed", err)
	}
	if !strings.Contains(err.Error(), "restore step") {
		t.Errorf("error %q does not name the failed step", err)
	}
	if !strings.Contains(err.Error(), "ERESOLVE") {
		t.Errorf("error %q does not carry captured stderr", err)
	}
}

func TestCreateManifest_StartScriptWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json",
		`{"scripts":{"start":"node server.js"},"engines":{"node":">=20.11"}}`)

	m, err := New("20").CreateManifest(context.Background(), testTools(t, &execx.Fake{}), dir, t.TempDir())
	if err != nil {
		t.Fatalf("CreateManifest() returned error: %v", err)
	}

	if m.Platform != "node" {
		t.Errorf("Platform = %q, want node", m.Platform)
	}
	if m.Version != "20.11" {
		t.Errorf("Version = %q, want 20.11 from engines", m.Version)
	}
	if m.Command != "npm start" {
		t.Errorf("Command = %q, want %q", m.Command, "npm start")
	}
}

func TestCreateManifest_MainModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"main":"lib/server.js"}`)

	artifact := t.TempDir()
	writeFile(t, artifact, "lib/server.js", "")

	fake := &execx.Fake{Handler: func(execx.Spec) execx.Result {
		return execx.Result{Success: true, Stdout: "v22.3.0\n"}
	}}

	m, err := New("20").CreateManifest(context.Background(), testTools(t, fake), dir, artifact)
	if err != nil {
		t.Fatalf("CreateManifest() returned error: %v", err)
	}
	if m.Command != "node lib/server.js" {
		t.Errorf("Command = %q, want %q", m.Command, "node lib/server.js")
	}
	if m.Version != "22.3" {
		t.Errorf("Version = %q, want 22.3 from node probe", m.Version)
	}
}

func TestCreateManifest_EntryFileProbe(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)

	artifact := t.TempDir()
	writeFile(t, artifact, "index.js", "")

	fake := &execx.Fake{Handler: func(execx.Spec) execx.Result {
		return execx.Result{Success: false, ExitCode: 1}
	}}

	m, err := New("20").CreateManifest(context.Background(), testTools(t, fake), dir, artifact)
	if err != nil {
		t.Fatalf("CreateManifest() returned error: %v", err)
	}
	if m.Command != "node index.js" {
		t.Errorf("Command = %q, want %q", m.Command, "node index.js")
	}
	if m.Version != "20" {
		t.Errorf("Version = %q, want fallback 20", m.Version)
	}
}

func TestCreateManifest_NoEntryPoint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)

	_, err := New("20").CreateManifest(context.Background(), testTools(t, &execx.Fake{}), dir, t.TempDir())
	if !errors.Is(err, dperrors.ErrManifestDetectionFailed) {
		t.Errorf("CreateManifest() error = %v, want ErrManifestDetectionFailed", err)
	}
}

func TestConvertEnvironmentToDeploymentSettings_NoOp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "PORT=3000\n")

	err := New("20").ConvertEnvironmentToDeploymentSettings(
		context.Background(), testTools(t, &execx.Fake{}), dir, "rg", "app", false)
	if err != nil {
		t.Fatalf("ConvertEnvironmentToDeploymentSettings() returned error: %v", err)
	}

	// No settings file is produced; the deployment target reads .env itself.
	if _, err := os.Stat(filepath.Join(dir, "app.appsettings.json")); !os.IsNotExist(err) {
		t.Error("no-op conversion produced a settings file")
	}
}
