package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectCommandNodeProject(t *testing.T) {
	chdir(t, t.TempDir())

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "detect", dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "node" {
		t.Errorf("detect output = %q, want %q", got, "node")
	}
}

func TestDetectCommandJSONOutput(t *testing.T) {
	chdir(t, t.TempDir())
	t.Cleanup(func() { detectJSON = false })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.csproj"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "detect", "--json", dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, `"platform":"dotnet"`) {
		t.Errorf("JSON output = %q, want platform dotnet", out)
	}
}

func TestDetectCommandUnknownDirectoryFails(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "detect", t.TempDir())
	if err == nil {
		t.Fatal("expected error for directory without markers")
	}
	if got := strings.TrimSpace(out); got != "unknown" {
		t.Errorf("detect output = %q, want %q", got, "unknown")
	}
}
