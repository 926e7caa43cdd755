package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmsierra/deploypack/internal/logging"
)

// writeFiles creates empty files with the given names inside dir.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating parent dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  Platform
	}{
		{name: "csproj", files: []string{"App.csproj"}, want: DotNet},
		{name: "fsproj", files: []string{"App.fsproj"}, want: DotNet},
		{name: "vbproj", files: []string{"App.vbproj"}, want: DotNet},
		{name: "package json", files: []string{"package.json"}, want: Node},
		{name: "js source only", files: []string{"server.js"}, want: Node},
		{name: "ts source only", files: []string{"index.ts"}, want: Node},
		{name: "requirements", files: []string{"requirements.txt"}, want: Python},
		{name: "setup py", files: []string{"setup.py"}, want: Python},
		{name: "pyproject", files: []string{"pyproject.toml"}, want: Python},
		{name: "py source only", files: []string{"main.py"}, want: Python},
		{name: "no markers", files: []string{"README.md", "Makefile"}, want: Unknown},
		{name: "empty directory", files: nil, want: Unknown},

		// Priority ordering: .NET beats everything else, Node beats Python.
		{name: "csproj beats package json", files: []string{"App.csproj", "package.json"}, want: DotNet},
		{name: "csproj beats py and js", files: []string{"App.csproj", "main.py", "util.js"}, want: DotNet},
		{name: "package json beats python markers", files: []string{"package.json", "requirements.txt"}, want: Node},

		// setup.py is a Python descriptor, not a generic .py source; it must
		// not be shadowed by its extension mattering elsewhere.
		{name: "setup py with js wins for node", files: []string{"setup.py", "app.js"}, want: Node},

		// Top-level only: nested markers never classify the root.
		{name: "nested csproj ignored", files: []string{"sub/App.csproj"}, want: Unknown},
		{name: "nested package json ignored", files: []string{"web/package.json"}, want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)

			got := Detect(dir, logging.ForTest(t))
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetect_MissingPath(t *testing.T) {
	got := Detect(filepath.Join(t.TempDir(), "does-not-exist"), logging.ForTest(t))
	if got != Unknown {
		t.Errorf("Detect(missing path) = %q, want %q", got, Unknown)
	}
}

func TestDetect_FileNotDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App.csproj")

	got := Detect(filepath.Join(dir, "App.csproj"), logging.ForTest(t))
	if got != Unknown {
		t.Errorf("Detect(file path) = %q, want %q", got, Unknown)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "requirements.txt", "main.py")

	first := Detect(dir, logging.ForTest(t))
	second := Detect(dir, logging.ForTest(t))
	if first != second {
		t.Errorf("Detect() not idempotent: first %q, second %q", first, second)
	}
}
