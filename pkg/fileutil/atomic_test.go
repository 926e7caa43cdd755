package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	if err := AtomicWriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("AtomicWriteFile() returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}

	// No temp file leftovers
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".deploypack-atomic-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	if err := AtomicWriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}
}

func TestAtomicWriteFile_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := AtomicWriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile() returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	v := map[string]string{"platform": "dotnet", "version": "8.0", "command": "dotnet App.dll"}
	if err := AtomicWriteJSON(path, v); err != nil {
		t.Fatalf("AtomicWriteJSON() returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("missing trailing newline")
	}

	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("written file is not valid JSON: %v", err)
	}
	if got["command"] != "dotnet App.dll" {
		t.Errorf("command = %q, want %q", got["command"], "dotnet App.dll")
	}
}

func TestReadJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := AtomicWriteJSON(path, map[string]int{"n": 3}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got map[string]int
	if err := ReadJSON(path, &got); err != nil {
		t.Fatalf("ReadJSON() returned error: %v", err)
	}
	if got["n"] != 3 {
		t.Errorf("n = %d, want 3", got["n"])
	}
}

func TestReadFileWithLimit_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	if err := os.WriteFile(path, make([]byte, MaxFileSize+1), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := ReadFileWithLimit(path); err == nil {
		t.Error("ReadFileWithLimit() = nil error for oversized file")
	}
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	for _, f := range []string{"index.js", "package.json", "lib/util.js", ".git/HEAD", "node_modules/x/y.js"} {
		path := filepath.Join(src, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(f), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	skip := map[string]bool{".git": true, "node_modules": true}
	if err := CopyDir(src, dst, skip); err != nil {
		t.Fatalf("CopyDir() returned error: %v", err)
	}

	for _, want := range []string{"index.js", "package.json", "lib/util.js"} {
		if _, err := os.Stat(filepath.Join(dst, want)); err != nil {
			t.Errorf("expected %s in destination: %v", want, err)
		}
	}
	for _, skipped := range []string{".git", "node_modules"} {
		if _, err := os.Stat(filepath.Join(dst, skipped)); !os.IsNotExist(err) {
			t.Errorf("skipped entry %s was copied", skipped)
		}
	}
}

func TestCopyDir_DestinationInsideSource(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(src, "publish")

	// A nested directory sharing the destination's base name must still be
	// staged; only the destination itself is excluded.
	for _, f := range []string{"app.py", "assets/publish/logo.txt"} {
		path := filepath.Join(src, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(f), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if err := CopyDir(src, dst, map[string]bool{".git": true}); err != nil {
		t.Fatalf("CopyDir() returned error: %v", err)
	}

	for _, want := range []string{"app.py", "assets/publish/logo.txt"} {
		if _, err := os.Stat(filepath.Join(dst, want)); err != nil {
			t.Errorf("expected %s in destination: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "publish")); !os.IsNotExist(err) {
		t.Error("destination directory copied into itself")
	}
}
