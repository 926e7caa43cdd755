package platform

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Marker extensions and filenames, per platform. Detection is top-level
// only: nested project files must not trigger a false positive for the
// root directory.
var (
	dotnetProjectExts = []string{".csproj", ".fsproj", ".vbproj"}

	nodeMarkerFiles = []string{"package.json"}
	nodeSourceExts  = []string{".js", ".ts"}

	pythonMarkerFiles = []string{"requirements.txt", "setup.py", "pyproject.toml"}
	pythonSourceExts  = []string{".py"}
)

// Detect classifies the directory at path by its top-level file markers.
//
// The scan is ordered and first-match-wins; priority encodes confidence:
//
//  1. .NET: any .csproj/.fsproj/.vbproj file
//  2. Node.js: package.json, or any .js/.ts file
//  3. Python: requirements.txt, setup.py or pyproject.toml, or any .py file
//
// When markers for several platforms coexist (common in full-stack repos),
// .NET wins by priority. Callers relying on Node detection in mixed repos
// must pass a more specific subdirectory.
//
// A missing or non-directory path is a normal detection failure, not an
// error: Detect logs a warning and returns Unknown.
func Detect(path string, log *slog.Logger) Platform {
	if log == nil {
		log = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		log.Warn("project directory not found", "path", path)
		return Unknown
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		log.Warn("project directory not readable", "path", path, "error", err)
		return Unknown
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}

	switch {
	case hasExtension(names, dotnetProjectExts):
		return DotNet
	case hasFile(names, nodeMarkerFiles) || hasExtension(names, nodeSourceExts):
		return Node
	case hasFile(names, pythonMarkerFiles) || hasExtension(names, pythonSourceExts):
		return Python
	default:
		log.Warn("no platform markers found", "path", path)
		return Unknown
	}
}

func hasExtension(names, exts []string) bool {
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range exts {
			if ext == want {
				return true
			}
		}
	}
	return false
}

func hasFile(names, markers []string) bool {
	for _, name := range names {
		for _, want := range markers {
			if name == want {
				return true
			}
		}
	}
	return false
}
