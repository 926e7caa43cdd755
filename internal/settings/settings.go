// Package settings converts a project's .env file into the deployment
// system's application settings format.
//
// The produced JSON array matches the shape deployment tooling expects for
// bulk settings import:
//
//	[{"name": "PORT", "value": "8080", "slotSetting": false}, ...]
//
// Platforms whose deployment target consumes .env directly skip this
// conversion entirely.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/jmsierra/deploypack/pkg/fileutil"
)

// EnvFileName is the environment file read from the project directory.
const EnvFileName = ".env"

// validName matches environment variable names acceptable to deployment
// app settings. Anything else is skipped with a warning rather than
// failing the conversion.
var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AppSetting is one converted setting.
type AppSetting struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	SlotSetting bool   `json:"slotSetting"`
}

// Convert reads projectDir/.env and writes <appName>.appsettings.json next
// to it, returning the written path. A missing .env is not an error: there
// is nothing to convert, and Convert returns an empty path.
//
// resourceGroup and appName identify the deployment target; they are
// recorded in the log stream so the produced file can be traced back to
// the app it was generated for.
func Convert(projectDir, resourceGroup, appName string, log *slog.Logger) (string, error) {
	if log == nil {
		log = slog.Default()
	}

	envPath := filepath.Join(projectDir, EnvFileName)
	if _, err := os.Stat(envPath); err != nil {
		if os.IsNotExist(err) {
			log.Debug("no .env file, skipping settings conversion", "path", envPath)
			return "", nil
		}
		return "", errors.Wrap(err, "checking .env file")
	}

	vars, err := godotenv.Read(envPath)
	if err != nil {
		return "", errors.Wrap(err, "parsing .env file")
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		if !validName.MatchString(name) {
			log.Warn("skipping invalid environment variable name", "name", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	converted := make([]AppSetting, 0, len(names))
	for _, name := range names {
		converted = append(converted, AppSetting{
			Name:  name,
			Value: vars[name],
		})
	}

	outPath := filepath.Join(projectDir, fmt.Sprintf("%s.appsettings.json", appName))
	if err := fileutil.AtomicWriteJSON(outPath, converted); err != nil {
		return "", errors.Wrap(err, "writing app settings")
	}

	log.Info("converted environment to deployment settings",
		"resource_group", resourceGroup,
		"app", appName,
		"settings", len(converted),
		"path", outPath)

	return outPath, nil
}
