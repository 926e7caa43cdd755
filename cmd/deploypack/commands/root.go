// Package commands implements the CLI commands for deploypack.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmsierra/deploypack/cmd"
	"github.com/jmsierra/deploypack/internal/config"
	"github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// cfg is the loaded configuration, populated by initConfig.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"path to config file (default: search . and XDG config dir)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("deploypack version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "deploypack",
	Short: "Build and package projects for deployment",
	Long: `deploypack detects the platform of a project directory, runs its
native build toolchain, and produces a deployable artifact directory
with a normalized deployment manifest.

Supported platforms: .NET (dotnet), Node.js (node), Python (python).
Detection is by marker files: *.csproj/*.fsproj/*.vbproj for .NET,
package.json for Node.js, requirements.txt/setup.py/pyproject.toml
for Python. When several platforms match, .NET wins over Node.js,
and Node.js over Python.`,
	Example: `  # Detect the platform of the current directory
  deploypack detect

  # Build the current directory into ./publish
  deploypack build

  # Build another project to a custom output directory
  deploypack build ./services/api --output dist

  # Check that toolchains and configuration are in order
  deploypack doctor`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if err := setupLogging(c); err != nil {
			return err
		}
		return checkConfig(c, args)
	},
	Run: func(c *cobra.Command, _ []string) {
		_ = c.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(c *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			if val, ok := os.LookupEnv("DEPLOYPACK_DEBUG"); ok && (val == "1" || val == "true") {
				v = 2
			} else if cfg != nil && cfg.VerboseDefault {
				v = 1
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(c.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(c.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig surfaces config load and validation failures before any
// subcommand runs. Help and version bypass it.
func checkConfig(c *cobra.Command, _ []string) error {
	if c.Name() == "help" || c.Name() == "version" {
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return errors.NewConfigError(errs[0])
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
