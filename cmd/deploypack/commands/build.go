package commands

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/execx"
	"github.com/jmsierra/deploypack/internal/logging"
	"github.com/jmsierra/deploypack/internal/orchestrate"
	"github.com/jmsierra/deploypack/internal/platform"
)

var (
	buildOutput    string
	buildManifest  bool
	buildSkipClean bool
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "",
		"artifact directory, relative to the project (default: output_dir from config)")
	buildCmd.Flags().BoolVar(&buildManifest, "manifest", true,
		"write the deployment manifest into the artifact directory")
	buildCmd.Flags().BoolVar(&buildSkipClean, "skip-clean", false,
		"skip the clean step before building")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Build a project into a deployable artifact",
	Long: `Detect the platform of a project directory, run its native build
toolchain, and produce a self-contained artifact directory.

The pipeline runs detect, validate, clean, build, and manifest steps
in order. The first failing step aborts the rest; a partial artifact
from a failed build is left on disk for inspection.

The deployment manifest records the platform, runtime version, and
start command of the artifact. Use --manifest=false to skip writing
it into the artifact directory.`,
	Example: `  # Build the current directory into ./publish
  deploypack build

  # Build a specific project to a custom output directory
  deploypack build ./services/api -o dist

  # Rebuild without cleaning first
  deploypack build --skip-clean`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func runBuild(c *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	outputPath := buildOutput
	if outputPath == "" {
		outputPath = cfg.OutputDir
	}

	log := logging.FromContext(c.Context())

	registry, err := orchestrate.DefaultRegistry(cfg)
	if err != nil {
		return err
	}

	pipeline := orchestrate.New(registry, platform.Tools{
		Exec: execx.NewSystem(),
		Log:  log,
	})

	res, err := pipeline.Run(c.Context(), orchestrate.Options{
		ProjectDir:    projectDir,
		OutputPath:    outputPath,
		Verbose:       verbosity > 0,
		SkipClean:     buildSkipClean,
		WriteManifest: buildManifest,
	})
	if err != nil {
		if step, ok := res.FailedStep(); ok {
			log.Error("build pipeline failed", "step", string(step), slog.Any("error", err))
		}
		return buildExitError(err)
	}

	fmt.Printf("Built %s artifact at %s\n", res.Platform, res.ArtifactPath)
	fmt.Printf("  runtime: %s %s\n", res.Manifest.Platform, res.Manifest.Version)
	fmt.Printf("  command: %s\n", res.Manifest.Command)
	if res.ManifestPath != "" {
		fmt.Printf("  manifest: %s\n", res.ManifestPath)
	}

	return nil
}

// buildExitError maps pipeline failures to exit codes. Missing toolchains
// and failed tool invocations are environment problems; everything else is
// something the user can fix in the project itself.
func buildExitError(err error) error {
	switch {
	case stderrors.Is(err, errors.ErrEnvironmentMissing):
		return errors.NewSystemError(err, "Run: deploypack doctor")
	case stderrors.Is(err, errors.ErrToolInvocationFailed),
		stderrors.Is(err, errors.ErrArtifactMissing):
		return errors.NewExitError(err, errors.ExitSystem)
	case stderrors.Is(err, errors.ErrPlatformUndetected):
		return errors.NewUserError(err, "Run 'deploypack detect' to see what the directory looks like")
	case stderrors.Is(err, errors.ErrUnsafeOutputPath):
		return errors.NewUserError(err, "choose an output directory that is not the project or one of its parents")
	case stderrors.Is(err, errors.ErrProjectNotFound),
		stderrors.Is(err, errors.ErrManifestDetectionFailed):
		return errors.NewExitError(err, errors.ExitUser)
	default:
		return err
	}
}
