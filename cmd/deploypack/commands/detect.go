package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmsierra/deploypack/internal/errors"
	"github.com/jmsierra/deploypack/internal/logging"
	"github.com/jmsierra/deploypack/internal/platform"
)

var detectJSON bool

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false,
		"output result as JSON")
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect [dir]",
	Short: "Detect the platform of a project directory",
	Long: `Inspect a project directory's top-level entries and report which
platform it builds as.

Only the top level of the directory is examined; markers in
subdirectories do not count. When markers for several platforms are
present, .NET takes precedence over Node.js, and Node.js over Python.

Exit codes:
  0 - A platform was detected
  1 - No platform markers found`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func runDetect(c *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	log := logging.FromContext(c.Context())
	detected := platform.Detect(dir, log)

	if detectJSON {
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(map[string]string{"platform": string(detected)}); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	} else {
		fmt.Println(detected)
	}

	if detected == platform.Unknown {
		return errors.NewUserError(errors.ErrPlatformUndetected,
			fmt.Sprintf("no .NET, Node.js, or Python markers found in %s", dir))
	}

	return nil
}
