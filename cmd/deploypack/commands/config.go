package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmsierra/deploypack/internal/config"
	"github.com/jmsierra/deploypack/pkg/fileutil"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage deploypack configuration",
	Long: `Manage deploypack configuration stored in
$XDG_CONFIG_HOME/deploypack/config.yaml.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  deploypack config

  # Get the default artifact directory
  deploypack config get output_dir

  # Change the .NET fallback runtime version
  deploypack config set fallback_versions.dotnet 9.0`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys, e.g. fallback_versions.node.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write it back to the config file.

The new value is validated before it is persisted, so an invalid
setting never reaches disk.`,
	Example: `  # Change the default artifact directory
  deploypack config set output_dir dist

  # Change the Node.js fallback runtime version
  deploypack config set fallback_versions.node 22`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	RunE:  runConfigList,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	Long: `Create the configuration file, seeded with the effective current
values. Fails if the file already exists.`,
	RunE: runConfigInit,
}

func runConfigGet(_ *cobra.Command, args []string) error {
	key := args[0]

	if !viper.IsSet(key) {
		fmt.Println("not set")
		return nil
	}

	// Section keys like fallback_versions come back as maps; render those
	// as YAML instead of an empty GetString.
	if m, ok := viper.Get(key).(map[string]any); ok {
		data, err := yaml.Marshal(m)
		if err != nil {
			return errors.Wrap(err, "marshaling config section")
		}
		fmt.Print(string(data))
		return nil
	}

	fmt.Println(viper.GetString(key))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if !viper.IsSet(key) {
		return errors.Newf("unknown configuration key %q", key)
	}

	viper.Set(key, value)

	// Validate the resulting config before persisting it
	updated, err := config.Load("")
	if err != nil {
		return err
	}
	if errs := config.Validate(updated); len(errs) > 0 {
		return errors.Wrapf(errs[0], "rejecting %s=%s", key, value)
	}

	if err := writeConfig(updated); err != nil {
		return err
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigList(_ *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Print(string(data))
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := configFilePath()

	if _, err := os.Stat(path); err == nil {
		return errors.Newf("config file already exists at %s", path)
	}

	if err := writeConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

// configFilePath is where writes land; reads also consult the cwd, but
// mutations always target the XDG location.
func configFilePath() string {
	return filepath.Join(xdg.ConfigHome, config.AppName, "config.yaml")
}

func writeConfig(c *config.Config) error {
	path := configFilePath()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	return fileutil.AtomicWriteYAML(path, c)
}
