// Package config provides configuration management for the deploypack CLI.
//
// Configuration is loaded with Viper from (in order of precedence) the
// current directory and $XDG_CONFIG_HOME/deploypack/config.yaml, with
// environment variable overrides under the DEPLOYPACK_ prefix. Every value
// has a default, so a missing config file is not an error.
//
// The interesting values are the artifact output directory and the
// per-platform fallback runtime versions used by manifest creation when
// neither project metadata nor the installed toolchain declares a version.
package config
