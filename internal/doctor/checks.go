package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmsierra/deploypack/internal/config"
	"github.com/jmsierra/deploypack/internal/execx"
	"github.com/jmsierra/deploypack/internal/logging"
	"github.com/jmsierra/deploypack/internal/platform"
)

// ToolchainCheck verifies one platform's build toolchain is installed by
// running its version probe.
type ToolchainCheck struct {
	// Platform is the platform this toolchain serves.
	Platform platform.Platform

	// Programs are the executables probed with --version. All must succeed.
	Programs []string

	// Exec runs the probes.
	Exec execx.Executor
}

var _ Check = (*ToolchainCheck)(nil)

// ToolchainChecks returns one check per supported platform.
func ToolchainChecks(exec execx.Executor) []*ToolchainCheck {
	return []*ToolchainCheck{
		{Platform: platform.DotNet, Programs: []string{"dotnet"}, Exec: exec},
		{Platform: platform.Node, Programs: []string{"node", "npm"}, Exec: exec},
		{Platform: platform.Python, Programs: []string{"python3"}, Exec: exec},
	}
}

// Name returns the unique identifier for this check.
func (c *ToolchainCheck) Name() string {
	return fmt.Sprintf("toolchain-%s", c.Platform)
}

// Category returns the grouping for this check.
func (c *ToolchainCheck) Category() string {
	return "toolchain"
}

// Run executes the toolchain probe and returns its result.
func (c *ToolchainCheck) Run() *CheckResult {
	details := make(map[string]any)
	var missing []string

	for _, program := range c.Programs {
		res := c.Exec.Run(context.Background(), execx.Spec{
			Program: program,
			Args:    []string{"--version"},
		})
		if res.Success {
			details[program] = strings.TrimSpace(res.Stdout)
		} else {
			details[program] = "not found"
			missing = append(missing, program)
		}
	}

	if len(missing) > 0 {
		// A missing toolchain is only a warning: builds of other platforms
		// are unaffected.
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("%s toolchain unavailable (%s)", c.Platform, strings.Join(missing, ", ")),
			Details:  details,
			FixHint:  fmt.Sprintf("install %s to build %s projects", strings.Join(missing, " and "), c.Platform),
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("%s toolchain available", c.Platform),
		Details:  details,
	}
}

// ProjectCheck reports which platform the given directory detects as.
type ProjectCheck struct {
	// Dir is the directory to classify.
	Dir string
}

var _ Check = (*ProjectCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ProjectCheck) Name() string {
	return "project-detection"
}

// Category returns the grouping for this check.
func (c *ProjectCheck) Category() string {
	return "project"
}

// Run executes the detection check and returns its result.
func (c *ProjectCheck) Run() *CheckResult {
	detected := platform.Detect(c.Dir, logging.NewDiscard())

	details := map[string]any{
		"dir":      c.Dir,
		"platform": string(detected),
	}

	if detected == platform.Unknown {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no platform markers in current directory",
			Details:  details,
			FixHint:  "run deploypack from a project directory, or pass one explicitly",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("directory detects as %s", detected),
		Details:  details,
	}
}

// ConfigCheck validates that the configuration loads and passes validation.
type ConfigCheck struct{}

var _ Check = (*ConfigCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config-valid"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run executes the config check and returns its result.
func (c *ConfigCheck) Run() *CheckResult {
	cfg, err := config.Load("")
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  fmt.Sprintf("configuration failed to load: %v", err),
			FixHint:  "fix or remove the config.yaml reported above",
		}
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  "configuration is invalid",
			Details:  map[string]any{"errors": msgs},
			FixHint:  "correct the listed fields in config.yaml",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "configuration loads and validates",
		Details: map[string]any{
			"output_dir": cfg.OutputDir,
		},
	}
}
