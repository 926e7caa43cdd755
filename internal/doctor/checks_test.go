package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsierra/deploypack/internal/execx"
	"github.com/jmsierra/deploypack/internal/platform"
)

func TestToolchainCheckAllProgramsPresent(t *testing.T) {
	exec := &execx.Fake{Handler: func(spec execx.Spec) execx.Result {
		return execx.Result{Success: true, Stdout: "v20.11.0\n"}
	}}

	check := &ToolchainCheck{
		Platform: platform.Node,
		Programs: []string{"node", "npm"},
		Exec:     exec,
	}

	result := check.Run()

	assert.Equal(t, SeverityPass, result.Status)
	assert.Equal(t, "toolchain-node", result.Name)
	assert.Equal(t, "v20.11.0", result.Details["node"])
	assert.Equal(t, []string{"node --version", "npm --version"}, exec.CommandLines())
}

func TestToolchainCheckMissingProgram(t *testing.T) {
	exec := &execx.Fake{Handler: func(spec execx.Spec) execx.Result {
		if spec.Program == "npm" {
			return execx.Result{Success: false, ExitCode: -1}
		}
		return execx.Result{Success: true, Stdout: "v20.11.0"}
	}}

	check := &ToolchainCheck{
		Platform: platform.Node,
		Programs: []string{"node", "npm"},
		Exec:     exec,
	}

	result := check.Run()

	assert.Equal(t, SeverityWarning, result.Status)
	assert.Contains(t, result.Message, "npm")
	assert.Contains(t, result.FixHint, "npm")
	assert.Equal(t, "not found", result.Details["npm"])
}

func TestToolchainChecksCoverAllPlatforms(t *testing.T) {
	checks := ToolchainChecks(&execx.Fake{})

	require.Len(t, checks, len(platform.Platforms()))
	seen := make(map[platform.Platform]bool)
	for _, c := range checks {
		seen[c.Platform] = true
	}
	for _, p := range platform.Platforms() {
		assert.True(t, seen[p], "missing toolchain check for %s", p)
	}
}
