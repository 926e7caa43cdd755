package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCheck struct {
	name     string
	category string
	status   Severity
}

func (c *staticCheck) Name() string     { return c.name }
func (c *staticCheck) Category() string { return c.category }

func (c *staticCheck) Run() *CheckResult {
	return &CheckResult{
		Name:     c.name,
		Category: c.category,
		Status:   c.status,
		Message:  "static",
	}
}

func TestRunnerAggregatesSeverities(t *testing.T) {
	r := NewRunner()
	r.AddCheck(&staticCheck{name: "a", category: "x", status: SeverityPass})
	r.AddCheck(&staticCheck{name: "b", category: "x", status: SeverityWarning})
	r.AddCheck(&staticCheck{name: "c", category: "y", status: SeverityError})
	r.AddCheck(&staticCheck{name: "d", category: "y", status: SeverityInfo})

	report := r.Run()

	require.Len(t, report.Results, 4)
	assert.Equal(t, 1, report.Summary.Passed)
	assert.Equal(t, 1, report.Summary.Warnings)
	assert.Equal(t, 1, report.Summary.Errors)
	assert.Equal(t, 1, report.Summary.Info)
	assert.True(t, report.HasErrors())
	assert.True(t, report.HasWarnings())
	assert.False(t, report.Timestamp.IsZero())
}

func TestRunnerEmptyReport(t *testing.T) {
	report := NewRunner().Run()

	assert.Empty(t, report.Results)
	assert.Equal(t, Summary{}, report.Summary)
	assert.False(t, report.HasErrors())
	assert.False(t, report.HasWarnings())
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityPass, "pass"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.severity.String())
	}
}

func TestProjectCheckDetectsPlatform(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{}`), 0o644))

	result := (&ProjectCheck{Dir: dir}).Run()

	assert.Equal(t, SeverityPass, result.Status)
	assert.Equal(t, "node", result.Details["platform"])
}

func TestProjectCheckUnknownDirectory(t *testing.T) {
	result := (&ProjectCheck{Dir: t.TempDir()}).Run()

	assert.Equal(t, SeverityInfo, result.Status)
	assert.NotEmpty(t, result.FixHint)
}
