package doctor

import "time"

// Check is one diagnostic. Checks never mutate anything; Run inspects and
// reports.
type Check interface {
	// Name returns the unique identifier for this check.
	Name() string

	// Category returns the grouping for this check (e.g., "toolchain", "config").
	Category() string

	// Run executes the diagnostic check and returns its result.
	Run() *CheckResult
}

// Runner executes checks in registration order and aggregates a Report.
type Runner struct {
	checks []Check
}

// NewRunner creates an empty Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// AddCheck registers a check. Order of registration is order of execution.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes every registered check. A failing check never stops the run;
// the report carries all results plus per-severity counts.
func (r *Runner) Run() *Report {
	report := &Report{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		result := check.Run()
		report.Results = append(report.Results, result)

		switch result.Status {
		case SeverityPass:
			report.Summary.Passed++
		case SeverityInfo:
			report.Summary.Info++
		case SeverityWarning:
			report.Summary.Warnings++
		case SeverityError:
			report.Summary.Errors++
		}
	}

	return report
}
