package execx

import (
	"context"
	"strings"
	"sync"
)

// Fake is a scripted Executor for tests. The Handler decides each call's
// Result; a nil Handler makes every call succeed with empty output.
//
// Fake records every Spec it receives so tests can assert on invocation
// order and arguments. It is safe for concurrent use.
type Fake struct {
	// Handler computes the Result for a call. May create files or
	// directories to simulate toolchain side effects.
	Handler func(spec Spec) Result

	mu    sync.Mutex
	calls []Spec
}

var _ Executor = (*Fake)(nil)

// Run records the call and returns the scripted result.
func (f *Fake) Run(_ context.Context, spec Spec) Result {
	return f.record(spec)
}

// Stream behaves identically to Run; nothing is echoed.
func (f *Fake) Stream(_ context.Context, spec Spec) Result {
	return f.record(spec)
}

func (f *Fake) record(spec Spec) Result {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	f.mu.Unlock()

	if f.Handler != nil {
		return f.Handler(spec)
	}
	return Result{Success: true, ExitCode: 0}
}

// Calls returns a copy of all recorded invocations.
func (f *Fake) Calls() []Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Spec, len(f.calls))
	copy(out, f.calls)
	return out
}

// CommandLines renders each recorded call as "program arg1 arg2", which
// keeps test assertions readable.
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		parts := append([]string{c.Program}, c.Args...)
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
