// Package execx provides the command execution boundary for build toolchains.
//
// Builders never shell out directly; they go through an [Executor] so tests
// can substitute a [Fake] and so cancellation is propagated uniformly into
// every child process.
package execx

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Spec describes a single external program invocation.
type Spec struct {
	// Program is the executable name or path (no shell expansion).
	Program string

	// Args are the program arguments.
	Args []string

	// Dir is the working directory. Empty means the caller's cwd.
	Dir string
}

// Result is the outcome of one process invocation. It is transient and
// never persisted.
type Result struct {
	// Success is true when the process started and exited zero.
	Success bool

	// ExitCode is the process exit code, or -1 if the process failed to start.
	ExitCode int

	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string
}

// Executor runs external toolchain commands.
//
// Run captures output quietly; Stream echoes it live to the caller's
// stdout/stderr while still returning the same Result shape. Both honor
// context cancellation by terminating the child process.
type Executor interface {
	Run(ctx context.Context, spec Spec) Result
	Stream(ctx context.Context, spec Spec) Result
}

// System is the real Executor backed by os/exec.
// It holds no state and is safe for concurrent use.
type System struct{}

var _ Executor = System{}

// NewSystem returns a System executor.
func NewSystem() System {
	return System{}
}

// Run executes the program and captures stdout/stderr.
func (System) Run(ctx context.Context, spec Spec) Result {
	return run(ctx, spec, nil, nil)
}

// Stream executes the program, echoing output live to os.Stdout/os.Stderr
// while also capturing it.
func (System) Stream(ctx context.Context, spec Spec) Result {
	return run(ctx, spec, os.Stdout, os.Stderr)
}

func run(ctx context.Context, spec Spec, echoOut, echoErr io.Writer) Result {
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	if strings.TrimSpace(spec.Dir) != "" {
		cmd.Dir = spec.Dir
	}

	var outBuf, errBuf bytes.Buffer
	if echoOut != nil {
		cmd.Stdout = io.MultiWriter(echoOut, &outBuf)
	} else {
		cmd.Stdout = &outBuf
	}
	if echoErr != nil {
		cmd.Stderr = io.MultiWriter(echoErr, &errBuf)
	} else {
		cmd.Stderr = &errBuf
	}

	if err := cmd.Start(); err != nil {
		return Result{
			Success:  false,
			ExitCode: -1,
			Stderr:   "failed to start " + spec.Program + ": " + err.Error(),
		}
	}

	waitErr := cmd.Wait()

	exitCode := 0
	if waitErr != nil {
		if ee, ok := waitErr.(*exec.ExitError); ok && ee.ProcessState != nil {
			exitCode = ee.ProcessState.ExitCode()
		} else {
			exitCode = 1
		}
	} else if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	return Result{
		Success:  waitErr == nil && exitCode == 0,
		ExitCode: exitCode,
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
	}
}

// LookPath reports whether the named program is on PATH, and its resolved path.
func LookPath(name string) (string, bool) {
	p, err := exec.LookPath(name)
	if err != nil || strings.TrimSpace(p) == "" {
		return "", false
	}
	return p, true
}
