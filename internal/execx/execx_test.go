package execx

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestSystemRun_CapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	res := NewSystem().Run(context.Background(), Spec{
		Program: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
	})

	if !res.Success {
		t.Fatalf("Run() Success = false, stderr = %q", res.Stderr)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "out\n")
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "err\n")
	}
}

func TestSystemRun_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	res := NewSystem().Run(context.Background(), Spec{
		Program: "sh",
		Args:    []string{"-c", "exit 3"},
	})

	if res.Success {
		t.Error("Run() Success = true, want false")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestSystemRun_MissingProgram(t *testing.T) {
	res := NewSystem().Run(context.Background(), Spec{
		Program: "definitely-not-a-real-program-deploypack",
	})

	if res.Success {
		t.Error("Run() Success = true, want false")
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	if res.Stderr == "" {
		t.Error("Stderr is empty, want start failure message")
	}
}

func TestSystemRun_WorkingDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to pwd")
	}

	dir := t.TempDir()
	res := NewSystem().Run(context.Background(), Spec{Program: "pwd", Dir: dir})

	if !res.Success {
		t.Fatalf("Run() Success = false, stderr = %q", res.Stderr)
	}
	// TempDir may be behind a symlink (e.g. /tmp on macOS), so compare suffixes.
	got := strings.TrimSpace(res.Stdout)
	if !strings.HasSuffix(got, trailingSegment(dir)) {
		t.Errorf("pwd = %q, want dir %q", got, dir)
	}
}

func trailingSegment(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return path
	}
	return path[i:]
}

func TestSystemRun_Cancellation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sleep")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewSystem().Run(ctx, Spec{Program: "sleep", Args: []string{"30"}})
	if res.Success {
		t.Error("Run() with cancelled context Success = true, want false")
	}
}

func TestFake_RecordsCalls(t *testing.T) {
	fake := &Fake{}

	fake.Run(context.Background(), Spec{Program: "dotnet", Args: []string{"--version"}})
	fake.Stream(context.Background(), Spec{Program: "dotnet", Args: []string{"publish", "App.csproj"}})

	lines := fake.CommandLines()
	want := []string{"dotnet --version", "dotnet publish App.csproj"}
	if len(lines) != len(want) {
		t.Fatalf("CommandLines() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("CommandLines()[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFake_DefaultSuccess(t *testing.T) {
	fake := &Fake{}
	res := fake.Run(context.Background(), Spec{Program: "npm", Args: []string{"install"}})
	if !res.Success || res.ExitCode != 0 {
		t.Errorf("default Fake result = %+v, want success", res)
	}
}

func TestFake_HandlerControlsResult(t *testing.T) {
	fake := &Fake{Handler: func(spec Spec) Result {
		if spec.Program == "npm" {
			return Result{Success: false, ExitCode: 1, Stderr: "ERESOLVE"}
		}
		return Result{Success: true}
	}}

	res := fake.Run(context.Background(), Spec{Program: "npm", Args: []string{"install"}})
	if res.Success {
		t.Error("Handler result ignored, got success")
	}
	if res.Stderr != "ERESOLVE" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "ERESOLVE")
	}
}
