package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeStub writes an executable shell script standing in for the renderer.
func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write stub %s: %v", name, err)
	}
	return path
}

func stubInvocation(t *testing.T, renderer string) Invocation {
	t.Helper()
	inv, err := NewInvocation(renderer, "case.svg", "out.png", "import.py", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return inv
}

func TestRunner_Run(t *testing.T) {
	tmpDir := t.TempDir()
	runner := NewRunner(time.Minute)

	t.Run("zero exit status is success", func(t *testing.T) {
		stub := writeStub(t, tmpDir, "ok.sh", "exit 0")
		if failure := runner.Run(context.Background(), stubInvocation(t, stub)); failure != nil {
			t.Errorf("expected success, got %+v", failure)
		}
	})

	t.Run("nonzero exit captures code and stderr", func(t *testing.T) {
		stub := writeStub(t, tmpDir, "fail.sh", `echo "Error: cannot import curve" >&2; exit 7`)
		failure := runner.Run(context.Background(), stubInvocation(t, stub))
		if failure == nil {
			t.Fatal("expected a process failure")
		}
		if failure.ExitCode != 7 {
			t.Errorf("expected exit code 7, got %d", failure.ExitCode)
		}
		if !strings.Contains(failure.Stderr, "cannot import curve") {
			t.Errorf("expected stderr excerpt, got %q", failure.Stderr)
		}
		if failure.TimedOut {
			t.Error("unexpected timeout flag")
		}
	})

	t.Run("stderr excerpt is bounded", func(t *testing.T) {
		// ~40KB of stderr, far above the captured bound
		stub := writeStub(t, tmpDir, "noisy.sh",
			`i=0; while [ $i -lt 1000 ]; do echo "noise line with some padding text" >&2; i=$((i+1)); done; echo "final error" >&2; exit 1`)
		failure := runner.Run(context.Background(), stubInvocation(t, stub))
		if failure == nil {
			t.Fatal("expected a process failure")
		}
		if len(failure.Stderr) > maxStderrBytes+64 {
			t.Errorf("stderr excerpt not bounded: %d bytes", len(failure.Stderr))
		}
		// The tail is kept, crash messages end up there
		if !strings.Contains(failure.Stderr, "final error") {
			t.Error("expected the tail of stderr to survive truncation")
		}
	})

	t.Run("timeout terminates the subprocess", func(t *testing.T) {
		stub := writeStub(t, tmpDir, "hang.sh", "sleep 30")
		quick := NewRunner(100 * time.Millisecond)

		start := time.Now()
		failure := quick.Run(context.Background(), stubInvocation(t, stub))
		if failure == nil {
			t.Fatal("expected a process failure")
		}
		if !failure.TimedOut {
			t.Error("expected timeout flag")
		}
		if failure.ExitCode != ExitTimeout {
			t.Errorf("expected distinguished timeout code %d, got %d", ExitTimeout, failure.ExitCode)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("subprocess was not terminated promptly: %s", elapsed)
		}
	})

	t.Run("missing binary maps to a failure, not a fault", func(t *testing.T) {
		failure := runner.Run(context.Background(), stubInvocation(t, filepath.Join(tmpDir, "gone.sh")))
		if failure == nil {
			t.Fatal("expected a process failure for a missing binary")
		}
		if failure.Stderr == "" {
			t.Error("expected the start error in the stderr excerpt")
		}
	})
}

func TestTruncateStderr(t *testing.T) {
	short := "short output"
	if got := truncateStderr(short); got != short {
		t.Errorf("short output must pass through unchanged, got %q", got)
	}

	long := strings.Repeat("x", maxStderrBytes*3) + "TAIL"
	got := truncateStderr(long)
	if !strings.HasPrefix(got, "... (truncated)") {
		t.Error("expected truncation marker")
	}
	if !strings.HasSuffix(got, "TAIL") {
		t.Error("expected the tail to be kept")
	}
}
