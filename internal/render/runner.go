package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"syscall"
	"time"
)

const (
	// ExitTimeout is the distinguished exit code for a timed out case
	ExitTimeout = -2
	// maxStderrBytes bounds the captured stderr excerpt
	maxStderrBytes = 4096
)

// ProcessFailure describes an unsuccessful renderer invocation. A nil
// ProcessFailure means the subprocess completed with exit status zero.
type ProcessFailure struct {
	ExitCode int
	Stderr   string
	TimedOut bool
}

// Runner executes a single renderer invocation as a subprocess
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a Runner enforcing the given per-case timeout
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run executes the invocation and waits for it to finish. Every
// subprocess outcome maps to a ProcessFailure value; Run never returns a
// Go error. A timeout forcibly terminates the subprocess without
// affecting sibling cases.
func (r *Runner) Run(ctx context.Context, inv Invocation) *ProcessFailure {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.Renderer, inv.Args()...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return &ProcessFailure{
			ExitCode: ExitTimeout,
			Stderr:   truncateStderr(stderr.String()),
			TimedOut: true,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code == -1 {
			// Killed by a signal; report it shell-style
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				code = 128 + int(ws.Signal())
			}
		}
		return &ProcessFailure{
			ExitCode: code,
			Stderr:   truncateStderr(stderr.String()),
		}
	}

	// The process never started (binary removed mid-run, permission lost)
	return &ProcessFailure{
		ExitCode: -1,
		Stderr:   truncateStderr(err.Error()),
	}
}

// truncateStderr keeps the tail of the output, where renderer crash
// messages end up
func truncateStderr(s string) string {
	if len(s) <= maxStderrBytes {
		return s
	}
	return "... (truncated)\n" + s[len(s)-maxStderrBytes:]
}
