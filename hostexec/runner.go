// Package hostexec runs the console's fixed catalogue of administrative
// commands. Commands are spawned as discrete argument vectors, never
// through a shell, and their failures are classified into a small error
// taxonomy.
package hostexec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single external command when the caller's
// context carries no earlier deadline.
const DefaultTimeout = 30 * time.Second

// Result is the raw outcome of one external command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes one external command and blocks until it exits or the
// context deadline elapses.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner is the production Runner on top of os/exec.
type ExecRunner struct {
	// Timeout bounds each command; zero means DefaultTimeout.
	Timeout time.Duration
}

// Run executes name with args as an argument vector. Non-zero exits are
// classified: permission denials map to ForbiddenError, missing targets
// to NotFoundError, deadline hits to a timeout-flagged ExecutionError
// (the process is killed and reaped by exec), everything else to an
// ExecutionError carrying captured stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	cmdline := strings.Join(append([]string{name}, args...), " ")
	if ctx.Err() == context.DeadlineExceeded {
		log.WithField("cmd", cmdline).Warn("external command timed out")
		return res, &ExecutionError{Cmd: name, Timeout: true}
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// The command could not be started at all.
		return res, &ExecutionError{Cmd: name, Output: err.Error()}
	}
	res.ExitCode = exitErr.ExitCode()
	log.WithFields(log.Fields{"cmd": cmdline, "exit": res.ExitCode, "stderr": res.Stderr}).
		Debug("external command failed")
	return res, classify(name, res)
}

func classify(name string, res Result) error {
	out := strings.ToLower(res.Stderr)
	switch {
	case strings.Contains(out, "permission denied"),
		strings.Contains(out, "operation not permitted"):
		return ForbiddenError("permission denied by operating system")
	case strings.Contains(out, "no such process"):
		return NotFoundError("no such process")
	default:
		return &ExecutionError{Cmd: name, Output: strings.TrimSpace(res.Stderr)}
	}
}
