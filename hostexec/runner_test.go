package hostexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.Zero(t, res.ExitCode)
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "oops", execErr.Output)
	assert.False(t, execErr.Timeout)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{}
	_, err := r.Run(context.Background(), "definitely-not-a-binary-timminet")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.False(t, execErr.Timeout)
}

func TestExecRunnerTimeout(t *testing.T) {
	r := &ExecRunner{Timeout: 50 * time.Millisecond}
	_, err := r.Run(context.Background(), "sleep", "5")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.True(t, execErr.Timeout)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		expected error
	}{
		{
			"permission denied", "kill: (123) - Operation not permitted",
			ForbiddenError("permission denied by operating system"),
		},
		{
			"missing process", "kill: (99999) - No such process",
			NotFoundError("no such process"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("kill", Result{Stderr: tt.stderr, ExitCode: 1})
			assert.Equal(t, tt.expected, err)
		})
	}

	err := classify("ufw", Result{Stderr: "ERROR: something else\n", ExitCode: 1})
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "ERROR: something else", execErr.Output)
}
