// Package patcher isolates invocation of the external patch-execution tool
// behind a narrow interface so tests can substitute a fake.
package patcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// InstallLogName is the log the external patcher may emit inside its
// working patch-data directory. It must be archived before that directory
// is deleted.
const InstallLogName = "installlog.txt"

// Command describes one external patcher invocation.
type Command struct {
	Binary       string // Path to the patcher executable
	GameDir      string // Install target: the resolved reassembly directory
	PatchDataDir string // The resolved temp patch-data directory
}

// Args returns the patcher's argument contract.
func (c Command) Args() []string {
	return []string{"--install", "--game-dir", c.GameDir, "--tslpatchdata", c.PatchDataDir}
}

// Result is the structured outcome of a patcher invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes patcher commands. Run returns an error only when the
// process could not be launched or was cut off; a non-zero exit code is
// reported through Result, not through the error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs the real patcher binary with a bounded timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates a runner. A zero timeout defaults to 30 minutes.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &ExecRunner{Timeout: timeout}
}

// Run invokes the patcher and captures its exit code.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if _, err := os.Stat(c.Binary); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("patcher binary: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Binary, c.Args()...)
	cmd.WaitDelay = 100 * time.Millisecond // Allow graceful shutdown after context cancel
	cmd.Dir = c.PatchDataDir

	out, err := cmd.Output()
	result := Result{Stdout: string(out)}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			result.ExitCode = -1
			return result, fmt.Errorf("patcher timed out after %v", r.Timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			result.Stderr = string(exitErr.Stderr)
			return result, nil
		}
		result.ExitCode = -1
		return result, fmt.Errorf("launching patcher: %w", err)
	}
	return result, nil
}
