// Package procexec runs external command-line tools and reports what they
// did as a typed result.
//
// Every call captures stdout, stderr and the exit status. A call that cannot
// start, exits non-zero, or is cut short by its context comes back as an
// *ExternalToolError.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Command describes one invocation of an external tool.
type Command struct {
	// Binary is the executable to run (e.g. "afni", "3dinfo").
	Binary string `yaml:"binary"`

	// Args are passed to Binary verbatim; no shell is involved.
	Args []string `yaml:"args,omitempty"`

	// Dir is the working directory. Empty means the current one.
	Dir string `yaml:"dir,omitempty"`

	// Timeout bounds the run. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// String returns the command line for display and logging.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes commands. ExecRunner is the production implementation;
// tests substitute their own.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExternalToolError reports a failed tool invocation.
type ExternalToolError struct {
	Binary string
	Args   []string

	// ExitCode is -1 when the process never started or was killed.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("external tool %s failed", Command{Binary: e.Binary, Args: e.Args})
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner returns a runner that logs through logger. A nil logger
// disables logging.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{logger: logger}
}

// Run executes cmd and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, &ExternalToolError{ExitCode: -1, Err: errors.New("binary is required")}
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	r.logger.Debug("running external tool", zap.Stringer("command", cmd))
	start := time.Now()
	err := c.Run()
	res := &Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		res.ExitCode = 0
		r.logger.Debug("external tool finished",
			zap.String("binary", cmd.Binary),
			zap.Duration("duration", res.Duration))
		return res, nil
	}

	toolErr := &ExternalToolError{
		Binary:   cmd.Binary,
		Args:     cmd.Args,
		ExitCode: -1,
		Stderr:   res.Stderr,
		Err:      err,
	}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		// Killed by deadline or cancellation; report the context error.
		toolErr.Err = ctx.Err()
	case errors.As(err, &exitErr):
		toolErr.ExitCode = exitErr.ExitCode()
		res.ExitCode = toolErr.ExitCode
	}
	r.logger.Warn("external tool failed",
		zap.String("binary", cmd.Binary),
		zap.Int("exit_code", toolErr.ExitCode),
		zap.Error(toolErr.Err))
	return res, toolErr
}

// Output runs cmd and returns its stdout with surrounding whitespace removed.
func Output(ctx context.Context, r Runner, cmd Command) (string, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}
