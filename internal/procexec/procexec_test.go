package procexec_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"nidmafni/internal/procexec"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunCapturesStdout(t *testing.T) {
	requireShell(t)
	r := procexec.NewExecRunner(zap.NewNop())

	res, err := r.Run(context.Background(), procexec.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo 'Version AFNI_24.0.00'; echo warn >&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "Version AFNI_24.0.00\n", res.Stdout)
	assert.Equal(t, "warn\n", res.Stderr)
}

func TestRunNonZeroExit(t *testing.T) {
	requireShell(t)
	r := procexec.NewExecRunner(nil)

	res, err := r.Run(context.Background(), procexec.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo boom >&2; exit 3"},
	})
	require.Error(t, err)

	var toolErr *procexec.ExternalToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, 3, toolErr.ExitCode)
	assert.Equal(t, "sh", toolErr.Binary)
	assert.Contains(t, toolErr.Error(), "exit 3")
	assert.Contains(t, toolErr.Error(), "boom")
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunMissingBinary(t *testing.T) {
	r := procexec.NewExecRunner(nil)

	_, err := r.Run(context.Background(), procexec.Command{Binary: "nidmafni-no-such-tool-xyz"})
	var toolErr *procexec.ExternalToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, -1, toolErr.ExitCode)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestRunEmptyBinary(t *testing.T) {
	r := procexec.NewExecRunner(nil)
	_, err := r.Run(context.Background(), procexec.Command{})
	var toolErr *procexec.ExternalToolError
	assert.True(t, errors.As(err, &toolErr))
}

func TestRunTimeout(t *testing.T) {
	requireShell(t)
	r := procexec.NewExecRunner(nil)

	_, err := r.Run(context.Background(), procexec.Command{
		Binary:  "sh",
		Args:    []string{"-c", "exec sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunCanceled(t *testing.T) {
	requireShell(t)
	r := procexec.NewExecRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, procexec.Command{Binary: "sh", Args: []string{"-c", "true"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputTrims(t *testing.T) {
	requireShell(t)
	out, err := procexec.Output(context.Background(), procexec.NewExecRunner(nil), procexec.Command{
		Binary: "sh",
		Args:   []string{"-c", "printf '  hello\\n\\n'"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "afni", procexec.Command{Binary: "afni"}.String())
	assert.Equal(t, "afni -ver", procexec.Command{Binary: "afni", Args: []string{"-ver"}}.String())
}
