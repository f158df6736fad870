package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"shipgate/pkg/runtime"
)

// HostRuntime implements the CommandRuntime interface by executing commands
// directly on the host with os/exec.
type HostRuntime struct{}

// NewHostRuntime creates a new HostRuntime instance.
func NewHostRuntime() *HostRuntime {
	return &HostRuntime{}
}

// Run executes the command synchronously with inherited standard streams and
// blocks until it exits. A command that cannot be located or started is
// reported the same way as one that exits non-zero.
func (h *HostRuntime) Run(ctx context.Context, opts runtime.RunOptions) error {
	if len(opts.Command) == 0 {
		return fmt.Errorf("no command to execute")
	}

	slog.Info("Executing command on host", "command", opts.Command)

	cmd := exec.CommandContext(ctx, opts.Command[0], opts.Command[1:]...)
	cmd.Dir = opts.WorkingDirectory
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.Env = os.Environ()
	for key, value := range opts.EnvVars {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("command %s exited with status %d", opts.Command[0], exitErr.ExitCode())
		}
		return fmt.Errorf("failed to start command %s: %w", opts.Command[0], err)
	}

	return nil
}
