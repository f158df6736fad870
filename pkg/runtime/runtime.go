// Located in pkg/runtime/runtime.go
package runtime

import (
	"context"
)

// RunOptions defines the parameters for running one step command.
type RunOptions struct {
	Command          []string
	WorkingDirectory string
	EnvVars          map[string]string

	// Container-only fields, ignored by the host runtime.
	Image        string
	VolumeMounts map[string]string
}

// CommandRuntime defines the contract for executing a step command to
// completion. Run blocks until the command exits and returns a non-nil error
// when the command could not be started or finished with a non-zero status.
type CommandRuntime interface {
	Run(ctx context.Context, opts RunOptions) error
}
