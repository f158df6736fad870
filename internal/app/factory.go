package app

import (
	"fmt"

	internalruntime "shipgate/internal/runtime"
	"shipgate/pkg/runtime"
)

// RuntimeFactory creates command runtimes based on string identifiers. This
// implements the Factory pattern to decouple the pipeline orchestrator from
// concrete runtime implementations.
type RuntimeFactory struct{}

// NewRuntimeFactory creates a new instance of RuntimeFactory.
func NewRuntimeFactory() *RuntimeFactory {
	return &RuntimeFactory{}
}

// GetRuntime returns the appropriate command runtime implementation based on
// the runtime kind from the pipeline configuration.
func (f *RuntimeFactory) GetRuntime(kind string) (runtime.CommandRuntime, error) {
	switch kind {
	case "host", "":
		return internalruntime.NewHostRuntime(), nil
	case "docker":
		rt, err := internalruntime.NewDockerRuntime()
		if err != nil {
			return nil, fmt.Errorf("failed to create Docker runtime: %w", err)
		}
		return rt, nil
	default:
		return nil, fmt.Errorf("unsupported runtime: %s", kind)
	}
}
