package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shipgate/pkg/pipeline"
	"shipgate/pkg/runtime"
)

// containerWorkDir is where the project directory is mounted when a step runs
// inside a container.
const containerWorkDir = "/workspace"

// StepStage implements the Stage interface for one pipeline step.
type StepStage struct {
	step     pipeline.Step
	spec     *pipeline.Spec
	runtime  runtime.CommandRuntime
	isDryRun bool
}

// NewStepStage creates a new stage wrapping a single pipeline step.
func NewStepStage(step pipeline.Step, spec *pipeline.Spec, rt runtime.CommandRuntime, isDryRun bool) *StepStage {
	return &StepStage{
		step:     step,
		spec:     spec,
		runtime:  rt,
		isDryRun: isDryRun,
	}
}

// Name returns the name of the step.
func (s *StepStage) Name() string {
	return s.step.Name
}

// Execute runs the step command to completion. The command's exit status is
// the only thing inspected: a non-zero exit and a command that could not be
// started are both step failures.
func (s *StepStage) Execute(ctx context.Context, state *ExecutionState) error {
	fmt.Printf("%s🚧 %s%s\n", ColorCyan, s.step.Label, ColorReset)

	if s.isDryRun {
		fmt.Printf("%s🔍 DRY RUN: Would execute '%s'%s\n", ColorYellow, strings.Join(s.step.Command, " "), ColorReset)
		if s.spec.RuntimeKind() == "docker" {
			fmt.Printf("%s🔍 DRY RUN: Would run inside image %s%s\n", ColorYellow, s.spec.Runtime.Image, ColorReset)
		}
		fmt.Printf("%s✅ %s simulation completed successfully%s\n", ColorGreen, s.step.Label, ColorReset)
		return nil
	}

	opts, err := s.buildRunOptions()
	if err != nil {
		return fmt.Errorf("step %s setup failed: %w", s.step.Name, err)
	}

	if err := s.runtime.Run(ctx, opts); err != nil {
		fmt.Printf("%s❌ %s%s\n", ColorRed, pipeline.RenderMessage(s.step.OnFailure, time.Now()), ColorReset)
		slog.Error("Pipeline step failed", "step", s.step.Name, "command", s.step.Command, "error", err)
		return fmt.Errorf("step %s failed: %w", s.step.Name, err)
	}

	if s.step.OnSuccess != "" {
		fmt.Printf("%s✅ %s%s\n", ColorGreen, pipeline.RenderMessage(s.step.OnSuccess, time.Now()), ColorReset)
	}
	slog.Info("Pipeline step completed successfully", "step", s.step.Name)
	return nil
}

// buildRunOptions assembles the runtime options for the step command. The
// container runtime gets the project directory mounted as its working
// directory plus the host AWS credentials when they exist, following the same
// shape the deploy tooling expects on the host.
func (s *StepStage) buildRunOptions() (runtime.RunOptions, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return runtime.RunOptions{}, fmt.Errorf("failed to determine working directory: %w", err)
	}

	opts := runtime.RunOptions{
		Command:          s.step.Command,
		WorkingDirectory: workDir,
	}

	if s.spec.RuntimeKind() != "docker" {
		return opts, nil
	}

	opts.Image = s.spec.Runtime.Image
	opts.WorkingDirectory = containerWorkDir
	opts.VolumeMounts = map[string]string{
		workDir: containerWorkDir,
	}

	// Mount host AWS credentials into the container when present so the
	// build and deploy tools can authenticate.
	if home, err := os.UserHomeDir(); err == nil {
		awsDir := filepath.Join(home, ".aws")
		if _, err := os.Stat(awsDir); err == nil {
			opts.VolumeMounts[awsDir] = "/root/.aws"
			opts.EnvVars = map[string]string{
				"AWS_SHARED_CREDENTIALS_FILE": "/root/.aws/credentials",
				"AWS_CONFIG_FILE":             "/root/.aws/config",
			}
		}
	}

	return opts, nil
}
