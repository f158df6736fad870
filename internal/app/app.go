package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/google/uuid"

	"shipgate/internal/notify"
	"shipgate/internal/parser"
	"shipgate/internal/vcs"
	"shipgate/pkg/pipeline"
	"shipgate/pkg/runtime"
)

const (
	// Color codes for console output
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

// Options controls a deploy run.
type Options struct {
	ManifestPath string
	DryRun       bool
	RetainState  bool
	NoResume     bool
}

// Deploy orchestrates the complete deploy pipeline: every step runs in order,
// strictly sequentially, and the first failure aborts the run. A failed run
// leaves a state file behind so the next invocation resumes after the last
// successful step.
func Deploy(opts Options) error {
	slog.Info("Starting shipgate deploy", "manifestPath", opts.ManifestPath, "dryRun", opts.DryRun)

	p, err := parser.Load(opts.ManifestPath)
	if err != nil {
		return fmt.Errorf("pipeline loading failed: %w", err)
	}
	slog.Info("Pipeline resolved", "name", p.Metadata.Name, "steps", len(p.Spec.Steps), "runtime", p.Spec.RuntimeKind())

	if opts.NoResume {
		if err := removeStateFile(); err != nil {
			return fmt.Errorf("failed to discard execution state: %w", err)
		}
	}

	// Load existing state or create new state
	state, err := loadState()
	if err != nil {
		return fmt.Errorf("failed to load execution state: %w", err)
	}

	if state != nil && !state.matchesPipeline(p) {
		fmt.Printf("%s⚠️  State file does not match the current pipeline, starting over%s\n", ColorYellow, ColorReset)
		slog.Warn("Discarding stale execution state", "statePipeline", state.Pipeline, "pipeline", p.Metadata.Name)
		if err := removeStateFile(); err != nil {
			return fmt.Errorf("failed to discard stale execution state: %w", err)
		}
		state = nil
	}

	var isResume bool
	if state == nil {
		// Fresh start - create new state
		runID := uuid.New().String()
		state = newState(p, opts.ManifestPath, runID)
		slog.Info("Starting new deploy run", "runId", runID, "pipeline", p.Metadata.Name)

		rev, revErr := vcs.Describe(".")
		if revErr != nil {
			slog.Warn("Failed to capture working-tree revision", "error", revErr)
		}
		state.Revision = rev
	} else {
		// Resume existing run
		isResume = true
		fmt.Printf("%s📋 State file found. Resuming from step: %s%s\n", ColorYellow, state.nextStep(), ColorReset)
		slog.Info("Resuming deploy run", "runId", state.RunID, "nextStep", state.nextStep())
		fmt.Println()
	}

	if opts.DryRun {
		fmt.Printf("%s🔍 DRY RUN MODE - No commands will be executed%s\n", ColorYellow, ColorReset)
		if isResume {
			fmt.Printf("%s🔍 DRY RUN: Simulating resume from step: %s%s\n", ColorYellow, state.nextStep(), ColorReset)
		}
		fmt.Println()
	}

	var rt runtime.CommandRuntime
	if !opts.DryRun {
		rt, err = NewRuntimeFactory().GetRuntime(p.Spec.RuntimeKind())
		if err != nil {
			return fmt.Errorf("runtime initialization failed: %w", err)
		}
	}

	notifier := newNotifier(p, state, opts.DryRun)
	publish(notifier, state, notify.StateRunning, "Deploy pipeline started")

	ctx := context.Background()
	stages := buildStages(p, rt, opts.DryRun)

	for _, stage := range stages {
		if state.shouldSkipStep(stage.Name()) {
			fmt.Printf("%s⏭️  Step %s skipped - already completed%s\n", ColorGreen, stage.Name(), ColorReset)
			fmt.Println()
			continue
		}

		state.markStep(stage.Name(), StepRunning)

		if err := stage.Execute(ctx, state); err != nil {
			state.markStep(stage.Name(), StepFailed)
			state.Status = RunAborted
			if !opts.DryRun {
				if saveErr := saveState(state); saveErr != nil {
					slog.Warn("Failed to save state after step failure", "step", stage.Name(), "error", saveErr)
				}
			}
			publish(notifier, state, notify.StateFailed, fmt.Sprintf("Step %s failed", stage.Name()))
			return err
		}

		state.markStep(stage.Name(), StepSucceeded)
		if !opts.DryRun {
			if err := saveState(state); err != nil {
				return fmt.Errorf("failed to save state after step %s: %w", stage.Name(), err)
			}
		}
		fmt.Println()
	}

	// Mark the run as completed and clean up the state file
	state.Status = RunCompleted
	if !opts.DryRun {
		if opts.RetainState {
			// Save final state for auditing purposes
			if err := saveState(state); err != nil {
				slog.Warn("Failed to save final state", "error", err)
			} else {
				slog.Info("State file retained for auditing", "file", StateFileName)
			}
		} else {
			// Remove state file on successful completion
			if err := removeStateFile(); err != nil {
				slog.Warn("Failed to clean up state file", "error", err)
			}
		}
	}

	publish(notifier, state, notify.StateSuccess, "Deploy pipeline completed")

	if opts.DryRun {
		fmt.Printf("%s🎉 DRY RUN COMPLETED - All steps simulated successfully!%s\n", ColorGreen, ColorReset)
		fmt.Printf("%sNo commands were executed.%s\n", ColorYellow, ColorReset)
	} else {
		fmt.Printf("%s🎉 SHIPGATE DEPLOY COMPLETED SUCCESSFULLY!%s\n", ColorGreen, ColorReset)
	}

	slog.Info("Deploy run completed successfully", "pipeline", p.Metadata.Name, "dryRun", opts.DryRun)
	return nil
}

// buildStages wraps each pipeline step in a Stage, preserving manifest order.
func buildStages(p *pipeline.Pipeline, rt runtime.CommandRuntime, isDryRun bool) []Stage {
	stages := make([]Stage, len(p.Spec.Steps))
	for i, step := range p.Spec.Steps {
		stages[i] = NewStepStage(step, &p.Spec, rt, isDryRun)
	}
	return stages
}

// RunStep executes a single named step from the pipeline, outside the stateful
// deploy workflow.
func RunStep(manifestPath, name string, isDryRun bool) error {
	p, err := parser.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("pipeline loading failed: %w", err)
	}

	step := p.Spec.FindStep(name)
	if step == nil {
		return fmt.Errorf("pipeline has no step named %q", name)
	}

	var rt runtime.CommandRuntime
	if !isDryRun {
		rt, err = NewRuntimeFactory().GetRuntime(p.Spec.RuntimeKind())
		if err != nil {
			return fmt.Errorf("runtime initialization failed: %w", err)
		}
	}

	stage := NewStepStage(*step, &p.Spec, rt, isDryRun)
	return stage.Execute(context.Background(), nil)
}

// newNotifier builds the configured notifier for a run, or nil. A notifier is
// only useful when there is a revision to attach statuses to.
func newNotifier(p *pipeline.Pipeline, state *ExecutionState, isDryRun bool) notify.Notifier {
	if isDryRun || p.Spec.Notify == nil || p.Spec.Notify.GitLab == nil {
		return nil
	}
	if state.Revision == nil {
		slog.Warn("Notification configured but no revision captured, skipping commit statuses")
		return nil
	}

	notifier, err := notify.NewGitLabNotifier(p.Spec.Notify.GitLab)
	if err != nil {
		slog.Warn("Failed to initialize GitLab notifier", "error", err)
		return nil
	}
	return notifier
}

// publish sends a commit status, best effort. Notification failures never
// fail the run.
func publish(n notify.Notifier, state *ExecutionState, s notify.State, description string) {
	if n == nil {
		return
	}
	if err := n.Publish(s, state.Revision.SHA, description); err != nil {
		slog.Warn("Failed to publish commit status", "state", s, "error", err)
	}
}

// ValidatePrerequisites checks that every step command can be resolved before
// a run starts, and that the Docker daemon is reachable when the container
// runtime is selected.
func ValidatePrerequisites(manifestPath string) error {
	slog.Info("Validating shipgate prerequisites")

	p, err := parser.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("pipeline loading failed: %w", err)
	}

	if p.Spec.RuntimeKind() == "docker" {
		if _, err := NewRuntimeFactory().GetRuntime("docker"); err != nil {
			return fmt.Errorf("Docker prerequisite check failed: %w", err)
		}
		slog.Info("Docker daemon reachable, step commands resolve inside the image", "image", p.Spec.Runtime.Image)
		return nil
	}

	for _, step := range p.Spec.Steps {
		if _, err := exec.LookPath(step.Command[0]); err != nil {
			return fmt.Errorf("step %s: command %q not found on PATH", step.Name, step.Command[0])
		}
		slog.Info("Step command resolved", "step", step.Name, "command", step.Command[0])
	}

	slog.Info("All prerequisites validated successfully")
	return nil
}
