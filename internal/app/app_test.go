package app

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// writeTestManifest writes a three-step pipeline whose steps record their
// invocations in order.log. Any step name listed in failing exits non-zero.
func writeTestManifest(t *testing.T, failing ...string) {
	t.Helper()

	fails := make(map[string]bool)
	for _, name := range failing {
		fails[name] = true
	}

	var steps strings.Builder
	for _, name := range []string{"lint", "build", "deploy"} {
		exit := 0
		if fails[name] {
			exit = 1
		}
		steps.WriteString(fmt.Sprintf(`    - name: %s
      label: Running %s
      command: ["sh", "-c", "echo %s >> order.log; exit %d"]
      onFailure: "%s failed at {time}."
`, name, name, name, exit, name))
	}

	manifest := fmt.Sprintf(`apiVersion: v1
kind: Pipeline
metadata:
  name: gate-test
spec:
  steps:
%s`, steps.String())

	if err := os.WriteFile("shipgate.yaml", []byte(manifest), 0644); err != nil {
		t.Fatalf("Failed to write test manifest: %s", err)
	}
}

func invocationOrder(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile("order.log")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read order log: %s", err)
	}
	return strings.Fields(string(data))
}

func TestDeploy_AllStepsSucceed(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t)

	if err := Deploy(Options{ManifestPath: "shipgate.yaml"}); err != nil {
		t.Fatalf("Expected successful run, got error: %v", err)
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "lint build deploy" {
		t.Errorf("Expected steps in order lint build deploy, got %v", order)
	}

	// A fully successful run carries no state across runs
	if _, err := os.Stat(StateFileName); !os.IsNotExist(err) {
		t.Error("State file should be removed after a successful run")
	}
}

func TestDeploy_FirstStepFails(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t, "lint")

	err := Deploy(Options{ManifestPath: "shipgate.yaml"})
	if err == nil {
		t.Fatal("Expected error from failing lint step, got nil")
	}
	if !strings.Contains(err.Error(), "step lint failed") {
		t.Errorf("Expected lint failure, got: %v", err)
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "lint" {
		t.Errorf("Build and deploy must not run after lint fails, got %v", order)
	}

	// The failed run leaves its state behind for resume
	state, loadErr := loadState()
	if loadErr != nil || state == nil {
		t.Fatalf("Expected state file after failure, got state=%v err=%v", state, loadErr)
	}
	if state.Status != RunAborted {
		t.Errorf("Expected aborted run status, got %s", state.Status)
	}
	if s := state.stepState("lint"); s.Status != StepFailed {
		t.Errorf("Expected lint marked failed, got %s", s.Status)
	}
	if s := state.stepState("deploy"); s.Status != StepPending {
		t.Errorf("Expected deploy still pending, got %s", s.Status)
	}
}

func TestDeploy_SecondStepFails(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t, "build")

	err := Deploy(Options{ManifestPath: "shipgate.yaml"})
	if err == nil {
		t.Fatal("Expected error from failing build step, got nil")
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "lint build" {
		t.Errorf("Deploy must not run after build fails, got %v", order)
	}
}

func TestDeploy_ThirdStepFails(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t, "deploy")

	err := Deploy(Options{ManifestPath: "shipgate.yaml"})
	if err == nil {
		t.Fatal("Expected error from failing deploy step, got nil")
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "lint build deploy" {
		t.Errorf("All three steps should have been invoked, got %v", order)
	}
}

func TestDeploy_ResumesAfterFailure(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t, "build")

	if err := Deploy(Options{ManifestPath: "shipgate.yaml"}); err == nil {
		t.Fatal("Expected first run to fail")
	}

	// Fix the pipeline and run again: lint must not run a second time
	writeTestManifest(t)
	if err := Deploy(Options{ManifestPath: "shipgate.yaml"}); err != nil {
		t.Fatalf("Expected resumed run to succeed, got: %v", err)
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "lint build build deploy" {
		t.Errorf("Expected lint skipped on resume, got %v", order)
	}

	if _, err := os.Stat(StateFileName); !os.IsNotExist(err) {
		t.Error("State file should be removed after the resumed run succeeds")
	}
}

func TestDeploy_NoResumeStartsOver(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t, "build")

	if err := Deploy(Options{ManifestPath: "shipgate.yaml"}); err == nil {
		t.Fatal("Expected first run to fail")
	}

	writeTestManifest(t)
	if err := Deploy(Options{ManifestPath: "shipgate.yaml", NoResume: true}); err != nil {
		t.Fatalf("Expected fresh run to succeed, got: %v", err)
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "lint build lint build deploy" {
		t.Errorf("Expected full re-run with --no-resume, got %v", order)
	}
}

func TestDeploy_DryRunExecutesNothing(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t)

	if err := Deploy(Options{ManifestPath: "shipgate.yaml", DryRun: true}); err != nil {
		t.Fatalf("Expected dry run to succeed, got: %v", err)
	}

	if order := invocationOrder(t); order != nil {
		t.Errorf("Dry run must not invoke any command, got %v", order)
	}
	if _, err := os.Stat(StateFileName); !os.IsNotExist(err) {
		t.Error("Dry run must not write a state file")
	}
}

func TestDeploy_RetainStateKeepsFile(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t)

	if err := Deploy(Options{ManifestPath: "shipgate.yaml", RetainState: true}); err != nil {
		t.Fatalf("Expected successful run, got error: %v", err)
	}

	state, err := loadState()
	if err != nil || state == nil {
		t.Fatalf("Expected retained state file, got state=%v err=%v", state, err)
	}
	if state.Status != RunCompleted {
		t.Errorf("Expected completed run status, got %s", state.Status)
	}
}

func TestDeploy_StaleStateDiscarded(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t, "build")

	if err := Deploy(Options{ManifestPath: "shipgate.yaml"}); err == nil {
		t.Fatal("Expected first run to fail")
	}

	// A manifest with different step names invalidates the old state
	manifest := `apiVersion: v1
kind: Pipeline
metadata:
  name: gate-test
spec:
  steps:
    - name: check
      label: Checking
      command: ["sh", "-c", "echo check >> order.log"]
      onFailure: "check failed."
`
	if err := os.WriteFile("shipgate.yaml", []byte(manifest), 0644); err != nil {
		t.Fatalf("Failed to rewrite manifest: %s", err)
	}

	if err := Deploy(Options{ManifestPath: "shipgate.yaml"}); err != nil {
		t.Fatalf("Expected run with new manifest to succeed, got: %v", err)
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "lint build check" {
		t.Errorf("Expected fresh run of new pipeline, got %v", order)
	}
}

func TestRunStep_UnknownStep(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t)

	err := RunStep("shipgate.yaml", "release", false)
	if err == nil {
		t.Fatal("Expected error for unknown step, got nil")
	}
	if !strings.Contains(err.Error(), "no step named") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunStep_SingleStepOnly(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t)

	if err := RunStep("shipgate.yaml", "build", false); err != nil {
		t.Fatalf("Expected build step to succeed, got: %v", err)
	}

	order := invocationOrder(t)
	if strings.Join(order, " ") != "build" {
		t.Errorf("Expected only the build step to run, got %v", order)
	}
	if _, err := os.Stat(StateFileName); !os.IsNotExist(err) {
		t.Error("Single-step runs must not write a state file")
	}
}

func TestValidatePrerequisites(t *testing.T) {
	chdirTemp(t)
	writeTestManifest(t)

	// sh is available everywhere these tests run
	if err := ValidatePrerequisites("shipgate.yaml"); err != nil {
		t.Fatalf("Expected prerequisites to pass, got: %v", err)
	}

	manifest := `apiVersion: v1
kind: Pipeline
metadata:
  name: gate-test
spec:
  steps:
    - name: lint
      label: Linting
      command: ["definitely-not-a-real-command-xyz"]
      onFailure: "lint failed."
`
	if err := os.WriteFile("shipgate.yaml", []byte(manifest), 0644); err != nil {
		t.Fatalf("Failed to rewrite manifest: %s", err)
	}

	err := ValidatePrerequisites("shipgate.yaml")
	if err == nil {
		t.Fatal("Expected missing command to fail prerequisites")
	}
	if !strings.Contains(err.Error(), "not found on PATH") {
		t.Errorf("Unexpected error: %v", err)
	}
}
