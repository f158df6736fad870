package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestDefault_StepOrder(t *testing.T) {
	p := Default()

	if p.Kind != "Pipeline" {
		t.Errorf("Expected Kind 'Pipeline', got '%s'", p.Kind)
	}

	expectedNames := []string{"lint", "build", "deploy"}
	if len(p.Spec.Steps) != len(expectedNames) {
		t.Fatalf("Expected %d steps, got %d", len(expectedNames), len(p.Spec.Steps))
	}

	for i, name := range expectedNames {
		if p.Spec.Steps[i].Name != name {
			t.Errorf("Expected step %d to be '%s', got '%s'", i, name, p.Spec.Steps[i].Name)
		}
		if len(p.Spec.Steps[i].Command) == 0 {
			t.Errorf("Step '%s' has no command", name)
		}
		if p.Spec.Steps[i].OnFailure == "" {
			t.Errorf("Step '%s' has no failure message", name)
		}
	}
}

func TestDefault_OnlyFinalStepHasSuccessMessage(t *testing.T) {
	p := Default()

	for i, step := range p.Spec.Steps {
		isLast := i == len(p.Spec.Steps)-1
		if isLast && step.OnSuccess == "" {
			t.Errorf("Final step '%s' should have a success message", step.Name)
		}
		if !isLast && step.OnSuccess != "" {
			t.Errorf("Step '%s' should not have a success message", step.Name)
		}
	}
}

func TestRenderMessage(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	rendered := RenderMessage("Build failed at {time}.", now)
	if !strings.Contains(rendered, now.Format(time.UnixDate)) {
		t.Errorf("Expected rendered message to contain timestamp, got %q", rendered)
	}
	if strings.Contains(rendered, "{time}") {
		t.Errorf("Placeholder not expanded: %q", rendered)
	}

	plain := RenderMessage("Lint failed.", now)
	if plain != "Lint failed." {
		t.Errorf("Message without placeholder should be unchanged, got %q", plain)
	}
}

func TestSpec_RuntimeKind(t *testing.T) {
	spec := &Spec{}
	if spec.RuntimeKind() != "host" {
		t.Errorf("Expected default runtime 'host', got '%s'", spec.RuntimeKind())
	}

	spec.Runtime.Kind = "docker"
	if spec.RuntimeKind() != "docker" {
		t.Errorf("Expected runtime 'docker', got '%s'", spec.RuntimeKind())
	}
}

func TestSpec_FindStep(t *testing.T) {
	p := Default()

	step := p.Spec.FindStep("build")
	if step == nil {
		t.Fatal("Expected to find step 'build'")
	}
	if step.Name != "build" {
		t.Errorf("Expected step 'build', got '%s'", step.Name)
	}

	if p.Spec.FindStep("release") != nil {
		t.Error("Expected nil for unknown step name")
	}
}
