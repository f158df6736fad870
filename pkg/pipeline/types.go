package pipeline

import (
	"strings"
	"time"
)

// Pipeline is the root object that holds the entire configuration for a
// shipgate run. It's populated by parsing the user's shipgate.yaml file, or
// by Default() when no manifest is given.
type Pipeline struct {
	APIVersion string   `yaml:"apiVersion" validate:"required"`
	Kind       string   `yaml:"kind" validate:"required,eq=Pipeline"`
	Metadata   Metadata `yaml:"metadata" validate:"required"`
	Spec       Spec     `yaml:"spec" validate:"required"`
}

// Metadata contains project-level metadata.
type Metadata struct {
	Name        string            `yaml:"name" validate:"required"`
	Description string            `yaml:"description"`
	Labels      map[string]string `yaml:"labels,omitempty"`
}

// Spec contains the ordered step list and the execution environment.
type Spec struct {
	Runtime Runtime `yaml:"runtime"`
	Notify  *Notify `yaml:"notify,omitempty"`
	Steps   []Step  `yaml:"steps" validate:"required,min=1,dive"`
}

// Runtime selects where step commands execute.
type Runtime struct {
	Kind  string `yaml:"kind" validate:"omitempty,oneof=host docker"`
	Image string `yaml:"image" validate:"required_if=Kind docker"`
}

// Notify configures optional post-run notifications.
type Notify struct {
	GitLab *GitLabNotify `yaml:"gitlab,omitempty"`
}

// GitLabNotify publishes commit statuses for the deployed revision.
type GitLabNotify struct {
	URL     string `yaml:"url" validate:"required,url"`
	Project string `yaml:"project" validate:"required"`
}

// Step is one external command invocation plus its console messages.
// Message templates may contain the {time} placeholder, replaced with the
// current wall-clock time when the message is printed.
type Step struct {
	Name      string   `yaml:"name" validate:"required"`
	Label     string   `yaml:"label" validate:"required"`
	Command   []string `yaml:"command" validate:"required,min=1"`
	OnFailure string   `yaml:"onFailure" validate:"required"`
	OnSuccess string   `yaml:"onSuccess"`
}

// RuntimeKind returns the configured runtime kind, defaulting to host.
func (s *Spec) RuntimeKind() string {
	if s.Runtime.Kind == "" {
		return "host"
	}
	return s.Runtime.Kind
}

// FindStep returns the step with the given name, or nil.
func (s *Spec) FindStep(name string) *Step {
	for i := range s.Steps {
		if s.Steps[i].Name == name {
			return &s.Steps[i]
		}
	}
	return nil
}

// RenderMessage expands the {time} placeholder in a message template.
func RenderMessage(template string, now time.Time) string {
	return strings.ReplaceAll(template, "{time}", now.Format(time.UnixDate))
}

// Default returns the built-in pipeline: lint, build, and deploy the
// serverless application with fail-fast semantics. This is what runs when no
// manifest file is provided.
func Default() *Pipeline {
	return &Pipeline{
		APIVersion: "v1",
		Kind:       "Pipeline",
		Metadata: Metadata{
			Name:        "default",
			Description: "Lint, build and deploy the serverless application",
		},
		Spec: Spec{
			Runtime: Runtime{Kind: "host"},
			Steps: []Step{
				{
					Name:      "lint",
					Label:     "Linting sources",
					Command:   []string{"pylint", "src"},
					OnFailure: "Lint failed. Aborting deploy.",
				},
				{
					Name:      "build",
					Label:     "Building application",
					Command:   []string{"sam", "build"},
					OnFailure: "Build failed at {time}.",
				},
				{
					Name:      "deploy",
					Label:     "Deploying stack",
					Command:   []string{"sam", "deploy", "--no-confirm-changeset"},
					OnFailure: "Deploy failed at {time}.",
					OnSuccess: "Deployed successfully at {time}.",
				},
			},
		},
	}
}
