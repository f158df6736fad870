package notify

import (
	"fmt"
	"log/slog"
	"os"

	gitlab "github.com/xanzy/go-gitlab"

	"shipgate/pkg/pipeline"
)

// statusName is the name commit statuses are published under.
const statusName = "shipgate/deploy"

// State is the lifecycle state reported for a pipeline run.
type State string

const (
	StateRunning State = "running"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// Notifier publishes run states for a revision to an external system.
// Publishing is best effort: callers log failures and keep going.
type Notifier interface {
	Publish(state State, sha, description string) error
}

// GitLabNotifier implements the Notifier interface by setting commit statuses
// through the GitLab API.
type GitLabNotifier struct {
	client  *gitlab.Client
	project string
}

// NewGitLabNotifier creates a new GitLabNotifier for the configured project.
func NewGitLabNotifier(cfg *pipeline.GitLabNotify) (*GitLabNotifier, error) {
	token := os.Getenv("GITLAB_PRIVATE_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITLAB_PRIVATE_TOKEN environment variable is required")
	}

	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return &GitLabNotifier{
		client:  client,
		project: cfg.Project,
	}, nil
}

// Publish sets a commit status for the given SHA.
func (g *GitLabNotifier) Publish(state State, sha, description string) error {
	if sha == "" {
		return fmt.Errorf("cannot publish commit status without a revision SHA")
	}

	slog.Info("Publishing GitLab commit status", "project", g.project, "sha", sha, "state", state)

	opts := &gitlab.SetCommitStatusOptions{
		State:       buildState(state),
		Name:        gitlab.String(statusName),
		Description: gitlab.String(description),
	}

	if _, _, err := g.client.Commits.SetCommitStatus(g.project, sha, opts); err != nil {
		return fmt.Errorf("failed to set commit status: %w", err)
	}

	return nil
}

func buildState(state State) gitlab.BuildStateValue {
	switch state {
	case StateRunning:
		return gitlab.Running
	case StateSuccess:
		return gitlab.Success
	case StateFailed:
		return gitlab.Failed
	default:
		return gitlab.Pending
	}
}
