package vcs

import (
	"errors"
	"fmt"
	"log/slog"

	git "github.com/go-git/go-git/v5"
)

// Revision describes the working-tree revision a run was started from.
type Revision struct {
	SHA    string `json:"sha"`
	Branch string `json:"branch"`
	Dirty  bool   `json:"dirty"`
}

// Describe captures the HEAD revision of the repository containing path.
// A directory that is not inside a git repository yields a nil Revision and
// no error: deployments from plain directories are allowed.
func Describe(path string) (*Revision, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Info("No git repository found, skipping revision capture", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	rev := &Revision{
		SHA:    head.Hash().String(),
		Branch: head.Name().Short(),
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}
	rev.Dirty = !status.IsClean()

	slog.Info("Captured working-tree revision", "sha", rev.SHA, "branch", rev.Branch, "dirty", rev.Dirty)
	return rev, nil
}
