package gitstatus

import (
	"context"
	"fmt"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// Worktree is a pure-Go oracle built on go-git. It exists so the engine can
// run where no git binary is installed, and so tests can exercise the full
// pipeline against real repositories without spawning processes. It
// reconstructs the two-column porcelain line from go-git status codes, so
// both oracles feed the same classifier.
type Worktree struct{}

// Root opens the repository enclosing dir (walking up like git itself) and
// returns its worktree root.
func (Worktree) Root(_ context.Context, dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository from %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to resolve worktree: %w", err)
	}
	root := wt.Filesystem.Root()
	if !filepath.IsAbs(root) {
		return "", fmt.Errorf("git repository root is not absolute: %s", root)
	}
	return root, nil
}

// Status computes the worktree status and renders the entry for rel as a
// porcelain-style line, or "" when the path is clean or unknown to git and
// absent on disk.
func (Worktree) Status(_ context.Context, root, rel string) (string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository at %s: %w", root, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to resolve worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to compute git status: %w", err)
	}
	posix := filepath.ToSlash(rel)
	f, ok := st[posix]
	if !ok {
		return "", nil
	}
	if f.Staging == git.Unmodified && f.Worktree == git.Unmodified {
		return "", nil
	}
	return fmt.Sprintf("%c%c %s\n", byte(f.Staging), byte(f.Worktree), posix), nil
}
