package gitstatus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Oracle answers the two version-control questions the engine needs. Both
// calls may spawn external processes; each test unit issues its own calls,
// so units never contend on shared oracle state.
type Oracle interface {
	// Root resolves the repository root containing dir. The result is an
	// absolute UTF-8 path.
	Root(ctx context.Context, dir string) (string, error)
	// Status returns the raw short-form status report for one
	// repo-relative path, scoped to root. Empty output means clean.
	Status(ctx context.Context, root, rel string) (string, error)
}

// CLI shells out to the git binary. This is the reference oracle: its
// output is the porcelain format the classifier is specified against.
type CLI struct{}

// Root runs `git rev-parse --show-toplevel` in dir.
func (CLI) Root(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git rev-parse --show-toplevel failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	root := strings.TrimSpace(stdout.String())
	if root == "" {
		return "", errors.New("failed to determine git repository root")
	}
	if !utf8.ValidString(root) {
		return "", fmt.Errorf("git repository root is not valid UTF-8: %q", root)
	}
	if !filepath.IsAbs(root) {
		return "", fmt.Errorf("git repository root is not absolute: %s", root)
	}
	return root, nil
}

// Status runs `git status --porcelain -- rel` scoped to root. A non-zero
// exit surfaces stderr in the error; that failure is fatal to the unit.
func (CLI) Status(ctx context.Context, root, rel string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain", "--", rel)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git status failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
