// Package gitstatus is the narrow version-control boundary of the engine:
// resolving a repository root, querying short-form status for one relative
// path, and classifying the raw status report into a pass/fail verdict.
package gitstatus

import (
	"fmt"
	"strings"
)

// Classification of a path's state relative to the index and working tree.
type Classification int

const (
	// StagedNewOrClean means the freshly written artifact equals the
	// staged or committed truth. The only passing state.
	StagedNewOrClean Classification = iota
	// Untracked means version control has never seen the artifact.
	Untracked
	// ModifiedUnstaged means the artifact differs from the index.
	ModifiedUnstaged
	// Unexpected covers any other non-empty status report.
	Unexpected
)

func (c Classification) String() string {
	switch c {
	case StagedNewOrClean:
		return "staged-new-or-clean"
	case Untracked:
		return "untracked"
	case ModifiedUnstaged:
		return "modified-unstaged"
	default:
		return "unexpected"
	}
}

// Classify maps one raw short-format status line (possibly empty) to a
// classification. Leading whitespace is stripped first so the worktree-only
// " M" form is seen by its first status letter. The AM case must be tested
// before the bare A case: a partially staged file fails.
func Classify(raw string) Classification {
	s := strings.TrimLeft(raw, " \t")
	switch {
	case strings.HasPrefix(s, "??"):
		return Untracked
	case strings.HasPrefix(s, "M"), strings.HasPrefix(s, "AM"):
		return ModifiedUnstaged
	case strings.HasPrefix(s, "A"):
		return StagedNewOrClean
	case strings.TrimSpace(raw) == "":
		return StagedNewOrClean
	default:
		return Unexpected
	}
}

// Verdict converts a classification into the unit's outcome. nil means
// pass. The Unexpected message carries the raw status text verbatim.
func Verdict(c Classification, rel, raw string) error {
	switch c {
	case StagedNewOrClean:
		return nil
	case Untracked:
		return fmt.Errorf("untracked file %q, please review and git add the file", rel)
	case ModifiedUnstaged:
		return fmt.Errorf("file %q is modified and differs from the git index, please review changes and git add or revert", rel)
	default:
		return fmt.Errorf("unexpected git status for %q: %s, please check repository state", rel, raw)
	}
}
