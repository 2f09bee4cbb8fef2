package blessed

import (
	"context"
	"errors"
	"testing"

	"github.com/flarebyte/seshat-blessed/internal/fixture"
	"github.com/flarebyte/seshat-blessed/internal/gitstatus"
	"github.com/flarebyte/seshat-blessed/internal/harness"
)

// Suite wires discovery, synthesis and execution for one project. A single
// test function constructs a Suite with its registered harnesses and calls
// RunT; every fixture case becomes a named subtest under it.
type Suite struct {
	Registry *harness.Registry
	// Oracle defaults to the git CLI when nil.
	Oracle gitstatus.Oracle
	// FixturesRoot is the source tree discovery walks.
	FixturesRoot string
	// Suffix defaults to fixture.DefaultSuffix when empty.
	Suffix string
	// OutputDir is where golden artifacts are written.
	OutputDir string
}

// RunT performs the whole generation phase and hands every derived unit to
// the host runner as a subtest. Any setup failure (repo-root resolution,
// discovery, synthesis) aborts generation entirely: no units are produced
// and the suite reports a single hard failure naming the cause.
func (s *Suite) RunT(t *testing.T) {
	t.Helper()
	oracle := s.Oracle
	if oracle == nil {
		oracle = gitstatus.CLI{}
	}
	suffix := s.Suffix
	if suffix == "" {
		suffix = fixture.DefaultSuffix
	}
	ctx := context.Background()
	root, err := oracle.Root(ctx, s.FixturesRoot)
	if err != nil {
		t.Fatalf("blessed setup: %v", err)
	}
	files, err := fixture.Discover(s.FixturesRoot, suffix)
	if errors.Is(err, fixture.ErrNoFixtures) {
		BindNoFixtures(t, s.FixturesRoot, suffix)
		return
	}
	if err != nil {
		t.Fatalf("blessed setup: %v", err)
	}
	units, err := fixture.Synthesize(files, s.OutputDir, root)
	if err != nil {
		t.Fatalf("blessed setup: %v", err)
	}
	s.Registry.Freeze()
	eng := &Engine{Registry: s.Registry, Oracle: oracle, RepoRoot: root}
	Bind(t, eng, units)
}

// Bind registers one subtest per unit. Units are independent; scheduling
// and parallelism belong to the host runner.
func Bind(t *testing.T, eng *Engine, units []fixture.Unit) {
	t.Helper()
	for _, u := range units {
		u := u
		t.Run(u.ID, func(t *testing.T) {
			if err := eng.Run(context.Background(), u); err != nil {
				t.Fatalf("blessed test %q: %v", u.Case, err)
			}
		})
	}
}

// BindNoFixtures registers the single failing unit that makes an empty
// fixture set visible.
func BindNoFixtures(t *testing.T, root, suffix string) {
	t.Helper()
	t.Run("blessed_no_files_found", func(t *testing.T) {
		t.Fatalf("no test definition files matching *%s found under %s", suffix, root)
	})
}
