// Package project assembles everything the CLI needs to run a blessed
// pipeline: resolved settings, a frozen harness registry, the repository
// root and the synthesized unit table.
package project

import (
	"context"
	"errors"

	"github.com/flarebyte/seshat-blessed/internal/config"
	"github.com/flarebyte/seshat-blessed/internal/fixture"
	"github.com/flarebyte/seshat-blessed/internal/gitstatus"
	"github.com/flarebyte/seshat-blessed/internal/harness"
	"github.com/flarebyte/seshat-blessed/internal/luaharness"
	"github.com/flarebyte/seshat-blessed/internal/regexlite"
)

// Project is a fully loaded pipeline, ready to execute or introspect.
type Project struct {
	Settings config.Settings
	Registry *harness.Registry
	Oracle   gitstatus.Oracle
	RepoRoot string
	// Units is empty when NoFixtures is set.
	Units      []fixture.Unit
	NoFixtures bool
}

// Load runs the whole setup phase. Any failure here aborts generation
// entirely, except the distinct no-fixtures condition which is reported
// through Project.NoFixtures so the caller can synthesize the single
// always-failing unit.
func Load(ctx context.Context, cfgPath string, oracle gitstatus.Oracle) (*Project, error) {
	settings, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	reg := harness.NewRegistry()
	reg.MustRegister(regexlite.Entry())
	for _, script := range settings.Harnesses.Lua {
		if err := luaharness.Load(reg, script); err != nil {
			return nil, err
		}
	}
	reg.Freeze()

	root, err := oracle.Root(ctx, settings.ProjectRoot)
	if err != nil {
		return nil, err
	}

	p := &Project{Settings: settings, Registry: reg, Oracle: oracle, RepoRoot: root}
	files, err := fixture.Discover(settings.Fixtures.Root, settings.Fixtures.Suffix)
	if errors.Is(err, fixture.ErrNoFixtures) {
		p.NoFixtures = true
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	units, err := fixture.Synthesize(files, settings.Output.Dir, root)
	if err != nil {
		return nil, err
	}
	p.Units = units
	return p, nil
}
