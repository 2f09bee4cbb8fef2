package run

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flarebyte/seshat-blessed/internal/blessed"
	"github.com/flarebyte/seshat-blessed/internal/fixture"
	"github.com/flarebyte/seshat-blessed/internal/gitstatus"
	"github.com/flarebyte/seshat-blessed/internal/project"
)

var (
	cfgPath     string
	flagWorkers int
	flagVerbose bool
	flagPure    bool
)

// exitError carries a process exit code through cobra's error path.
// 1 means one or more units failed; 2 means the setup phase failed.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

// Cmd represents the `seshat run` command.
var Cmd = &cobra.Command{
	Use:           "run",
	Short:         "Generate, execute and verify blessed tests",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		log := newLogger(flagVerbose)

		var oracle gitstatus.Oracle = gitstatus.CLI{}
		if flagPure {
			oracle = gitstatus.Worktree{}
		}

		ctx := cmd.Context()
		p, err := project.Load(ctx, cfgPath, oracle)
		if err != nil {
			return &exitError{code: 2, msg: err.Error()}
		}

		report := Report{
			RunID:    uuid.NewString(),
			RepoRoot: p.RepoRoot,
		}
		if p.NoFixtures {
			// The absence of fixtures is a test failure, not a no-op.
			report.Total = 1
			report.Failed = 1
			report.Units = []UnitReport{{
				ID: "blessed_no_files_found",
				Error: fmt.Sprintf("no test definition files matching *%s found under %s",
					p.Settings.Fixtures.Suffix, p.Settings.Fixtures.Root),
			}}
			return emit(report)
		}

		for _, dup := range fixture.DuplicateOutputs(p.Units) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("output path %s is claimed by more than one case; parallel runs race on it", dup))
		}

		log.WithFields(logrus.Fields{
			"units":    len(p.Units),
			"repoRoot": p.RepoRoot,
		}).Info("executing blessed units")

		eng := &blessed.Engine{Registry: p.Registry, Oracle: p.Oracle, RepoRoot: p.RepoRoot}
		results := eng.RunAll(ctx, p.Units, flagWorkers)

		report.Total = len(results)
		report.Units = make([]UnitReport, 0, len(results))
		for _, r := range results {
			ur := UnitReport{
				ID:       r.Unit.ID,
				Case:     r.Unit.Case,
				Harness:  r.Unit.Harness,
				Artifact: r.Unit.RelPath,
				Pass:     r.Err == nil,
			}
			if r.Err != nil {
				ur.Error = r.Err.Error()
				report.Failed++
				log.WithField("unit", r.Unit.ID).Warn(r.Err.Error())
			} else {
				report.Passed++
				log.WithField("unit", r.Unit.ID).Debug("pass")
			}
			report.Units = append(report.Units, ur)
		}
		return emit(report)
	},
}

func emit(r Report) error {
	data, err := renderReport(r)
	if err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}
	if r.Failed > 0 {
		return &exitError{code: 1, msg: fmt.Sprintf("%d of %d blessed tests failed", r.Failed, r.Total)}
	}
	return nil
}

// newLogger keeps stdout clean for the JSON report: logs go to stderr and
// stay quiet unless --verbose.
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.ErrorLevel)
	}
	return log
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Worker pool size (0 = NumCPU)")
	Cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log per-unit progress to stderr")
	Cmd.Flags().BoolVar(&flagPure, "pure", false, "Use the built-in git implementation instead of the git binary")
}
