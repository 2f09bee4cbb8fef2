package cases

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flarebyte/seshat-blessed/internal/gitstatus"
	"github.com/flarebyte/seshat-blessed/internal/project"
)

var (
	cfgPath  string
	flagPure bool
)

// caseRow is one synthesized unit, without its params payload.
type caseRow struct {
	ID       string `json:"id"`
	Case     string `json:"case"`
	Harness  string `json:"harness"`
	Artifact string `json:"artifact"`
}

// Cmd represents the `seshat cases` command: print the synthesized unit
// table without executing anything.
var Cmd = &cobra.Command{
	Use:           "cases",
	Short:         "List the test units derived from fixture files",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		var oracle gitstatus.Oracle = gitstatus.CLI{}
		if flagPure {
			oracle = gitstatus.Worktree{}
		}
		p, err := project.Load(cmd.Context(), cfgPath, oracle)
		if err != nil {
			return err
		}
		rows := make([]caseRow, 0, len(p.Units))
		for _, u := range p.Units {
			rows = append(rows, caseRow{ID: u.ID, Case: u.Case, Harness: u.Harness, Artifact: u.RelPath})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().BoolVar(&flagPure, "pure", false, "Use the built-in git implementation instead of the git binary")
}
