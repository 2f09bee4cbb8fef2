package run

import (
	"bytes"
	"encoding/json"
)

// UnitReport is one unit's outcome in the run report.
type UnitReport struct {
	ID       string `json:"id"`
	Case     string `json:"case,omitempty"`
	Harness  string `json:"harness,omitempty"`
	Artifact string `json:"artifact,omitempty"`
	Pass     bool   `json:"pass"`
	Error    string `json:"error,omitempty"`
}

// Report is the JSON document `seshat run` writes to stdout.
type Report struct {
	RunID    string       `json:"runId"`
	RepoRoot string       `json:"repoRoot"`
	Total    int          `json:"total"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
	Warnings []string     `json:"warnings,omitempty"`
	Units    []UnitReport `json:"units"`
}

// renderReport encodes the report as pretty JSON with a trailing newline.
func renderReport(r Report) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
