// Package blessed runs synthesized test units: resolve the harness, persist
// the golden artifact, classify its version-control status into a verdict.
package blessed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/seshat-blessed/internal/fixture"
	"github.com/flarebyte/seshat-blessed/internal/gitstatus"
	"github.com/flarebyte/seshat-blessed/internal/harness"
)

// Engine executes one unit end to end. All fields are read-only after
// construction, so one engine serves concurrently scheduled units.
type Engine struct {
	Registry *harness.Registry
	Oracle   gitstatus.Oracle
	// RepoRoot is the version-control root every relative artifact path is
	// scoped to.
	RepoRoot string
}

// Run executes, persists and verifies a single unit. A nil return is a
// pass. Every failure is fatal to this unit only; sibling units are
// unaffected, and nothing retries.
func (e *Engine) Run(ctx context.Context, u fixture.Unit) error {
	ent, ok := e.Registry.Lookup(u.Harness)
	if !ok {
		return fmt.Errorf("harness %q not found, available: %v", u.Harness, e.Registry.Names())
	}
	artifact, err := renderArtifact(ent, u.Params)
	if err != nil {
		return err
	}
	if err := writeArtifact(u.OutputPath, artifact); err != nil {
		return err
	}
	raw, err := e.Oracle.Status(ctx, e.RepoRoot, u.RelPath)
	if err != nil {
		return fmt.Errorf("failed to get git status for %q: %w", u.RelPath, err)
	}
	return gitstatus.Verdict(gitstatus.Classify(raw), u.RelPath, raw)
}

// errorArtifact wraps an adapter-level failure as artifact content. Landing
// on this path is not itself a test failure: the wrapped message is written
// out and judged by the same status classification as any other output.
type errorArtifact struct {
	BlessedError string `json:"blessed_error"`
}

func renderArtifact(ent harness.Entry, params json.RawMessage) ([]byte, error) {
	out, invokeErr := ent.Invoke(params)
	if invokeErr != nil {
		b, err := json.MarshalIndent(errorArtifact{BlessedError: invokeErr.Error()}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize error to JSON: %v", err)
		}
		return append(b, '\n'), nil
	}
	pretty, err := prettyJSON(out)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize result to JSON: %v", err)
	}
	return pretty, nil
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// writeArtifact overwrites the artifact, creating the output directory
// first. The directory create is idempotent; the write is not atomic, which
// is acceptable because correctness requires unique output paths anyway.
func writeArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %v", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blessed output file %s: %v", path, err)
	}
	return nil
}
