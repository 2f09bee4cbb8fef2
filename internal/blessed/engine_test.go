package blessed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/seshat-blessed/internal/fixture"
	"github.com/flarebyte/seshat-blessed/internal/harness"
)

// stubOracle substitutes the external status query so engine behavior can
// be pinned per classification without a real repository.
type stubOracle struct {
	root      string
	raw       string
	statusErr error
}

func (s stubOracle) Root(context.Context, string) (string, error) { return s.root, nil }

func (s stubOracle) Status(context.Context, string, string) (string, error) {
	return s.raw, s.statusErr
}

type echoIn struct {
	Msg string `json:"msg"`
}

type echoOut struct {
	Echoed string `json:"echoed"`
}

func newEngine(t *testing.T, raw string, statusErr error) (*Engine, fixture.Unit) {
	t.Helper()
	root := t.TempDir()
	reg := harness.NewRegistry()
	reg.MustRegister(harness.New("echo", func(in echoIn) echoOut { return echoOut{Echoed: in.Msg} }))
	reg.Freeze()
	u := fixture.Unit{
		ID:         "blessed_f_blessed_case",
		Case:       "case",
		Harness:    "echo",
		Params:     json.RawMessage(`{"msg": "hello"}`),
		OutputPath: filepath.Join(root, "blessed", "case.json"),
		RelPath:    "blessed/case.json",
	}
	return &Engine{
		Registry: reg,
		Oracle:   stubOracle{root: root, raw: raw, statusErr: statusErr},
		RepoRoot: root,
	}, u
}

func TestRunWritesArtifactAndPassesWhenClean(t *testing.T) {
	eng, u := newEngine(t, "", nil)
	require.NoError(t, eng.Run(context.Background(), u))

	data, err := os.ReadFile(u.OutputPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"echoed": "hello"}`, string(data))
}

func TestRunFailsOnUntracked(t *testing.T) {
	eng, u := newEngine(t, "?? blessed/case.json\n", nil)
	err := eng.Run(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "untracked")
	// The artifact is still written before verification.
	_, statErr := os.Stat(u.OutputPath)
	assert.NoError(t, statErr)
}

func TestRunFailsOnModified(t *testing.T) {
	eng, u := newEngine(t, " M blessed/case.json\n", nil)
	err := eng.Run(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differs from the git index")
}

func TestRunPassesOnStagedNew(t *testing.T) {
	eng, u := newEngine(t, "A  blessed/case.json\n", nil)
	require.NoError(t, eng.Run(context.Background(), u))
}

func TestRunFailsOnUnexpectedStatusWithRawText(t *testing.T) {
	raw := "R  blessed/case.json -> blessed/other.json\n"
	eng, u := newEngine(t, raw, nil)
	err := eng.Run(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), raw)
}

func TestRunFailsWhenStatusQueryErrors(t *testing.T) {
	eng, u := newEngine(t, "", assert.AnError)
	err := eng.Run(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get git status")
}

func TestRunUnknownHarnessListsRegisteredNames(t *testing.T) {
	eng, u := newEngine(t, "", nil)
	u.Harness = "no_such_harness"
	err := eng.Run(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"no_such_harness" not found`)
	assert.Contains(t, err.Error(), "echo")
}

func TestAdapterFailureBecomesArtifactNotUnitFailure(t *testing.T) {
	eng, u := newEngine(t, "", nil)
	u.Params = json.RawMessage(`{"msg": 42}`)
	// The wiring failure is artifact content; with a clean status the unit
	// still passes.
	require.NoError(t, eng.Run(context.Background(), u))

	data, err := os.ReadFile(u.OutputPath)
	require.NoError(t, err)
	var wrapped map[string]string
	require.NoError(t, json.Unmarshal(data, &wrapped))
	assert.Contains(t, wrapped["blessed_error"], "Failed to deserialize input:")
}

func TestRunIsIdempotent(t *testing.T) {
	eng, u := newEngine(t, "", nil)
	require.NoError(t, eng.Run(context.Background(), u))
	first, err := os.ReadFile(u.OutputPath)
	require.NoError(t, err)

	require.NoError(t, eng.Run(context.Background(), u))
	second, err := os.ReadFile(u.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunAllReportsEveryUnit(t *testing.T) {
	eng, u := newEngine(t, "", nil)
	other := u
	other.ID = "blessed_f_blessed_other"
	other.Case = "other"
	other.Harness = "missing"
	other.OutputPath = filepath.Join(filepath.Dir(u.OutputPath), "other.json")
	other.RelPath = "blessed/other.json"

	results := eng.RunAll(context.Background(), []fixture.Unit{u, other}, 2)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "blessed_f_blessed_other", results[1].Unit.ID)
}
