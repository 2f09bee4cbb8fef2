package fixture

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileWith(stem string, cases ...string) File {
	m := map[string]Definition{}
	for _, c := range cases {
		m[c] = Definition{Harness: "h", Params: json.RawMessage(`{}`)}
	}
	return File{Path: stem + ".blessed.json", Stem: stem, Cases: m}
}

func TestSynthesizeDerivesOneUnitPerCase(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "blessed")
	files := []File{fileWith("one_blessed", "alpha", "beta"), fileWith("two_blessed", "gamma")}

	units, err := Synthesize(files, out, root)
	require.NoError(t, err)
	require.Len(t, units, CaseCount(files))

	assert.Equal(t, "blessed_one_blessed_alpha", units[0].ID)
	assert.Equal(t, filepath.Join(out, "alpha.json"), units[0].OutputPath)
	assert.Equal(t, "blessed/alpha.json", units[0].RelPath)
}

func TestOutputPathIgnoresFixtureIdentity(t *testing.T) {
	// Two files declaring the same case name derive the same output path.
	// This collision is inherited behavior; DuplicateOutputs makes it
	// observable instead of silent.
	root := t.TempDir()
	out := filepath.Join(root, "blessed")
	files := []File{fileWith("one_blessed", "same"), fileWith("two_blessed", "same")}

	units, err := Synthesize(files, out, root)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, units[0].OutputPath, units[1].OutputPath)

	dups := DuplicateOutputs(units)
	require.Len(t, dups, 1)
	assert.Equal(t, units[0].OutputPath, dups[0])
}

func TestSynthesizeRejectsOutputOutsideRepoRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	outside := filepath.Join(filepath.Dir(root), "elsewhere")

	_, err := Synthesize([]File{fileWith("f_blessed", "case")}, outside, root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not inside repository root")
}

func TestSynthesizeSanitizesCaseNamesInIDs(t *testing.T) {
	root := t.TempDir()
	units, err := Synthesize([]File{fileWith("f_blessed", "with space")}, filepath.Join(root, "blessed"), root)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "blessed_f_blessed_with_space", units[0].ID)
	// The artifact name keeps the raw case name; only the ID is sanitized.
	assert.Equal(t, "blessed/with space.json", units[0].RelPath)
}
