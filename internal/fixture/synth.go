package fixture

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ArtifactExt is the extension of golden artifacts.
const ArtifactExt = ".json"

// Unit is the immutable descriptor for one generated test case.
type Unit struct {
	// ID is a sanitized concatenation of fixture stem and case name. It
	// exists for host-runner bookkeeping only; two fixture files sharing a
	// stem and a case name produce colliding IDs (inherited ambiguity).
	ID      string
	Case    string
	Harness string
	Params  json.RawMessage
	// OutputPath is the absolute artifact path. It is a pure function of
	// output directory and case name: fixture identity is deliberately
	// absent, so identical case names in different files share a path.
	OutputPath string
	// RelPath is OutputPath relative to the repository root, slash
	// separated, as handed to the version-control status query.
	RelPath string
}

// Synthesize derives one unit per case over all files. Pure path
// arithmetic: it never touches the file system. The output directory must
// resolve inside repoRoot; that configuration invariant is checked eagerly
// here rather than at run time.
func Synthesize(files []File, outputDir, repoRoot string) ([]Unit, error) {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, 0, CaseCount(files))
	for _, f := range files {
		names := make([]string, 0, len(f.Cases))
		for name := range f.Cases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			def := f.Cases[name]
			outPath := filepath.Join(absOut, name+ArtifactExt)
			rel, err := filepath.Rel(repoRoot, outPath)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return nil, fmt.Errorf("output path %s is not inside repository root %s", outPath, repoRoot)
			}
			units = append(units, Unit{
				ID:         "blessed_" + f.Stem + "_" + sanitize(name),
				Case:       name,
				Harness:    def.Harness,
				Params:     def.Params,
				OutputPath: outPath,
				RelPath:    filepath.ToSlash(rel),
			})
		}
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].ID != units[j].ID {
			return units[i].ID < units[j].ID
		}
		return units[i].Case < units[j].Case
	})
	return units, nil
}

// DuplicateOutputs reports every artifact path claimed by more than one
// unit. Such units race when scheduled in parallel; callers surface this
// rather than silently overwriting.
func DuplicateOutputs(units []Unit) []string {
	seen := map[string]int{}
	for _, u := range units {
		seen[u.OutputPath]++
	}
	var dups []string
	for _, u := range units {
		if seen[u.OutputPath] > 1 {
			dups = append(dups, u.OutputPath)
			seen[u.OutputPath] = 0
		}
	}
	sort.Strings(dups)
	return dups
}
