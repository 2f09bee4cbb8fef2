// Package fixture discovers blessed fixture files under a source tree and
// derives one immutable test-case descriptor per declared case.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultSuffix matches the canonical JSON fixture format.
	DefaultSuffix = ".blessed.json"
	// YAMLSuffix matches the YAML fixture variant. Cases parse into the
	// same shape; params are re-encoded as JSON before synthesis.
	YAMLSuffix = ".blessed.yaml"
)

// ErrNoFixtures is reported when discovery finds no matching files at all.
// Generation turns it into a single always-failing unit so an empty fixture
// set shows up as a test failure, not a silent no-op.
var ErrNoFixtures = errors.New("no fixture files found")

// Definition is one declared test case: the harness it exercises and the
// opaque parameter payload handed to it.
type Definition struct {
	Harness string          `json:"harness"`
	Params  json.RawMessage `json:"params"`
}

// File is one parsed fixture file. Cases is keyed by case name; names are
// unique within a file by construction.
type File struct {
	Path  string
	Stem  string
	Cases map[string]Definition
}

// Discover walks root and parses every file whose name ends in suffix or in
// YAMLSuffix. Any read or parse failure aborts the whole phase: a malformed
// fixture anywhere blocks generation everywhere.
func Discover(root, suffix string) ([]File, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var paths []string
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, suffix) || strings.HasSuffix(name, YAMLSuffix) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan fixture root %s: %w", absRoot, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w matching *%s under %s", ErrNoFixtures, suffix, absRoot)
	}
	sort.Strings(paths)

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		cases, err := parseFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fixture file %s: %w", p, err)
		}
		files = append(files, File{Path: p, Stem: Stem(p), Cases: cases})
	}
	return files, nil
}

// CaseCount sums the case entries over all files. The number of generated
// units always equals this count.
func CaseCount(files []File) int {
	n := 0
	for _, f := range files {
		n += len(f.Cases)
	}
	return n
}

// Stem derives the identifier-safe stem for a fixture path: the file name
// minus its final extension, with every non-alphanumeric rune replaced by
// an underscore. "basic.blessed.json" therefore yields "basic_blessed".
func Stem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return sanitize(base)
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func parseFile(path string) (map[string]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, YAMLSuffix) {
		return parseYAMLCases(data)
	}
	var cases map[string]Definition
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// parseYAMLCases decodes the YAML variant into the canonical shape. Params
// are decoded as a generic tree and re-encoded to JSON so everything past
// discovery speaks a single payload format.
func parseYAMLCases(data []byte) (map[string]Definition, error) {
	var raw map[string]struct {
		Harness string `yaml:"harness"`
		Params  any    `yaml:"params"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	cases := make(map[string]Definition, len(raw))
	for name, def := range raw {
		params, err := json.Marshal(normalizeYAML(def.Params))
		if err != nil {
			return nil, fmt.Errorf("case %q: params are not representable as JSON: %v", name, err)
		}
		cases[name] = Definition{Harness: def.Harness, Params: params}
	}
	return cases, nil
}

// normalizeYAML rewrites map[any]any trees (legacy yaml decoding) into
// map[string]any so json.Marshal accepts them.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[fmt.Sprintf("%v", k)] = normalizeYAML(vv)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[k] = normalizeYAML(vv)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = normalizeYAML(vv)
		}
		return out
	default:
		return v
	}
}
