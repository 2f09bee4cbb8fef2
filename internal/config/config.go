// Package config loads the seshat project configuration from a CUE file
// and overlays SESHAT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Settings is the resolved configuration the pipeline runs with. All paths
// are resolved once, before discovery.
type Settings struct {
	ConfigVersion string
	// ProjectRoot anchors relative fixture and output paths. Defaults to
	// the config file's directory; overridable via SESHAT_PROJECT_ROOT.
	ProjectRoot string
	Fixtures    Fixtures
	Output      Output
	Harnesses   Harnesses
}

// Fixtures holds optional fixture discovery config and presence flags.
type Fixtures struct {
	Root      string
	Suffix    string
	HasRoot   bool
	HasSuffix bool
}

// Output holds optional artifact output config.
type Output struct {
	Dir    string
	HasDir bool
}

// Harnesses holds optional harness sources beyond the built-ins.
type Harnesses struct {
	Lua    []string
	HasLua bool
}

// Parse validates and extracts settings from a CUE config file. Only
// configVersion is required; everything else is optional with defaults
// applied by Resolve.
func Parse(path string) (Settings, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Settings{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&s.ConfigVersion); err != nil {
		return Settings{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	fv := v.LookupPath(cue.ParsePath("fixtures"))
	if fv.Exists() {
		rv := fv.LookupPath(cue.ParsePath("root"))
		if rv.Exists() && rv.Kind() == cue.StringKind {
			if err := rv.Decode(&s.Fixtures.Root); err == nil {
				s.Fixtures.HasRoot = true
			}
		}
		sv := fv.LookupPath(cue.ParsePath("suffix"))
		if sv.Exists() && sv.Kind() == cue.StringKind {
			if err := sv.Decode(&s.Fixtures.Suffix); err == nil {
				s.Fixtures.HasSuffix = true
			}
		}
	}
	ov := v.LookupPath(cue.ParsePath("output"))
	if ov.Exists() {
		dv := ov.LookupPath(cue.ParsePath("dir"))
		if dv.Exists() && dv.Kind() == cue.StringKind {
			if err := dv.Decode(&s.Output.Dir); err == nil {
				s.Output.HasDir = true
			}
		}
	}
	hv := v.LookupPath(cue.ParsePath("harnesses"))
	if hv.Exists() {
		lv := hv.LookupPath(cue.ParsePath("lua"))
		if lv.Exists() && lv.Kind() == cue.ListKind {
			if err := lv.Decode(&s.Harnesses.Lua); err == nil && len(s.Harnesses.Lua) > 0 {
				s.Harnesses.HasLua = true
			}
		}
	}
	s.ProjectRoot = filepath.Dir(path)
	return s, nil
}

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

// Resolve applies defaults and anchors relative paths at the project root.
func Resolve(s Settings) Settings {
	if !s.Fixtures.HasRoot || s.Fixtures.Root == "" {
		s.Fixtures.Root = "src"
	}
	if !s.Fixtures.HasSuffix || s.Fixtures.Suffix == "" {
		s.Fixtures.Suffix = ".blessed.json"
	}
	if !s.Output.HasDir || s.Output.Dir == "" {
		s.Output.Dir = "blessed"
	}
	if s.ProjectRoot == "" {
		s.ProjectRoot = "."
	}
	if !filepath.IsAbs(s.Fixtures.Root) {
		s.Fixtures.Root = filepath.Join(s.ProjectRoot, s.Fixtures.Root)
	}
	if !filepath.IsAbs(s.Output.Dir) {
		s.Output.Dir = filepath.Join(s.ProjectRoot, s.Output.Dir)
	}
	for i, p := range s.Harnesses.Lua {
		if !filepath.IsAbs(p) {
			s.Harnesses.Lua[i] = filepath.Join(s.ProjectRoot, p)
		}
	}
	return s
}

// Load is the one-stop entry used by the CLI: parse the CUE file, overlay
// the environment, apply defaults.
func Load(path string) (Settings, error) {
	s, err := Parse(path)
	if err != nil {
		return Settings{}, err
	}
	LoadDotenv(filepath.Dir(path))
	ApplyEnv(&s)
	return Resolve(s), nil
}
