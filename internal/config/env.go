package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SESHAT_"

// LoadDotenv loads `.env` from dir into the process environment, without
// overriding variables that are already set. A missing file is fine.
func LoadDotenv(dir string) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// ApplyEnv overlays SESHAT_* variables onto settings. Environment wins over
// the config file; Resolve still fills whatever is left empty.
func ApplyEnv(s *Settings) {
	if v := os.Getenv(EnvPrefix + "PROJECT_ROOT"); v != "" {
		s.ProjectRoot = v
	}
	if v := os.Getenv(EnvPrefix + "FIXTURES_ROOT"); v != "" {
		s.Fixtures.Root = v
		s.Fixtures.HasRoot = true
	}
	if v := os.Getenv(EnvPrefix + "FIXTURES_SUFFIX"); v != "" {
		s.Fixtures.Suffix = v
		s.Fixtures.HasSuffix = true
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		s.Output.Dir = v
		s.Output.HasDir = true
	}
}
