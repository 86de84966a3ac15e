package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the optional tauraro.yaml document: extra module search
// roots, FFI library name aliases, and the default --memory-strategy
// for `compile` when the flag isn't given explicitly.
type Config struct {
	SearchPaths    []string          `yaml:"search_paths"`
	FFILibraries   map[string]string `yaml:"ffi_libraries"`
	MemoryStrategy string            `yaml:"memory_strategy"`
}

// Load reads tauraro.yaml from dir. A missing file is not an error --
// it yields a zero Config, matching the teacher's own "missing config
// is the default config" convention in cmd/retro's flag handling.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "tauraro.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &cfg, nil
}

// SearchPathFromEnv splits TAURARO_PATH on the platform's native list
// separator (':' on POSIX, ';' on Windows) per spec.md §6.
func SearchPathFromEnv() []string {
	v := os.Getenv("TAURARO_PATH")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
