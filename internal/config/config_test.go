package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsZeroConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.SearchPaths)
	assert.Empty(t, cfg.MemoryStrategy)
}

func TestLoadParsesSearchPathsAndFFIAliases(t *testing.T) {
	dir := t.TempDir()
	yamlBody := "search_paths:\n  - ../vendor\n  - /opt/tauraro/lib\n" +
		"ffi_libraries:\n  sdl2: libSDL2.so\n" +
		"memory_strategy: arena\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tauraro.yaml"), []byte(yamlBody), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"../vendor", "/opt/tauraro/lib"}, cfg.SearchPaths)
	assert.Equal(t, "libSDL2.so", cfg.FFILibraries["sdl2"])
	assert.Equal(t, "arena", cfg.MemoryStrategy)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tauraro.yaml"), []byte("search_paths: [unterminated"), 0o644))
	_, err := Load(dir)
	require.Error(t, err)
}

func TestSearchPathFromEnvSplitsOnPlatformSeparator(t *testing.T) {
	t.Setenv("TAURARO_PATH", "")
	assert.Empty(t, SearchPathFromEnv())

	sep := string(os.PathListSeparator)
	t.Setenv("TAURARO_PATH", "a"+sep+"b"+sep+"c")
	assert.Equal(t, []string{"a", "b", "c"}, SearchPathFromEnv())
}
