package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/config"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/vm"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newLoaderRootedAt(dir string) *Loader {
	return &Loader{SearchPath: []string{dir}, Builtins: map[string]*value.ModuleObj{}}
}

func TestLoadPlainModuleFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "greet.tr"), "message = \"hi\"\n")

	l := newLoaderRootedAt(dir)
	m := vm.New(vm.WithLoader(l))
	v, err := l.Load(m, "greet", 0, nil)
	require.NoError(t, err)
	require.Equal(t, value.KindModule, v.Kind)

	msg, ok := v.AsModule().Globals.Get(value.Str("message"))
	require.True(t, ok)
	assert.Equal(t, "hi", msg.AsStr())
}

func TestLoadCachesAlreadyLoadedModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "once.tr"), "count = 1\n")

	l := newLoaderRootedAt(dir)
	m := vm.New(vm.WithLoader(l))
	first, err := l.Load(m, "once", 0, nil)
	require.NoError(t, err)
	second, err := l.Load(m, "once", 0, nil)
	require.NoError(t, err)
	assert.Same(t, first.AsModule(), second.AsModule())
}

func TestLoadMissingModuleFailsWithModuleNotFoundError(t *testing.T) {
	dir := t.TempDir()
	l := newLoaderRootedAt(dir)
	m := vm.New(vm.WithLoader(l))
	_, err := l.Load(m, "nope", 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ModuleNotFoundError")
}

func TestLoadBuiltinModulePreferredOverSearchPath(t *testing.T) {
	dir := t.TempDir()
	builtinMath := value.NewModule("math").AsModule()
	builtinMath.Loaded = true
	builtinMath.Globals.Set(value.Str("marker"), value.Int(1))
	l := &Loader{SearchPath: []string{dir}, Builtins: map[string]*value.ModuleObj{"math": builtinMath}}
	m := vm.New(vm.WithLoader(l))

	v, err := l.Load(m, "math", 0, nil)
	require.NoError(t, err)
	marker, ok := v.AsModule().Globals.Get(value.Str("marker"))
	require.True(t, ok)
	assert.Equal(t, int64(1), marker.AsInt())
}

func TestLoadResolvesPackageInitOverPlainModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pkg", "__init__.tr"), "kind = \"package\"\n")
	writeFile(t, filepath.Join(dir, "pkg.tr"), "kind = \"module\"\n")

	l := newLoaderRootedAt(dir)
	m := vm.New(vm.WithLoader(l))
	v, err := l.Load(m, "pkg", 0, nil)
	require.NoError(t, err)
	kind, ok := v.AsModule().Globals.Get(value.Str("kind"))
	require.True(t, ok)
	assert.Equal(t, "package", kind.AsStr())
	assert.Equal(t, "pkg", v.AsModule().Package)
}

func TestRelativeImportResolvesAgainstPackage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pkg", "__init__.tr"), "")
	writeFile(t, filepath.Join(dir, "pkg", "sibling.tr"), "value = 99\n")

	l := newLoaderRootedAt(dir)
	m := vm.New(vm.WithLoader(l))
	pkgVal, err := l.Load(m, "pkg", 0, nil)
	require.NoError(t, err)

	sib, err := l.Load(m, "sibling", 1, pkgVal.AsModule())
	require.NoError(t, err)
	v, ok := sib.AsModule().Globals.Get(value.Str("value"))
	require.True(t, ok)
	assert.Equal(t, int64(99), v.AsInt())
}

func TestRelativeImportFromNonPackageFails(t *testing.T) {
	plain := value.NewModule("standalone").AsModule() // Package == ""
	l := newLoaderRootedAt(t.TempDir())
	m := vm.New(vm.WithLoader(l))
	_, err := l.Load(m, "sibling", 1, plain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ImportError")
}

func TestRelativeImportBeyondTopLevelFails(t *testing.T) {
	mod := value.NewModule("pkg.sub").AsModule()
	mod.Package = "pkg"
	l := newLoaderRootedAt(t.TempDir())
	m := vm.New(vm.WithLoader(l))
	_, err := l.Load(m, "x", 3, mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beyond top-level package")
}

func TestNewSeedsSearchPathFromConfig(t *testing.T) {
	cfg := &config.Config{SearchPaths: []string{"/extra/one", "/extra/two"}}
	l := New(cfg)
	assert.Contains(t, l.SearchPath, "/extra/one")
	assert.Contains(t, l.SearchPath, "/extra/two")
	assert.Contains(t, l.Builtins, "math")
}
