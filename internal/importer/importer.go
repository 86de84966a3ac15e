package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/config"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/ffi"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/parser"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/stdlib"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/vm"
)

// sourceExts lists the extensions a module's backing file may carry, in
// the order they are tried (spec.md
// §6 "Source file extension: .tr"). A plain ".py" file is also
// accepted, per the same section's Python-compatibility note.
var sourceExts = []string{".tr", ".py"}

// Loader resolves `import`/`from...import` statements to loaded
// modules, implementing vm.ModuleLoader. It also owns the process-wide
// FFI registry (spec.md §5 "Shared resources"): a module's `extern`
// blocks are bound against it the moment the module finishes executing,
// the "resolved by internal/ffi at import time" step spec.md §4.8/§4.9
// describe together.
type Loader struct {
	SearchPath []string
	Builtins   map[string]*value.ModuleObj
	FFI        *ffi.Registry
}

// New builds a Loader whose search path is, in order: the process's
// current working directory, TAURARO_PATH's entries, and any
// search_paths listed in cfg's tauraro.yaml (spec.md §4.9's "current
// working directory, TAURARO_PATH segments, standard install
// locations", with tauraro.yaml as this implementation's stand-in for
// "standard install locations").
func New(cfg *config.Config) *Loader {
	l := &Loader{Builtins: stdlib.Builtins()}
	if wd, err := os.Getwd(); err == nil {
		l.SearchPath = append(l.SearchPath, wd)
	}
	l.SearchPath = append(l.SearchPath, config.SearchPathFromEnv()...)
	var aliases map[string]string
	if cfg != nil {
		l.SearchPath = append(l.SearchPath, cfg.SearchPaths...)
		aliases = cfg.FFILibraries
	}
	l.FFI = ffi.NewRegistry(ffi.NewLoaderWithAliases(l.SearchPath, aliases))
	return l
}

// BindExterns resolves co's `extern` declarations against l.FFI and
// installs the resulting callables into mod's globals. Exported so
// cmd/tauraro can call it for the entry script too, which -- unlike
// every other module -- never passes through Load.
func (l *Loader) BindExterns(co *compiler.CodeObject, mod *value.ModuleObj) error {
	if len(co.Externs) == 0 {
		return nil
	}
	return ffi.BindExterns(l.FFI, co.Externs, mod.Globals)
}

// Load implements vm.ModuleLoader. name is the dotted module name
// following any leading dots (level counts them); from is the module
// the import statement appears in, used to resolve a relative import.
func (l *Loader) Load(m *vm.VM, name string, level int, from *value.ModuleObj) (value.Value, error) {
	absName, err := resolveName(name, level, from)
	if err != nil {
		return value.Value{}, err
	}
	if mod, ok := m.Modules[absName]; ok {
		return value.ModuleValue(mod), nil
	}
	if mod, ok := l.Builtins[absName]; ok {
		m.Modules[absName] = mod
		return value.ModuleValue(mod), nil
	}
	co, pkg, dir, err := l.resolveAndCompile(absName)
	if err != nil {
		return value.Value{}, err
	}
	mod, err := m.RunModuleAt(co, absName, pkg, dir)
	if err != nil {
		return value.Value{}, err
	}
	if err := l.BindExterns(co, mod); err != nil {
		delete(m.Modules, absName)
		return value.Value{}, err
	}
	return value.ModuleValue(mod), nil
}

// resolveName turns `from`/`level`/`name` into the single absolute
// dotted module name the rest of Load operates on (spec.md §4.9
// "Relative imports ... resolved against the current module's package
// path; a relative import from a non-package module fails with
// ImportError").
func resolveName(name string, level int, from *value.ModuleObj) (string, error) {
	if level == 0 {
		if name == "" {
			return "", importError("import requires a module name")
		}
		return name, nil
	}
	if from == nil || from.Package == "" {
		return "", importError("attempted relative import with no known parent package")
	}
	parts := strings.Split(from.Package, ".")
	if level-1 > len(parts) {
		return "", importError("attempted relative import beyond top-level package")
	}
	parts = parts[:len(parts)-(level-1)]
	if name != "" {
		parts = append(parts, name)
	}
	if len(parts) == 0 {
		return "", importError("attempted relative import with no target module")
	}
	return strings.Join(parts, "."), nil
}

// resolveAndCompile walks SearchPath trying, for dotted name a.b.c,
// root/a/b/c.tr (a plain module, parent package "a.b") and then
// root/a/b/c/__init__.tr (a package, whose own package path is "a.b.c"
// per spec.md "the presence of an __init__ file in directory a/
// identifies it as a package").
func (l *Loader) resolveAndCompile(absName string) (co *compiler.CodeObject, pkg, dir string, err error) {
	segs := strings.Split(absName, ".")
	rel := filepath.Join(segs...)
	for _, root := range l.SearchPath {
		// a package takes priority over a same-named plain module at
		// the same search-path root, matching CPython's own resolution
		// order for an ambiguous a.tr / a/__init__.tr pair.
		pkgDir := filepath.Join(root, rel)
		for _, ext := range sourceExts {
			initPath := filepath.Join(pkgDir, "__init__"+ext)
			if data, rerr := os.ReadFile(initPath); rerr == nil {
				co, err = compileSource(initPath, data, absName)
				return co, absName, pkgDir, err
			}
		}
		for _, ext := range sourceExts {
			filePath := filepath.Join(root, rel+ext)
			if data, rerr := os.ReadFile(filePath); rerr == nil {
				co, err = compileSource(filePath, data, absName)
				return co, strings.Join(segs[:len(segs)-1], "."), "", err
			}
		}
	}
	return nil, "", "", moduleNotFoundError(absName)
}

func compileSource(filename string, src []byte, modName string) (*compiler.CodeObject, error) {
	astMod, err := parser.Parse(filename, src)
	if err != nil {
		return nil, errors.Wrapf(err, "importing %s", modName)
	}
	co, err := compiler.Compile(modName, astMod)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling %s", modName)
	}
	return co, nil
}

func importError(msg string) error {
	return value.NewException(value.ErrImportError, msg).AsException()
}

func moduleNotFoundError(name string) error {
	return value.NewException(value.ErrModuleNotFoundError, fmt.Sprintf("No module named %q", name)).AsException()
}
