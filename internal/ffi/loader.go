package ffi

import (
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// Loader opens native libraries by canonical name, caching handles so a
// library referenced by more than one extern block is only dlopen'd
// once (spec.md §4.8 "Cache handles keyed by canonical library name").
// purego.Dlopen is the single dlopen/LoadLibrary abstraction spec.md
// asks for; it already branches on GOOS internally, so Loader only
// needs to supply the name decoration and search directories.
type Loader struct {
	mu         sync.Mutex
	handles    map[string]uintptr
	searchDirs []string
	aliases    map[string]string
}

// NewLoader builds a Loader that additionally searches dirs (typically
// config.Config.SearchPaths plus the directory of the importing
// module) before falling back to the platform's own library search
// path.
func NewLoader(dirs []string) *Loader {
	return &Loader{handles: map[string]uintptr{}, searchDirs: dirs}
}

// NewLoaderWithAliases is NewLoader plus a name-rewrite table -- the
// config.Config.FFILibraries map (tauraro.yaml's "ffi_libraries"
// section) lets a program `extern "m" { ... }` against a short alias
// while the host resolves it to, say, the full versioned soname.
func NewLoaderWithAliases(dirs []string, aliases map[string]string) *Loader {
	return &Loader{handles: map[string]uintptr{}, searchDirs: dirs, aliases: aliases}
}

// candidateNames returns the name verbatim first. When the name has no
// extension it is followed by the platform-decorated spellings spec.md
// §4.8 lists: "lib"-prefixed with the platform suffix, then the bare
// name with the platform suffix. A name that already carries an
// extension is tried verbatim only.
func candidateNames(name string) []string {
	ext := map[string]string{"linux": ".so", "darwin": ".dylib", "windows": ".dll"}[runtime.GOOS]
	base := filepath.Base(name)
	names := []string{name}
	if filepath.Ext(base) == "" {
		decorated := base
		if len(decorated) < 3 || decorated[:3] != "lib" {
			decorated = "lib" + decorated
		}
		names = append(names, decorated+ext, base+ext)
	}
	return names
}

// Load resolves name to a library handle, trying the candidate
// decorations in turn, each one first in every search directory and
// then alone (letting the OS loader consult its own default search path and
// LD_LIBRARY_PATH/DYLD_LIBRARY_PATH/PATH per spec.md §3 "Environment
// variables"). The handle is cached under the caller-supplied name so
// repeated Load calls for the same library are free.
func (l *Loader) Load(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.handles[name]; ok {
		return h, nil
	}

	resolved := name
	if alias, ok := l.aliases[name]; ok {
		resolved = alias
	}

	var lastErr error
	for _, cand := range candidateNames(resolved) {
		for _, dir := range append(append([]string{}, l.searchDirs...), "") {
			path := cand
			if dir != "" {
				path = filepath.Join(dir, cand)
			}
			h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
			if err == nil {
				l.handles[name] = h
				return h, nil
			}
			lastErr = err
		}
	}
	msg := errors.Wrapf(lastErr, "ffi: load library %q", name).Error()
	return 0, &value.OpError{TypeName: value.ErrFFIError, Message: msg}
}

// Close releases every handle this Loader opened. Handles are also
// closed at interpreter shutdown (spec.md §5 "Resource acquisition"),
// which in a Go process is just "the process exits" -- purego has no
// explicit Dlclose, so Close here only drops the cache, not the OS
// mapping, matching purego's own documented lifetime model.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handles = map[string]uintptr{}
}
