// Package importer implements spec.md §4.9's module search order --
// cache, then built-in modules, then each directory on the configured
// search path -- as internal/vm.ModuleLoader. It is a separate package
// from internal/vm because resolving a name to a CodeObject needs
// internal/parser and internal/compiler; internal/vm only depends on
// the ModuleLoader interface it declares, not on this package, so the
// two are wired together at construction time (vm.WithLoader) by
// whatever assembles a VM (cmd/tauraro), keeping vm->importer->
// compiler->vm free of any cycle.
package importer
