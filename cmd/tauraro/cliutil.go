package main

import (
	"os"

	"golang.org/x/term"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/config"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/importer"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/parser"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/vm"
)

// stderrIsTTY decides whether `run` and `repl` colorize diag.Print's
// traceback output, mirroring db47h-ngaro/cmd/retro's terminal-vs-pipe check
// before it colors its interactive prompt.
func stderrIsTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// loadConfig reads tauraro.yaml from the current directory, per
// config.Load's "missing file is the zero Config" convention.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return &config.Config{}, nil
	}
	return config.Load(wd)
}

// newInterpreter wires one importer.Loader into one vm.VM, the shape
// `run` and `repl` both need: a loader resolves `import`s (and owns the
// FFI registry externs bind against), the VM executes against it.
func newInterpreter(noJIT bool) (*vm.VM, *importer.Loader, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	loader := importer.New(cfg)
	opts := []vm.Option{vm.WithLoader(loader), vm.WithStdout(os.Stdout)}
	if noJIT {
		opts = append(opts, vm.WithNoJIT())
	}
	return vm.New(opts...), loader, nil
}

// compileFile parses and compiles the source at path into a
// CodeObject named "__main__", the module name every directly-run
// entry script gets (spec.md §4.9's reserved top-level module name).
func compileFile(path string) (*compiler.CodeObject, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return compileSource(path, src)
}

func compileSource(filename string, src []byte) (*compiler.CodeObject, error) {
	astMod, err := parser.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	return compiler.Compile("__main__", astMod)
}

// diagFromCompile maps a parse/compile failure to exit code 3 (spec.md
// §6 "Exit codes: ... 3 Compilation error"), formatting *ParseError and
// *CompileError's own Pos/Msg directly rather than routing them through
// internal/diag, which only knows how to render a *value.ExceptionObj
// (a language-level runtime exception, not a host-level compile error).
func diagFromCompile(err error) error {
	switch e := err.(type) {
	case *parser.ParseError:
		return newExitError(exitCompileErr, e.Pos.String()+": "+e.Msg)
	case *compiler.CompileError:
		return newExitError(exitCompileErr, e.Pos.String()+": "+e.Msg)
	default:
		return newExitError(exitCompileErr, err.Error())
	}
}

// runModuleBody binds co's extern blocks against loader's FFI registry
// and then executes co as mod's top-level frame. It is the shared tail
// of both `run`'s one-shot execution and `repl`'s per-line execution,
// since an entry script/REPL line never passes through importer.Load --
// the only other place BindExterns is normally called from.
func runModuleBody(m *vm.VM, loader *importer.Loader, co *compiler.CodeObject, mod *value.ModuleObj) error {
	if err := loader.BindExterns(co, mod); err != nil {
		return err
	}
	return m.ExecIn(co, mod)
}

// rewriteLastExprForEcho turns a trailing bare expression statement
// into `_ = <expr>` in place, Python interactive mode's own convention
// for naming the last evaluated value. Only the REPL does this --
// `run` and `compile` leave the AST untouched.
func rewriteLastExprForEcho(mod *ast.Module) (echoed bool) {
	if len(mod.Body) == 0 {
		return false
	}
	last := len(mod.Body) - 1
	exprStmt, ok := mod.Body[last].(*ast.ExprStmt)
	if !ok {
		return false
	}
	mod.Body[last] = &ast.Assign{
		Targets: []ast.Expr{&ast.NameExpr{Id: "_"}},
		Value:   exprStmt.X,
	}
	return true
}
