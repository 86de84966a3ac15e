// Package ctranspile implements the C transpiler (spec.md §4.7): a
// second walk over the parsed AST -- after internal/compiler's walk
// that produces bytecode -- emitting a C translation unit expressing
// the same program.
//
// The structural idea is the teacher's own: db47h-ngaro's asm package
// assembles Forth source into a binary vm.Cell image by walking the
// parsed token stream once and writing instructions into a growable
// buffer (asm/parser.go's write/writeOpcode), and internal/compiler's
// Disassemble walks a compiled CodeObject a second time to produce
// text. Transpile composes both ideas: it walks ast.Module the way the
// assembler walks tokens, but instead of encoding Forth opcodes into a
// vm.Cell buffer it writes C source text into a strings.Builder, and
// instead of disassembling bytecode it is emitting a different surface
// syntax for the same program an already-compiled CodeObject runs.
//
// Two independent axes are configurable, both via Options:
//
//   - emission mode per variable/parameter: boxed (default, a tagged
//     Value union with arithmetic routed through tauraro_rt.h runtime
//     functions) or native (when a source annotation names int, float,
//     bool, or str; arithmetic is emitted inline in plain C).
//   - memory strategy: which allocator declarations tauraro_rt.h
//     carries -- automatic (a reference-counted header with
//     incref/decref), manual (allocate/free_), or arena (a bump
//     allocator with arena_alloc/arena_reset). Emitted function bodies
//     call none of them: no decrement at scope exit and no arena reset
//     on function exit is emitted.
//
// Freestanding mode additionally suppresses hosted headers and lowers
// a fixed set of hardware-access builtins to real inline assembly
// rather than the hosted stubs that return 0.
//
// A third backend, wasm, reuses the same "restricted straight-line
// numeric scope" idea internal/jit uses for its hot-loop compiler:
// internal/ctranspile/wasm.go emits a minimal WebAssembly binary
// module for functions whose parameters, return type, and body stay
// within that scope, and internal/wasmrun executes it with wazero so
// `tauraro compile --backend wasm` is round-trippable without an
// external wasm toolchain.
package ctranspile
