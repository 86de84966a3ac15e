// Package wasmrun executes a wasm module with wazero
// (github.com/tetratelabs/wazero), the `compile --backend wasm`
// self-check path SPEC_FULL.md §C describes: internal/ctranspile's
// EmitWasm produces the module bytes, and this package instantiates
// and calls into them without requiring an external wasm toolchain or
// browser runtime.
package wasmrun
