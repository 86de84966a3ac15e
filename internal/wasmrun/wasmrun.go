package wasmrun

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
)

// Runner owns one wazero runtime instance; construct one per
// compile-and-check invocation and Close it when done (mirroring
// db47h-ngaro/vm.Instance's own open/Run/Close lifecycle shape).
type Runner struct {
	rt wazero.Runtime
}

// New builds a Runner with wazero's default (interpreter) runtime
// configuration -- the self-check path cares about correctness, not
// JIT-compiled wasm execution speed, so the extra compiler-engine
// dependency wazero optionally pulls in is not needed here.
func New(ctx context.Context) *Runner {
	return &Runner{rt: wazero.NewRuntime(ctx)}
}

// Close releases the runtime's resources.
func (r *Runner) Close(ctx context.Context) error {
	return errors.Wrap(r.rt.Close(ctx), "wasmrun: close runtime")
}

// Validate instantiates wasmBytes and immediately closes it, the
// `compile --backend wasm` self-check's shape when there is no
// particular exported function worth calling yet -- it only needs to
// know the module wazero produced is well-formed.
func (r *Runner) Validate(ctx context.Context, wasmBytes []byte) error {
	mod, err := r.rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		return errors.Wrap(err, "wasmrun: instantiate module")
	}
	return mod.Close(ctx)
}

// CallInt64 instantiates wasmBytes (a module internal/ctranspile's
// EmitWasm produced) and calls its exported function funcName with
// args, all i64, returning its single i64 result.
func (r *Runner) CallInt64(ctx context.Context, wasmBytes []byte, funcName string, args ...int64) (int64, error) {
	mod, err := r.rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		return 0, errors.Wrap(err, "wasmrun: instantiate module")
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(funcName)
	if fn == nil {
		return 0, errors.Errorf("wasmrun: module has no exported function %q", funcName)
	}

	wargs := make([]uint64, len(args))
	for i, a := range args {
		wargs[i] = uint64(a)
	}
	results, err := fn.Call(ctx, wargs...)
	if err != nil {
		return 0, errors.Wrapf(err, "wasmrun: call %s", funcName)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return int64(results[0]), nil
}
