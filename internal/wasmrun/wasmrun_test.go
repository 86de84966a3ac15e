package wasmrun_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ctranspile"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/parser"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/wasmrun"
)

func TestRunnerCallInt64ExecutesEmittedWasmFunction(t *testing.T) {
	mod, err := parser.Parse("<test>", []byte("def add(a: int, b: int) -> int:\n    return a + b\n"))
	require.NoError(t, err)

	wasmBytes, ok := ctranspile.EmitWasm(mod)
	require.True(t, ok)

	ctx := context.Background()
	r := wasmrun.New(ctx)
	defer r.Close(ctx)

	result, err := r.CallInt64(ctx, wasmBytes, "add", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result)
}

func TestRunnerCallInt64FailsOnMissingExport(t *testing.T) {
	mod, err := parser.Parse("<test>", []byte("def add(a: int, b: int) -> int:\n    return a + b\n"))
	require.NoError(t, err)
	wasmBytes, ok := ctranspile.EmitWasm(mod)
	require.True(t, ok)

	ctx := context.Background()
	r := wasmrun.New(ctx)
	defer r.Close(ctx)

	_, err = r.CallInt64(ctx, wasmBytes, "nonexistent")
	assert.Error(t, err)
}
