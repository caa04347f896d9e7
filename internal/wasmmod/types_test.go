package wasmmod_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/wasmmod"
)

func TestFuncAndExportLookup(t *testing.T) {
	a := wasmmod.NewAnalyzer(
		[]wasmmod.Export{{Name: "run", Kind: wasmmod.ExternKindFunc, Index: 0}},
		nil, nil, nil,
		[]wasmmod.FuncPrototype{{Name: "main"}},
		nil, 1,
	)

	proto, ok := a.Func(0)
	require.True(t, ok)
	require.Equal(t, "main", proto.Name)

	_, ok = a.Func(1)
	require.False(t, ok)

	exp, ok := a.Export("run")
	require.True(t, ok)
	require.Equal(t, uint32(0), exp.Index)

	require.True(t, a.FuncIsExported(0))
	require.False(t, a.FuncIsExported(1))
}

// ReachableFuncIndices walks the call graph from entry plus every function
// referenced by an element segment, since call_indirect may reach those
// without a direct static call edge (spec §4.7's coverage-sizing contract).
func TestReachableFuncIndicesWalksCallGraphAndElements(t *testing.T) {
	a := wasmmod.NewAnalyzer(
		nil, nil, nil,
		[]wasmmod.ElementSegment{{TableIndex: 0, Offset: 0, FuncIndices: []uint32{2}}},
		[]wasmmod.FuncPrototype{{Name: "main"}, {Name: "helper"}, {Name: "table_only"}, {Name: "unreachable"}},
		nil, 1,
	)
	callGraph := map[string]map[string]struct{}{
		"main":   {"helper": struct{}{}},
		"helper": {},
	}

	reached := a.ReachableFuncIndices(0, callGraph)
	require.True(t, reached[0])
	require.True(t, reached[1])
	require.True(t, reached[2], "table_only must be reachable via its element segment")
	require.False(t, reached[3])
}

func TestValueTypeBitWidthAndFloat(t *testing.T) {
	require.Equal(t, 32, wasmmod.ValueTypeI32.BitWidth())
	require.Equal(t, 64, wasmmod.ValueTypeI64.BitWidth())
	require.Equal(t, 32, wasmmod.ValueTypeF32.BitWidth())
	require.True(t, wasmmod.ValueTypeF32.IsFloat())
	require.False(t, wasmmod.ValueTypeI32.IsFloat())
}
