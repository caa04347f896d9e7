package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// CFG refinement invariant (spec §8): after refinement, no basic block
// contains a call/call_indirect at a non-terminal position, and every
// original edge out of a split block originates from the final split.
func TestRefineSplitsAtCalls(t *testing.T) {
	block := &cfg.BasicBlock{
		Name: "b0",
		Instructions: []wasmmod.Instruction{
			{Offset: 0, Op: wasmmod.I32Const},
			{Offset: 1, Op: wasmmod.Call},
			{Offset: 2, Op: wasmmod.I32Const},
			{Offset: 3, Op: wasmmod.Call},
			{Offset: 4, Op: wasmmod.End},
		},
	}
	fn := cfg.NewFunction("f", 0, "b0", map[string]*cfg.BasicBlock{"b0": block}, []cfg.Edge{
		{From: "b0", To: "b1", Kind: cfg.Unconditional},
	})

	refined := cfg.Refine(fn)

	for _, b := range refined.Blocks {
		for i, instr := range b.Instructions {
			isCall := instr.Op == wasmmod.Call || instr.Op == wasmmod.CallIndirect
			if isCall {
				require.Equal(t, len(b.Instructions)-1, i, "block %s: call must be terminal", b.Name)
			}
		}
	}

	// The original edge out of b0 must now originate from the final split
	// piece, not from the original (now head-only) b0.
	finalPieceHasEdge := false
	for _, e := range refined.Edges {
		if e.To == "b1" {
			finalPieceHasEdge = true
			require.NotEqual(t, "b0", e.From, "edge to b1 should originate from the final split piece")
		}
	}
	require.True(t, finalPieceHasEdge)
}

func TestRefineLeavesCallFreeBlockUnchanged(t *testing.T) {
	block := &cfg.BasicBlock{
		Name: "b0",
		Instructions: []wasmmod.Instruction{
			{Offset: 0, Op: wasmmod.I32Const},
			{Offset: 1, Op: wasmmod.End},
		},
	}
	fn := cfg.NewFunction("f", 0, "b0", map[string]*cfg.BasicBlock{"b0": block}, nil)
	refined := cfg.Refine(fn)
	require.Len(t, refined.Blocks, 1)
	require.Contains(t, refined.Blocks, "b0")
}

func TestBuildCallGraph(t *testing.T) {
	callee := &cfg.BasicBlock{Name: "b0", Instructions: []wasmmod.Instruction{{Offset: 0, Op: wasmmod.End}}}
	caller := &cfg.BasicBlock{Name: "b0", Instructions: []wasmmod.Instruction{
		{Offset: 0, Op: wasmmod.Call, Imm: wasmmod.Immediate{FuncIndex: 1}},
		{Offset: 1, Op: wasmmod.End},
	}}
	funcs := map[string]*cfg.Function{
		"caller": cfg.NewFunction("caller", 0, "b0", map[string]*cfg.BasicBlock{"b0": caller}, nil),
		"callee": cfg.NewFunction("callee", 1, "b0", map[string]*cfg.BasicBlock{"b0": callee}, nil),
	}
	analyzer := wasmmod.NewAnalyzer(nil, nil, nil, nil, []wasmmod.FuncPrototype{
		{Name: "caller"},
		{Name: "callee"},
	}, nil, 1)

	cg := cfg.BuildCallGraph(funcs, analyzer)
	_, calls := cg["caller"]["callee"]
	require.True(t, calls)
}
