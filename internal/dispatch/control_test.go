package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func newControlContext(t *testing.T, functions map[string]*cfg.Function) (*Context, *smt.Facade) {
	t.Helper()
	ctx, f := newTestContext(t)
	ctx.Functions = functions
	return ctx, f
}

// br_if forks one successor per feasible arm (spec §4.4) when the branch
// condition is a genuinely symbolic value.
func TestHandleBrIfForksOnSymbolicCondition(t *testing.T) {
	fn := cfg.NewFunction("f", 0, "b0", map[string]*cfg.BasicBlock{
		"b0": {Name: "b0"},
	}, []cfg.Edge{
		{From: "b0", To: "true_target", Kind: cfg.ConditionalTrue},
		{From: "b0", To: "false_target", Kind: cfg.ConditionalFalse},
	})
	ctx, f := newControlContext(t, map[string]*cfg.Function{"f": fn})
	_ = f

	st := &state.State{
		Stack:       state.NewStack(),
		Constraints: state.NewConstraints(),
		CurrentFunc: "f",
		CurrentBlock: "b0",
		Frames:      []state.ControlFrame{{Kind: state.FrameBlock, StackBase: 0}},
	}
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: ctx.Facade.FreshBV("cond", 32)})

	out := handleBrIf(ctx, st, wasmmod.Instruction{Imm: wasmmod.Immediate{LabelIndex: 0}})
	require.Len(t, out, 2)

	targets := map[string]bool{}
	for _, succ := range out {
		targets[succ.CurrentBlock] = true
	}
	require.True(t, targets["true_target"])
	require.True(t, targets["false_target"])
}

// A concretely-zero condition makes only the false arm feasible, even
// though handleBrIf always builds both candidates before filtering.
func TestHandleBrIfConcreteConditionPrunesInfeasibleArm(t *testing.T) {
	fn := cfg.NewFunction("f", 0, "b0", map[string]*cfg.BasicBlock{
		"b0": {Name: "b0"},
	}, []cfg.Edge{
		{From: "b0", To: "true_target", Kind: cfg.ConditionalTrue},
		{From: "b0", To: "false_target", Kind: cfg.ConditionalFalse},
	})
	ctx, _ := newControlContext(t, map[string]*cfg.Function{"f": fn})

	st := &state.State{
		Stack:       state.NewStack(),
		Constraints: state.NewConstraints(),
		CurrentFunc: "f",
		CurrentBlock: "b0",
		Frames:      []state.ControlFrame{{Kind: state.FrameBlock, StackBase: 0}},
	}
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: ctx.Facade.BVConst(0, 32)})

	out := handleBrIf(ctx, st, wasmmod.Instruction{Imm: wasmmod.Immediate{LabelIndex: 0}})
	require.Len(t, out, 1)
	require.Equal(t, "false_target", out[0].CurrentBlock)
}

// handleCall to a Wasm-defined function suspends the caller and transfers
// control to the callee's entry block (spec §4.4 "call").
func TestHandleCallToDefinedFunction(t *testing.T) {
	callerBlock := &cfg.BasicBlock{Name: "b0", Instructions: []wasmmod.Instruction{
		{Offset: 0, Op: wasmmod.Call, Imm: wasmmod.Immediate{FuncIndex: 1}},
	}}
	callerFn := cfg.NewFunction("caller", 0, "b0", map[string]*cfg.BasicBlock{"b0": callerBlock}, []cfg.Edge{
		{From: "b0", To: "after_call", Kind: cfg.Fallthrough},
	})
	calleeFn := cfg.NewFunction("callee", 1, "entry", map[string]*cfg.BasicBlock{"entry": {Name: "entry"}}, nil)

	ctx, f := newControlContext(t, map[string]*cfg.Function{"caller": callerFn, "callee": calleeFn})
	ctx.Analyzer = wasmmod.NewAnalyzer(nil, nil, nil, nil, []wasmmod.FuncPrototype{
		{Name: "caller"},
		{Name: "callee", ParamTypes: []wasmmod.ValueType{wasmmod.ValueTypeI32}},
	}, nil, 1)

	st := &state.State{
		Stack:       state.NewStack(),
		Locals:      state.NewLocals(nil),
		Constraints: state.NewConstraints(),
		CurrentFunc: "caller",
		CurrentBlock: "b0",
	}
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(7, 32)})

	out := handleCall(ctx, st, wasmmod.Instruction{Imm: wasmmod.Immediate{FuncIndex: 1}})
	require.Nil(t, out)
	require.Equal(t, "callee", st.CurrentFunc)
	require.Equal(t, "entry", st.CurrentBlock)
	require.Len(t, st.CallFrames, 1)
	require.Equal(t, "caller", st.CallFrames[0].FuncName)
	require.Equal(t, "after_call", st.CallFrames[0].ReturnBlock)
}

func TestHandleUnreachableTraps(t *testing.T) {
	ctx, _ := newControlContext(t, nil)
	st := &state.State{Stack: state.NewStack(), Constraints: state.NewConstraints()}
	out := handleUnreachable(ctx, st, wasmmod.Instruction{})
	require.Nil(t, out)
	require.Equal(t, state.StatusTrapped, st.Status)
	require.Equal(t, "unreachable", st.TrapReason)
}
