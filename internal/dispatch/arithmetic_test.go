package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func newTestContext(t *testing.T) (*Context, *smt.Facade) {
	t.Helper()
	f, err := smt.NewFacade()
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return &Context{Facade: f}, f
}

func pushI32(st *state.State, f *smt.Facade, v uint32) {
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(uint64(v), 32)})
}

func TestIntBinAdd(t *testing.T) {
	c, f := newTestContext(t)
	st := &state.State{Stack: state.NewStack(), Constraints: state.NewConstraints()}
	pushI32(st, f, 2)
	pushI32(st, f, 3)

	out := intBin("add")(c, st, wasmmod.Instruction{})
	require.Nil(t, out)
	require.Equal(t, 1, st.Stack.Len())
	v, ok := f.Concretize(st.Stack.Peek(0).Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(5), v)
	require.Equal(t, 1, st.CurrentInstr)
}

// Integer division by zero traps (spec §4.3): intDiv forks a trap arm and
// a defined-result arm from a genuinely symbolic divisor.
func TestIntDivForksOnSymbolicDivisor(t *testing.T) {
	c, f := newTestContext(t)
	st := &state.State{Stack: state.NewStack(), Constraints: state.NewConstraints()}
	pushI32(st, f, 10)
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: f.FreshBV("divisor", 32)})

	out := intDiv("sdiv", true)(c, st, wasmmod.Instruction{})
	require.Len(t, out, 2)

	var sawTrap, sawOK bool
	for _, succ := range out {
		if succ.Status == state.StatusTrapped {
			sawTrap = true
			require.Equal(t, "integer divide by zero", succ.TrapReason)
		} else {
			sawOK = true
			require.Equal(t, 1, succ.Stack.Len())
		}
	}
	require.True(t, sawTrap)
	require.True(t, sawOK)
}

// A concretely nonzero divisor yields only the defined-result successor.
func TestIntDivConcreteNonzero(t *testing.T) {
	c, f := newTestContext(t)
	st := &state.State{Stack: state.NewStack(), Constraints: state.NewConstraints()}
	pushI32(st, f, 10)
	pushI32(st, f, 2)

	out := intDiv("udiv", false)(c, st, wasmmod.Instruction{})
	require.Len(t, out, 1)
	require.Equal(t, state.StatusRunning, out[0].Status)
	v, ok := f.Concretize(out[0].Stack.Peek(0).Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(5), v)
}
