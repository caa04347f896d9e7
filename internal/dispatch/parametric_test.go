package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func TestHandleDropPopsOneValue(t *testing.T) {
	c, f := newTestContext(t)
	st := &state.State{Stack: state.NewStack(), Constraints: state.NewConstraints()}
	pushI32(st, f, 1)
	pushI32(st, f, 2)

	out := handleDrop(c, st, wasmmod.Instruction{})
	require.Nil(t, out)
	require.Equal(t, 1, st.Stack.Len())
	v, ok := f.Concretize(st.Stack.Peek(0).Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(1), v)
}

func TestHandleSelectConcreteConditionPicksInPlace(t *testing.T) {
	c, f := newTestContext(t)
	st := &state.State{Stack: state.NewStack(), Constraints: state.NewConstraints()}
	pushI32(st, f, 11) // val1
	pushI32(st, f, 22) // val2
	pushI32(st, f, 1)  // cond, nonzero -> val1

	out := handleSelect(c, st, wasmmod.Instruction{})
	require.Nil(t, out)
	require.Equal(t, 1, st.Stack.Len())
	v, ok := f.Concretize(st.Stack.Peek(0).Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(11), v)
}

// select forks on a genuinely symbolic condition rather than folding it
// into an Ite, so the two outcomes remain independently reportable states.
func TestHandleSelectSymbolicConditionForks(t *testing.T) {
	c, f := newTestContext(t)
	st := &state.State{Stack: state.NewStack(), Constraints: state.NewConstraints()}
	pushI32(st, f, 11) // val1
	pushI32(st, f, 22) // val2
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: f.FreshBV("cond", 32)})

	out := handleSelect(c, st, wasmmod.Instruction{})
	require.Len(t, out, 2)

	var got []uint64
	for _, succ := range out {
		v, ok := f.Concretize(succ.Stack.Peek(0).Expr, nil)
		require.True(t, ok)
		got = append(got, v)
	}
	require.ElementsMatch(t, []uint64{11, 22}, got)
}
