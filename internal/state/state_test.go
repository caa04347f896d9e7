package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/symmem"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func newFacade(t *testing.T) *smt.Facade {
	t.Helper()
	f, err := smt.NewFacade()
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

// State isolation (spec §8): after a fork, mutating one successor's
// stack/locals/memory/constraints leaves the other unchanged.
func TestForkIsolation(t *testing.T) {
	f := newFacade(t)

	locals := state.NewLocals([]state.Value{{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(0, 32)}})
	globals := state.MaterializeGlobals(f, nil, false, false)
	mem := symmem.NewStore(f, nil)
	files := state.NewFiles(nil)
	argv := state.MaterializeArgv(f, "main", 0, 8)

	st := state.NewState(locals, globals, mem, files, argv, "main", "entry", 1, 0)
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(1, 32)})
	st.Locals.Set(0, state.Value{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(5, 32)})
	st.Constraints = st.Constraints.Extend(f.BoolConst(true))

	sib := st.Fork()

	// Mutate the original after forking; the sibling must not observe it.
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(2, 32)})
	st.Locals.Set(0, state.Value{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(9, 32)})

	require.Equal(t, 1, sib.Stack.Len())
	siblingLocal, ok := evalConst(f, sib.Locals.Get(0).Expr)
	require.True(t, ok)
	require.Equal(t, uint64(5), siblingLocal)

	// Mutate the sibling; the original must not observe it.
	sib.Locals.Set(0, state.Value{Type: wasmmod.ValueTypeI32, Expr: f.BVConst(42, 32)})
	origLocal, ok := evalConst(f, st.Locals.Get(0).Expr)
	require.True(t, ok)
	require.Equal(t, uint64(9), origLocal)
}

// Constraint monotonicity (spec §8): a direct successor's constraint list
// extends, never rewrites, its predecessor's.
func TestConstraintMonotonicity(t *testing.T) {
	f := newFacade(t)
	c := state.NewConstraints()
	c1 := c.Extend(f.BoolConst(true))
	c2 := c1.Extend(f.BoolConst(false))

	require.Equal(t, 1, c1.Len())
	require.Equal(t, 2, c2.Len())
	require.Same(t, c1.All()[0], c2.All()[0])
}

func evalConst(f *smt.Facade, e *smt.Expr) (uint64, bool) {
	return f.Concretize(e, nil)
}
