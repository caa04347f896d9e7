package smt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/smt"
)

func newFacade(t *testing.T) *smt.Facade {
	t.Helper()
	f, err := smt.NewFacade()
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestBVBinOpAdd(t *testing.T) {
	f := newFacade(t)
	sum := f.BVBinOp("add", f.BVConst(2, 32), f.BVConst(3, 32))
	v, ok := f.Concretize(sum, nil)
	require.True(t, ok)
	require.Equal(t, uint64(5), v)
}

func TestConcretizeAmbiguousFails(t *testing.T) {
	f := newFacade(t)
	x := f.FreshBV("x", 8)
	_, ok := f.Concretize(x, nil)
	require.False(t, ok, "an unconstrained fresh symbol has more than one satisfying value")
}

func TestConcretizeConstrainedSucceeds(t *testing.T) {
	f := newFacade(t)
	x := f.FreshBV("x", 8)
	constraint := f.Eq(x, f.BVConst(42, 8))
	v, ok := f.Concretize(x, []*smt.Expr{constraint})
	require.True(t, ok)
	require.Equal(t, uint64(42), v)
}

func TestSatUnderConflictingAssumptionsFails(t *testing.T) {
	f := newFacade(t)
	x := f.FreshBV("x", 8)
	a := f.Eq(x, f.BVConst(1, 8))
	b := f.Eq(x, f.BVConst(2, 8))
	_, ok := f.Sat([]*smt.Expr{a, b})
	require.False(t, ok)
}

func TestFreshSymbolsRegisteredByName(t *testing.T) {
	f := newFacade(t)
	x := f.FreshBV("arg", 32)
	require.NotEmpty(t, x.Name())
	registered, ok := f.Symbols()[x.Name()]
	require.True(t, ok)
	require.Same(t, x, registered)
}

func TestIteSelectsBranch(t *testing.T) {
	f := newFacade(t)
	cond := f.BoolConst(true)
	ite := f.Ite(cond, f.BVConst(1, 32), f.BVConst(2, 32))
	v, ok := f.Concretize(ite, nil)
	require.True(t, ok)
	require.Equal(t, uint64(1), v)
}
