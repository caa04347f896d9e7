package symmem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/smt"
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

// Memory read-after-write (spec §8): for concrete address a and width n,
// load(store(s, a, v, n), a, n) == v.
func TestReadAfterWrite(t *testing.T) {
	f := newFacade(t)
	store := symmem.NewStore(f, nil)

	val := f.BVConst(0xdeadbeef, 32)
	addr := uint64(16)
	store.Store(nil, &addr, val, 4)

	got := store.Load(nil, &addr, 4)
	v, ok := f.Concretize(got, nil)
	require.True(t, ok)
	require.Equal(t, uint64(0xdeadbeef), v)
}

// Data-section fallthrough (spec §8): an address in a data-section interval
// never stored to reads as the corresponding byte.
func TestDataSectionFallthrough(t *testing.T) {
	f := newFacade(t)
	store := symmem.NewStore(f, []wasmmod.Data{{Offset: 100, Size: 3, Data: []byte{0x61, 0x62, 0x63}}})

	addr := uint64(101)
	got := store.Load(nil, &addr, 1)
	v, ok := f.Concretize(got, nil)
	require.True(t, ok)
	require.Equal(t, uint64(0x62), v)
}

// A later write shadows an earlier one covering the same bytes.
func TestWriteShadowsEarlierWrite(t *testing.T) {
	f := newFacade(t)
	store := symmem.NewStore(f, nil)

	addr := uint64(0)
	store.Store(nil, &addr, f.BVConst(1, 32), 4)
	store.Store(nil, &addr, f.BVConst(2, 32), 4)

	got := store.Load(nil, &addr, 4)
	v, ok := f.Concretize(got, nil)
	require.True(t, ok)
	require.Equal(t, uint64(2), v)
}

// Fork isolation: writing through one fork must not be visible via the
// other (state isolation, spec §8, applied to the memory component).
func TestForkIsolation(t *testing.T) {
	f := newFacade(t)
	store := symmem.NewStore(f, nil)
	addr := uint64(0)
	store.Store(nil, &addr, f.BVConst(7, 32), 4)

	sib := store.Fork()
	sib.Store(nil, &addr, f.BVConst(9, 32), 4)

	origVal, ok := f.Concretize(store.Load(nil, &addr, 4), nil)
	require.True(t, ok)
	require.Equal(t, uint64(7), origVal)

	sibVal, ok := f.Concretize(sib.Load(nil, &addr, 4), nil)
	require.True(t, ok)
	require.Equal(t, uint64(9), sibVal)
}
