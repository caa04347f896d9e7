package hostfunc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/state"
)

// args_sizes_get reports argc and the total NUL-terminated byte length of a
// mix of concrete and symbolic argv entries (spec §3 "Argv", §4.5).
func TestArgsSizesGetReportsCountAndTotalSize(t *testing.T) {
	c, st := newHostFixture(t)
	st.Argv = &state.Argv{Args: []state.Arg{
		{Concrete: []byte("prog")},
		{Symbol: c.Facade.FreshBV("argv", 32)},
	}}

	args := []state.Value{argI32(c, 100), argI32(c, 104)}
	results := argsSizesGet(c, st, args)
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)

	require.Equal(t, uint32(2), readU32(c, st, 100))
	require.Equal(t, uint32(len("prog")+1+4+1), readU32(c, st, 104))
}

// args_get writes each argument's offset into argv and its NUL-terminated
// bytes into argv_buf; a symbolic argument's bytes are written one at a
// time from the façade rather than assumed concrete.
func TestArgsGetWritesOffsetsAndBytes(t *testing.T) {
	c, st := newHostFixture(t)
	st.Argv = &state.Argv{Args: []state.Arg{{Concrete: []byte("ab")}}}

	args := []state.Value{argI32(c, 100), argI32(c, 200)}
	results := argsGet(c, st, args)
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)

	require.Equal(t, uint32(200), readU32(c, st, 100))
	require.Equal(t, []byte("ab\x00"), readBytes(c, st, 200, 3))
}

func TestEnvironSizesGetAlwaysReportsZero(t *testing.T) {
	c, st := newHostFixture(t)
	results := environSizesGet(c, st, []state.Value{argI32(c, 100), argI32(c, 104)})
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)
	require.Equal(t, uint32(0), readU32(c, st, 100))
	require.Equal(t, uint32(0), readU32(c, st, 104))
}
