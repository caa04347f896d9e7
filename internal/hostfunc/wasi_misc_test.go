package hostfunc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/state"
)

func TestProcExitSetsExitedStatusAndCode(t *testing.T) {
	c, st := newHostFixture(t)
	results := procExit(c, st, []state.Value{argI32(c, 3)})
	require.Nil(t, results)
	require.Equal(t, state.StatusExited, st.Status)
	require.Equal(t, int32(3), st.ExitCode)
}

// clock_time_get writes a fresh 64-bit symbolic timestamp (one byte at a
// time) to the result pointer, rather than any fixed wall-clock value.
func TestClockTimeGetWritesEightByteTimestamp(t *testing.T) {
	c, st := newHostFixture(t)
	results := clockTimeGet(c, st, []state.Value{argI32(c, 0), argI32(c, 0), argI32(c, 100)})
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)

	got := readBytes(c, st, 100, 8)
	require.Len(t, got, 8)
}

func TestRandomGetFillsRequestedByteCount(t *testing.T) {
	c, st := newHostFixture(t)
	results := randomGet(c, st, []state.Value{argI32(c, 100), argI32(c, 4)})
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)

	got := readBytes(c, st, 100, 4)
	require.Len(t, got, 4)
}

func TestSchedYieldAlwaysSucceeds(t *testing.T) {
	c, st := newHostFixture(t)
	results := schedYield(c, st, nil)
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)
}
