package hostfunc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/state"
)

// libcPrintf's "%s"-only model copies the format string's raw bytes to
// stdout and returns the byte count, ignoring any numeric conversions.
func TestLibcPrintfCopiesFormatStringToStdout(t *testing.T) {
	c, st := newHostFixture(t)
	writeBytes(c, st, 100, []byte("hello\x00"))

	results := libcPrintf(c, st, []state.Value{argI32(c, 100)})
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(5), v)

	require.Len(t, st.Output.All(), 1)
	require.Equal(t, "hello", string(st.Output.All()[0].Data))
}

func TestLibcStrlenStopsAtNulByte(t *testing.T) {
	c, st := newHostFixture(t)
	writeBytes(c, st, 100, []byte("abc\x00junk"))

	results := libcStrlen(c, st, []state.Value{argI32(c, 100)})
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(3), v)
}

func TestLibcStrcpyCopiesThroughTerminator(t *testing.T) {
	c, st := newHostFixture(t)
	writeBytes(c, st, 100, []byte("hi\x00"))

	results := libcStrcpy(c, st, []state.Value{argI32(c, 200), argI32(c, 100)})
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(200), v)
	require.Equal(t, []byte("hi\x00"), readBytes(c, st, 200, 3))
}

func TestLibcMemcpyCopiesExactByteCount(t *testing.T) {
	c, st := newHostFixture(t)
	writeBytes(c, st, 100, []byte("abcdef"))

	results := libcMemcpy(c, st, []state.Value{argI32(c, 200), argI32(c, 100), argI32(c, 4)})
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(200), v)
	require.Equal(t, []byte("abcd"), readBytes(c, st, 200, 4))
}

// libcMalloc is a pure bump allocator: each call returns the prior cursor
// and advances it by the requested size, never failing or freeing.
func TestLibcMallocBumpsHeapPointer(t *testing.T) {
	c, st := newHostFixture(t)
	st.HeapPtr = 0x1000

	r1 := libcMalloc(c, st, []state.Value{argI32(c, 16)})
	v1, _ := c.Facade.Concretize(r1[0].Expr, nil)
	require.Equal(t, uint64(0x1000), v1)
	require.Equal(t, uint32(0x1010), st.HeapPtr)

	r2 := libcMalloc(c, st, []state.Value{argI32(c, 8)})
	v2, _ := c.Facade.Concretize(r2[0].Expr, nil)
	require.Equal(t, uint64(0x1010), v2)
	require.Equal(t, uint32(0x1018), st.HeapPtr)
}
