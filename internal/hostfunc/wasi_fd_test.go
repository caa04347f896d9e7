package hostfunc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/symmem"
)

func newHostFixture(t *testing.T) (*Context, *state.State) {
	t.Helper()
	f, err := smt.NewFacade()
	require.NoError(t, err)
	t.Cleanup(f.Close)

	st := &state.State{
		Stack:       state.NewStack(),
		Memory:      symmem.NewStore(f, nil),
		Files:       state.NewFiles(nil),
		Constraints: state.NewConstraints(),
		Output:      state.NewOutputBuffer(),
	}
	return &Context{Facade: f, Log: nil}, st
}

func argI32(c *Context, v uint32) state.Value { return i32Val(c, v) }

// fd_write writes the iovec payload to the file's Written buffer and, for
// fd 1/2, also appends it to the result reporter's output buffer (spec
// §4.5/§6).
func TestFdWriteCapturesOutputForStdout(t *testing.T) {
	c, st := newHostFixture(t)

	// One iovec at address 100: {buf=200, buf_len=5}, payload "hello".
	writeU32(c, st, 100, 200)
	writeU32(c, st, 104, 5)
	writeBytes(c, st, 200, []byte("hello"))

	args := []state.Value{
		argI32(c, 1),   // fd 1 (stdout)
		argI32(c, 100), // iovs
		argI32(c, 1),   // iovs_len
		argI32(c, 300), // result ptr
	}
	results := fdWrite(c, st, args)
	require.Len(t, results, 1)
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)

	require.Len(t, st.Output.All(), 1)
	require.Equal(t, uint32(1), st.Output.All()[0].FD)
	require.Equal(t, "hello", string(st.Output.All()[0].Data))

	file, _ := st.Files.Get(1)
	require.Equal(t, "hello", string(file.Written))

	total := readU32(c, st, 300)
	require.Equal(t, uint32(5), total)
}

func TestFdWriteUnknownDescriptorFails(t *testing.T) {
	c, st := newHostFixture(t)
	args := []state.Value{argI32(c, 99), argI32(c, 0), argI32(c, 0), argI32(c, 0)}
	results := fdWrite(c, st, args)
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoBadf), v)
}

// fd_read copies a preopened file's concrete content into the iovec buffer
// and advances the cursor (spec §4.5).
func TestFdReadCopiesContentAndAdvancesCursor(t *testing.T) {
	c, st := newHostFixture(t)
	st.Files.Open(3, &state.File{Name: "in.txt", Status: state.StatusOpen, Flag: state.FlagRead, Content: []byte("abcdef")})

	writeU32(c, st, 100, 200) // iovec[0].buf
	writeU32(c, st, 104, 3)   // iovec[0].buf_len

	args := []state.Value{argI32(c, 3), argI32(c, 100), argI32(c, 1), argI32(c, 300)}
	results := fdRead(c, st, args)
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)

	got := readBytes(c, st, 200, 3)
	require.Equal(t, []byte("abc"), got)

	file, _ := st.Files.Get(3)
	require.Equal(t, 3, file.Cursor)

	n := readU32(c, st, 300)
	require.Equal(t, uint32(3), n)
}

func TestFdCloseMarksFileClosed(t *testing.T) {
	c, st := newHostFixture(t)
	args := []state.Value{argI32(c, 1)}
	results := fdClose(c, st, args)
	v, ok := c.Facade.Concretize(results[0].Expr, nil)
	require.True(t, ok)
	require.Equal(t, uint64(ErrnoSuccess), v)

	file, _ := st.Files.Get(1)
	require.Equal(t, state.StatusClosed, file.Status)
}
