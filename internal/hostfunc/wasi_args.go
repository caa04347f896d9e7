package hostfunc

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// registerWASIArgsEnviron installs args_sizes_get, args_get,
// environ_sizes_get and environ_get, grounded on the teacher's args.go
// (same two-call protocol: a sizes call that sizes a caller-allocated
// buffer, then a get call that fills it). This core has no modeled
// environment variables, so the environ_* pair always reports zero.
func registerWASIArgsEnviron(r *Registry) {
	r.Register("wasi_snapshot_preview1", "args_sizes_get", argsSizesGet, []wasmmod.ValueType{i32, i32}, []wasmmod.ValueType{i32})
	r.Register("wasi_snapshot_preview1", "args_get", argsGet, []wasmmod.ValueType{i32, i32}, []wasmmod.ValueType{i32})
	r.Register("wasi_snapshot_preview1", "environ_sizes_get", environSizesGet, []wasmmod.ValueType{i32, i32}, []wasmmod.ValueType{i32})
	r.Register("wasi_snapshot_preview1", "environ_get", environGet, []wasmmod.ValueType{i32, i32}, []wasmmod.ValueType{i32})
}

// argsSizesGet writes argc to args[0] and the total null-terminated byte
// length of argv to args[1].
func argsSizesGet(c *Context, st *state.State, args []state.Value) []state.Value {
	argc, ok1 := concreteAddr(c, st, args[0])
	argvLen, ok2 := concreteAddr(c, st, args[1])
	if !ok1 || !ok2 {
		return errnoResult(c, ErrnoFault)
	}
	writeU32(c, st, argc, uint32(len(st.Argv.Args)))
	writeU32(c, st, argvLen, uint32(st.Argv.TotalSize()))
	return errnoResult(c, ErrnoSuccess)
}

// argsGet writes argc uint32 offsets to args[0] (argv) and the
// null-terminated argument bytes themselves to args[1] (argv_buf), exactly
// as the teacher's argsGetFn/writeOffsetsAndNullTerminatedValues does,
// except each byte may be symbolic: argGet writes a fresh symbol's width
// worth of bytes by extracting them one at a time from the façade rather
// than assuming concrete content.
func argsGet(c *Context, st *state.State, args []state.Value) []state.Value {
	argv, ok1 := concreteAddr(c, st, args[0])
	argvBuf, ok2 := concreteAddr(c, st, args[1])
	if !ok1 || !ok2 {
		return errnoResult(c, ErrnoFault)
	}
	cursor := argvBuf
	for i, arg := range st.Argv.Args {
		writeU32(c, st, argv+uint64(4*i), uint32(cursor))
		if arg.Concrete != nil {
			writeBytes(c, st, cursor, append(append([]byte(nil), arg.Concrete...), 0))
			cursor += uint64(len(arg.Concrete) + 1)
			continue
		}
		width := arg.Symbol.Width()
		for b := 0; b < width/8; b++ {
			st.Memory.Store(nil, ptr(cursor+uint64(b)), c.Facade.ExtractBytes(arg.Symbol, b), 1)
		}
		st.Memory.Store(nil, ptr(cursor+uint64(width/8)), c.Facade.BVConst(0, 8), 1)
		cursor += uint64(width/8) + 1
	}
	return errnoResult(c, ErrnoSuccess)
}

func environSizesGet(c *Context, st *state.State, args []state.Value) []state.Value {
	argc, ok1 := concreteAddr(c, st, args[0])
	argvLen, ok2 := concreteAddr(c, st, args[1])
	if !ok1 || !ok2 {
		return errnoResult(c, ErrnoFault)
	}
	writeU32(c, st, argc, 0)
	writeU32(c, st, argvLen, 0)
	return errnoResult(c, ErrnoSuccess)
}

func environGet(c *Context, st *state.State, args []state.Value) []state.Value {
	return errnoResult(c, ErrnoSuccess)
}
