package hostfunc

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// maxScanLength bounds strlen/strcpy/printf's "%s" scans so a string whose
// NUL terminator this engine can't concretely determine doesn't loop
// forever — grounded on original_source/octopus/arch/wasm/helper_c.py's
// C_extract_string_by_mem_pointer, which grows its read length one byte at
// a time until two successive reads produce the same string (the closest
// that Python model comes to a termination bound); this core makes that
// bound an explicit fixed constant instead of relying on implicit memory
// non-determinism to stop the loop.
const maxScanLength = 4096

// registerLibc installs the small set of libc-style helpers a symbolically
// executed C binary calls directly (when compiled against a libc that
// isn't itself present as Wasm bytecode, e.g. a syscall-free libc stub),
// grounded on helper_c.py's string/memory helpers.
func registerLibc(r *Registry) {
	r.Register("env", "printf", libcPrintf, []wasmmod.ValueType{i32}, []wasmmod.ValueType{i32})
	r.Register("env", "scanf", libcScanf, []wasmmod.ValueType{i32, i32}, []wasmmod.ValueType{i32})
	r.Register("env", "strcpy", libcStrcpy, []wasmmod.ValueType{i32, i32}, []wasmmod.ValueType{i32})
	r.Register("env", "strlen", libcStrlen, []wasmmod.ValueType{i32}, []wasmmod.ValueType{i32})
	r.Register("env", "memcpy", libcMemcpy, []wasmmod.ValueType{i32, i32, i32}, []wasmmod.ValueType{i32})
	r.Register("env", "malloc", libcMalloc, []wasmmod.ValueType{i32}, []wasmmod.ValueType{i32})
}

// cStringLen scans memory from ptr for a NUL byte, up to maxScanLength,
// the way helper_c.py's C_extract_string_by_mem_pointer grows its probe
// length until the read stops changing — here expressed directly as a
// byte-at-a-time scan since this core's Load already exposes individual
// bytes without that workaround.
func cStringLen(c *Context, st *state.State, base uint64) int {
	for i := 0; i < maxScanLength; i++ {
		e := st.Memory.Load(nil, ptr(base+uint64(i)), 1)
		v, ok := c.Facade.Concretize(e, st.Constraints.All())
		if ok && v == 0 {
			return i
		}
		if !ok {
			// An unresolved byte: treat it as the terminator rather than
			// scanning indefinitely into unconstrained memory.
			return i
		}
	}
	return maxScanLength
}

// libcPrintf models a single "%s"-only format call: it reads the format
// string up to its NUL, copies its raw bytes to stdout and returns their
// count, which is the common case exercised by SeeWasm's original test
// corpus (format strings with no numeric conversions). Genuine printf
// semantics — numeric conversions pulling additional varargs — are not
// modeled.
func libcPrintf(c *Context, st *state.State, args []state.Value) []state.Value {
	fmtPtr, ok := concreteAddr(c, st, args[0])
	if !ok {
		return []state.Value{i32Val(c, 0)}
	}
	n := cStringLen(c, st, fmtPtr)
	data := readBytes(c, st, fmtPtr, n)
	st.Output.Append(1, data)
	return []state.Value{i32Val(c, uint32(n))}
}

// libcScanf reads up to maxScanLength fresh symbolic bytes from stdin (fd
// 0) into the buffer named by its second argument, consistent with
// fd_read's symbolic-content handling; it ignores the format string
// entirely, the same "%s"-only simplification libcPrintf makes.
func libcScanf(c *Context, st *state.State, args []state.Value) []state.Value {
	bufPtr, ok := concreteAddr(c, st, args[1])
	if !ok {
		return []state.Value{i32Val(c, 0)}
	}
	var copied int
	st.Files.Mutate(0, func(f *state.File) {
		copied = readInto(c, st, f, bufPtr, maxScanLength)
	})
	st.Memory.Store(nil, ptr(bufPtr+uint64(copied)), c.Facade.BVConst(0, 8), 1)
	return []state.Value{i32Val(c, 1)}
}

// libcStrcpy copies src's NUL-terminated bytes (inclusive) to dst and
// returns dst, the standard strcpy contract.
func libcStrcpy(c *Context, st *state.State, args []state.Value) []state.Value {
	dst, ok1 := concreteAddr(c, st, args[0])
	src, ok2 := concreteAddr(c, st, args[1])
	if !ok1 || !ok2 {
		return []state.Value{args[0]}
	}
	n := cStringLen(c, st, src)
	data := readBytes(c, st, src, n+1) // include the terminator
	writeBytes(c, st, dst, data)
	return []state.Value{i32Val(c, uint32(dst))}
}

func libcStrlen(c *Context, st *state.State, args []state.Value) []state.Value {
	p, ok := concreteAddr(c, st, args[0])
	if !ok {
		return []state.Value{i32Val(c, 0)}
	}
	return []state.Value{i32Val(c, uint32(cStringLen(c, st, p)))}
}

func libcMemcpy(c *Context, st *state.State, args []state.Value) []state.Value {
	dst, ok1 := concreteAddr(c, st, args[0])
	src, ok2 := concreteAddr(c, st, args[1])
	n, ok3 := concreteAddr(c, st, args[2])
	if !ok1 || !ok2 || !ok3 {
		return []state.Value{args[0]}
	}
	for i := uint64(0); i < n; i++ {
		b := st.Memory.Load(nil, ptr(src+i), 1)
		st.Memory.Store(nil, ptr(dst+i), b, 1)
	}
	return []state.Value{i32Val(c, uint32(dst))}
}

// libcMalloc is a plain bump allocator over state.HeapPtr; it never frees
// (no free model) and never fails, matching most symbolic-execution
// engines' choice to treat allocation failure as out of scope.
func libcMalloc(c *Context, st *state.State, args []state.Value) []state.Value {
	size, ok := concreteAddr(c, st, args[0])
	if !ok {
		size = 0
	}
	addr := st.HeapPtr
	st.HeapPtr += uint32(size)
	return []state.Value{i32Val(c, addr)}
}
