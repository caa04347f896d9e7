// Package hostfunc models the imported functions a Wasm module calls but
// this core never executes natively: WASI preview1 and a handful of libc
// helpers (spec §4.5), in the shape of the teacher's
// imports/wasi_snapshot_preview1 package — one var per function binding a
// name to a Go implementation, doc comments naming each parameter register
// — but returning symbolic state.Values instead of writing host memory
// directly, since every "memory write" here goes through the symbolic
// store.
package hostfunc

import (
	"github.com/symwasm/symwasm/internal/config"
	"github.com/symwasm/symwasm/internal/logging"
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// Errno mirrors WASI's numeric result codes (spec §4.5); this core only
// ever produces the handful its host models can actually distinguish.
type Errno = uint32

const (
	ErrnoSuccess Errno = 0
	ErrnoBadf    Errno = 8
	ErrnoFault   Errno = 21
	ErrnoInval   Errno = 28
	ErrnoNosys   Errno = 52
)

func ErrnoName(e Errno) string {
	switch e {
	case ErrnoSuccess:
		return "SUCCESS"
	case ErrnoBadf:
		return "BADF"
	case ErrnoInval:
		return "INVAL"
	case ErrnoFault:
		return "FAULT"
	case ErrnoNosys:
		return "NOSYS"
	default:
		return "UNKNOWN"
	}
}

// Context bundles what a host-function model needs beyond the state and
// its arguments: the SMT façade (to build result values and to concretize
// pointer arguments), engine configuration, and a logger — the same triple
// internal/dispatch's Context carries, kept separate so this package
// doesn't import dispatch.
type Context struct {
	Facade *smt.Facade
	Config *config.Context
	Log    *logging.Logger
}

// Func is one host-function model. It runs against st directly (host calls
// never fork state; spec §4.5 gives every model an Errno-or-trap contract,
// never a symbolic branch) and returns the values to push back onto the
// caller's stack, in declared result order.
type Func func(c *Context, st *state.State, args []state.Value) []state.Value

type binding struct {
	fn          Func
	paramTypes  []wasmmod.ValueType
	resultTypes []wasmmod.ValueType
}

// Registry resolves an (module, field) import reference to its model, the
// way the teacher's wasi_snapshot_preview1.Instantiate populates one
// wazero Module's export set.
type Registry struct {
	byKey map[string]binding
}

// NewRegistry returns an empty registry; callers compose standard function
// sets onto it with Register or the NewStandardRegistry helper.
func NewRegistry() *Registry {
	return &Registry{byKey: map[string]binding{}}
}

func key(module, field string) string { return module + "." + field }

// Register installs fn under module.field.
func (r *Registry) Register(module, field string, fn Func, params, results []wasmmod.ValueType) {
	r.byKey[key(module, field)] = binding{fn: fn, paramTypes: params, resultTypes: results}
}

// Lookup resolves module.field to its model and declared signature.
func (r *Registry) Lookup(module, field string) (Func, []wasmmod.ValueType, []wasmmod.ValueType, bool) {
	b, ok := r.byKey[key(module, field)]
	return b.fn, b.paramTypes, b.resultTypes, ok
}

// NewStandardRegistry returns a Registry carrying every model this core
// ships: WASI preview1 (spec §4.5) plus the libc helpers supplementing it
// (grounded on original_source/octopus/arch/wasm/helper_c.py, per
// SPEC_FULL.md §4.5).
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	registerWASIArgsEnviron(r)
	registerWASIFD(r)
	registerWASIClockRandomProc(r)
	registerLibc(r)
	return r
}

var (
	i32 = wasmmod.ValueTypeI32
	i64 = wasmmod.ValueTypeI64
)

// concreteAddr attempts to resolve v (an i32 pointer argument) to a unique
// concrete byte offset under st's current constraints. Host functions that
// can't resolve their pointer arguments fault rather than guess (spec §4.5
// "a pointer argument that cannot be concretized faults the call").
func concreteAddr(c *Context, st *state.State, v state.Value) (uint64, bool) {
	return c.Facade.Concretize(v.Expr, st.Constraints.All())
}

// readBytes loads n concrete bytes from memory at addr, best-effort
// concretizing each one; a byte that resolves to more than one value
// (truly symbolic content, e.g. unread argv) is reported as 0 — host
// models that need the real symbolic content read the expression
// themselves instead of calling this helper.
func readBytes(c *Context, st *state.State, addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		e := st.Memory.Load(nil, ptr(addr+uint64(i)), 1)
		if v, ok := c.Facade.Concretize(e, st.Constraints.All()); ok {
			out[i] = byte(v)
		}
	}
	return out
}

// writeBytes stores data into memory starting at addr as one concrete
// write per byte, the inverse of readBytes.
func writeBytes(c *Context, st *state.State, addr uint64, data []byte) {
	for i, b := range data {
		e := c.Facade.BVConst(uint64(b), 8)
		st.Memory.Store(nil, ptr(addr+uint64(i)), e, 1)
	}
}

// writeU32 stores a little-endian concrete uint32 at addr — the shape
// every WASI *_sizes_get / *_get result-pointer write takes.
func writeU32(c *Context, st *state.State, addr uint64, v uint32) {
	e := c.Facade.BVConst(uint64(v), 32)
	st.Memory.Store(nil, ptr(addr), e, 4)
}

func ptr(v uint64) *uint64 { return &v }

func i32Val(c *Context, v uint32) state.Value {
	return state.Value{Type: i32, Expr: c.Facade.BVConst(uint64(v), 32)}
}

// errnoResult builds the single-result convention most WASI functions end
// with: their own Errno as an i32.
func errnoResult(c *Context, errno Errno) []state.Value {
	return []state.Value{i32Val(c, errno)}
}

// Fallback models a call to an import this registry has no entry for: spec
// §7's "unknown import" policy is a warning plus a fresh symbolic value
// per declared result type, not a fatal error — exploration keeps going
// with an honestly-unknown value rather than guessing 0 or aborting.
func (r *Registry) Fallback(c *Context, module, field string, resultTypes []wasmmod.ValueType) []state.Value {
	c.Log.Warn(logging.ScopeHostFunc, "unmodeled import %s.%s called, synthesizing fresh results", module, field)
	out := make([]state.Value, len(resultTypes))
	for i, t := range resultTypes {
		if t.IsFloat() {
			out[i] = state.Value{Type: t, Expr: c.Facade.FreshFP("unknown_import_result", t.BitWidth())}
			continue
		}
		out[i] = state.Value{Type: t, Expr: c.Facade.FreshBV("unknown_import_result", t.BitWidth())}
	}
	return out
}
