// Package smt is the SMT façade (spec §4.1): the only package in this
// module allowed to touch the underlying solver. Every other component
// manipulates the opaque *Expr handles this package hands out.
//
// The backend is github.com/aclements/go-z3 — no example repo in the
// retrieval pack carries an SMT binding (see DESIGN.md's survey notes), so
// this is the one dependency introduced without in-pack grounding; it is
// unavoidable because spec §4.1 has no standard-library substitute.
package smt

import (
	"fmt"
	"sync/atomic"

	"github.com/aclements/go-z3/z3"
)

// Sort distinguishes the expression sorts the façade hands out.
type Sort int

const (
	SortBV Sort = iota
	SortFP
	SortBool
)

// Expr is an opaque handle over a z3.AST plus the metadata handlers need
// without reaching into the solver themselves (width, sort). name is only
// set on fresh symbols (FreshBV/FreshFP); it is how internal/report labels
// Solution entries by the sym_name spec §6 specifies.
type Expr struct {
	ast   z3.AST
	sort  Sort
	width int
	name  string
}

func (e *Expr) Sort() Sort  { return e.sort }
func (e *Expr) Width() int  { return e.width }
func (e *Expr) raw() z3.AST { return e.ast }

// Name returns the fresh-symbol name this expression was allocated under,
// or "" if it isn't a fresh symbol (a constant, or a derived expression).
func (e *Expr) Name() string { return e.name }

// Model is a satisfying assignment returned by Sat.
type Model struct {
	m *z3.Model
}

// Eval returns the concrete bitvector value e takes under m, as an unsigned
// 64-bit pattern (callers reinterpret per the requested ValueType).
func (mo *Model) Eval(e *Expr) (uint64, bool) {
	if mo.m == nil {
		return 0, false
	}
	v, ok := mo.m.Eval(e.ast)
	if !ok {
		return 0, false
	}
	return v, true
}

// Facade wraps one z3.Context. Per spec §5, the exploration driver in this
// core is single-threaded, so Facade carries no internal locking; a
// multi-worker driver would need either a Facade-per-worker or a mutex
// here, per §5's explicit either/or.
type Facade struct {
	ctx     *z3.Context
	solver  *z3.Solver
	counter uint64

	simplifyCache map[z3.AST]*Expr

	// symbols records every fresh symbol this façade has allocated, keyed
	// by its full name — internal/report walks this to build a terminal
	// state's Solution map without every caller having to thread symbol
	// names through by hand.
	symbols map[string]*Expr
}

// NewFacade constructs a façade with a fresh Z3 context and one long-lived
// incremental solver (push/pop around each Sat call keeps assumptions
// scoped to that single query without rebuilding the solver every time).
func NewFacade() (*Facade, error) {
	cfg := z3.NewConfig()
	ctx := z3.NewContext(cfg)
	return &Facade{
		ctx:           ctx,
		solver:        z3.NewSolver(ctx),
		simplifyCache: make(map[z3.AST]*Expr),
		symbols:       make(map[string]*Expr),
	}, nil
}

// Symbols returns every fresh symbol allocated so far, keyed by name.
func (f *Facade) Symbols() map[string]*Expr {
	return f.symbols
}

// Close releases the underlying Z3 context.
func (f *Facade) Close() {
	f.ctx.Close()
}

func (f *Facade) nextName(prefix string) string {
	n := atomic.AddUint64(&f.counter, 1)
	return fmt.Sprintf("%s_%d", prefix, n)
}

// FreshBV allocates a fresh symbolic bitvector of the given width. The name
// is a hint for readability (and for Result.Solution's sym_name keys); a
// numeric suffix is appended to guarantee uniqueness.
func (f *Facade) FreshBV(name string, width int) *Expr {
	full := f.nextName(name)
	ast := f.ctx.BVConst(full, width)
	e := &Expr{ast: ast, sort: SortBV, width: width, name: full}
	f.symbols[full] = e
	return e
}

// FreshFP allocates a fresh symbolic float of the given width (32 or 64).
func (f *Facade) FreshFP(name string, width int) *Expr {
	full := f.nextName(name)
	sort := f.fpSort(width)
	ast := f.ctx.FPConst(full, sort)
	e := &Expr{ast: ast, sort: SortFP, width: width, name: full}
	f.symbols[full] = e
	return e
}

func (f *Facade) fpSort(width int) z3.Sort {
	if width == 32 {
		return f.ctx.FPSort(8, 24)
	}
	return f.ctx.FPSort(11, 53)
}

// BVConst builds a concrete bitvector constant.
func (f *Facade) BVConst(value uint64, width int) *Expr {
	ast := f.ctx.FromBV(value, width)
	return &Expr{ast: ast, sort: SortBV, width: width}
}

// FPConst builds a concrete float constant.
func (f *Facade) FPConst(value float64, width int) *Expr {
	ast := f.ctx.FromFP(value, f.fpSort(width))
	return &Expr{ast: ast, sort: SortFP, width: width}
}

// BoolConst builds a concrete boolean constant, used by handlers that need
// to feed a trap/branch condition through the same Expr type as everything
// else.
func (f *Facade) BoolConst(value bool) *Expr {
	return &Expr{ast: f.ctx.FromBool(value), sort: SortBool}
}

// Simplify returns a normalized form of e. Idempotent: Simplify(Simplify(e))
// and Simplify(e) hash to the same cache entry, since the cache key is the
// *output* AST of a prior simplification as well as fresh input ASTs.
func (f *Facade) Simplify(e *Expr) *Expr {
	if cached, ok := f.simplifyCache[e.ast]; ok {
		return cached
	}
	simplified := e.ast.Simplify()
	out := &Expr{ast: simplified, sort: e.sort, width: e.width}
	f.simplifyCache[e.ast] = out
	f.simplifyCache[simplified] = out
	return out
}

// IsBool reports whether e is a boolean-sorted expression (as opposed to a
// bitvector or float), used by handlers that build comparison results.
func (f *Facade) IsBool(e *Expr) bool {
	return e.sort == SortBool
}

// Sat asks whether assumptions are jointly satisfiable under the façade's
// accumulated solver state, pushing/popping a scope so the query doesn't
// leak into later calls. A solver timeout or "unknown" result is treated as
// unsat for feasibility decisions, per spec §7 "Solver failure" — the
// caller is responsible for logging that distinction if it cares to; Sat
// itself only reports the boolean outcome plus a model on success.
func (f *Facade) Sat(assumptions []*Expr) (*Model, bool) {
	f.solver.Push()
	defer f.solver.Pop()
	for _, a := range assumptions {
		f.solver.Assert(a.ast)
	}
	switch f.solver.Check() {
	case z3.Sat:
		return &Model{m: f.solver.Model()}, true
	default:
		return nil, false
	}
}

// Eq, Ne and friends build boolean comparison expressions over two
// same-width, same-sort operands; dispatch handlers (internal/dispatch)
// call these rather than touching z3 AST nodes directly.

func (f *Facade) Eq(a, b *Expr) *Expr { return f.boolOp(a, b, func(x, y z3.AST) z3.AST { return x.Eq(y) }) }
func (f *Facade) Ne(a, b *Expr) *Expr {
	return f.boolOp(a, b, func(x, y z3.AST) z3.AST { return x.Eq(y).Not() })
}

func (f *Facade) boolOp(a, b *Expr, op func(x, y z3.AST) z3.AST) *Expr {
	return &Expr{ast: op(a.ast, b.ast), sort: SortBool}
}

// BVBinOp applies a named bitvector binary operator (add/sub/mul/and/or/...)
// handlers select by name from internal/dispatch's arithmetic/bitwise
// tables, keeping the actual z3 calls centralized here.
func (f *Facade) BVBinOp(name string, a, b *Expr) *Expr {
	width := a.width
	var ast z3.AST
	switch name {
	case "add":
		ast = a.ast.Add(b.ast)
	case "sub":
		ast = a.ast.Sub(b.ast)
	case "mul":
		ast = a.ast.Mul(b.ast)
	case "udiv":
		ast = a.ast.UDiv(b.ast)
	case "sdiv":
		ast = a.ast.SDiv(b.ast)
	case "urem":
		ast = a.ast.URem(b.ast)
	case "srem":
		ast = a.ast.SRem(b.ast)
	case "and":
		ast = a.ast.And(b.ast)
	case "or":
		ast = a.ast.Or(b.ast)
	case "xor":
		ast = a.ast.Xor(b.ast)
	case "shl":
		ast = a.ast.Shl(b.ast)
	case "lshr":
		ast = a.ast.LShr(b.ast)
	case "ashr":
		ast = a.ast.AShr(b.ast)
	default:
		panic("smt: unknown bitvector binop " + name)
	}
	return &Expr{ast: ast, sort: SortBV, width: width}
}

// BVCmp applies a named bitvector comparison, returning a boolean Expr.
func (f *Facade) BVCmp(name string, a, b *Expr) *Expr {
	var ast z3.AST
	switch name {
	case "ult":
		ast = a.ast.ULt(b.ast)
	case "ule":
		ast = a.ast.ULe(b.ast)
	case "ugt":
		ast = a.ast.UGt(b.ast)
	case "uge":
		ast = a.ast.UGe(b.ast)
	case "slt":
		ast = a.ast.SLt(b.ast)
	case "sle":
		ast = a.ast.SLe(b.ast)
	case "sgt":
		ast = a.ast.SGt(b.ast)
	case "sge":
		ast = a.ast.SGe(b.ast)
	default:
		panic("smt: unknown bitvector cmp " + name)
	}
	return &Expr{ast: ast, sort: SortBool}
}

// Concretize asks whether e has exactly one satisfying value under
// constraints (spec §4.2's store policy: "ask the SMT façade for a single
// satisfying assignment... if unique within a bounded enumeration limit,
// use that"). It returns ok=false both when e is infeasible and when a
// second, distinct value is also reachable.
func (f *Facade) Concretize(e *Expr, constraints []*Expr) (uint64, bool) {
	model, ok := f.Sat(constraints)
	if !ok {
		return 0, false
	}
	v, ok := model.Eval(e)
	if !ok {
		return 0, false
	}
	distinct := f.BVConst(v, e.width)
	alt := append(append([]*Expr{}, constraints...), f.Ne(e, distinct))
	if _, altOK := f.Sat(alt); altOK {
		return 0, false
	}
	return v, true
}

// EnumerateFeasible returns up to limit distinct satisfying values of e
// under constraints (spec §4.4's br_table/call_indirect "concretizes its
// index... enumerating each feasible target within a bounded limit").
func (f *Facade) EnumerateFeasible(e *Expr, constraints []*Expr, limit int) []uint64 {
	var found []uint64
	extra := append([]*Expr{}, constraints...)
	for i := 0; i < limit; i++ {
		model, ok := f.Sat(extra)
		if !ok {
			break
		}
		v, ok := model.Eval(e)
		if !ok {
			break
		}
		found = append(found, v)
		extra = append(extra, f.Ne(e, f.BVConst(v, e.width)))
	}
	return found
}

// Ite builds an if-then-else expression, used both by select/ (symbolic
// condition) and by symbolic-memory's guarded load chain (spec §4.2).
func (f *Facade) Ite(cond, then, els *Expr) *Expr {
	return &Expr{ast: cond.ast.IfThenElse(then.ast, els.ast), sort: then.sort, width: then.width}
}

// ExtractBytes slices the single byte at byteIndex (little-endian byte
// index within the bitvector) out of e, used by symbolic memory to split a
// stored value into its constituent bytes.
func (f *Facade) ExtractBytes(e *Expr, byteIndex int) *Expr {
	hi := byteIndex*8 + 7
	lo := byteIndex * 8
	return &Expr{ast: e.ast.Extract(hi, lo), sort: SortBV, width: 8}
}

// Concat joins byte-sized expressions (lo-to-hi significance, i.e. bytes[0]
// is least significant) into one bitvector of their combined width.
func (f *Facade) Concat(bytes []*Expr) *Expr {
	if len(bytes) == 0 {
		panic("smt: Concat of zero bytes")
	}
	acc := bytes[len(bytes)-1].ast
	width := bytes[len(bytes)-1].width
	for i := len(bytes) - 2; i >= 0; i-- {
		acc = acc.Concat(bytes[i].ast)
		width += bytes[i].width
	}
	return &Expr{ast: acc, sort: SortBV, width: width}
}

// ZeroExtend widens a bitvector by padding high bits with zero.
func (f *Facade) ZeroExtend(e *Expr, toWidth int) *Expr {
	return &Expr{ast: e.ast.ZeroExt(toWidth - e.width), sort: SortBV, width: toWidth}
}

// SignExtend widens a bitvector replicating its sign bit.
func (f *Facade) SignExtend(e *Expr, toWidth int) *Expr {
	return &Expr{ast: e.ast.SignExt(toWidth - e.width), sort: SortBV, width: toWidth}
}

// Truncate narrows a bitvector to the low toWidth bits.
func (f *Facade) Truncate(e *Expr, toWidth int) *Expr {
	return &Expr{ast: e.ast.Extract(toWidth-1, 0), sort: SortBV, width: toWidth}
}

// FPBinOp applies a named IEEE-754 binary operator, all rounding to
// round-nearest-ties-to-even (Wasm's only rounding mode).
func (f *Facade) FPBinOp(name string, a, b *Expr) *Expr {
	rm := f.ctx.RNE()
	width := a.width
	var ast z3.AST
	switch name {
	case "add":
		ast = a.ast.FPAdd(rm, b.ast)
	case "sub":
		ast = a.ast.FPSub(rm, b.ast)
	case "mul":
		ast = a.ast.FPMul(rm, b.ast)
	case "div":
		ast = a.ast.FPDiv(rm, b.ast)
	case "min":
		ast = a.ast.FPMin(b.ast)
	case "max":
		ast = a.ast.FPMax(b.ast)
	case "copysign":
		ast = a.ast.FPCopysign(b.ast)
	default:
		panic("smt: unknown float binop " + name)
	}
	return &Expr{ast: ast, sort: SortFP, width: width}
}

// FPUnOp applies a named unary IEEE-754 operator.
func (f *Facade) FPUnOp(name string, a *Expr) *Expr {
	rm := f.ctx.RNE()
	var ast z3.AST
	switch name {
	case "abs":
		ast = a.ast.FPAbs()
	case "neg":
		ast = a.ast.FPNeg()
	case "ceil":
		ast = a.ast.FPRoundToIntegral(f.ctx.RTP())
	case "floor":
		ast = a.ast.FPRoundToIntegral(f.ctx.RTN())
	case "trunc":
		ast = a.ast.FPRoundToIntegral(f.ctx.RTZ())
	case "nearest":
		ast = a.ast.FPRoundToIntegral(rm)
	case "sqrt":
		ast = a.ast.FPSqrt(rm)
	default:
		panic("smt: unknown float unop " + name)
	}
	return &Expr{ast: ast, sort: SortFP, width: a.width}
}

// FPCmp applies a named IEEE-754 comparison, returning a boolean Expr.
func (f *Facade) FPCmp(name string, a, b *Expr) *Expr {
	var ast z3.AST
	switch name {
	case "eq":
		ast = a.ast.FPEq(b.ast)
	case "lt":
		ast = a.ast.FPLt(b.ast)
	case "gt":
		ast = a.ast.FPGt(b.ast)
	case "le":
		ast = a.ast.FPLe(b.ast)
	case "ge":
		ast = a.ast.FPGe(b.ast)
	default:
		panic("smt: unknown float cmp " + name)
	}
	return &Expr{ast: ast, sort: SortBool}
}

// BVToFP reinterprets/converts a bitvector integer to a float of toWidth
// bits, signed selecting whether the source is read as signed or unsigned.
func (f *Facade) BVToFP(e *Expr, toWidth int, signed bool) *Expr {
	rm := f.ctx.RNE()
	sort := f.fpSort(toWidth)
	var ast z3.AST
	if signed {
		ast = e.ast.SBVToFP(rm, sort)
	} else {
		ast = e.ast.UBVToFP(rm, sort)
	}
	return &Expr{ast: ast, sort: SortFP, width: toWidth}
}

// FPToBV converts (truncating toward zero) a float to a bitvector integer
// of toWidth bits. sat selects trunc_sat (saturating, traps never) versus
// plain trunc (the caller is responsible for the NaN/out-of-range trap
// check per spec §4.3 "Conversion"; FPToBV itself always produces a value).
func (f *Facade) FPToBV(e *Expr, toWidth int, signed, sat bool) *Expr {
	rm := f.ctx.RTZ()
	var ast z3.AST
	switch {
	case signed && sat:
		ast = e.ast.FPToSBVSat(rm, toWidth)
	case signed && !sat:
		ast = e.ast.FPToSBV(rm, toWidth)
	case !signed && sat:
		ast = e.ast.FPToUBVSat(rm, toWidth)
	default:
		ast = e.ast.FPToUBV(rm, toWidth)
	}
	return &Expr{ast: ast, sort: SortBV, width: toWidth}
}

// FPConvert widens/narrows a float between 32 and 64 bits.
func (f *Facade) FPConvert(e *Expr, toWidth int) *Expr {
	ast := e.ast.FPConvert(f.ctx.RNE(), f.fpSort(toWidth))
	return &Expr{ast: ast, sort: SortFP, width: toWidth}
}

// BitcastBVToFP / BitcastFPToBV reinterpret bit patterns without numeric
// conversion (i32.reinterpret_f32 and friends, spec §4.3 "Conversion").
func (f *Facade) BitcastBVToFP(e *Expr) *Expr {
	ast := e.ast.BVToFPBits(f.fpSort(e.width))
	return &Expr{ast: ast, sort: SortFP, width: e.width}
}

func (f *Facade) BitcastFPToBV(e *Expr) *Expr {
	ast := e.ast.FPToBVBits()
	return &Expr{ast: ast, sort: SortBV, width: e.width}
}

// IsNaN reports (as a boolean Expr) whether e is NaN — used by trunc's trap
// check (spec §4.3: trunc traps on NaN/out-of-range, trunc_sat saturates).
func (f *Facade) IsNaN(e *Expr) *Expr {
	return &Expr{ast: e.ast.IsNaN(), sort: SortBool}
}
