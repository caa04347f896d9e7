// Comparison handlers (spec §4.3's logical group): eqz and the six relational
// comparisons for both integer and float operands, grounded on
// interpreter.go's OperationKindEq/Ne/LtX/GtX/LeX/GeX cases. Every
// comparison here produces an i32 boolean (0 or 1), following Wasm's
// convention that comparisons always push i32 regardless of operand type.
package dispatch

import (
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerLogical(t *Table) {
	t.register(wasmmod.I32Eqz, intEqz())
	t.register(wasmmod.I32Eq, intCmpEq())
	t.register(wasmmod.I32Ne, intCmpNe())
	t.register(wasmmod.I32LtS, intCmp("slt"))
	t.register(wasmmod.I32LtU, intCmp("ult"))
	t.register(wasmmod.I32GtS, intCmp("sgt"))
	t.register(wasmmod.I32GtU, intCmp("ugt"))
	t.register(wasmmod.I32LeS, intCmp("sle"))
	t.register(wasmmod.I32LeU, intCmp("ule"))
	t.register(wasmmod.I32GeS, intCmp("sge"))
	t.register(wasmmod.I32GeU, intCmp("uge"))
	t.register(wasmmod.I64Eqz, intEqz())
	t.register(wasmmod.I64Eq, intCmpEq())
	t.register(wasmmod.I64Ne, intCmpNe())
	t.register(wasmmod.I64LtS, intCmp("slt"))
	t.register(wasmmod.I64LtU, intCmp("ult"))
	t.register(wasmmod.I64GtS, intCmp("sgt"))
	t.register(wasmmod.I64GtU, intCmp("ugt"))
	t.register(wasmmod.I64LeS, intCmp("sle"))
	t.register(wasmmod.I64LeU, intCmp("ule"))
	t.register(wasmmod.I64GeS, intCmp("sge"))
	t.register(wasmmod.I64GeU, intCmp("uge"))

	t.register(wasmmod.F32Eq, floatCmp("eq"))
	t.register(wasmmod.F32Ne, floatCmpNe())
	t.register(wasmmod.F32Lt, floatCmp("lt"))
	t.register(wasmmod.F32Gt, floatCmp("gt"))
	t.register(wasmmod.F32Le, floatCmp("le"))
	t.register(wasmmod.F32Ge, floatCmp("ge"))
	t.register(wasmmod.F64Eq, floatCmp("eq"))
	t.register(wasmmod.F64Ne, floatCmpNe())
	t.register(wasmmod.F64Lt, floatCmp("lt"))
	t.register(wasmmod.F64Gt, floatCmp("gt"))
	t.register(wasmmod.F64Le, floatCmp("le"))
	t.register(wasmmod.F64Ge, floatCmp("ge"))
}

func intEqz() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		zero := c.Facade.BVConst(0, a.Width())
		cond := c.Facade.Eq(a.Expr, zero)
		st.Stack.Push(boolResult(c, cond))
		st.CurrentInstr++
		return nil
	}
}

func intCmpEq() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		st.Stack.Push(boolResult(c, c.Facade.Eq(a.Expr, b.Expr)))
		st.CurrentInstr++
		return nil
	}
}

func intCmpNe() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		st.Stack.Push(boolResult(c, c.Facade.Ne(a.Expr, b.Expr)))
		st.CurrentInstr++
		return nil
	}
}

func intCmp(op string) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		st.Stack.Push(boolResult(c, c.Facade.BVCmp(op, a.Expr, b.Expr)))
		st.CurrentInstr++
		return nil
	}
}

func floatCmp(op string) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		st.Stack.Push(boolResult(c, c.Facade.FPCmp(op, a.Expr, b.Expr)))
		st.CurrentInstr++
		return nil
	}
}

func floatCmpNe() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		eq := c.Facade.FPCmp("eq", a.Expr, b.Expr)
		st.Stack.Push(boolResult(c, c.Facade.Ite(eq, c.Facade.BoolConst(false), c.Facade.BoolConst(true))))
		st.CurrentInstr++
		return nil
	}
}

// boolResult turns a SortBool condition into the pushed i32 Value (1 or 0),
// via an Ite over 32-bit constants — the façade's Ite is sort-agnostic in
// its then/else branches, so this is the one place comparisons cross from
// boolean back into the bitvector world every other handler deals in.
func boolResult(c *Context, cond *smt.Expr) state.Value {
	one := c.Facade.BVConst(1, 32)
	zero := c.Facade.BVConst(0, 32)
	return state.Value{Type: wasmmod.ValueTypeI32, Expr: c.Facade.Ite(cond, one, zero)}
}
