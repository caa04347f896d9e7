// Constant-push handlers (spec §4.3's constant group), grounded on the
// teacher's OperationKindConstant case: each pushes one concrete,
// bit-pattern-preserving value built by the façade.
package dispatch

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerConstant(t *Table) {
	t.register(wasmmod.I32Const, handleI32Const)
	t.register(wasmmod.I64Const, handleI64Const)
	t.register(wasmmod.F32Const, handleF32Const)
	t.register(wasmmod.F64Const, handleF64Const)
}

func handleI32Const(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: c.Facade.BVConst(uint64(uint32(instr.Imm.I32Val)), 32)})
	st.CurrentInstr++
	return nil
}

func handleI64Const(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI64, Expr: c.Facade.BVConst(uint64(instr.Imm.I64Val), 64)})
	st.CurrentInstr++
	return nil
}

func handleF32Const(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeF32, Expr: c.Facade.FPConst(float64(instr.Imm.F32Val), 32)})
	st.CurrentInstr++
	return nil
}

func handleF64Const(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeF64, Expr: c.Facade.FPConst(instr.Imm.F64Val, 64)})
	st.CurrentInstr++
	return nil
}
