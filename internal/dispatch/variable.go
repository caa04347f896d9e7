// Local/global access handlers (spec §4.3's variable group), grounded on
// the teacher's OperationKindV128... sibling cases for locals/globals
// (interpreter.go's LocalGet/LocalSet/GlobalGet/GlobalSet arms).
package dispatch

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerVariable(t *Table) {
	t.register(wasmmod.LocalGet, handleLocalGet)
	t.register(wasmmod.LocalSet, handleLocalSet)
	t.register(wasmmod.LocalTee, handleLocalTee)
	t.register(wasmmod.GlobalGet, handleGlobalGet)
	t.register(wasmmod.GlobalSet, handleGlobalSet)
}

func handleLocalGet(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Push(st.Locals.Get(instr.Imm.LocalIndex))
	st.CurrentInstr++
	return nil
}

func handleLocalSet(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Locals.Set(instr.Imm.LocalIndex, st.Stack.Pop())
	st.CurrentInstr++
	return nil
}

func handleLocalTee(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	v := st.Stack.Peek(0)
	st.Locals.Set(instr.Imm.LocalIndex, v)
	st.CurrentInstr++
	return nil
}

func handleGlobalGet(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Push(st.Globals.Get(instr.Imm.GlobalIndex))
	st.CurrentInstr++
	return nil
}

func handleGlobalSet(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Globals.Set(instr.Imm.GlobalIndex, st.Stack.Pop())
	st.CurrentInstr++
	return nil
}
