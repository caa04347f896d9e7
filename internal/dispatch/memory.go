// Linear-memory handlers (spec §4.3's memory group), grounded on
// internal/engine/interpreter/interpreter.go's OperationKindMemoryLoad/Store
// cases, adapted to route every address through the façade's concretization
// step before reaching symmem.Store, which only ever sees an already-
// resolved addrConcrete pointer or nil (internal/symmem's documented
// contract).
package dispatch

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerMemory(t *Table) {
	t.register(wasmmod.I32Load, load(wasmmod.ValueTypeI32, 4, false, false))
	t.register(wasmmod.I64Load, load(wasmmod.ValueTypeI64, 8, false, false))
	t.register(wasmmod.F32Load, load(wasmmod.ValueTypeF32, 4, false, false))
	t.register(wasmmod.F64Load, load(wasmmod.ValueTypeF64, 8, false, false))
	t.register(wasmmod.I32Load8S, load(wasmmod.ValueTypeI32, 1, true, true))
	t.register(wasmmod.I32Load8U, load(wasmmod.ValueTypeI32, 1, true, false))
	t.register(wasmmod.I32Load16S, load(wasmmod.ValueTypeI32, 2, true, true))
	t.register(wasmmod.I32Load16U, load(wasmmod.ValueTypeI32, 2, true, false))
	t.register(wasmmod.I64Load8S, load(wasmmod.ValueTypeI64, 1, true, true))
	t.register(wasmmod.I64Load8U, load(wasmmod.ValueTypeI64, 1, true, false))
	t.register(wasmmod.I64Load16S, load(wasmmod.ValueTypeI64, 2, true, true))
	t.register(wasmmod.I64Load16U, load(wasmmod.ValueTypeI64, 2, true, false))
	t.register(wasmmod.I64Load32S, load(wasmmod.ValueTypeI64, 4, true, true))
	t.register(wasmmod.I64Load32U, load(wasmmod.ValueTypeI64, 4, true, false))

	t.register(wasmmod.I32Store, store(4))
	t.register(wasmmod.I64Store, store(8))
	t.register(wasmmod.F32Store, store(4))
	t.register(wasmmod.F64Store, store(8))
	t.register(wasmmod.I32Store8, store(1))
	t.register(wasmmod.I32Store16, store(2))
	t.register(wasmmod.I64Store8, store(1))
	t.register(wasmmod.I64Store16, store(2))
	t.register(wasmmod.I64Store32, store(4))

	t.register(wasmmod.MemorySize, handleMemorySize)
	t.register(wasmmod.MemoryGrow, handleMemoryGrow)
}

// effectiveAddr concretizes the base address operand plus the instruction's
// static MemOffset immediate, returning the 64-bit byte address and its
// concretization (nil when the façade could not resolve it to a single
// value, in which case symmem falls back to the guarded-chain path).
func effectiveAddr(c *Context, st *state.State, base state.Value, instr wasmmod.Instruction) (*state.Value, *uint64) {
	offset := c.Facade.BVConst(uint64(instr.Imm.MemOffset), base.Width())
	addrExpr := c.Facade.BVBinOp("add", base.Expr, offset)
	addr := state.Value{Type: base.Type, Expr: addrExpr}
	if v, ok := c.Facade.Concretize(addrExpr, st.Constraints.All()); ok {
		return &addr, &v
	}
	return &addr, nil
}

// load returns a handler for one load variant: resultType/nbytes describe
// the pushed value; narrow selects a sub-word width (nbytes < the result
// type's natural width) and signed picks sign- vs zero-extension for it.
func load(resultType wasmmod.ValueType, nbytes int, narrow, signed bool) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		base := st.Stack.Pop()
		addr, addrConcrete := effectiveAddr(c, st, base, instr)
		raw := st.Memory.Load(addr.Expr, addrConcrete, nbytes)
		width := resultType.BitWidth()

		bv := raw
		if narrow && width > nbytes*8 {
			if signed {
				bv = c.Facade.SignExtend(raw, width)
			} else {
				bv = c.Facade.ZeroExtend(raw, width)
			}
		}

		pushed := bv
		if resultType.IsFloat() {
			pushed = c.Facade.BitcastBVToFP(bv)
		}
		st.Stack.Push(state.Value{Type: resultType, Expr: pushed})
		st.CurrentInstr++
		return nil
	}
}

func handleMemorySize(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: c.Facade.BVConst(uint64(st.MemoryPages), 32)})
	st.CurrentInstr++
	return nil
}

// handleMemoryGrow concretizes the requested page-count delta (spec §4.3):
// a symbolic delta that cannot be resolved to a single value is treated as
// a failed grow (-1), since Wasm allows memory.grow to fail for any reason
// and this keeps the handler from having to fork over every possible delta.
func handleMemoryGrow(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	delta := st.Stack.Pop()
	prev := st.MemoryPages
	v, ok := c.Facade.Concretize(delta.Expr, st.Constraints.All())
	if !ok {
		st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: c.Facade.BVConst(uint64(uint32(int32(-1))), 32)})
		st.CurrentInstr++
		return nil
	}
	st.MemoryPages = prev + uint32(v)
	st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: c.Facade.BVConst(uint64(prev), 32)})
	st.CurrentInstr++
	return nil
}

func store(nbytes int) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		v := st.Stack.Pop()
		base := st.Stack.Pop()
		addr, addrConcrete := effectiveAddr(c, st, base, instr)
		bv := v.Expr
		if v.Type.IsFloat() {
			bv = c.Facade.BitcastFPToBV(bv)
		}
		if bv.Width() != nbytes*8 {
			bv = c.Facade.Truncate(bv, nbytes*8)
		}
		st.Memory.Store(addr.Expr, addrConcrete, bv, nbytes)
		st.CurrentInstr++
		return nil
	}
}
