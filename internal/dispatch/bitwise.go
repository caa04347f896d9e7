// Bitwise handlers (spec §4.3's bitwise group): count/popcount and the
// logical/shift/rotate family, grounded on interpreter.go's
// OperationKindAnd/Or/Xor/Shl/ShrX/RotX cases in the teacher. clz, ctz and
// popcnt have no z3 bitvector primitive, so they're built as a fixed
// unrolled bit-test chain over the operand's width — small and width-known
// at registration time, so no loop budget is needed the way a runtime
// bit-scan would.
package dispatch

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerBitwise(t *Table) {
	t.register(wasmmod.I32Clz, clz())
	t.register(wasmmod.I32Ctz, ctz())
	t.register(wasmmod.I32Popcnt, popcnt())
	t.register(wasmmod.I32And, bitBin("and"))
	t.register(wasmmod.I32Or, bitBin("or"))
	t.register(wasmmod.I32Xor, bitBin("xor"))
	t.register(wasmmod.I32Shl, bitBin("shl"))
	t.register(wasmmod.I32ShrS, bitBin("ashr"))
	t.register(wasmmod.I32ShrU, bitBin("lshr"))
	t.register(wasmmod.I32Rotl, rotl())
	t.register(wasmmod.I32Rotr, rotr())
	t.register(wasmmod.I64Clz, clz())
	t.register(wasmmod.I64Ctz, ctz())
	t.register(wasmmod.I64Popcnt, popcnt())
	t.register(wasmmod.I64And, bitBin("and"))
	t.register(wasmmod.I64Or, bitBin("or"))
	t.register(wasmmod.I64Xor, bitBin("xor"))
	t.register(wasmmod.I64Shl, bitBin("shl"))
	t.register(wasmmod.I64ShrS, bitBin("ashr"))
	t.register(wasmmod.I64ShrU, bitBin("lshr"))
	t.register(wasmmod.I64Rotl, rotl())
	t.register(wasmmod.I64Rotr, rotr())
}

func bitBin(op string) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		// Wasm's shift amount is taken mod the operand width, while a
		// bitvector shift by the width or more yields 0 (or all sign bits),
		// so the shift amount is masked to width-1 first.
		amt := b.Expr
		if op == "shl" || op == "ashr" || op == "lshr" {
			amt = c.Facade.BVBinOp("and", b.Expr, c.Facade.BVConst(uint64(a.Width()-1), a.Width()))
		}
		st.Stack.Push(state.Value{Type: a.Type, Expr: c.Facade.BVBinOp(op, a.Expr, amt)})
		st.CurrentInstr++
		return nil
	}
}

// rotl/rotr have no direct BVBinOp entry; build them from two shifts and
// an or, the standard rotate-via-shift identity.
func rotl() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		width := c.Facade.BVConst(uint64(a.Width()), a.Width())
		comp := c.Facade.BVBinOp("sub", width, b.Expr)
		left := c.Facade.BVBinOp("shl", a.Expr, b.Expr)
		right := c.Facade.BVBinOp("lshr", a.Expr, comp)
		st.Stack.Push(state.Value{Type: a.Type, Expr: c.Facade.BVBinOp("or", left, right)})
		st.CurrentInstr++
		return nil
	}
}

func rotr() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		b := st.Stack.Pop()
		a := st.Stack.Pop()
		width := c.Facade.BVConst(uint64(a.Width()), a.Width())
		comp := c.Facade.BVBinOp("sub", width, b.Expr)
		right := c.Facade.BVBinOp("lshr", a.Expr, b.Expr)
		left := c.Facade.BVBinOp("shl", a.Expr, comp)
		st.Stack.Push(state.Value{Type: a.Type, Expr: c.Facade.BVBinOp("or", left, right)})
		st.CurrentInstr++
		return nil
	}
}

// clz counts leading zero bits via a chain of nested Ite tests, the
// standard bit-by-bit encoding used when the solver backend has no native
// clz operator. Folding ascending from bit 0 makes the highest bit's test
// the outermost (and so highest-priority) condition in the resulting
// expression, which is what gives the highest set bit precedence.
func clz() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		width := a.Width()
		result := c.Facade.BVConst(uint64(width), width)
		for bit := 0; bit < width; bit++ {
			mask := c.Facade.BVConst(uint64(1)<<uint(bit), width)
			masked := c.Facade.BVBinOp("and", a.Expr, mask)
			isSet := c.Facade.Ne(masked, c.Facade.BVConst(0, width))
			leadingZeros := c.Facade.BVConst(uint64(width-1-bit), width)
			result = c.Facade.Ite(isSet, leadingZeros, result)
		}
		st.Stack.Push(state.Value{Type: a.Type, Expr: result})
		st.CurrentInstr++
		return nil
	}
}

func ctz() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		width := a.Width()
		result := c.Facade.BVConst(uint64(width), width)
		for bit := width - 1; bit >= 0; bit-- {
			mask := c.Facade.BVConst(uint64(1)<<uint(bit), width)
			masked := c.Facade.BVBinOp("and", a.Expr, mask)
			isSet := c.Facade.Ne(masked, c.Facade.BVConst(0, width))
			trailingZeros := c.Facade.BVConst(uint64(bit), width)
			result = c.Facade.Ite(isSet, trailingZeros, result)
		}
		st.Stack.Push(state.Value{Type: a.Type, Expr: result})
		st.CurrentInstr++
		return nil
	}
}

func popcnt() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		width := a.Width()
		zero := c.Facade.BVConst(0, width)
		one := c.Facade.BVConst(1, width)
		sum := zero
		for bit := 0; bit < width; bit++ {
			mask := c.Facade.BVConst(uint64(1)<<uint(bit), width)
			masked := c.Facade.BVBinOp("and", a.Expr, mask)
			isSet := c.Facade.Ne(masked, zero)
			sum = c.Facade.BVBinOp("add", sum, c.Facade.Ite(isSet, one, zero))
		}
		st.Stack.Push(state.Value{Type: a.Type, Expr: sum})
		st.CurrentInstr++
		return nil
	}
}
