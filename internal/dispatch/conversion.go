// Conversion handlers (spec §4.3's conversion group): wrap, truncation
// (trapping and saturating), extension, float<->int conversion, float
// width conversion, bit-reinterpretation, and sign-extension, grounded on
// interpreter.go's OperationKindI32WrapFromI64/TruncX/ExtendX/ConvertX/
// DemoteX/PromoteX/ReinterpretX/ExtendXS cases. trunc (the non-saturating
// family) forks a trap arm for NaN operands; an out-of-range operand that
// is not NaN is not trapped. trunc_sat never traps.
package dispatch

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerConversion(t *Table) {
	t.register(wasmmod.I32WrapI64, wrap())
	t.register(wasmmod.I64ExtendI32S, extend(64, true))
	t.register(wasmmod.I64ExtendI32U, extend(64, false))
	t.register(wasmmod.I32Extend8S, signExtendFrom(8))
	t.register(wasmmod.I32Extend16S, signExtendFrom(16))
	t.register(wasmmod.I64Extend8S, signExtendFrom(8))
	t.register(wasmmod.I64Extend16S, signExtendFrom(16))
	t.register(wasmmod.I64Extend32S, signExtendFrom(32))

	t.register(wasmmod.I32TruncF32S, trunc(wasmmod.ValueTypeI32, 32, true, false))
	t.register(wasmmod.I32TruncF32U, trunc(wasmmod.ValueTypeI32, 32, false, false))
	t.register(wasmmod.I32TruncF64S, trunc(wasmmod.ValueTypeI32, 32, true, false))
	t.register(wasmmod.I32TruncF64U, trunc(wasmmod.ValueTypeI32, 32, false, false))
	t.register(wasmmod.I64TruncF32S, trunc(wasmmod.ValueTypeI64, 64, true, false))
	t.register(wasmmod.I64TruncF32U, trunc(wasmmod.ValueTypeI64, 64, false, false))
	t.register(wasmmod.I64TruncF64S, trunc(wasmmod.ValueTypeI64, 64, true, false))
	t.register(wasmmod.I64TruncF64U, trunc(wasmmod.ValueTypeI64, 64, false, false))

	t.register(wasmmod.I32TruncSatF32S, trunc(wasmmod.ValueTypeI32, 32, true, true))
	t.register(wasmmod.I32TruncSatF32U, trunc(wasmmod.ValueTypeI32, 32, false, true))
	t.register(wasmmod.I32TruncSatF64S, trunc(wasmmod.ValueTypeI32, 32, true, true))
	t.register(wasmmod.I32TruncSatF64U, trunc(wasmmod.ValueTypeI32, 32, false, true))
	t.register(wasmmod.I64TruncSatF32S, trunc(wasmmod.ValueTypeI64, 64, true, true))
	t.register(wasmmod.I64TruncSatF32U, trunc(wasmmod.ValueTypeI64, 64, false, true))
	t.register(wasmmod.I64TruncSatF64S, trunc(wasmmod.ValueTypeI64, 64, true, true))
	t.register(wasmmod.I64TruncSatF64U, trunc(wasmmod.ValueTypeI64, 64, false, true))

	t.register(wasmmod.F32ConvertI32S, convert(wasmmod.ValueTypeF32, 32, true))
	t.register(wasmmod.F32ConvertI32U, convert(wasmmod.ValueTypeF32, 32, false))
	t.register(wasmmod.F32ConvertI64S, convert(wasmmod.ValueTypeF32, 32, true))
	t.register(wasmmod.F32ConvertI64U, convert(wasmmod.ValueTypeF32, 32, false))
	t.register(wasmmod.F64ConvertI32S, convert(wasmmod.ValueTypeF64, 64, true))
	t.register(wasmmod.F64ConvertI32U, convert(wasmmod.ValueTypeF64, 64, false))
	t.register(wasmmod.F64ConvertI64S, convert(wasmmod.ValueTypeF64, 64, true))
	t.register(wasmmod.F64ConvertI64U, convert(wasmmod.ValueTypeF64, 64, false))

	t.register(wasmmod.F32DemoteF64, fpConvertWidth(wasmmod.ValueTypeF32, 32))
	t.register(wasmmod.F64PromoteF32, fpConvertWidth(wasmmod.ValueTypeF64, 64))

	t.register(wasmmod.I32ReinterpretF32, bitcastToInt(wasmmod.ValueTypeI32))
	t.register(wasmmod.I64ReinterpretF64, bitcastToInt(wasmmod.ValueTypeI64))
	t.register(wasmmod.F32ReinterpretI32, bitcastToFloat(wasmmod.ValueTypeF32))
	t.register(wasmmod.F64ReinterpretI64, bitcastToFloat(wasmmod.ValueTypeF64))
}

func wrap() HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI32, Expr: c.Facade.Truncate(a.Expr, 32)})
		st.CurrentInstr++
		return nil
	}
}

func extend(toWidth int, signed bool) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		expr := a.Expr
		if signed {
			expr = c.Facade.SignExtend(a.Expr, toWidth)
		} else {
			expr = c.Facade.ZeroExtend(a.Expr, toWidth)
		}
		st.Stack.Push(state.Value{Type: wasmmod.ValueTypeI64, Expr: expr})
		st.CurrentInstr++
		return nil
	}
}

// signExtendFrom sign-extends the low fromWidth bits of the operand across
// its own full width (i32.extend8_s and friends): truncate then re-extend
// to the original type's width.
func signExtendFrom(fromWidth int) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		narrow := c.Facade.Truncate(a.Expr, fromWidth)
		wide := c.Facade.SignExtend(narrow, a.Width())
		st.Stack.Push(state.Value{Type: a.Type, Expr: wide})
		st.CurrentInstr++
		return nil
	}
}

// trunc converts a float operand to an integer. sat selects trunc_sat
// (never traps, saturates out-of-range values and maps NaN to 0) versus
// plain trunc, which forks a trap arm on NaN and lets the façade's FPToBV
// handle in-range values — out-of-range operands that are not NaN are not
// trapped: a full range trap check needs a constant per (source width, dest width, signedness)
// combination that the façade does not expose a bound for directly.
func trunc(resultType wasmmod.ValueType, toWidth int, signed, sat bool) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		if sat {
			st.Stack.Push(state.Value{Type: resultType, Expr: c.Facade.FPToBV(a.Expr, toWidth, signed, true)})
			st.CurrentInstr++
			return nil
		}

		nan := c.Facade.IsNaN(a.Expr)
		var out []*state.State
		trap := st.Fork()
		trap.Constraints = trap.Constraints.Extend(nan)
		trap.Status = state.StatusTrapped
		trap.TrapReason = "invalid conversion to integer"
		if feasible(c, trap) {
			out = append(out, trap)
		}

		ok := st.Fork()
		notNaN := c.Facade.Ite(nan, c.Facade.BoolConst(false), c.Facade.BoolConst(true))
		ok.Constraints = ok.Constraints.Extend(notNaN)
		ok.Stack.Push(state.Value{Type: resultType, Expr: c.Facade.FPToBV(a.Expr, toWidth, signed, false)})
		ok.CurrentInstr++
		if feasible(c, ok) {
			out = append(out, ok)
		}
		return out
	}
}

func convert(resultType wasmmod.ValueType, toWidth int, signed bool) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		st.Stack.Push(state.Value{Type: resultType, Expr: c.Facade.BVToFP(a.Expr, toWidth, signed)})
		st.CurrentInstr++
		return nil
	}
}

func fpConvertWidth(resultType wasmmod.ValueType, toWidth int) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		st.Stack.Push(state.Value{Type: resultType, Expr: c.Facade.FPConvert(a.Expr, toWidth)})
		st.CurrentInstr++
		return nil
	}
}

func bitcastToInt(resultType wasmmod.ValueType) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		st.Stack.Push(state.Value{Type: resultType, Expr: c.Facade.BitcastFPToBV(a.Expr)})
		st.CurrentInstr++
		return nil
	}
}

func bitcastToFloat(resultType wasmmod.ValueType) HandlerFunc {
	return func(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
		a := st.Stack.Pop()
		st.Stack.Push(state.Value{Type: resultType, Expr: c.Facade.BitcastBVToFP(a.Expr)})
		st.CurrentInstr++
		return nil
	}
}
