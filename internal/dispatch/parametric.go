// Parametric handlers (spec §4.3): drop and select, grounded on the
// teacher's OperationKindDrop/Select cases. Select forks on a genuinely
// symbolic condition rather than building an Ite, keeping with this
// engine's path-per-branch model (spec §4.4's fork-on-symbolic-condition
// policy, applied here even though select isn't itself a control
// instruction) — an Ite would silently merge two distinguishable program
// behaviors into one expression the reporter could never split back apart.
package dispatch

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerParametric(t *Table) {
	t.register(wasmmod.Drop, handleDrop)
	t.register(wasmmod.Select, handleSelect)
}

func handleDrop(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Stack.Pop()
	st.CurrentInstr++
	return nil
}

func handleSelect(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	cond := st.Stack.Pop()
	val2 := st.Stack.Pop()
	val1 := st.Stack.Pop()
	zero := c.Facade.BVConst(0, cond.Width())

	if v, ok := c.Facade.Concretize(cond.Expr, st.Constraints.All()); ok {
		if v != 0 {
			st.Stack.Push(val1)
		} else {
			st.Stack.Push(val2)
		}
		st.CurrentInstr++
		return nil
	}

	var out []*state.State
	trueState := st.Fork()
	trueState.Constraints = trueState.Constraints.Extend(c.Facade.Ne(cond.Expr, zero))
	trueState.Stack.Push(val1)
	trueState.CurrentInstr++
	if feasible(c, trueState) {
		out = append(out, trueState)
	}

	falseState := st.Fork()
	falseState.Constraints = falseState.Constraints.Extend(c.Facade.Eq(cond.Expr, zero))
	falseState.Stack.Push(val2)
	falseState.CurrentInstr++
	if feasible(c, falseState) {
		out = append(out, falseState)
	}
	return out
}
