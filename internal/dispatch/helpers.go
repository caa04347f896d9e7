package dispatch

import (
	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// feasible reports whether st's accumulated path constraints are jointly
// satisfiable, the check every forking handler runs before including a
// successor state — spec §8's "Feasibility invariant": a non-terminal
// state is never enqueued with an unsatisfiable constraint list.
func feasible(c *Context, st *state.State) bool {
	if st.Constraints.Len() == 0 {
		return true
	}
	_, ok := c.Facade.Sat(st.Constraints.All())
	return ok
}

// singleEdgeTarget returns the lone outgoing edge of st's current block,
// panicking if there isn't exactly one — every control handler that
// doesn't itself branch (block/loop/else/a completed call) relies on the
// CFG having exactly one successor there.
func singleEdgeTarget(c *Context, st *state.State) string {
	edges := c.Functions[st.CurrentFunc].EdgesFrom(st.CurrentBlock)
	if len(edges) != 1 {
		panic("dispatch: expected exactly one outgoing edge from " + st.CurrentBlock)
	}
	return edges[0].To
}

// followSingleEdge advances st to its block's lone successor in place.
func followSingleEdge(c *Context, st *state.State) []*state.State {
	st.CurrentBlock = singleEdgeTarget(c, st)
	st.CurrentInstr = 0
	return nil
}

// conditionalEdges splits st's current block's outgoing edges into the
// true and false arms of an if/br_if (spec §4.4).
func conditionalEdges(c *Context, st *state.State) (trueTo, falseTo string, haveTrue, haveFalse bool) {
	for _, e := range c.Functions[st.CurrentFunc].EdgesFrom(st.CurrentBlock) {
		switch e.Kind {
		case cfg.ConditionalTrue:
			trueTo, haveTrue = e.To, true
		case cfg.ConditionalFalse:
			falseTo, haveFalse = e.To, true
		}
	}
	return
}

// doBranch applies br's stack/frame-unwind semantics for a branch to the
// frame relDepth levels up from the innermost (spec §4.4). Branching to a
// loop frame keeps that frame active and transfers no value (the loop's
// label carries no result in this engine's single-result-type block
// model, spec §3's "Symbolic stack" scope); branching to a block/if frame
// exits it, carrying its single result value forward if it has one.
func doBranch(st *state.State, relDepth uint32) {
	frame := st.FrameAt(relDepth)
	if frame.Kind == state.FrameLoop {
		st.Stack.TruncateTo(frame.StackBase)
		st.UnwindTo(len(st.Frames) - int(relDepth))
		return
	}
	var result state.Value
	if frame.HasResult {
		result = st.Stack.Peek(0)
	}
	st.Stack.TruncateTo(frame.StackBase)
	if frame.HasResult {
		st.Stack.Push(result)
	}
	st.UnwindTo(len(st.Frames) - int(relDepth) - 1)
}

// lookupPrototype finds the FuncPrototype for the function currently
// named name. Functions are few enough per module that a linear scan
// (rather than a name index carried alongside the analyzer) keeps
// wasmmod's data-contract surface minimal.
func lookupPrototype(c *Context, name string) (wasmmod.FuncPrototype, bool) {
	for _, p := range c.Analyzer.FuncPrototypes {
		if p.Name == name {
			return p, true
		}
	}
	return wasmmod.FuncPrototype{}, false
}

// zeroLocal returns the zero value of t, for a declared (non-parameter)
// local's initial value (spec §3 "Locals").
func zeroLocal(facade *smt.Facade, t wasmmod.ValueType) state.Value {
	if t.IsFloat() {
		return state.Value{Type: t, Expr: facade.FPConst(0, t.BitWidth())}
	}
	return state.Value{Type: t, Expr: facade.BVConst(0, t.BitWidth())}
}

// buildCallLocals builds the callee's initial Locals vector: args become
// the first len(args) locals verbatim, followed by zero-valued declared
// locals (spec §3).
func buildCallLocals(facade *smt.Facade, proto wasmmod.FuncPrototype, args []state.Value) *state.Locals {
	values := make([]state.Value, 0, len(args)+len(proto.LocalTypes))
	values = append(values, args...)
	for _, t := range proto.LocalTypes {
		values = append(values, zeroLocal(facade, t))
	}
	return state.NewLocals(values)
}

// doReturn pops the current function's declared result values and either
// completes the whole run (no suspended caller) or resumes the caller
// (spec §4.4 "call"/"return").
func doReturn(c *Context, st *state.State) {
	proto, _ := lookupPrototype(c, st.CurrentFunc)
	results := st.Stack.PopN(len(proto.ResultTypes))
	if len(st.CallFrames) == 0 {
		st.Status = state.StatusReturned
		for _, r := range results {
			st.Stack.Push(r)
		}
		return
	}
	frame := st.PopCallFrame()
	st.Locals = frame.Locals
	st.Frames = frame.Frames
	for _, r := range results {
		st.Stack.Push(r)
	}
	st.CurrentFunc = frame.FuncName
	st.CurrentBlock = frame.ReturnBlock
	st.CurrentInstr = 0
}
