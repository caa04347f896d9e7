// Control-flow handlers (spec §4.4), grounded on
// internal/engine/interpreter/interpreter.go's OperationKindBr/BrIf/BrTable/
// Call/CallIndirect cases in the teacher, adapted to this engine's
// CFG-edge-driven model: a structured-control opcode that ends a basic
// block picks its successor(s) from the refined CFG's edges rather than
// walking a nested block/loop/if tree itself.
package dispatch

import (
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func registerControl(t *Table) {
	t.register(wasmmod.Unreachable, handleUnreachable)
	t.register(wasmmod.Nop, handleNop)
	t.register(wasmmod.Block, handleBlock)
	t.register(wasmmod.Loop, handleLoop)
	t.register(wasmmod.If, handleIf)
	t.register(wasmmod.Else, handleElse)
	t.register(wasmmod.End, handleEnd)
	t.register(wasmmod.Br, handleBr)
	t.register(wasmmod.BrIf, handleBrIf)
	t.register(wasmmod.BrTable, handleBrTable)
	t.register(wasmmod.Return, handleReturn)
	t.register(wasmmod.Call, handleCall)
	t.register(wasmmod.CallIndirect, handleCallIndirect)
}

func handleUnreachable(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.Status = state.StatusTrapped
	st.TrapReason = "unreachable"
	return nil
}

func handleNop(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.CurrentInstr++
	return nil
}

func handleBlock(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.PushFrame(state.ControlFrame{Kind: state.FrameBlock, StackBase: st.Stack.Len(), HasResult: instr.Imm.Block.HasResult, ResultType: instr.Imm.Block.Result})
	return followSingleEdge(c, st)
}

func handleLoop(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	st.PushFrame(state.ControlFrame{Kind: state.FrameLoop, StackBase: st.Stack.Len(), HasResult: instr.Imm.Block.HasResult, ResultType: instr.Imm.Block.Result})
	return followSingleEdge(c, st)
}

// handleIf pushes the if/else construct's control frame and forks one
// successor per feasible arm of the condition (spec §4.4), same policy as
// handleBrIf: the then-arm lands on the ConditionalTrue edge, the else-arm
// (or, lacking an else clause, the construct's merge point) on
// ConditionalFalse.
func handleIf(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	cond := st.Stack.Pop()
	trueTo, falseTo, haveTrue, haveFalse := conditionalEdges(c, st)
	zero := c.Facade.BVConst(0, cond.Width())
	frame := state.ControlFrame{Kind: state.FrameIf, StackBase: st.Stack.Len(), HasResult: instr.Imm.Block.HasResult, ResultType: instr.Imm.Block.Result}

	var out []*state.State
	if haveTrue {
		ns := st.Fork()
		ns.Constraints = ns.Constraints.Extend(c.Facade.Ne(cond.Expr, zero))
		ns.PushFrame(frame)
		ns.CurrentBlock = trueTo
		ns.CurrentInstr = 0
		if feasible(c, ns) {
			out = append(out, ns)
		}
	}
	if haveFalse {
		ns := st.Fork()
		ns.Constraints = ns.Constraints.Extend(c.Facade.Eq(cond.Expr, zero))
		ns.PushFrame(frame)
		ns.CurrentBlock = falseTo
		ns.CurrentInstr = 0
		if feasible(c, ns) {
			out = append(out, ns)
		}
	}
	return out
}

// handleElse terminates the then-arm's block and jumps straight to the
// if/else construct's merge point; the else-arm's body was already
// reached directly from the If instruction's ConditionalFalse edge, so
// reaching an Else means execution took the then branch and is now
// skipping over the else branch entirely.
func handleElse(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	return followSingleEdge(c, st)
}

// handleEnd closes the innermost frame, if any, and continues into the
// block's single successor, or — when there is none — falls through to
// doReturn: an implicit function-body end is exactly a return of the
// values the well-typed function body left on the stack.
func handleEnd(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	if len(st.Frames) > 0 {
		st.PopFrame()
	}
	edges := c.Functions[st.CurrentFunc].EdgesFrom(st.CurrentBlock)
	if len(edges) == 0 {
		doReturn(c, st)
		return nil
	}
	return followSingleEdge(c, st)
}

func handleBr(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	doBranch(st, instr.Imm.LabelIndex)
	return followSingleEdge(c, st)
}

// handleBrIf forks on the branch condition, per spec §4.4's "symbolic
// branches fork one successor state per feasible arm". A concretely
// decidable condition (this core's façade resolves it to a single value)
// still goes through the same two-candidate path, relying on feasible to
// drop the infeasible one rather than special-casing concrete conditions.
func handleBrIf(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	cond := st.Stack.Pop()
	trueTo, falseTo, haveTrue, haveFalse := conditionalEdges(c, st)
	zero := c.Facade.BVConst(0, cond.Width())
	var out []*state.State
	if haveTrue {
		ns := st.Fork()
		ns.Constraints = ns.Constraints.Extend(c.Facade.Ne(cond.Expr, zero))
		doBranch(ns, instr.Imm.LabelIndex)
		ns.CurrentBlock = trueTo
		ns.CurrentInstr = 0
		if feasible(c, ns) {
			out = append(out, ns)
		}
	}
	if haveFalse {
		ns := st.Fork()
		ns.Constraints = ns.Constraints.Extend(c.Facade.Eq(cond.Expr, zero))
		ns.CurrentBlock = falseTo
		ns.CurrentInstr = 0
		if feasible(c, ns) {
			out = append(out, ns)
		}
	}
	return out
}

// handleBrTable concretizes the index within the configured enumeration
// budget (spec §4.4, §6 "enumeration limit") and forks one successor per
// feasible case, including the default. Each case's destination block is
// the CFG builder's corresponding outgoing edge, in declaration order
// (one edge per label, the default's edge last) — br_table's fan-out can
// exceed the two named conditional edge kinds, so unlike if/br_if this
// handler addresses edges positionally rather than by Kind.
func handleBrTable(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	idx := st.Stack.Pop()
	labels := instr.Imm.Labels
	candidates := c.Facade.EnumerateFeasible(idx.Expr, st.Constraints.All(), c.Config.Budgets.EnumerationLimit)
	edges := c.Functions[st.CurrentFunc].EdgesFrom(st.CurrentBlock)

	var out []*state.State
	seen := make(map[uint64]bool, len(candidates))
	for _, v := range candidates {
		if seen[v] {
			continue
		}
		seen[v] = true
		caseIndex := len(labels) // default
		label := instr.Imm.Default
		if int(v) < len(labels) {
			caseIndex = int(v)
			label = labels[v]
		}
		if caseIndex >= len(edges) {
			continue
		}
		ns := st.Fork()
		ns.Constraints = ns.Constraints.Extend(c.Facade.Eq(idx.Expr, c.Facade.BVConst(v, idx.Width())))
		doBranch(ns, label)
		ns.CurrentBlock = edges[caseIndex].To
		ns.CurrentInstr = 0
		if feasible(c, ns) {
			out = append(out, ns)
		}
	}
	return out
}

func handleReturn(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	doReturn(c, st)
	return nil
}

// handleCall dispatches to either a host-function model (spec §4.5) or a
// Wasm-defined callee (spec §4.4). Per the CFG-refinement invariant, call
// is always a block's last instruction, and the block it terminates has
// exactly one outgoing edge — the continuation after the call returns —
// which cfg.Refine adds when it splits a block at the call, or which the
// input CFG already carries when the call ends a block.
func handleCall(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	proto, ok := c.Analyzer.Func(instr.Imm.FuncIndex)
	if !ok {
		st.Status = state.StatusTrapped
		st.TrapReason = "call to unknown function index"
		return nil
	}
	args := st.Stack.PopN(len(proto.ParamTypes))
	returnBlock := singleEdgeTarget(c, st)

	if proto.Imported {
		fn, _, resultTypes, found := c.Hosts.Lookup(proto.ImportModule, proto.ImportField)
		if resultTypes == nil {
			resultTypes = proto.ResultTypes
		}
		hc := c.hostContext()
		var results []state.Value
		if found {
			results = fn(hc, st, args)
		} else {
			results = c.Hosts.Fallback(hc, proto.ImportModule, proto.ImportField, resultTypes)
		}
		for _, r := range results {
			st.Stack.Push(r)
		}
		if st.Status.Terminal() {
			return nil
		}
		st.CurrentBlock = returnBlock
		st.CurrentInstr = 0
		return nil
	}

	st.PushCallFrame(state.CallFrame{FuncName: st.CurrentFunc, Locals: st.Locals, Frames: st.Frames, ReturnBlock: returnBlock})
	st.Locals = buildCallLocals(c.Facade, proto, args)
	st.Frames = nil
	st.CurrentFunc = proto.Name
	st.CurrentBlock = c.Functions[proto.Name].Entry
	st.CurrentInstr = 0
	return nil
}

// handleCallIndirect resolves the table-index operand against the
// analyzer's element segments (spec §4.4), forking one successor per
// feasible candidate within the configured enumeration budget, the same
// policy br_table uses for a symbolic index.
func handleCallIndirect(c *Context, st *state.State, instr wasmmod.Instruction) []*state.State {
	tableIdx := st.Stack.Pop()
	candidates := c.Facade.EnumerateFeasible(tableIdx.Expr, st.Constraints.All(), c.Config.Budgets.EnumerationLimit)
	if len(candidates) == 0 {
		st.Status = state.StatusTrapped
		st.TrapReason = "call_indirect: table index could not be resolved"
		return nil
	}

	returnBlock := singleEdgeTarget(c, st)
	var out []*state.State
	for _, v := range candidates {
		funcIndex, ok := funcIndexAtTableSlot(c, uint32(v))
		if !ok {
			continue
		}
		proto, ok := c.Analyzer.Func(funcIndex)
		if !ok || proto.TypeIndex != instr.Imm.TypeIndex {
			continue
		}
		ns := st.Fork()
		ns.Constraints = ns.Constraints.Extend(c.Facade.Eq(tableIdx.Expr, c.Facade.BVConst(v, tableIdx.Width())))
		if !feasible(c, ns) {
			continue
		}
		args := ns.Stack.PopN(len(proto.ParamTypes))
		ns.PushCallFrame(state.CallFrame{FuncName: ns.CurrentFunc, Locals: ns.Locals, Frames: ns.Frames, ReturnBlock: returnBlock})
		ns.Locals = buildCallLocals(c.Facade, proto, args)
		ns.Frames = nil
		ns.CurrentFunc = proto.Name
		ns.CurrentBlock = c.Functions[proto.Name].Entry
		ns.CurrentInstr = 0
		out = append(out, ns)
	}
	return out
}

func funcIndexAtTableSlot(c *Context, slot uint32) (uint32, bool) {
	for _, el := range c.Analyzer.Elements {
		if slot >= el.Offset && int(slot-el.Offset) < len(el.FuncIndices) {
			return el.FuncIndices[slot-el.Offset], true
		}
	}
	return 0, false
}
