package state

import "github.com/symwasm/symwasm/internal/wasmmod"

// FrameKind distinguishes the structured-control frame kinds spec §4.4
// names (block/loop/if all introduce a frame; a function call introduces
// an implicit outermost one via CallFrame, not ControlFrame).
type FrameKind int

const (
	FrameBlock FrameKind = iota
	FrameLoop
	FrameIf
)

// ControlFrame tracks one nested block/loop/if's arity and the stack depth
// it was entered at (spec §4.4: "Each introduces a frame tracking the
// arity of the block's result type and the label's target"). The label's
// *block-name* target is resolved by the CFG's edges out of the
// terminating instruction's basic block, not stored here — ControlFrame
// only carries what's needed to transfer the operand stack correctly
// (spec §9 "Global recursion depth": an explicit frame stack replaces
// recursive descent).
type ControlFrame struct {
	Kind       FrameKind
	StackBase  int
	HasResult  bool
	ResultType wasmmod.ValueType
}

// CallFrame is one suspended caller (spec §4.4 "call": "preserve the
// current function's remaining work"). ReturnBlock is the caller-side
// basic block to resume in (the CFG's fallthrough-after-call edge target);
// execution resumes at its instruction 0, since refinement guarantees a
// call is a block's last instruction and its fallthrough target starts a
// fresh block.
type CallFrame struct {
	FuncName    string
	Locals      *Locals
	Frames      []ControlFrame
	ReturnBlock string
}
