package state

import "github.com/symwasm/symwasm/internal/symmem"

// Status classifies a state as running or one of the terminal outcomes
// spec §4.6 "Termination" and §7 name.
type Status int

const (
	StatusRunning Status = iota
	StatusReturned
	StatusTrapped
	StatusBudgetExhausted
	StatusExited
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusReturned:
		return "returned"
	case StatusTrapped:
		return "trapped"
	case StatusBudgetExhausted:
		return "budget-exhausted"
	case StatusExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is one this path will not be
// extended further from (spec's "Terminal state" glossary entry).
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// State is the VM state aggregate (spec §3 "VMState"). It is uniquely
// owned by one exploration-driver worklist slot; Fork produces two owned
// states sharing no mutable substructure (spec §3 "Ownership", §8 "State
// isolation").
type State struct {
	Stack       *Stack
	Locals      *Locals
	Globals     *Globals
	Memory      *symmem.Store
	Files       *Files
	Argv        *Argv
	Constraints *Constraints
	Output      *OutputBuffer

	Frames   []ControlFrame // current function's block/loop/if frame stack
	CallFrames []CallFrame  // suspended callers, most-recent-last

	// CurrentFunc/CurrentBlock/CurrentInstr is the lightweight
	// {func, block, index} triple spec §9 prescribes in place of an
	// owning reference to the current instruction: an index into the
	// read-only CFG, not a pointer into it.
	CurrentFunc  string
	CurrentBlock string
	CurrentInstr int

	Status       Status
	ExitCode     int32
	TrapReason   string

	// StepCount and CallDepth are path-local budget counters (spec §4.4
	// "Call depth, block depth, and total instructions executed are
	// bounded by configured budgets"); internal/explore compares these
	// against config.Context on every dequeue.
	StepCount int
	CallDepth int

	// MemoryPages is the current linear-memory size, in 64KiB pages
	// (spec §4.3 "memory.size and memory.grow are modeled against a
	// per-state page count").
	MemoryPages uint32

	// HeapPtr is a bump allocator cursor for the libc malloc model
	// (internal/hostfunc): each call returns the current value and
	// advances it by the (concretized) requested size. It is a plain
	// scalar, so Fork's struct copy already gives each sibling its own
	// independently-advancing cursor.
	HeapPtr uint32
}

// Fork returns a brand-new sibling of the receiver; afterwards the receiver
// and the sibling are independently owned. Fork itself just clones
// substructure; callers (internal/dispatch) extend Constraints afterward
// with the actual branch condition on each side. This matches the symbolic
// stack/memory/locals copy-on-write scheme: no field is shared mutably
// between the two results.
func (s *State) Fork() *State {
	ns := *s
	ns.Stack = s.Stack.Fork()
	ns.Locals = s.Locals.Fork()
	ns.Globals = s.Globals.Fork()
	ns.Memory = s.Memory.Fork()
	ns.Files = s.Files.Fork()
	ns.Output = s.Output.Fork()
	ns.Constraints = s.Constraints.Fork()
	ns.Frames = append([]ControlFrame(nil), s.Frames...)
	ns.CallFrames = append([]CallFrame(nil), s.CallFrames...)
	// The receiver takes fresh unowned handles too, so whichever side
	// writes first copies instead of writing into the shared data.
	s.Stack = s.Stack.Fork()
	s.Locals = s.Locals.Fork()
	s.Globals = s.Globals.Fork()
	s.Memory = s.Memory.Fork()
	s.Files = s.Files.Fork()
	s.Output = s.Output.Fork()
	for i := range s.CallFrames {
		s.CallFrames[i].Locals = s.CallFrames[i].Locals.Fork()
		ns.CallFrames[i].Locals = s.CallFrames[i].Locals.Fork()
	}
	return &ns
}

// PushFrame pushes a new control frame for a block/loop/if.
func (s *State) PushFrame(f ControlFrame) {
	s.Frames = append(s.Frames, f)
}

// PopFrame pops and returns the innermost control frame.
func (s *State) PopFrame() ControlFrame {
	f := s.Frames[len(s.Frames)-1]
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// FrameAt returns the control frame relDepth frames up from the innermost
// (0 = innermost), as br/br_if/br_table's label-index immediate addresses.
func (s *State) FrameAt(relDepth uint32) ControlFrame {
	return s.Frames[len(s.Frames)-1-int(relDepth)]
}

// PushCallFrame suspends the current activation (call).
func (s *State) PushCallFrame(f CallFrame) {
	s.CallFrames = append(s.CallFrames, f)
}

// PopCallFrame resumes the most recently suspended activation (return).
func (s *State) PopCallFrame() CallFrame {
	f := s.CallFrames[len(s.CallFrames)-1]
	s.CallFrames = s.CallFrames[:len(s.CallFrames)-1]
	return f
}

// UnwindTo truncates the frame stack to height frames (used when a br
// target is relDepth frames up: the frames above and including the target
// are popped, only the target's enclosing frames remain for the block the
// branch lands in to continue building on).
func (s *State) UnwindTo(height int) {
	s.Frames = s.Frames[:height]
}

// NewState constructs the initial state for one exploration run: empty
// stack, the given locals/globals/memory/files/argv, no constraints, no
// output, positioned at the entry function's entry block.
func NewState(locals *Locals, globals *Globals, memory *symmem.Store, files *Files, argv *Argv, entryFunc, entryBlock string, initialPages uint32, heapBase uint32) *State {
	return &State{
		Stack:        NewStack(),
		Locals:       locals,
		Globals:      globals,
		Memory:       memory,
		Files:        files,
		Argv:         argv,
		Constraints:  NewConstraints(),
		Output:       NewOutputBuffer(),
		CurrentFunc:  entryFunc,
		CurrentBlock: entryBlock,
		MemoryPages:  initialPages,
		HeapPtr:      heapBase,
	}
}
