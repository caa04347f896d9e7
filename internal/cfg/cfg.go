// Package cfg defines the control-flow graph surface consumed by the
// exploration driver (spec §3 "Basic block"/"Edge", §6 "CFG (consumed)"),
// plus the one CFG-shaping step this core performs itself: refinement,
// which splits basic blocks so every call ends a block (spec §4.4,
// "CFG refinement" in the component budget table).
//
// Building the raw CFG from a function's instruction stream is out of
// scope (spec §1); a caller — a real CFG builder, or a test fixture —
// constructs Function values directly and hands them to Refine.
package cfg

import (
	"fmt"

	"github.com/symwasm/symwasm/internal/wasmmod"
)

// EdgeKind classifies a CFG edge, per spec §3 "Edge".
type EdgeKind int

const (
	Fallthrough EdgeKind = iota
	ConditionalTrue
	ConditionalFalse
	Unconditional
)

func (k EdgeKind) String() string {
	switch k {
	case Fallthrough:
		return "fallthrough"
	case ConditionalTrue:
		return "conditional_true"
	case ConditionalFalse:
		return "conditional_false"
	case Unconditional:
		return "unconditional"
	default:
		return "unknown"
	}
}

// Edge is a directed transfer between two named basic blocks.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// BasicBlock is a maximal straight-line instruction run, per spec §3.
type BasicBlock struct {
	Name         string
	StartOffset  int
	EndOffset    int
	StartInstr   int
	EndInstr     int
	Instructions []wasmmod.Instruction
}

// EndsWithCall reports whether the block's last instruction is a call or
// call_indirect — the invariant CFG refinement establishes for every block.
func (b *BasicBlock) EndsWithCall() bool {
	if len(b.Instructions) == 0 {
		return false
	}
	last := b.Instructions[len(b.Instructions)-1].Op
	return last == wasmmod.Call || last == wasmmod.CallIndirect
}

// Function is one function's refined (or pre-refinement) CFG.
type Function struct {
	Name   string
	Index  uint32
	Entry  string
	Blocks map[string]*BasicBlock
	Edges  []Edge

	edgesFrom map[string][]Edge
}

// NewFunction wires the edgesFrom index used by EdgesFrom. Callers building
// a fixture by hand should go through this rather than populating the
// struct literal directly, so the index stays consistent.
func NewFunction(name string, index uint32, entry string, blocks map[string]*BasicBlock, edges []Edge) *Function {
	f := &Function{Name: name, Index: index, Entry: entry, Blocks: blocks, Edges: edges}
	f.reindex()
	return f
}

func (f *Function) reindex() {
	f.edgesFrom = make(map[string][]Edge, len(f.Edges))
	for _, e := range f.Edges {
		f.edgesFrom[e.From] = append(f.edgesFrom[e.From], e)
	}
}

// EdgesFrom returns the outgoing edges of the named block, in the order
// they were declared.
func (f *Function) EdgesFrom(name string) []Edge {
	return f.edgesFrom[name]
}

// CallGraph maps a caller function name to the set of callee names it
// directly calls (spec §3 "Call graph").
type CallGraph map[string]map[string]struct{}

// BuildCallGraph scans every refined function's call/call_indirect sites.
// call_indirect callees are approximated by every function sharing the
// target type signature recorded in the analyzer's element segments —
// exact callee identity at a call_indirect site isn't knowable until a
// table index is concretized, which only the exploration driver can do.
func BuildCallGraph(funcs map[string]*Function, analyzer *wasmmod.Analyzer) CallGraph {
	cg := make(CallGraph, len(funcs))
	for name, f := range funcs {
		callees := make(map[string]struct{})
		for _, b := range f.Blocks {
			for _, instr := range b.Instructions {
				switch instr.Op {
				case wasmmod.Call:
					if proto, ok := analyzer.Func(instr.Imm.FuncIndex); ok {
						callees[proto.Name] = struct{}{}
					}
				case wasmmod.CallIndirect:
					for _, el := range analyzer.Elements {
						for _, idx := range el.FuncIndices {
							if proto, ok := analyzer.Func(idx); ok && proto.TypeIndex == instr.Imm.TypeIndex {
								callees[proto.Name] = struct{}{}
							}
						}
					}
				}
			}
		}
		cg[name] = callees
	}
	return cg
}

// Refine splits every block of f so that a call or call_indirect instruction
// only ever appears as a block's last instruction, per spec §4.4's control
// handler contract and the CFG-refinement invariant in spec §8. The
// original's every outgoing edge is re-rooted at the final split piece,
// satisfying "every original edge out of a split block originates from the
// final split" (spec §8).
func Refine(f *Function) *Function {
	newBlocks := make(map[string]*BasicBlock, len(f.Blocks))
	var newEdges []Edge
	finalName := make(map[string]string, len(f.Blocks))

	for name, b := range f.Blocks {
		pieces := splitAtCalls(b)
		for _, p := range pieces {
			newBlocks[p.Name] = p
		}
		for i := 1; i < len(pieces); i++ {
			newEdges = append(newEdges, Edge{From: pieces[i-1].Name, To: pieces[i].Name, Kind: Fallthrough})
		}
		finalName[name] = pieces[len(pieces)-1].Name
	}

	for _, e := range f.Edges {
		from, ok := finalName[e.From]
		if !ok {
			from = e.From
		}
		newEdges = append(newEdges, Edge{From: from, To: e.To, Kind: e.Kind})
	}

	entry := f.Entry
	if mapped, ok := finalName[f.Entry]; ok {
		// entry block itself is never split away from its own name's first
		// piece: the first piece keeps the original name, so entry stays
		// valid as-is. mapped is only used to silence unused-var checks
		// when entry has no outgoing split (harmless no-op otherwise).
		_ = mapped
	}
	return NewFunction(f.Name, f.Index, entry, newBlocks, newEdges)
}

// splitAtCalls returns b unchanged (as a one-element slice) if no interior
// instruction is a call; otherwise it returns the ordered list of split
// pieces, each a fresh *BasicBlock ending either with a call or being the
// final tail piece.
func splitAtCalls(b *BasicBlock) []*BasicBlock {
	callAt := -1
	for i, instr := range b.Instructions[:max(0, len(b.Instructions)-1)] {
		if instr.Op == wasmmod.Call || instr.Op == wasmmod.CallIndirect {
			callAt = i
			break
		}
	}
	if callAt == -1 {
		return []*BasicBlock{b}
	}

	head := &BasicBlock{
		Name:         b.Name,
		StartOffset:  b.StartOffset,
		EndOffset:    b.Instructions[callAt].Offset,
		StartInstr:   b.StartInstr,
		EndInstr:     b.StartInstr + callAt + 1,
		Instructions: b.Instructions[:callAt+1],
	}
	rest := &BasicBlock{
		Name:         fmt.Sprintf("%s#split%d", b.Name, callAt),
		StartOffset:  b.Instructions[callAt+1].Offset,
		EndOffset:    b.EndOffset,
		StartInstr:   b.StartInstr + callAt + 1,
		EndInstr:     b.EndInstr,
		Instructions: b.Instructions[callAt+1:],
	}
	return append([]*BasicBlock{head}, splitAtCalls(rest)...)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
