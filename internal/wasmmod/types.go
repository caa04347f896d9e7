// Package wasmmod defines the module-analyzer surface this engine consumes.
//
// Parsing a .wasm binary into these types is out of scope for this core
// (see spec §1): a binary decoder, wherever it lives, is expected to
// populate an *Analyzer. This package only carries the data contract.
package wasmmod

import "fmt"

// ValueType is a Wasm value type tag, using the encoded byte values from the
// binary format so a decoder can assign them directly.
type ValueType byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
)

// BitWidth returns the bit width an SMT sort for this type needs.
func (v ValueType) BitWidth() int {
	switch v {
	case ValueTypeI32, ValueTypeF32:
		return 32
	case ValueTypeI64, ValueTypeF64:
		return 64
	default:
		panic(fmt.Sprintf("wasmmod: unknown value type %#x", byte(v)))
	}
}

// IsFloat reports whether v is one of the two float types.
func (v ValueType) IsFloat() bool {
	return v == ValueTypeF32 || v == ValueTypeF64
}

func (v ValueType) String() string {
	switch v {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return fmt.Sprintf("unknown(%#x)", byte(v))
	}
}

// ExternKind classifies an export, matching the Wasm external-kind byte.
type ExternKind byte

const (
	ExternKindFunc ExternKind = iota
	ExternKindTable
	ExternKindMemory
	ExternKindGlobal
)

// FunctionType is a Wasm function signature.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Export names an item visible to an external caller of the module. When
// the entry function is exported, globals start from their concrete
// initial values rather than fresh symbols (spec §3 "Globals").
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// Data is one entry of the module's data section: a byte run materialized
// at a fixed linear-memory offset when the module is instantiated.
type Data struct {
	Offset uint32
	Size   uint32
	Data   []byte
}

// Global describes one module-level global, concrete initial value included
// (its bit pattern, reinterpreted per Type when the value is a float).
type Global struct {
	Type    ValueType
	Mutable bool
	Init    uint64
}

// ElementSegment populates a table with function indices at instantiation.
type ElementSegment struct {
	TableIndex  uint32
	Offset      uint32
	FuncIndices []uint32
}

// FuncPrototype is the signature and provenance of one function index.
type FuncPrototype struct {
	Name          string
	ParamTypes    []ValueType
	ResultTypes   []ValueType
	TypeIndex     uint32
	Imported      bool
	ImportModule  string
	ImportField   string
	NumLocals     int // declared (non-parameter) locals, always zero-valued
	LocalTypes    []ValueType
	NumInstrs     int // length of the function's flattened instruction list
}

// Analyzer is the read-only view this core consumes. It is shared by
// reference across every forked state (spec §5 "Shared resource policy").
type Analyzer struct {
	Exports        []Export
	Datas          []Data
	Globals        []Global
	Elements       []ElementSegment
	FuncPrototypes []FuncPrototype
	Types          []FunctionType

	// InitialMemoryPages is the module's declared linear-memory size at
	// instantiation, in 64KiB pages (spec §3 "Linear memory"); the
	// exploration driver seeds every initial State.MemoryPages from this.
	InitialMemoryPages uint32

	exportsByName map[string]Export
	exportedFuncs map[uint32]bool
}

// NewAnalyzer builds the lookup indices over the given module data. Callers
// (a binary-format decoder, or a test building a fixture by hand) construct
// the slices directly and hand them here.
func NewAnalyzer(exports []Export, datas []Data, globals []Global, elements []ElementSegment, protos []FuncPrototype, types []FunctionType, initialMemoryPages uint32) *Analyzer {
	a := &Analyzer{
		Exports:            exports,
		Datas:              datas,
		Globals:            globals,
		Elements:           elements,
		FuncPrototypes:     protos,
		Types:              types,
		InitialMemoryPages: initialMemoryPages,
		exportsByName:      make(map[string]Export, len(exports)),
		exportedFuncs:      make(map[uint32]bool),
	}
	for _, e := range exports {
		a.exportsByName[e.Name] = e
		if e.Kind == ExternKindFunc {
			a.exportedFuncs[e.Index] = true
		}
	}
	return a
}

// Func returns the prototype of the function at index.
func (a *Analyzer) Func(index uint32) (FuncPrototype, bool) {
	if int(index) >= len(a.FuncPrototypes) {
		return FuncPrototype{}, false
	}
	return a.FuncPrototypes[index], true
}

// Export looks up an export by name.
func (a *Analyzer) Export(name string) (Export, bool) {
	e, ok := a.exportsByName[name]
	return e, ok
}

// FuncIsExported reports whether index is reachable as a named export,
// which is the signal spec §3 "Globals" uses to decide whether globals
// start concrete (exported entry) or as fresh symbols.
func (a *Analyzer) FuncIsExported(index uint32) bool {
	return a.exportedFuncs[index]
}

// ReachableFuncIndices returns the set of every function index reachable
// from entryIndex via the call graph, plus every function referenced by an
// element segment (since call_indirect may reach them). Used by the
// coverage tracker (spec §4.7) to size its bitmaps up front.
func (a *Analyzer) ReachableFuncIndices(entryIndex uint32, callGraph map[string]map[string]struct{}) map[uint32]bool {
	reached := make(map[uint32]bool)
	var walk func(name string)
	byName := make(map[string]uint32, len(a.FuncPrototypes))
	for i, p := range a.FuncPrototypes {
		byName[p.Name] = uint32(i)
	}
	walk = func(name string) {
		idx, ok := byName[name]
		if !ok || reached[idx] {
			return
		}
		reached[idx] = true
		for callee := range callGraph[name] {
			walk(callee)
		}
	}
	if entry, ok := a.Func(entryIndex); ok {
		walk(entry.Name)
	}
	for _, el := range a.Elements {
		for _, idx := range el.FuncIndices {
			reached[idx] = true
		}
	}
	return reached
}
