package wasmmod

// Opcode is a tagged enum over the instruction groups this core interprets.
// It is deliberately a flat Go constant set rather than the raw Wasm binary
// opcode byte so the dispatcher's table (internal/dispatch) can be a fixed
// array built once at load, per the "Dynamic instruction dispatch" Design
// Note: a compiler-checked exhaustive switch over this enum, not a
// group-name string lookup.
type Opcode uint16

// OpcodeGroup classifies an Opcode into the families spec §4.3 names.
type OpcodeGroup uint8

const (
	GroupControl OpcodeGroup = iota
	GroupConstant
	GroupVariable
	GroupParametric
	GroupMemory
	GroupArithmetic
	GroupBitwise
	GroupLogical
	GroupConversion
)

func (g OpcodeGroup) String() string {
	switch g {
	case GroupControl:
		return "control"
	case GroupConstant:
		return "constant"
	case GroupVariable:
		return "variable"
	case GroupParametric:
		return "parametric"
	case GroupMemory:
		return "memory"
	case GroupArithmetic:
		return "arithmetic"
	case GroupBitwise:
		return "bitwise"
	case GroupLogical:
		return "logical"
	case GroupConversion:
		return "conversion"
	default:
		return "unknown"
	}
}

const (
	Unreachable Opcode = iota
	Nop
	Block
	Loop
	If
	Else
	End
	Br
	BrIf
	BrTable
	Return
	Call
	CallIndirect

	Drop
	Select

	LocalGet
	LocalSet
	LocalTee
	GlobalGet
	GlobalSet

	I32Load
	I64Load
	F32Load
	F64Load
	I32Load8S
	I32Load8U
	I32Load16S
	I32Load16U
	I64Load8S
	I64Load8U
	I64Load16S
	I64Load16U
	I64Load32S
	I64Load32U
	I32Store
	I64Store
	F32Store
	F64Store
	I32Store8
	I32Store16
	I64Store8
	I64Store16
	I64Store32
	MemorySize
	MemoryGrow

	I32Const
	I64Const
	F32Const
	F64Const

	I32Eqz
	I32Eq
	I32Ne
	I32LtS
	I32LtU
	I32GtS
	I32GtU
	I32LeS
	I32LeU
	I32GeS
	I32GeU
	I64Eqz
	I64Eq
	I64Ne
	I64LtS
	I64LtU
	I64GtS
	I64GtU
	I64LeS
	I64LeU
	I64GeS
	I64GeU
	F32Eq
	F32Ne
	F32Lt
	F32Gt
	F32Le
	F32Ge
	F64Eq
	F64Ne
	F64Lt
	F64Gt
	F64Le
	F64Ge

	I32Clz
	I32Ctz
	I32Popcnt
	I32Add
	I32Sub
	I32Mul
	I32DivS
	I32DivU
	I32RemS
	I32RemU
	I32And
	I32Or
	I32Xor
	I32Shl
	I32ShrS
	I32ShrU
	I32Rotl
	I32Rotr
	I64Clz
	I64Ctz
	I64Popcnt
	I64Add
	I64Sub
	I64Mul
	I64DivS
	I64DivU
	I64RemS
	I64RemU
	I64And
	I64Or
	I64Xor
	I64Shl
	I64ShrS
	I64ShrU
	I64Rotl
	I64Rotr

	F32Abs
	F32Neg
	F32Ceil
	F32Floor
	F32Trunc
	F32Nearest
	F32Sqrt
	F32Add
	F32Sub
	F32Mul
	F32Div
	F32Min
	F32Max
	F32Copysign
	F64Abs
	F64Neg
	F64Ceil
	F64Floor
	F64Trunc
	F64Nearest
	F64Sqrt
	F64Add
	F64Sub
	F64Mul
	F64Div
	F64Min
	F64Max
	F64Copysign

	I32WrapI64
	I32TruncF32S
	I32TruncF32U
	I32TruncF64S
	I32TruncF64U
	I64ExtendI32S
	I64ExtendI32U
	I64TruncF32S
	I64TruncF32U
	I64TruncF64S
	I64TruncF64U
	F32ConvertI32S
	F32ConvertI32U
	F32ConvertI64S
	F32ConvertI64U
	F32DemoteF64
	F64ConvertI32S
	F64ConvertI32U
	F64ConvertI64S
	F64ConvertI64U
	F64PromoteF32
	I32ReinterpretF32
	I64ReinterpretF64
	F32ReinterpretI32
	F64ReinterpretI64
	I32Extend8S
	I32Extend16S
	I64Extend8S
	I64Extend16S
	I64Extend32S
	I32TruncSatF32S
	I32TruncSatF32U
	I32TruncSatF64S
	I32TruncSatF64U
	I64TruncSatF32S
	I64TruncSatF32U
	I64TruncSatF64S
	I64TruncSatF64U
)

// groupOf is built once; see buildGroupTable below.
var groupOf = buildGroupTable()

// Group returns the OpcodeGroup an Opcode belongs to.
func (op Opcode) Group() OpcodeGroup {
	return groupOf[op]
}

func buildGroupTable() map[Opcode]OpcodeGroup {
	g := make(map[Opcode]OpcodeGroup, 256)
	set := func(group OpcodeGroup, ops ...Opcode) {
		for _, op := range ops {
			g[op] = group
		}
	}
	set(GroupControl, Unreachable, Nop, Block, Loop, If, Else, End, Br, BrIf, BrTable, Return, Call, CallIndirect)
	set(GroupConstant, I32Const, I64Const, F32Const, F64Const)
	set(GroupVariable, LocalGet, LocalSet, LocalTee, GlobalGet, GlobalSet)
	set(GroupParametric, Drop, Select)
	set(GroupMemory,
		I32Load, I64Load, F32Load, F64Load,
		I32Load8S, I32Load8U, I32Load16S, I32Load16U,
		I64Load8S, I64Load8U, I64Load16S, I64Load16U, I64Load32S, I64Load32U,
		I32Store, I64Store, F32Store, F64Store,
		I32Store8, I32Store16, I64Store8, I64Store16, I64Store32,
		MemorySize, MemoryGrow)
	set(GroupLogical,
		I32Eqz, I32Eq, I32Ne, I32LtS, I32LtU, I32GtS, I32GtU, I32LeS, I32LeU, I32GeS, I32GeU,
		I64Eqz, I64Eq, I64Ne, I64LtS, I64LtU, I64GtS, I64GtU, I64LeS, I64LeU, I64GeS, I64GeU,
		F32Eq, F32Ne, F32Lt, F32Gt, F32Le, F32Ge,
		F64Eq, F64Ne, F64Lt, F64Gt, F64Le, F64Ge)
	set(GroupBitwise,
		I32Clz, I32Ctz, I32Popcnt, I32And, I32Or, I32Xor, I32Shl, I32ShrS, I32ShrU, I32Rotl, I32Rotr,
		I64Clz, I64Ctz, I64Popcnt, I64And, I64Or, I64Xor, I64Shl, I64ShrS, I64ShrU, I64Rotl, I64Rotr)
	set(GroupArithmetic,
		I32Add, I32Sub, I32Mul, I32DivS, I32DivU, I32RemS, I32RemU,
		I64Add, I64Sub, I64Mul, I64DivS, I64DivU, I64RemS, I64RemU,
		F32Abs, F32Neg, F32Ceil, F32Floor, F32Trunc, F32Nearest, F32Sqrt, F32Add, F32Sub, F32Mul, F32Div, F32Min, F32Max, F32Copysign,
		F64Abs, F64Neg, F64Ceil, F64Floor, F64Trunc, F64Nearest, F64Sqrt, F64Add, F64Sub, F64Mul, F64Div, F64Min, F64Max, F64Copysign)
	set(GroupConversion,
		I32WrapI64, I32TruncF32S, I32TruncF32U, I32TruncF64S, I32TruncF64U,
		I64ExtendI32S, I64ExtendI32U, I64TruncF32S, I64TruncF32U, I64TruncF64S, I64TruncF64U,
		F32ConvertI32S, F32ConvertI32U, F32ConvertI64S, F32ConvertI64U, F32DemoteF64,
		F64ConvertI32S, F64ConvertI32U, F64ConvertI64S, F64ConvertI64U, F64PromoteF32,
		I32ReinterpretF32, I64ReinterpretF64, F32ReinterpretI32, F64ReinterpretI64,
		I32Extend8S, I32Extend16S, I64Extend8S, I64Extend16S, I64Extend32S,
		I32TruncSatF32S, I32TruncSatF32U, I32TruncSatF64S, I32TruncSatF64U,
		I64TruncSatF32S, I64TruncSatF32U, I64TruncSatF64S, I64TruncSatF64U)
	return g
}

// BlockType describes the arity of a structured-control block's result.
// Only single-value (or empty) result types are modeled; multi-value block
// types are not in scope (the original tool predates Wasm's multi-value
// proposal, and spec §3's "Symbolic stack" invariant is phrased in terms of
// a single block result type).
type BlockType struct {
	HasResult bool
	Result    ValueType
}

// Immediate carries every instruction's side-table data. Only the fields
// relevant to an instruction's Opcode are populated; the others are zero.
type Immediate struct {
	I32Val int32
	I64Val int64
	F32Val float32
	F64Val float64

	LocalIndex  uint32
	GlobalIndex uint32
	FuncIndex   uint32
	TypeIndex   uint32
	TableIndex  uint32

	MemAlign  uint32
	MemOffset uint32

	Block BlockType

	// BrTable: Labels are relative branch depths for each case, Default for
	// the fallback case.
	Labels  []uint32
	Default uint32

	// LabelIndex is the relative block depth br/br_if transfer to, and the
	// frame block/loop/if/else belong to (matched by the CFG at refine time
	// via block/end offsets, not carried symbolically here).
	LabelIndex uint32
}

// Instruction is one decoded instruction, positioned at Offset (its index
// within the owning function's flattened instruction list — the "natural
// offset" spec §4.7 keys coverage bitmaps by).
type Instruction struct {
	Offset int
	Op     Opcode
	Imm    Immediate
}

func (i Instruction) Group() OpcodeGroup { return i.Op.Group() }
