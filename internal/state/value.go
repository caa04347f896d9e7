// Package state implements the VM state aggregate (spec §3 "VMState"): the
// symbolic stack, locals, globals, symbolic memory, file descriptor table,
// argv, and constraint list an exploration path carries, plus Fork, the
// operation that produces two disjointly-owned states per spec §8's
// isolation property.
package state

import (
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// Value is a symbolic value (spec §3): always an *smt.Expr plus the
// wasmmod.ValueType it was produced as, so handlers can tell an i32 from an
// f32 of the same bit width without re-deriving it from the Expr's sort.
type Value struct {
	Type ValueType
	Expr *smt.Expr
}

// ValueType mirrors wasmmod.ValueType; kept distinct so this package's
// public surface doesn't force every caller to import wasmmod just to name
// a value's type.
type ValueType = wasmmod.ValueType

// BitWidth mixing is a programming error (spec §3 "Symbolic value"); Width
// lets arithmetic handlers assert operands agree before calling the façade.
func (v Value) Width() int { return v.Type.BitWidth() }

func mustSameWidth(a, b Value) {
	if a.Width() != b.Width() {
		panic("state: mismatched operand bit widths")
	}
}
