package state

import (
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// Globals is the dense global-variable vector (spec §3 "Globals"). Each
// state owns its own Globals (a global mutation on one path must not leak
// to a sibling path), materialized once at exploration start.
type Globals struct {
	values []Value
	owned  bool
}

// MaterializeGlobals builds the initial Globals vector per spec §3: a
// global is a concrete value from the module when the entry function is
// exported (an external caller could not have mutated it before entry), or
// a fresh symbol otherwise — unless forceConcrete overrides this
// unconditionally (the "concrete-globals flag" in spec §6).
func MaterializeGlobals(facade *smt.Facade, globals []wasmmod.Global, entryIsExported bool, forceConcrete bool) *Globals {
	values := make([]Value, len(globals))
	for i, g := range globals {
		concrete := forceConcrete || entryIsExported
		if concrete {
			values[i] = Value{Type: g.Type, Expr: bitsToConst(facade, g)}
		} else {
			name := "global"
			if g.Type.IsFloat() {
				values[i] = Value{Type: g.Type, Expr: facade.FreshFP(name, g.Type.BitWidth())}
			} else {
				values[i] = Value{Type: g.Type, Expr: facade.FreshBV(name, g.Type.BitWidth())}
			}
		}
	}
	return &Globals{values: values, owned: true}
}

func bitsToConst(facade *smt.Facade, g wasmmod.Global) *smt.Expr {
	if g.Type.IsFloat() {
		return facade.FPConst(bitsToFloat(g.Init, g.Type), g.Type.BitWidth())
	}
	return facade.BVConst(g.Init, g.Type.BitWidth())
}

func bitsToFloat(bits uint64, t wasmmod.ValueType) float64 {
	if t.BitWidth() == 32 {
		return float64(float32FromBits(uint32(bits)))
	}
	return float64FromBits(bits)
}

func (g *Globals) Fork() *Globals {
	return &Globals{values: g.values, owned: false}
}

func (g *Globals) ensureOwned() {
	if g.owned {
		return
	}
	cp := make([]Value, len(g.values))
	copy(cp, g.values)
	g.values = cp
	g.owned = true
}

func (g *Globals) Get(index uint32) Value {
	return g.values[index]
}

func (g *Globals) Set(index uint32, v Value) {
	g.ensureOwned()
	g.values[index] = v
}

func (g *Globals) Len() int { return len(g.values) }
