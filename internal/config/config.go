// Package config defines the engine-wide configuration surface (spec §6
// "Configuration (consumed)") as a plain value threaded into the driver at
// construction, per the "Global singleton configuration" Design Note —
// never a package-level singleton.
package config

import (
	"flag"
	"fmt"

	"github.com/symwasm/symwasm/internal/state"
)

// Order picks the exploration driver's worklist discipline (spec §4.6).
type Order int

const (
	OrderDepthFirst Order = iota
	OrderBreadthFirst
)

// Budgets bounds exploration per spec §4.4/§4.6/§6.
type Budgets struct {
	StepCount        int // total instructions executed, per path
	CallDepth        int // nested call depth, per path
	WallTimeSeconds  int // global wall-clock budget
	EnumerationLimit int // bounded fanout for br_table / call_indirect / address concretization
}

// DefaultBudgets matches the teacher's own conservative defaults for
// bounding otherwise-unbounded exploration (spec's Non-goals: "does not
// guarantee termination on unbounded loops — it relies on configurable
// bounds").
func DefaultBudgets() Budgets {
	return Budgets{
		StepCount:        1_000_000,
		CallDepth:        1_000,
		WallTimeSeconds:  300,
		EnumerationLimit: 32,
	}
}

// FDConfig seeds one pre-opened file descriptor (spec §6 "file descriptor
// list with initial contents").
type FDConfig struct {
	FD      uint32
	Name    string
	Flag    state.FileFlag
	Content []byte
}

// Context is the engine's full configuration surface — every named scalar
// in spec §6, gathered into one value instead of package-level globals.
type Context struct {
	EntryFunctionName string
	FuncIndexToName   map[uint32]string

	SymArgCount int
	SymArgLen   int

	// HeapBase seeds the libc malloc model's bump allocator
	// (internal/hostfunc); it has no connection to the module's actual
	// data/heap layout since that lives in the consumed module analyzer,
	// so a conservatively high default keeps it clear of typical data
	// segments in hand-built test fixtures.
	HeapBase uint32

	FDs []FDConfig

	SourceLanguageHint string
	VerboseLevel       int
	ConcreteGlobals    bool
	CoverageEnabled    bool
	SolverBackend      string

	Budgets      Budgets
	BreadthFirst bool
}

// ExplorationOrder derives the worklist discipline from BreadthFirst.
func (c *Context) ExplorationOrder() Order {
	if c.BreadthFirst {
		return OrderBreadthFirst
	}
	return OrderDepthFirst
}

// Default returns a Context suitable for library/test callers that don't
// go through the CLI.
func Default() *Context {
	return &Context{
		EntryFunctionName: "main",
		FuncIndexToName:   map[uint32]string{},
		SymArgCount:       0,
		SymArgLen:         8,
		HeapBase:          0x10_0000,
		SolverBackend:     "z3",
		Budgets:           DefaultBudgets(),
	}
}

// FromFlags registers this Context's fields onto flags and returns it,
// mirroring cmd/wazero/wazero.go's per-subcommand *flag.FlagSet pattern:
// the caller calls flags.Parse, then reads back the populated Context.
func FromFlags(flags *flag.FlagSet) *Context {
	c := Default()
	flags.StringVar(&c.EntryFunctionName, "entry", c.EntryFunctionName, "entry function name")
	flags.IntVar(&c.SymArgCount, "sym-args", c.SymArgCount, "number of symbolic argv entries after argv[0]")
	flags.IntVar(&c.SymArgLen, "sym-arg-len", c.SymArgLen, "byte length of each symbolic argv entry")
	flags.Func("heap-base", "initial malloc bump-allocator address (default 0x100000)", func(s string) error {
		var v uint32
		if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
			if _, err2 := fmt.Sscanf(s, "%d", &v); err2 != nil {
				return fmt.Errorf("config: invalid -heap-base value %q: %w", s, err)
			}
		}
		c.HeapBase = v
		return nil
	})
	flags.StringVar(&c.SourceLanguageHint, "lang", c.SourceLanguageHint, "source language hint (c, rust, ...)")
	flags.IntVar(&c.VerboseLevel, "v", c.VerboseLevel, "verbosity level")
	flags.BoolVar(&c.ConcreteGlobals, "concrete-globals", c.ConcreteGlobals, "force concrete initialization of every global")
	flags.BoolVar(&c.CoverageEnabled, "coverage", c.CoverageEnabled, "write coverage reports")
	flags.StringVar(&c.SolverBackend, "solver", c.SolverBackend, "SMT solver backend")
	flags.IntVar(&c.Budgets.StepCount, "budget-steps", c.Budgets.StepCount, "max instructions executed per path")
	flags.IntVar(&c.Budgets.CallDepth, "budget-call-depth", c.Budgets.CallDepth, "max nested call depth per path")
	flags.IntVar(&c.Budgets.WallTimeSeconds, "budget-wall-seconds", c.Budgets.WallTimeSeconds, "global wall-clock budget in seconds")
	flags.IntVar(&c.Budgets.EnumerationLimit, "budget-enum", c.Budgets.EnumerationLimit, "bounded fanout for symbolic branch/address enumeration")
	flags.BoolVar(&c.BreadthFirst, "breadth-first", false, "explore breadth-first instead of depth-first")
	flags.Func("fd", "preopen fd:name (repeatable)", func(s string) error {
		var fd uint32
		var name string
		if _, err := fmt.Sscanf(s, "%d:%s", &fd, &name); err != nil {
			return fmt.Errorf("config: invalid -fd value %q: %w", s, err)
		}
		c.FDs = append(c.FDs, FDConfig{FD: fd, Name: name, Flag: state.FlagRead})
		return nil
	})
	return c
}
