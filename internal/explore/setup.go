package explore

import (
	"fmt"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/config"
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/symmem"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// NewInitialState materializes the entry function's starting VM state
// (spec §3): fresh symbolic parameters, zero-valued declared locals,
// module globals (concrete if the entry is exported or -concrete-globals
// was set, fresh symbols otherwise), the data-backed memory store, the
// configured file-descriptor table, and materialized argv.
func NewInitialState(analyzer *wasmmod.Analyzer, functions map[string]*cfg.Function, cfgCtx *config.Context, facade *smt.Facade) (*state.State, error) {
	entryIndex, proto, ok := findFunc(analyzer, cfgCtx.EntryFunctionName)
	if !ok {
		return nil, fmt.Errorf("explore: entry function %q not found", cfgCtx.EntryFunctionName)
	}
	fn, ok := functions[proto.Name]
	if !ok {
		return nil, fmt.Errorf("explore: no CFG for entry function %q", proto.Name)
	}

	locals := entryLocals(facade, proto)
	globals := state.MaterializeGlobals(facade, analyzer.Globals, analyzer.FuncIsExported(entryIndex), cfgCtx.ConcreteGlobals)
	memory := symmem.NewStore(facade, analyzer.Datas)
	files := state.NewFiles(configuredFiles(cfgCtx))
	argv := state.MaterializeArgv(facade, "main", cfgCtx.SymArgCount, cfgCtx.SymArgLen)

	return state.NewState(locals, globals, memory, files, argv, proto.Name, fn.Entry, analyzer.InitialMemoryPages, cfgCtx.HeapBase), nil
}

func findFunc(analyzer *wasmmod.Analyzer, name string) (uint32, wasmmod.FuncPrototype, bool) {
	for i, p := range analyzer.FuncPrototypes {
		if p.Name == name {
			return uint32(i), p, true
		}
	}
	return 0, wasmmod.FuncPrototype{}, false
}

// entryLocals builds the entry function's initial locals: one fresh
// symbolic value per parameter (an external caller's argument is unknown,
// spec §3 "Locals"), followed by zero-valued declared locals.
func entryLocals(facade *smt.Facade, proto wasmmod.FuncPrototype) *state.Locals {
	values := make([]state.Value, 0, len(proto.ParamTypes)+len(proto.LocalTypes))
	for _, t := range proto.ParamTypes {
		if t.IsFloat() {
			values = append(values, state.Value{Type: t, Expr: facade.FreshFP("param", t.BitWidth())})
		} else {
			values = append(values, state.Value{Type: t, Expr: facade.FreshBV("param", t.BitWidth())})
		}
	}
	for _, t := range proto.LocalTypes {
		if t.IsFloat() {
			values = append(values, state.Value{Type: t, Expr: facade.FPConst(0, t.BitWidth())})
		} else {
			values = append(values, state.Value{Type: t, Expr: facade.BVConst(0, t.BitWidth())})
		}
	}
	return state.NewLocals(values)
}

func configuredFiles(cfgCtx *config.Context) map[uint32]*state.File {
	extra := make(map[uint32]*state.File, len(cfgCtx.FDs))
	for _, fd := range cfgCtx.FDs {
		extra[fd.FD] = &state.File{Name: fd.Name, Status: state.StatusOpen, Flag: fd.Flag, Content: fd.Content}
	}
	return extra
}
