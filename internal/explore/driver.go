// Package explore implements the exploration driver (spec §4.6): a
// worklist of VM states, expanded one instruction at a time through
// internal/dispatch, following depth-first or breadth-first discipline per
// config.Context.ExplorationOrder, until every path reaches a terminal
// state or a configured budget cuts it short. Grounded on the teacher's
// own top-level run loop shape (cmd/wazero/wazero.go's doMain step loop)
// generalized from "run one module to completion" to "run every feasible
// path to completion".
package explore

import (
	"context"
	"time"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/config"
	"github.com/symwasm/symwasm/internal/dispatch"
	"github.com/symwasm/symwasm/internal/hostfunc"
	"github.com/symwasm/symwasm/internal/logging"
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// Driver owns the worklist and the shared, read-only module context every
// state dispatches against.
type Driver struct {
	Table     *dispatch.Table
	Functions map[string]*cfg.Function
	Analyzer  *wasmmod.Analyzer
	Config    *config.Context
	Facade    *smt.Facade
	Log       *logging.Logger

	worklist []*state.State
	deadline time.Time
}

// NewDriver builds a Driver and the fixed dispatch table it runs against.
func NewDriver(analyzer *wasmmod.Analyzer, functions map[string]*cfg.Function, cfgCtx *config.Context, facade *smt.Facade, log *logging.Logger, observers ...dispatch.Observer) *Driver {
	ctx := &dispatch.Context{
		Analyzer:  analyzer,
		Functions: functions,
		Facade:    facade,
		Hosts:     hostfunc.NewStandardRegistry(),
		Config:    cfgCtx,
		Log:       log,
		Observers: observers,
	}
	return &Driver{
		Table:     dispatch.NewTable(ctx),
		Functions: functions,
		Analyzer:  analyzer,
		Config:    cfgCtx,
		Facade:    facade,
		Log:       log,
	}
}

// Run seeds the worklist with the entry function's initial state and
// drives every feasible path to completion, returning the terminal states
// (spec §4.6's Returned/Trapped/Exited/BudgetExhausted outcomes) in the
// order they finished. ctx carries the wall-clock cancellation (the Go
// stdlib context, distinct from config.Context's engine configuration,
// mirroring the teacher's own split between call-scoped context.Context
// and module-scoped config): a canceled ctx drains the worklist as
// budget-exhausted the same as an expired deadline.
func (d *Driver) Run(ctx context.Context, initial *state.State) []*state.State {
	d.deadline = time.Now().Add(time.Duration(d.Config.Budgets.WallTimeSeconds) * time.Second)
	d.worklist = []*state.State{initial}

	var terminal []*state.State
	for len(d.worklist) > 0 {
		st := d.pop()
		if ctx.Err() != nil || d.overBudget(st) {
			st.Status = state.StatusBudgetExhausted
			terminal = append(terminal, st)
			continue
		}
		next := d.step(st)
		for _, ns := range next {
			if ns.Status.Terminal() {
				terminal = append(terminal, ns)
				continue
			}
			d.push(ns)
		}
	}
	return terminal
}

// pop removes and returns the next state to run, per the configured
// exploration order: depth-first pops the most recently pushed state
// (LIFO, a plain stack), breadth-first pops the oldest (FIFO, a queue).
func (d *Driver) pop() *state.State {
	last := len(d.worklist) - 1
	switch d.Config.ExplorationOrder() {
	case config.OrderBreadthFirst:
		st := d.worklist[0]
		d.worklist = d.worklist[1:]
		return st
	default:
		st := d.worklist[last]
		d.worklist = d.worklist[:last]
		return st
	}
}

func (d *Driver) push(st *state.State) {
	d.worklist = append(d.worklist, st)
}

// overBudget checks the path-local step/call-depth budgets and the
// driver-global wall-clock budget (spec §4.4, §4.6, §6).
func (d *Driver) overBudget(st *state.State) bool {
	if st.StepCount >= d.Config.Budgets.StepCount {
		return true
	}
	if len(st.CallFrames) >= d.Config.Budgets.CallDepth {
		return true
	}
	if d.Config.Budgets.WallTimeSeconds > 0 && time.Now().After(d.deadline) {
		return true
	}
	return false
}

// step dispatches st's current instruction once, returning the resulting
// successor state(s) — exactly one, st itself, when the handler continued
// in place (spec §9's "nil means continue in place" contract), or several
// when it forked.
func (d *Driver) step(st *state.State) []*state.State {
	block := d.Functions[st.CurrentFunc].Blocks[st.CurrentBlock]
	instr := block.Instructions[st.CurrentInstr]
	st.StepCount++

	successors, err := d.Table.Dispatch(st, instr)
	if err != nil {
		st.Status = state.StatusTrapped
		st.TrapReason = err.Error()
		return []*state.State{st}
	}
	if successors == nil {
		return []*state.State{st}
	}
	return successors
}
