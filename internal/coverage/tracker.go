// Package coverage implements the per-instruction coverage tracker (spec
// §4.7): one bitmap per reachable function, updated by a dispatch.Observer
// hook, with a synchronous time-gated snapshot writer — there is no
// background goroutine (spec §5's "no background tasks other than the
// coverage reporter, which is a time-gated synchronous write at the end of
// any handler that updates coverage").
package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// Tracker is a dispatch.Observer: when coverage is enabled, its
// OnInstruction method is registered on the exploration run's
// dispatch.Context.Observers.
type Tracker struct {
	bitmaps map[string][]bool // func name -> covered[instruction index]

	snapshotPath string
	timelinePath string
	interval     time.Duration
	lastFlush    time.Time

	totalInstrs int
}

// NewTracker allocates one bitmap per reachable function, sized to its
// instruction count (spec §4.7 "allocate a per-instruction bitmap of size
// = instruction count"). snapshotPath is overwritten on every flush;
// timelinePath is appended to.
func NewTracker(analyzer *wasmmod.Analyzer, reachable map[uint32]bool, snapshotPath, timelinePath string) *Tracker {
	bitmaps := make(map[string][]bool, len(reachable))
	total := 0
	for idx := range reachable {
		proto, ok := analyzer.Func(idx)
		if !ok || proto.Imported {
			continue
		}
		bitmaps[proto.Name] = make([]bool, proto.NumInstrs)
		total += proto.NumInstrs
	}
	return &Tracker{
		bitmaps:      bitmaps,
		snapshotPath: snapshotPath,
		timelinePath: timelinePath,
		interval:     time.Second,
		totalInstrs:  total,
	}
}

// OnInstruction marks instr's natural offset covered within st's current
// function, then flushes if at least one second has elapsed since the
// last write (spec §4.7 "every second of wall time").
func (t *Tracker) OnInstruction(st *state.State, instr wasmmod.Instruction) {
	if bm, ok := t.bitmaps[st.CurrentFunc]; ok && instr.Offset >= 0 && instr.Offset < len(bm) {
		bm[instr.Offset] = true
	}
	if time.Since(t.lastFlush) >= t.interval {
		t.Flush()
	}
}

// MarkSubsumed marks every instruction of name and its transitive callees
// as covered at once (spec §4.7: "libc-model calls mark every instruction
// of the modeled function and its callees as covered at once, the model
// subsumes them") — used when a defined Wasm function is recognized as
// matching a modeled host function and its body is never actually
// dispatched.
func (t *Tracker) MarkSubsumed(name string, callGraph cfg.CallGraph) {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		if bm, ok := t.bitmaps[n]; ok {
			for i := range bm {
				bm[i] = true
			}
		}
		for callee := range callGraph[n] {
			walk(callee)
		}
	}
	walk(name)
}

// snapshot is the per-function coverage report shape written to
// snapshotPath (overwritten each tick).
type snapshot struct {
	GeneratedAt string                 `json:"generated_at"`
	Functions   map[string]funcCoverage `json:"functions"`
}

type funcCoverage struct {
	Covered int `json:"covered"`
	Total   int `json:"total"`
}

// Flush writes the current per-function snapshot (overwriting
// snapshotPath) and appends one summary line to timelinePath. Safe to call
// directly (e.g. a final flush at exploration end), not just from
// OnInstruction's time gate.
func (t *Tracker) Flush() {
	t.lastFlush = time.Now()
	snap := snapshot{
		GeneratedAt: t.lastFlush.UTC().Format(time.RFC3339),
		Functions:   make(map[string]funcCoverage, len(t.bitmaps)),
	}
	coveredTotal := 0
	for name, bm := range t.bitmaps {
		covered := 0
		for _, hit := range bm {
			if hit {
				covered++
			}
		}
		coveredTotal += covered
		snap.Functions[name] = funcCoverage{Covered: covered, Total: len(bm)}
	}

	if t.snapshotPath != "" {
		if data, err := json.MarshalIndent(snap, "", "  "); err == nil {
			_ = os.WriteFile(t.snapshotPath, data, 0o644)
		}
	}
	if t.timelinePath != "" {
		line := fmt.Sprintf("%s covered=%d total=%d\n", snap.GeneratedAt, coveredTotal, t.totalInstrs)
		f, err := os.OpenFile(t.timelinePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString(line)
			_ = f.Close()
		}
	}
}
