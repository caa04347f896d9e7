package coverage_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/coverage"
	"github.com/symwasm/symwasm/internal/state"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func newTrackerFixture(t *testing.T) (*coverage.Tracker, string, string) {
	t.Helper()
	analyzer := wasmmod.NewAnalyzer(nil, nil, nil, nil, []wasmmod.FuncPrototype{
		{Name: "main", NumInstrs: 3},
		{Name: "helper", NumInstrs: 2},
		{Name: "imported", Imported: true, NumInstrs: 0},
	}, nil, 1)
	reachable := map[uint32]bool{0: true, 1: true, 2: true}
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")
	timeline := filepath.Join(dir, "timeline.log")
	return coverage.NewTracker(analyzer, reachable, snap, timeline), snap, timeline
}

// OnInstruction marks the executed offset covered within the current
// function's bitmap and leaves every other function untouched.
func TestOnInstructionMarksOnlyExecutedOffset(t *testing.T) {
	tr, snap, _ := newTrackerFixture(t)
	st := &state.State{CurrentFunc: "main"}

	tr.OnInstruction(st, wasmmod.Instruction{Offset: 1})
	tr.Flush()

	data, err := os.ReadFile(snap)
	require.NoError(t, err)
	var got struct {
		Functions map[string]struct {
			Covered int `json:"covered"`
			Total   int `json:"total"`
		} `json:"functions"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, 1, got.Functions["main"].Covered)
	require.Equal(t, 3, got.Functions["main"].Total)
	require.Equal(t, 0, got.Functions["helper"].Covered)
}

// An imported function's prototype is skipped entirely at construction, so
// OnInstruction on it is a silent no-op rather than an out-of-range panic.
func TestOnInstructionIgnoresUnknownFunction(t *testing.T) {
	tr, _, _ := newTrackerFixture(t)
	st := &state.State{CurrentFunc: "imported"}
	require.NotPanics(t, func() {
		tr.OnInstruction(st, wasmmod.Instruction{Offset: 0})
	})
}

// MarkSubsumed marks every instruction of the named function and its
// transitive callees covered at once (spec §4.7's libc-model subsumption).
func TestMarkSubsumedCoversCallGraphTransitively(t *testing.T) {
	tr, snap, _ := newTrackerFixture(t)
	callGraph := cfg.CallGraph{
		"main":   {"helper": struct{}{}},
		"helper": {},
	}

	tr.MarkSubsumed("main", callGraph)
	tr.Flush()

	data, err := os.ReadFile(snap)
	require.NoError(t, err)
	var got struct {
		Functions map[string]struct {
			Covered int `json:"covered"`
			Total   int `json:"total"`
		} `json:"functions"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, 3, got.Functions["main"].Covered)
	require.Equal(t, 2, got.Functions["helper"].Covered)
}

// Flush appends one line to the timeline log per call, in addition to
// overwriting the snapshot file.
func TestFlushAppendsTimelineLine(t *testing.T) {
	tr, _, timeline := newTrackerFixture(t)
	tr.Flush()
	tr.Flush()

	data, err := os.ReadFile(timeline)
	require.NoError(t, err)
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	require.Equal(t, 2, lines)
}
