// Package report builds the one-JSON-record-per-terminal-state output
// format (spec §6 "Output"): {Solution, Return, Status, Output}. Grounded
// on spec.md §6/§8 directly — no teacher precedent, since wazero's CLI
// prints a single concrete result rather than a population of symbolic
// terminal states — using encoding/json for the marshal step, matching
// every pack example that emits a structured result record.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/state"
)

// OutputEntry is one captured write to fd 1 or 2 (spec §6 "Output is the
// captured contents of fds 1 and 2").
type OutputEntry struct {
	FD     uint32 `json:"fd"`
	Output string `json:"output"`
}

// Record is one terminal state's report (spec §6's JSON shape).
type Record struct {
	Solution map[string]interface{} `json:"Solution"`
	Return   string                 `json:"Return"`
	Status   string                 `json:"Status"`
	Output   []OutputEntry          `json:"Output"`
}

// Build solves st's path constraints and assembles its Record. ok is false
// only when the constraint conjunction turned out unsat at report time (a
// solver-failure edge case spec §7 treats as a warning, not a fatal error);
// the caller still gets a Record with an empty Solution in that case.
func Build(facade *smt.Facade, st *state.State) (Record, bool) {
	model, sat := facade.Sat(st.Constraints.All())

	rec := Record{
		Solution: decodeSolution(facade, model, sat),
		Return:   decodeReturn(facade, model, sat, st),
		Status:   statusString(st),
		Output:   decodeOutput(st),
	}
	return rec, sat
}

// decodeSolution walks every fresh symbol the façade has ever allocated and
// evaluates it under model, decoding bitvectors as integers or, when the
// width is a whole number of bytes and every byte is printable, as UTF-8
// (spec §6 "bitvectors as integers or UTF-8 when plausible"). Symbols not
// fixed by this particular path's constraints still get *a* value from the
// model (the solver is free to pick one), which is the documented behavior
// of a satisfying assignment.
func decodeSolution(facade *smt.Facade, model *smt.Model, sat bool) map[string]interface{} {
	out := make(map[string]interface{})
	if !sat || model == nil {
		return out
	}
	names := make([]string, 0, len(facade.Symbols()))
	for name := range facade.Symbols() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		expr := facade.Symbols()[name]
		v, ok := model.Eval(expr)
		if !ok {
			continue
		}
		out[name] = decodeValue(v, expr.Width())
	}
	return out
}

// decodeValue renders one concrete 64-bit pattern as either a plain integer
// or, when its declared width packs into whole printable bytes, a string.
func decodeValue(v uint64, width int) interface{} {
	if width%8 == 0 && width > 0 && width <= 64 {
		n := width / 8
		bytes := make([]byte, n)
		for i := 0; i < n; i++ {
			bytes[i] = byte(v >> uint(8*i))
		}
		if n > 1 && utf8.Valid(bytes) && printable(bytes) {
			return string(bytes)
		}
	}
	return v
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// decodeReturn renders a Returned state's result values (left on the stack
// by doReturn when no caller remains) as a single string; other statuses
// have no return value.
func decodeReturn(facade *smt.Facade, model *smt.Model, sat bool, st *state.State) string {
	if st.Status != state.StatusReturned || st.Stack.Len() == 0 {
		return ""
	}
	top := st.Stack.Peek(0)
	if !sat || model == nil {
		return ""
	}
	v, ok := model.Eval(top.Expr)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%v", decodeValue(v, top.Width()))
}

// statusString renders st.Status per spec §6/§8's label conventions: an
// exit carries its code ("Exit with status code k", per spec §8 "Exit code
// consistency"), a trap carries its reason, everything else is the bare
// status name.
func statusString(st *state.State) string {
	switch st.Status {
	case state.StatusExited:
		return fmt.Sprintf("Exit with status code %d", st.ExitCode)
	case state.StatusTrapped:
		if st.TrapReason != "" {
			return fmt.Sprintf("trap: %s", st.TrapReason)
		}
		return "trap"
	default:
		return st.Status.String()
	}
}

// decodeOutput aggregates every captured write per descriptor into one
// entry each, in first-seen order (spec §6 "Output is the captured
// contents of fds 1 and 2" — the whole content of each descriptor, not a
// raw per-write log).
func decodeOutput(st *state.State) []OutputEntry {
	var order []uint32
	byFD := make(map[uint32][]byte)
	for _, chunk := range st.Output.All() {
		if chunk.FD != 1 && chunk.FD != 2 {
			continue
		}
		if _, seen := byFD[chunk.FD]; !seen {
			order = append(order, chunk.FD)
		}
		byFD[chunk.FD] = append(byFD[chunk.FD], chunk.Data...)
	}
	out := make([]OutputEntry, 0, len(order))
	for _, fd := range order {
		out = append(out, OutputEntry{FD: fd, Output: string(byFD[fd])})
	}
	return out
}

// Marshal renders rec as the one-line JSON object spec §6 names.
func Marshal(rec Record) ([]byte, error) {
	return json.Marshal(rec)
}
