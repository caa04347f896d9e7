// Command symwasm runs symbolic exploration over a Wasm module and emits
// one JSON result record per terminal state, in the teacher's own
// cmd/wazero/wazero.go style: a thin doMain dispatching to per-subcommand
// *flag.FlagSet handlers, testable by calling doMain directly instead of
// through os.Args.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/config"
	"github.com/symwasm/symwasm/internal/coverage"
	"github.com/symwasm/symwasm/internal/dispatch"
	"github.com/symwasm/symwasm/internal/explore"
	"github.com/symwasm/symwasm/internal/logging"
	"github.com/symwasm/symwasm/internal/report"
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer) int {
	if len(os.Args) < 2 {
		printUsage(stdErr)
		return 1
	}
	switch os.Args[1] {
	case "run":
		return doRun(os.Args[2:], stdOut, stdErr)
	case "-h", "--help", "help":
		printUsage(stdOut)
		return 0
	default:
		fmt.Fprintf(stdErr, "unknown command %q\n", os.Args[1])
		printUsage(stdErr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: symwasm run [flags] <module.json>")
	fmt.Fprintln(w, "  module.json is a module description in the format internal/cfg/internal/wasmmod")
	fmt.Fprintln(w, "  expect from a decoder (see cmd/symwasm/modulefile.go)")
}

func doRun(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("run", flag.ExitOnError)
	flags.SetOutput(stdErr)
	cfgCtx := config.FromFlags(flags)
	snapshotPath := flags.String("coverage-snapshot", "coverage.snapshot.json", "per-function coverage snapshot output path")
	timelinePath := flags.String("coverage-timeline", "coverage.timeline.log", "append-only coverage timeline output path")
	_ = flags.Parse(args)

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to module.json")
		printUsage(stdErr)
		return 1
	}

	analyzer, functions, err := loadModule(flags.Arg(0))
	if err != nil {
		fmt.Fprintln(stdErr, err)
		return 1
	}

	facade, err := smt.NewFacade()
	if err != nil {
		fmt.Fprintln(stdErr, "building solver:", err)
		return 1
	}
	defer facade.Close()

	log := logging.New(stdErr, cfgCtx.VerboseLevel)

	var observers []dispatch.Observer
	var tracker *coverage.Tracker
	if cfgCtx.CoverageEnabled {
		callGraph := cfg.BuildCallGraph(functions, analyzer)
		entryIdx, ok := findEntryIndex(analyzer, cfgCtx.EntryFunctionName)
		if !ok {
			fmt.Fprintf(stdErr, "entry function %q not found\n", cfgCtx.EntryFunctionName)
			return 1
		}
		reachable := analyzer.ReachableFuncIndices(entryIdx, callGraph)
		tracker = coverage.NewTracker(analyzer, reachable, *snapshotPath, *timelinePath)
		observers = append(observers, tracker)
	}

	driver := explore.NewDriver(analyzer, functions, cfgCtx, facade, log, observers...)
	initial, err := explore.NewInitialState(analyzer, functions, cfgCtx, facade)
	if err != nil {
		fmt.Fprintln(stdErr, err)
		return 1
	}

	ctx := context.Background()
	if cfgCtx.Budgets.WallTimeSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfgCtx.Budgets.WallTimeSeconds)*time.Second)
		defer cancel()
	}

	terminal := driver.Run(ctx, initial)
	if tracker != nil {
		tracker.Flush()
	}

	w := bufio.NewWriter(stdOut)
	defer w.Flush()
	enc := json.NewEncoder(w)
	for _, st := range terminal {
		rec, _ := report.Build(facade, st)
		if err := enc.Encode(rec); err != nil {
			fmt.Fprintln(stdErr, "encoding result:", err)
			return 1
		}
	}
	return 0
}

// findEntryIndex scans the analyzer's function prototypes for name,
// mirroring internal/explore/setup.go's own entry lookup.
func findEntryIndex(analyzer *wasmmod.Analyzer, name string) (uint32, bool) {
	for i := uint32(0); ; i++ {
		proto, ok := analyzer.Func(i)
		if !ok {
			return 0, false
		}
		if proto.Name == name {
			return i, true
		}
	}
}
