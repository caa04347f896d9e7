package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// moduleFile is the on-disk JSON shape this CLI consumes in place of a
// binary .wasm decoder: parsing the binary format is an external
// collaborator this core doesn't implement (spec §1), so this file plays
// the role a real decoder's output would — it's assembled directly from
// wasmmod's and cfg's own exported types (spec §6 "assembled directly from
// those types... by a parser living outside this core, or by tests
// constructing fixtures directly"), field-for-field, so any future decoder
// only needs to serialize its Analyzer/Function values to this shape.
type moduleFile struct {
	Exports            []wasmmod.Export         `json:"exports"`
	Datas              []wasmmod.Data           `json:"datas"`
	Globals            []wasmmod.Global         `json:"globals"`
	Elements           []wasmmod.ElementSegment `json:"elements"`
	FuncPrototypes     []wasmmod.FuncPrototype  `json:"func_prototypes"`
	Types              []wasmmod.FunctionType   `json:"types"`
	InitialMemoryPages uint32                   `json:"initial_memory_pages"`
	Functions          []functionFile           `json:"functions"`
}

// functionFile mirrors cfg.Function's public fields; cfg.NewFunction builds
// the private edgesFrom index these fields don't carry.
type functionFile struct {
	Name   string                      `json:"name"`
	Index  uint32                      `json:"index"`
	Entry  string                      `json:"entry"`
	Blocks map[string]*cfg.BasicBlock  `json:"blocks"`
	Edges  []cfg.Edge                  `json:"edges"`
}

// loadModule reads path's JSON module description and builds the analyzer
// plus the refined per-function CFGs the driver runs against (cfg.Refine,
// spec §4.4's "CFG refinement" step, is applied here rather than expecting
// the input file to already be refined).
func loadModule(path string) (*wasmmod.Analyzer, map[string]*cfg.Function, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading module file: %w", err)
	}
	var mf moduleFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, nil, fmt.Errorf("decoding module file: %w", err)
	}

	analyzer := wasmmod.NewAnalyzer(mf.Exports, mf.Datas, mf.Globals, mf.Elements, mf.FuncPrototypes, mf.Types, mf.InitialMemoryPages)

	functions := make(map[string]*cfg.Function, len(mf.Functions))
	for _, ff := range mf.Functions {
		fn := cfg.NewFunction(ff.Name, ff.Index, ff.Entry, ff.Blocks, ff.Edges)
		functions[ff.Name] = cfg.Refine(fn)
	}
	return analyzer, functions, nil
}
