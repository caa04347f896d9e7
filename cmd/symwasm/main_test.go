package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/cfg"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// writeModuleFile marshals a hand-built module description to a temp file
// and returns its path, standing in for a real decoder's output (spec §1,
// modulefile.go's own doc comment).
func writeModuleFile(t *testing.T, mf moduleFile) string {
	t.Helper()
	data, err := json.Marshal(mf)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "module.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func withArgs(t *testing.T, args []string) {
	t.Helper()
	orig := os.Args
	os.Args = args
	t.Cleanup(func() { os.Args = orig })
}

// "run" against a module whose entry immediately returns a literal prints
// one JSON record with that value (the CLI end of the same return-literal
// scenario internal/explore's own end-to-end test drives directly).
func TestDoRunReturnsLiteralAsJSONRecord(t *testing.T) {
	mf := moduleFile{
		FuncPrototypes:     []wasmmod.FuncPrototype{{Name: "main", ResultTypes: []wasmmod.ValueType{wasmmod.ValueTypeI32}}},
		InitialMemoryPages: 1,
		Functions: []functionFile{{
			Name: "main", Index: 0, Entry: "b0",
			Blocks: map[string]*cfg.BasicBlock{
				"b0": {Name: "b0", Instructions: []wasmmod.Instruction{
					{Op: wasmmod.I32Const, Imm: wasmmod.Immediate{I32Val: 7}},
					{Op: wasmmod.Return},
				}},
			},
		}},
	}
	path := writeModuleFile(t, mf)
	withArgs(t, []string{"symwasm", "run", path})

	var stdout, stderr bytes.Buffer
	code := doMain(&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rec))
	require.Equal(t, "returned", rec["Status"])
	require.Equal(t, "7", rec["Return"])
}

func TestDoMainMissingCommandPrintsUsage(t *testing.T) {
	withArgs(t, []string{"symwasm"})
	var stdout, stderr bytes.Buffer
	code := doMain(&stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "usage:")
}

func TestDoRunMissingModulePathFails(t *testing.T) {
	withArgs(t, []string{"symwasm", "run"})
	var stdout, stderr bytes.Buffer
	code := doMain(&stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "missing path to module.json")
}
