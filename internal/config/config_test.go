package config_test

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/config"
)

func TestDefaultMatchesBaseline(t *testing.T) {
	c := config.Default()
	require.Equal(t, "main", c.EntryFunctionName)
	require.Equal(t, 0, c.SymArgCount)
	require.Equal(t, 8, c.SymArgLen)
	require.Equal(t, uint32(0x10_0000), c.HeapBase)
	require.Equal(t, "z3", c.SolverBackend)
	require.Equal(t, config.DefaultBudgets(), c.Budgets)
}

func TestExplorationOrderDerivesFromBreadthFirst(t *testing.T) {
	c := config.Default()
	require.Equal(t, config.OrderDepthFirst, c.ExplorationOrder())
	c.BreadthFirst = true
	require.Equal(t, config.OrderBreadthFirst, c.ExplorationOrder())
}

func TestFromFlagsParsesEveryField(t *testing.T) {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	c := config.FromFlags(flags)
	err := flags.Parse([]string{
		"-entry", "start",
		"-sym-args", "2",
		"-sym-arg-len", "16",
		"-heap-base", "0x200000",
		"-lang", "c",
		"-v", "3",
		"-concrete-globals",
		"-coverage",
		"-budget-steps", "500",
		"-budget-call-depth", "10",
		"-budget-wall-seconds", "60",
		"-budget-enum", "4",
		"-breadth-first",
		"-fd", "3:/tmp/in.txt",
	})
	require.NoError(t, err)

	require.Equal(t, "start", c.EntryFunctionName)
	require.Equal(t, 2, c.SymArgCount)
	require.Equal(t, 16, c.SymArgLen)
	require.Equal(t, uint32(0x200000), c.HeapBase)
	require.Equal(t, "c", c.SourceLanguageHint)
	require.Equal(t, 3, c.VerboseLevel)
	require.True(t, c.ConcreteGlobals)
	require.True(t, c.CoverageEnabled)
	require.Equal(t, 500, c.Budgets.StepCount)
	require.Equal(t, 10, c.Budgets.CallDepth)
	require.Equal(t, 60, c.Budgets.WallTimeSeconds)
	require.Equal(t, 4, c.Budgets.EnumerationLimit)
	require.True(t, c.BreadthFirst)
	require.Equal(t, config.OrderBreadthFirst, c.ExplorationOrder())
	require.Len(t, c.FDs, 1)
	require.Equal(t, uint32(3), c.FDs[0].FD)
	require.Equal(t, "/tmp/in.txt", c.FDs[0].Name)
}

func TestFromFlagsHeapBaseAcceptsDecimal(t *testing.T) {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	c := config.FromFlags(flags)
	require.NoError(t, flags.Parse([]string{"-heap-base", "4096"}))
	require.Equal(t, uint32(4096), c.HeapBase)
}

func TestFromFlagsRejectsMalformedFD(t *testing.T) {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	_ = config.FromFlags(flags)
	err := flags.Parse([]string{"-fd", "not-a-valid-spec"})
	require.Error(t, err)
}
