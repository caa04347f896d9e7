package state

import "github.com/symwasm/symwasm/internal/smt"

// Arg is one argv element: either a concrete byte string or a symbolic
// bitvector of a configured length (spec §3 "Argv").
type Arg struct {
	Concrete []byte
	Symbol   *smt.Expr // non-nil, width a multiple of 8, when Concrete is nil
}

// Len returns the argument's byte length.
func (a Arg) Len() int {
	if a.Concrete != nil {
		return len(a.Concrete)
	}
	return a.Symbol.Width() / 8
}

// Argv is the ordered argument vector. Immutable after construction: no
// Wasm instruction mutates argv, only host functions read it, so Argv needs
// no fork/copy-on-write machinery.
type Argv struct {
	Args []Arg
}

// MaterializeArgv builds argv[0] (conventionally the program name) plus
// symCount fresh symbolic arguments of symLen bytes each, per spec §3's
// "configured count of symbolic arguments" and spec §6's "symbolic argv
// count and length".
func MaterializeArgv(facade *smt.Facade, progName string, symCount, symLen int) *Argv {
	args := []Arg{{Concrete: []byte(progName)}}
	for i := 0; i < symCount; i++ {
		args = append(args, Arg{Symbol: facade.FreshBV("argv", symLen*8)})
	}
	return &Argv{Args: args}
}

// TotalSize returns argc's companion byte count: every argument's bytes
// plus one NUL terminator each, matching args_sizes_get's contract
// (spec §4.5).
func (a *Argv) TotalSize() int {
	n := 0
	for _, arg := range a.Args {
		n += arg.Len() + 1
	}
	return n
}
