package state

import "github.com/symwasm/symwasm/internal/smt"

// Constraints is the path constraint list (spec §3): append-only, shallow
// shared on fork. The conjunction of all constraints is invariant-satisfiable
// at every non-terminal state (spec §3, §8 "Feasibility invariant") — Extend
// doesn't itself check satisfiability; callers (internal/explore) check via
// the façade before enqueuing a forked state.
type Constraints struct {
	exprs []*smt.Expr
	owned bool
}

func NewConstraints() *Constraints {
	return &Constraints{owned: true}
}

func (c *Constraints) Fork() *Constraints {
	return &Constraints{exprs: c.exprs, owned: false}
}

// Extend returns a *new* Constraints value with cond appended, leaving c
// untouched — this is how a branch fork extends one successor's path while
// the other successor keeps (or extends with the negation of) the original,
// satisfying "Constraint monotonicity" (spec §8): c's exprs prefix is never
// rewritten, only appended-to via a fresh owner.
func (c *Constraints) Extend(cond *smt.Expr) *Constraints {
	next := make([]*smt.Expr, len(c.exprs), len(c.exprs)+1)
	copy(next, c.exprs)
	next = append(next, cond)
	return &Constraints{exprs: next, owned: true}
}

// All returns the full constraint list, oldest first.
func (c *Constraints) All() []*smt.Expr {
	return c.exprs
}

// Len reports the number of constraints accumulated so far.
func (c *Constraints) Len() int { return len(c.exprs) }
