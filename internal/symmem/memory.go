// Package symmem implements the symbolic linear-memory model (spec §4.2):
// an interval-keyed store over a Wasm memory's byte address space, falling
// through to the module's static data segments for untouched addresses.
package symmem

import (
	"github.com/symwasm/symwasm/internal/smt"
	"github.com/symwasm/symwasm/internal/wasmmod"
)

// entry is one write: either a raw byte string (module data) or a symbolic
// bitvector value, occupying [Lo, Hi). A symbolic-address write additionally
// carries a Guard — the next matching load must thread a chain of
// equality-guarded ite selectors through every guarded entry whose interval
// could cover the requested address (spec §4.2).
type entry struct {
	Lo, Hi uint64
	Value  *smt.Expr
	Guard  *smt.Expr // nil for concrete-address writes
}

// Store is the mutable, interval-keyed memory of one VM state. Entries are
// append-only: store() appends rather than mutates in place, so Fork can
// share the backing slice copy-on-write (spec §9 "Deep state copies" —
// the persistent-structure alternative to whole-state copying).
type Store struct {
	facade  *smt.Facade
	entries []entry // newest last; youngest-covering-entry wins on read
	data    []wasmmod.Data
	owned   bool // true once this Store has appended past its forked prefix
}

// NewStore creates an empty store backed by the module's data section.
func NewStore(facade *smt.Facade, data []wasmmod.Data) *Store {
	return &Store{facade: facade, data: data, owned: true}
}

// Fork returns a new Store sharing s's entries slice until either side
// writes, satisfying the state-isolation property (spec §8): mutating one
// fork's memory must never be observable through the other.
func (s *Store) Fork() *Store {
	return &Store{facade: s.facade, entries: s.entries, data: s.data, owned: false}
}

func (s *Store) append(e entry) {
	if !s.owned {
		// First write after a fork: copy so earlier sharers are unaffected.
		cp := make([]entry, len(s.entries), len(s.entries)+4)
		copy(cp, s.entries)
		s.entries = cp
		s.owned = true
	}
	s.entries = append(s.entries, e)
}

// Store writes value (an n-byte-wide symbolic bitvector) at addr. Per spec
// §4.2: a concrete addr becomes a plain interval entry; a symbolic addr is
// first offered to the façade for concretization by the caller (dispatch's
// memory handlers, which hold the enumeration-fanout budget from
// config.Context) — Store and Load only ever see the already-resolved
// addrConcrete pointer, or nil when concretization genuinely failed.
func (s *Store) Store(addr *smt.Expr, addrConcrete *uint64, value *smt.Expr, nbytes int) {
	if addrConcrete != nil {
		s.storeConcrete(*addrConcrete, value, nbytes)
		return
	}
	s.storeSymbolic(addr, value, nbytes)
}

func (s *Store) storeConcrete(lo uint64, value *smt.Expr, nbytes int) {
	hi := lo + uint64(nbytes)
	bytes := make([]*smt.Expr, nbytes)
	for i := 0; i < nbytes; i++ {
		bytes[i] = s.facade.ExtractBytes(value, i)
	}
	s.append(entry{Lo: lo, Hi: hi, Value: s.facade.Concat(bytes)})
}

// storeSymbolic records a guarded entry keyed by the symbolic address: a
// load whose own address could alias addr must check this entry's guard
// (its own address == addr) before trusting an older entry or the data
// section.
func (s *Store) storeSymbolic(addr *smt.Expr, value *smt.Expr, nbytes int) {
	s.append(entry{Value: value, Guard: addr})
}

// Load reads nbytes starting at addr (spec §4.2), given addrConcrete — the
// caller's concretization attempt, or nil if addr resolved to no unique
// value. When addrConcrete is set, the youngest concrete entry whose
// interval covers [addr, addr+nbytes) wins, falling back to the data
// section for any uncovered byte. Otherwise Load returns an ite chain over
// every guarded entry (newest first).
func (s *Store) Load(addr *smt.Expr, addrConcrete *uint64, nbytes int) *smt.Expr {
	if addrConcrete != nil {
		return s.loadConcrete(*addrConcrete, nbytes)
	}
	return s.loadSymbolic(addr, nbytes)
}

func (s *Store) loadConcrete(lo uint64, nbytes int) *smt.Expr {
	bytes := make([]*smt.Expr, nbytes)
	for i := range bytes {
		bytes[i] = s.byteAt(lo + uint64(i))
	}
	return s.facade.Concat(bytes)
}

// byteAt returns the youngest entry covering byte offset b, falling back to
// the data section, per the read-after-write and data-section-fallthrough
// invariants (spec §8).
func (s *Store) byteAt(b uint64) *smt.Expr {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.Guard != nil {
			continue // symbolic-address entries only resolved via loadSymbolic
		}
		if b >= e.Lo && b < e.Hi {
			if e.Value != nil {
				return s.facade.ExtractBytes(e.Value, int(b-e.Lo))
			}
		}
	}
	for _, d := range s.data {
		lo, hi := uint64(d.Offset), uint64(d.Offset)+uint64(d.Size)
		if b >= lo && b < hi {
			return s.facade.BVConst(uint64(d.Data[b-lo]), 8)
		}
	}
	return s.facade.BVConst(0, 8)
}

func (s *Store) loadSymbolic(addr *smt.Expr, nbytes int) *smt.Expr {
	// Concretizing addr is the caller's responsibility before reaching here
	// (dispatch's memory handlers ask the façade to concretize first, per
	// spec §4.2); Load only builds the guarded chain once that has failed,
	// so there is no concrete fallback to fall through to — an untouched
	// symbolic address reads as a fresh byte run, newest guarded write
	// shadowing older ones via nested Ite.
	result := s.facade.FreshBV("symaddr_load", nbytes*8)
	for i := 0; i < len(s.entries); i++ {
		e := s.entries[i]
		if e.Guard == nil || e.Value == nil {
			continue
		}
		guard := s.facade.Eq(addr, e.Guard)
		candidate := s.truncatedOrExtended(e.Value, nbytes)
		result = s.facade.Ite(guard, candidate, result)
	}
	return result
}

func (s *Store) truncatedOrExtended(v *smt.Expr, nbytes int) *smt.Expr {
	want := nbytes * 8
	if v.Width() == want {
		return v
	}
	if v.Width() > want {
		return s.facade.Truncate(v, want)
	}
	return s.facade.ZeroExtend(v, want)
}
