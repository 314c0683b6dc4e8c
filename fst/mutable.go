package fst

import (
	"fmt"
	"sort"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/semiring"
)

type state struct {
	final semiring.Weight
	arcs  []Arc
}

// Mutable is the builder form of an FST: an ordered list of states,
// each carrying a final weight and a dynamic list of outgoing arcs,
// plus a designated start state. It is parameterized on the semiring
// S at compile time so the hot paths of the operations in the ops
// package never box weights behind an interface.
//
// A Mutable is single-writer: concurrent mutation of the same
// instance is undefined. The generation counter only detects
// invalidation, it never prevents it.
type Mutable[S semiring.Semiring] struct {
	sr         S
	states     []state
	start      StateId
	generation uint64
}

// NewMutable creates an empty Mutable FST over the given semiring,
// with no start state.
func NewMutable[S semiring.Semiring](sr S) *Mutable[S] {
	return &Mutable[S]{sr: sr, start: NoStateId}
}

// Semiring returns the semiring this FST is built over.
func (m *Mutable[S]) Semiring() S { return m.sr }

// Generation returns the current generation counter. It strictly
// increases on every structural mutation; callers may snapshot it and
// assert equality after an unrelated read to detect silent
// invalidation of previously obtained arc views.
func (m *Mutable[S]) Generation() uint64 { return m.generation }

func (m *Mutable[S]) bump() { m.generation++ }

// AddState appends a fresh, non-final state with no arcs and returns
// its id.
func (m *Mutable[S]) AddState() StateId {
	m.states = append(m.states, state{final: m.sr.Zero()})
	m.bump()
	return StateId(len(m.states) - 1)
}

// AddStates appends n fresh states in bulk and returns the id of the
// first one added.
func (m *Mutable[S]) AddStates(n int) StateId {
	first := StateId(len(m.states))
	for i := 0; i < n; i++ {
		m.states = append(m.states, state{final: m.sr.Zero()})
	}
	if n > 0 {
		m.bump()
	}
	return first
}

func (m *Mutable[S]) checkState(s StateId) error {
	if s == NoStateId || int(s) >= len(m.states) {
		return fmt.Errorf("%w: state %d out of range (have %d states)", fsterr.ErrInvalidState, s, len(m.states))
	}
	return nil
}

// SetStart designates s as the start state. Passing NoStateId clears
// the start state.
func (m *Mutable[S]) SetStart(s StateId) error {
	if s != NoStateId {
		if err := m.checkState(s); err != nil {
			return err
		}
	}
	m.start = s
	m.bump()
	return nil
}

// Start returns the current start state, or NoStateId if unset.
func (m *Mutable[S]) Start() StateId { return m.start }

// SetFinal sets the final weight of state s. A state is final iff its
// final weight is not the semiring zero.
func (m *Mutable[S]) SetFinal(s StateId, w semiring.Weight) error {
	if err := m.checkState(s); err != nil {
		return err
	}
	m.states[s].final = w
	m.bump()
	return nil
}

// Final returns the final weight of state s.
func (m *Mutable[S]) Final(s StateId) (semiring.Weight, error) {
	if err := m.checkState(s); err != nil {
		return m.sr.Zero(), err
	}
	return m.states[s].final, nil
}

// IsFinal reports whether state s has a non-zero final weight.
func (m *Mutable[S]) IsFinal(s StateId) bool {
	if int(s) >= len(m.states) {
		return false
	}
	return !m.sr.IsZero(m.states[s].final)
}

// AddArc appends arc to state s's outgoing arc list, preserving
// insertion order until the FST is explicitly sorted.
func (m *Mutable[S]) AddArc(s StateId, a Arc) error {
	if err := m.checkState(s); err != nil {
		return err
	}
	if a.NextState != NoStateId {
		if err := m.checkState(a.NextState); err != nil {
			return fmt.Errorf("add arc: destination %w", err)
		}
	}
	m.states[s].arcs = append(m.states[s].arcs, a)
	m.bump()
	return nil
}

// DeleteArcs removes every outgoing arc of state s.
func (m *Mutable[S]) DeleteArcs(s StateId) error {
	if err := m.checkState(s); err != nil {
		return err
	}
	m.states[s].arcs = nil
	m.bump()
	return nil
}

// DeleteStates clears the entire FST: no states, no start.
func (m *Mutable[S]) DeleteStates() {
	m.states = nil
	m.start = NoStateId
	m.bump()
}

// SortArcs sorts state s's arc list by the canonical
// (ilabel, olabel, weight, nextstate) key.
func (m *Mutable[S]) SortArcs(s StateId) error {
	if err := m.checkState(s); err != nil {
		return err
	}
	arcs := m.states[s].arcs
	sort.SliceStable(arcs, func(i, j int) bool { return arcLess(arcs[i], arcs[j]) })
	m.bump()
	return nil
}

// SortAllArcs sorts every state's arc list.
func (m *Mutable[S]) SortAllArcs() {
	for s := range m.states {
		arcs := m.states[s].arcs
		sort.SliceStable(arcs, func(i, j int) bool { return arcLess(arcs[i], arcs[j]) })
	}
	m.bump()
}

// NumStates returns the number of states.
func (m *Mutable[S]) NumStates() int { return len(m.states) }

// NumArcs returns the number of outgoing arcs of state s.
func (m *Mutable[S]) NumArcs(s StateId) int {
	if int(s) >= len(m.states) {
		return 0
	}
	return len(m.states[s].arcs)
}

// TotalArcs returns the number of arcs across every state.
func (m *Mutable[S]) TotalArcs() int {
	total := 0
	for i := range m.states {
		total += len(m.states[i].arcs)
	}
	return total
}

// Arcs returns a contiguous view over state s's outgoing arcs. The
// slice aliases the Mutable's internal storage: a subsequent
// structural mutation may relocate it, so callers that need to
// survive a mutation should copy it first. In debug builds callers
// may snapshot Generation() before and assert it is unchanged after
// using a previously obtained view.
func (m *Mutable[S]) Arcs(s StateId) []Arc {
	if int(s) >= len(m.states) {
		return nil
	}
	return m.states[s].arcs
}

// Clone returns a deep copy of m with a fresh generation counter reset
// to zero.
func (m *Mutable[S]) Clone() *Mutable[S] {
	out := &Mutable[S]{sr: m.sr, start: m.start}
	out.states = make([]state, len(m.states))
	for i, st := range m.states {
		out.states[i].final = st.final
		if st.arcs != nil {
			out.states[i].arcs = append([]Arc(nil), st.arcs...)
		}
	}
	return out
}

// RemapStates replaces the state sequence with a new one where state
// i moves to mapping[i], or is dropped entirely if mapping[i] ==
// NoStateId. Arc nextstates and the start state are rewritten to
// match; arcs into a dropped state are removed. Duplicate mappings to the same new id merge, keeping the
// first occurrence encountered in original id order; later duplicates
// are discarded. This is the primitive minimization
// uses to build its quotient automaton.
func (m *Mutable[S]) RemapStates(mapping []StateId) error {
	if len(mapping) != len(m.states) {
		return fmt.Errorf("%w: remap mapping length %d does not match %d states", fsterr.ErrInvalidArgument, len(mapping), len(m.states))
	}

	numNew := 0
	for _, nid := range mapping {
		if nid != NoStateId && int(nid)+1 > numNew {
			numNew = int(nid) + 1
		}
	}

	newStates := make([]state, numNew)
	for i := range newStates {
		newStates[i].final = m.sr.Zero()
	}
	seen := make([]bool, numNew)
	for oldID, nid := range mapping {
		if nid == NoStateId {
			continue
		}
		if seen[nid] {
			continue // first occurrence wins, later duplicates discarded
		}
		seen[nid] = true
		newStates[nid] = m.states[oldID]
	}

	remapArc := func(a Arc) Arc {
		if a.NextState != NoStateId && int(a.NextState) < len(mapping) {
			a.NextState = mapping[a.NextState]
		}
		return a
	}
	for i := range newStates {
		if newStates[i].arcs == nil {
			continue
		}
		remapped := make([]Arc, 0, len(newStates[i].arcs))
		for _, a := range newStates[i].arcs {
			a = remapArc(a)
			if a.NextState == NoStateId {
				continue
			}
			remapped = append(remapped, a)
		}
		newStates[i].arcs = remapped
	}

	m.states = newStates
	if m.start != NoStateId && int(m.start) < len(mapping) {
		m.start = mapping[m.start]
	}
	m.bump()
	return nil
}
