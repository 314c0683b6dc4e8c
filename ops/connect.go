package ops

import (
	"fmt"
	"math"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// Connect rewrites m in place, dropping every state that is not both
// reachable from the start state and co-reachable to some final state
//. It is implemented directly on top of RemapStates:
// states to keep map to a freshly compacted id, states to drop map to
// NoStateId.
func Connect[S semiring.Semiring](m *fst.Mutable[S]) error {
	n := m.NumStates()
	if n == 0 {
		return nil
	}

	reachable := make([]bool, n)
	if m.Start() != fst.NoStateId {
		reachable[m.Start()] = true
		stack := []StateId{m.Start()}
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, a := range m.Arcs(s) {
				if a.NextState != fst.NoStateId && !reachable[a.NextState] {
					reachable[a.NextState] = true
					stack = append(stack, a.NextState)
				}
			}
		}
	}

	rev := make([][]StateId, n)
	for s := 0; s < n; s++ {
		for _, a := range m.Arcs(StateId(s)) {
			if a.NextState != fst.NoStateId {
				rev[a.NextState] = append(rev[a.NextState], StateId(s))
			}
		}
	}
	coReachable := make([]bool, n)
	var stack []StateId
	for s := 0; s < n; s++ {
		if m.IsFinal(StateId(s)) {
			coReachable[s] = true
			stack = append(stack, StateId(s))
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range rev[s] {
			if !coReachable[p] {
				coReachable[p] = true
				stack = append(stack, p)
			}
		}
	}

	mapping := make([]StateId, n)
	next := StateId(0)
	for s := 0; s < n; s++ {
		if reachable[s] && coReachable[s] {
			mapping[s] = next
			next++
		} else {
			mapping[s] = fst.NoStateId
		}
	}
	return m.RemapStates(mapping)
}

// Optimize applies the standard reduction pipeline in place: epsilon
// removal, then (for transducers) encoding ilabel+olabel into a
// single label before determinization and minimization, then decoding
// back, then Connect to drop any state left unreachable or
// non-co-reachable by the prior steps. Determinize groups competing
// arcs by a single label, so without the encode/decode wrapping it
// would conflate arcs that differ only in olabel; encoding first
// guarantees the intermediate handed to Determinize and Minimize is
// an acceptor, so the ilabel/olabel relation survives intact.
func Optimize[S semiring.Semiring](sr S, m *fst.Mutable[S]) (*fst.Mutable[S], error) {
	noEps := RmEpsilon[S](sr, m)

	transducer := isTransducer(noEps)
	src := noEps
	var table map[fst.Label]labelPair
	if transducer {
		enc, tbl, err := encodeLabels(sr, noEps)
		if err != nil {
			return nil, err
		}
		src = enc
		table = tbl
	}

	det := Determinize[S](sr, src)
	if err := Minimize(sr, det); err != nil {
		return nil, err
	}

	if transducer {
		if err := decodeLabels(det, table); err != nil {
			return nil, err
		}
	}

	if err := Connect(det); err != nil {
		return nil, err
	}
	return det, nil
}

// labelPair is a (ilabel, olabel) pair collapsed to a single fresh
// label by Optimize's encode step before determinizing a transducer.
type labelPair struct {
	ilabel, olabel fst.Label
}

// isTransducer reports whether any arc of m carries a differing
// ilabel/olabel pair, the condition under which Optimize must encode
// before determinizing.
func isTransducer[S semiring.Semiring](m *fst.Mutable[S]) bool {
	for s := 0; s < m.NumStates(); s++ {
		for _, a := range m.Arcs(StateId(s)) {
			if a.ILabel != a.OLabel {
				return true
			}
		}
	}
	return false
}

// encodeLabels returns a copy of m rewritten into an acceptor: every
// arc's (ilabel, olabel) pair is assigned a fresh label shared by
// both tapes, so Determinize and Minimize (which distinguish arcs by
// a single label) cannot conflate arcs differing only in olabel. The
// returned table maps each fresh label back to its original pair, for
// decodeLabels to restore.
func encodeLabels[S semiring.Semiring](sr S, m *fst.Mutable[S]) (*fst.Mutable[S], map[fst.Label]labelPair, error) {
	out := fst.NewMutable[S](sr)
	out.AddStates(m.NumStates())
	for s := 0; s < m.NumStates(); s++ {
		sid := StateId(s)
		w, _ := m.Final(sid)
		if !sr.IsZero(w) {
			if err := out.SetFinal(sid, w); err != nil {
				return nil, nil, err
			}
		}
	}
	if m.Start() != fst.NoStateId {
		if err := out.SetStart(m.Start()); err != nil {
			return nil, nil, err
		}
	}

	codes := map[labelPair]fst.Label{}
	table := map[fst.Label]labelPair{}
	var next fst.Label = 1
	for s := 0; s < m.NumStates(); s++ {
		sid := StateId(s)
		for _, a := range m.Arcs(sid) {
			pair := labelPair{a.ILabel, a.OLabel}
			code, ok := codes[pair]
			if !ok {
				if next == math.MaxUint32 {
					return nil, nil, fmt.Errorf("%w: more than %d distinct (ilabel, olabel) pairs", fsterr.ErrLabelOverflow, math.MaxUint32-1)
				}
				code = next
				codes[pair] = code
				table[code] = pair
				next++
			}
			na := a
			na.ILabel, na.OLabel = code, code
			if err := out.AddArc(sid, na); err != nil {
				return nil, nil, err
			}
		}
	}
	return out, table, nil
}

// decodeLabels rewrites m in place, replacing every arc's encoded
// label with the original (ilabel, olabel) pair recorded in table.
func decodeLabels[S semiring.Semiring](m *fst.Mutable[S], table map[fst.Label]labelPair) error {
	for s := 0; s < m.NumStates(); s++ {
		sid := StateId(s)
		arcs := append([]fst.Arc(nil), m.Arcs(sid)...)
		if err := m.DeleteArcs(sid); err != nil {
			return err
		}
		for _, a := range arcs {
			if pair, ok := table[a.ILabel]; ok {
				a.ILabel, a.OLabel = pair.ilabel, pair.olabel
			}
			if err := m.AddArc(sid, a); err != nil {
				return err
			}
		}
	}
	return nil
}
