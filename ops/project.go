package ops

import (
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// ProjectionKind selects which tape Project keeps.
type ProjectionKind int

const (
	// ProjectInput copies ilabel onto olabel for every arc.
	ProjectInput ProjectionKind = iota
	// ProjectOutput copies olabel onto ilabel for every arc.
	ProjectOutput
)

// Project rewrites m in place so both tapes carry the same labels,
// collapsing it to an acceptor over the chosen tape.
func Project[S semiring.Semiring](m *fst.Mutable[S], kind ProjectionKind) error {
	n := m.NumStates()
	for s := 0; s < n; s++ {
		sid := StateId(s)
		arcs := append([]fst.Arc(nil), m.Arcs(sid)...)
		if err := m.DeleteArcs(sid); err != nil {
			return err
		}
		for _, a := range arcs {
			switch kind {
			case ProjectInput:
				a.OLabel = a.ILabel
			case ProjectOutput:
				a.ILabel = a.OLabel
			}
			if err := m.AddArc(sid, a); err != nil {
				return err
			}
		}
	}
	return nil
}

// Invert rewrites m in place by swapping ilabel and olabel on every
// arc, turning a relation A:B into its inverse B:A.
func Invert[S semiring.Semiring](m *fst.Mutable[S]) error {
	n := m.NumStates()
	for s := 0; s < n; s++ {
		sid := StateId(s)
		arcs := append([]fst.Arc(nil), m.Arcs(sid)...)
		if err := m.DeleteArcs(sid); err != nil {
			return err
		}
		for _, a := range arcs {
			a.ILabel, a.OLabel = a.OLabel, a.ILabel
			if err := m.AddArc(sid, a); err != nil {
				return err
			}
		}
	}
	return nil
}
