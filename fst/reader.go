package fst

import "github.com/jamra/gofst/semiring"

// Reader is the minimal read-only view the algorithms in the sibling
// ops package need: enough to walk either a Mutable builder or a
// Frozen snapshot interchangeably. Both types in this package satisfy
// it.
type Reader[S semiring.Semiring] interface {
	Start() StateId
	NumStates() int
	Arcs(s StateId) []Arc
	FinalOrZero(s StateId) semiring.Weight
}

// IlabelIndexed is satisfied by readers that can return the
// contiguous sub-range of a state's arcs matching one input label
// without scanning the whole arc list — Frozen's binary-search
// accessor. Composition uses this opportunistically on its
// right-hand operand.
type IlabelIndexed[S semiring.Semiring] interface {
	Reader[S]
	ArcsByIlabel(s StateId, l Label) []Arc
}

// FinalOrZero returns the final weight of s, or the semiring zero if
// s is out of range (instead of an error), for Reader conformance.
func (m *Mutable[S]) FinalOrZero(s StateId) semiring.Weight {
	w, err := m.Final(s)
	if err != nil {
		return m.sr.Zero()
	}
	return w
}

// FinalOrZero returns the final weight of s, matching the Reader
// interface; Frozen snapshots are already validated so this never
// needs to report an error.
func (f *Frozen[S]) FinalOrZero(s StateId) semiring.Weight { return f.FinalWeight(s) }

var (
	_ Reader[semiring.Tropical]        = (*Mutable[semiring.Tropical])(nil)
	_ Reader[semiring.Tropical]        = (*Frozen[semiring.Tropical])(nil)
	_ IlabelIndexed[semiring.Tropical] = (*Frozen[semiring.Tropical])(nil)
)
