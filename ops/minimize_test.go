package ops

import (
	"testing"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// redundantTail builds two deterministic paths accepting "a" that
// converge in structure but land on separate state objects: s1 and s2
// are both final with weight 0 and have no outgoing arcs, so they
// should merge under minimization.
func redundantTail(sr semiring.Tropical) *fst.Mutable[semiring.Tropical] {
	m := fst.NewMutable[semiring.Tropical](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	s2 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, 0)
	_ = m.SetFinal(s2, 0)
	_ = m.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: 0, NextState: s1})
	_ = m.AddArc(s0, fst.Arc{ILabel: 2, OLabel: 2, Weight: 0, NextState: s2})
	return m
}

func TestMinimizeMergesEquivalentFinalStates(t *testing.T) {
	sr := semiring.Tropical{}
	m := redundantTail(sr)
	if err := Minimize(sr, m); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if m.NumStates() != 2 {
		t.Fatalf("expected redundant final states to merge into one, got %d states", m.NumStates())
	}
	for _, lbl := range []fst.Label{1, 2} {
		w, ok := acceptString[semiring.Tropical](sr, m, []fst.Label{lbl})
		if !ok || w != 0 {
			t.Fatalf("expected label %d to still be accepted at weight 0 after minimize, got %v %v", lbl, w, ok)
		}
	}
}

func TestMinimizeDistinguishesDifferentFinalWeights(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	s2 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, 0)
	_ = m.SetFinal(s2, 5)
	_ = m.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: 0, NextState: s1})
	_ = m.AddArc(s0, fst.Arc{ILabel: 2, OLabel: 2, Weight: 0, NextState: s2})

	if err := Minimize(sr, m); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if m.NumStates() != 3 {
		t.Fatalf("expected distinct final weights to prevent merging, got %d states", m.NumStates())
	}
}

func TestMinimizeEmptyFstIsNoop(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	if err := Minimize(sr, m); err != nil {
		t.Fatalf("Minimize on empty FST: %v", err)
	}
	if m.NumStates() != 0 {
		t.Fatalf("expected empty FST to remain empty, got %d states", m.NumStates())
	}
}
