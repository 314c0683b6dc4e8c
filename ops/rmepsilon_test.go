package ops

import (
	"testing"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

func TestRmEpsilonFoldsChainIntoDirectArc(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	s2 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s2, 1)
	_ = m.AddArc(s0, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: 2, NextState: s1})
	_ = m.AddArc(s1, fst.Arc{ILabel: 5, OLabel: 6, Weight: 3, NextState: s2})

	out := RmEpsilon[semiring.Tropical](sr, m)
	for s := 0; s < out.NumStates(); s++ {
		for _, a := range out.Arcs(fst.StateId(s)) {
			if a.IsEpsilon() {
				t.Fatalf("expected no epsilon arcs to survive, found one at state %d", s)
			}
		}
	}
	w, ok := acceptString[semiring.Tropical](sr, out, []fst.Label{5})
	if !ok {
		t.Fatalf("expected label 5 to be accepted after folding the epsilon chain")
	}
	if w != 2+3+1 {
		t.Fatalf("expected combined weight 6, got %v", w)
	}
}

func TestRmEpsilonHandlesEpsilonSelfLoopOnFinalState(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	s0 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s0, 0)
	_ = m.AddArc(s0, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: 1, NextState: s0})

	out := RmEpsilon[semiring.Tropical](sr, m)
	if out.NumStates() != 1 {
		t.Fatalf("expected rmepsilon to preserve state count, got %d", out.NumStates())
	}
	fw := out.FinalOrZero(out.Start())
	if fw != 0 {
		t.Fatalf("expected the best (tropical-min) closure weight 0 to win over looping through weight 1, got %v", fw)
	}
}

func TestRmEpsilonPreservesNonEpsilonOnlyFst(t *testing.T) {
	sr := semiring.Tropical{}
	m := singleLabelTransducer(sr, 1, 2)
	out := RmEpsilon[semiring.Tropical](sr, m)
	w, ok := acceptString[semiring.Tropical](sr, out, []fst.Label{1})
	if !ok || w != 0 {
		t.Fatalf("expected epsilon-free FST to pass through unchanged, got %v %v", w, ok)
	}
}
