package ops

import (
	"testing"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

func TestReverseOfChainAcceptsReversedLabels(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	s2 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s2, 0)
	_ = m.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: 1, NextState: s1})
	_ = m.AddArc(s1, fst.Arc{ILabel: 2, OLabel: 2, Weight: 2, NextState: s2})

	rev := Reverse[semiring.Tropical](sr, m)
	w, ok := acceptString[semiring.Tropical](sr, rev, []fst.Label{2, 1})
	if !ok {
		t.Fatalf("expected reversed chain to accept the reversed label sequence")
	}
	if w != 3 {
		t.Fatalf("expected total weight 3 (tropical reverse is identity), got %v", w)
	}
}

func TestReverseOfEmptyIsEmpty(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	rev := Reverse[semiring.Tropical](sr, m)
	if _, ok := acceptString[semiring.Tropical](sr, rev, nil); ok {
		t.Fatalf("expected reversal of an empty FST to accept nothing")
	}
}
