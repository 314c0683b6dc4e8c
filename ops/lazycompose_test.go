package ops

import (
	"testing"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

func TestComposeShortestPathMatchesEagerPipeline(t *testing.T) {
	sr := semiring.Tropical{}
	aToB := singleLabelTransducer(sr, 1, 2)
	bToC := singleLabelTransducer(sr, 2, 3)

	lazy, err := ComposeShortestPath[semiring.Tropical](sr, aToB, bToC, 1)
	if err != nil {
		t.Fatalf("ComposeShortestPath: %v", err)
	}
	composed := Compose[semiring.Tropical](sr, aToB, bToC)
	eager, err := ShortestPath[semiring.Tropical](sr, composed)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}

	wLazy, okLazy := acceptString[semiring.Tropical](sr, lazy, []fst.Label{1})
	wEager, okEager := acceptString[semiring.Tropical](sr, eager, []fst.Label{1})
	if okLazy != okEager || wLazy != wEager {
		t.Fatalf("expected lazy and eager pipelines to agree, got lazy=(%v,%v) eager=(%v,%v)", wLazy, okLazy, wEager, okEager)
	}
}

func TestComposeShortestPathPicksCheaperProduct(t *testing.T) {
	sr := semiring.Tropical{}
	a := fst.NewMutable[semiring.Tropical](sr)
	a0 := a.AddState()
	a1 := a.AddState()
	a2 := a.AddState()
	_ = a.SetStart(a0)
	_ = a.SetFinal(a1, 0)
	_ = a.SetFinal(a2, 0)
	_ = a.AddArc(a0, fst.Arc{ILabel: 1, OLabel: 1, Weight: 5, NextState: a1})
	_ = a.AddArc(a0, fst.Arc{ILabel: 2, OLabel: 1, Weight: 1, NextState: a2})

	b := singleLabelTransducer(sr, 1, 9)

	out, err := ComposeShortestPath[semiring.Tropical](sr, a, b, 1)
	if err != nil {
		t.Fatalf("ComposeShortestPath: %v", err)
	}
	w, ok := acceptString[semiring.Tropical](sr, out, []fst.Label{2})
	if !ok || w != 1 {
		t.Fatalf("expected the cheaper label-2 branch to be selected at weight 1, got %v %v", w, ok)
	}
}

func TestComposeShortestPathNZeroIsEmpty(t *testing.T) {
	sr := semiring.Tropical{}
	a := singleLabelTransducer(sr, 1, 2)
	b := singleLabelTransducer(sr, 2, 3)
	out, err := ComposeShortestPath[semiring.Tropical](sr, a, b, 0)
	if err != nil {
		t.Fatalf("ComposeShortestPath: %v", err)
	}
	if out.NumStates() != 0 {
		t.Fatalf("expected n=0 to yield an empty result, got %d states", out.NumStates())
	}
}

func TestComposeShortestPathRejectsNGreaterThanOne(t *testing.T) {
	sr := semiring.Tropical{}
	a := singleLabelTransducer(sr, 1, 2)
	b := singleLabelTransducer(sr, 2, 3)
	if _, err := ComposeShortestPath[semiring.Tropical](sr, a, b, 2); err == nil {
		t.Fatalf("expected n=2 to be rejected")
	}
}
