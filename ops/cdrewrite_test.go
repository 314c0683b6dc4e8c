package ops

import (
	"testing"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

func TestCDRewriteAppliesBetweenContexts(t *testing.T) {
	sr := semiring.Tropical{}
	var a, b, c fst.Label = 1, 2, 3

	rewrite := singleLabelTransducer(sr, b, c) // b -> c
	leftAcceptingA := fst.NewMutable[semiring.Tropical](sr)
	la0 := leftAcceptingA.AddState()
	la1 := leftAcceptingA.AddState()
	_ = leftAcceptingA.SetStart(la0)
	_ = leftAcceptingA.SetFinal(la1, 0)
	_ = leftAcceptingA.AddArc(la0, fst.Arc{ILabel: a, OLabel: a, Weight: 0, NextState: la1})

	right := fst.NewMutable[semiring.Tropical](sr)
	r0 := right.AddState()
	_ = right.SetStart(r0)
	_ = right.SetFinal(r0, 0)

	out, err := CDRewrite[semiring.Tropical](sr, rewrite, leftAcceptingA, right, []fst.Label{a, b, c}, 0)
	if err != nil {
		t.Fatalf("CDRewrite: %v", err)
	}
	w, ok := acceptString[semiring.Tropical](sr, out, []fst.Label{a, b})
	if !ok || w != 0 {
		t.Fatalf("expected input 'a b' (rewriting b in the a_ context) to be accepted at weight 0, got %v %v", w, ok)
	}
}

func TestCDRewriteRejectsWeightedRule(t *testing.T) {
	sr := semiring.Tropical{}
	rule := fst.NewMutable[semiring.Tropical](sr)
	s0 := rule.AddState()
	s1 := rule.AddState()
	_ = rule.SetStart(s0)
	_ = rule.SetFinal(s1, 0)
	_ = rule.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 2, Weight: 5, NextState: s1})

	left := fst.NewMutable[semiring.Tropical](sr)
	l0 := left.AddState()
	_ = left.SetStart(l0)
	_ = left.SetFinal(l0, 0)
	right := fst.NewMutable[semiring.Tropical](sr)
	r0 := right.AddState()
	_ = right.SetStart(r0)
	_ = right.SetFinal(r0, 0)

	_, err := CDRewrite[semiring.Tropical](sr, rule, left, right, []fst.Label{1, 2}, 0)
	if err == nil {
		t.Fatalf("expected a non-unit-weight rewrite rule to be rejected")
	}
}

// runCDRewrite executes a built rule against an input string the way
// a caller must: compose the input, project onto the output tape,
// and take the single best path. It decodes the result's ilabel
// chain back into bytes using CompileString's byte+1 convention.
func runCDRewrite(t *testing.T, sr semiring.Tropical, rule *fst.Mutable[semiring.Tropical], input string) string {
	t.Helper()
	in := fst.CompileString[semiring.Tropical](sr, []byte(input))
	composed := Compose[semiring.Tropical](sr, in, rule)
	if err := Project(composed, ProjectOutput); err != nil {
		t.Fatalf("Project: %v", err)
	}
	best, err := ShortestPath[semiring.Tropical](sr, composed)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	var out []byte
	cur := best.Start()
	for cur != fst.NoStateId {
		arcs := best.Arcs(cur)
		if len(arcs) == 0 {
			break
		}
		out = append(out, byte(arcs[0].ILabel-1))
		cur = arcs[0].NextState
	}
	return string(out)
}

func abcAlphabet() []fst.Label {
	alphabet := make([]fst.Label, 0, 26)
	for b := byte('a'); b <= 'z'; b++ {
		alphabet = append(alphabet, fst.Label(b)+1)
	}
	return alphabet
}

// Scenario 5's no-match passthrough: context "c" never occurs in
// "xad", so the rule must map it to itself unchanged rather than
// having no accepting path at all.
func TestCDRewritePassesThroughWhenContextNeverOccurs(t *testing.T) {
	sr := semiring.Tropical{}
	var c, d fst.Label = 'c' + 1, 'd' + 1

	rewrite := singleLabelTransducer(sr, 'a'+1, 'b'+1)
	left := fst.NewMutable[semiring.Tropical](sr)
	l0, l1 := left.AddState(), left.AddState()
	_ = left.SetStart(l0)
	_ = left.SetFinal(l1, 0)
	_ = left.AddArc(l0, fst.Arc{ILabel: c, OLabel: c, Weight: 0, NextState: l1})

	right := fst.NewMutable[semiring.Tropical](sr)
	r0, r1 := right.AddState(), right.AddState()
	_ = right.SetStart(r0)
	_ = right.SetFinal(r1, 0)
	_ = right.AddArc(r0, fst.Arc{ILabel: d, OLabel: d, Weight: 0, NextState: r1})

	rule, err := CDRewrite[semiring.Tropical](sr, rewrite, left, right, abcAlphabet(), 1)
	if err != nil {
		t.Fatalf("CDRewrite: %v", err)
	}

	got := runCDRewrite(t, sr, rule, "xad")
	if got != "xad" {
		t.Fatalf("expected \"xad\" to pass through unchanged (context \"c\" never occurs), got %q", got)
	}
}

// Scenario 5's positive match: "cad" rewrites to "cbd" since "a"
// occurs between the required "c" and "d" context.
func TestCDRewriteFiresWhenContextMatches(t *testing.T) {
	sr := semiring.Tropical{}
	var c, d fst.Label = 'c' + 1, 'd' + 1

	rewrite := singleLabelTransducer(sr, 'a'+1, 'b'+1)
	left := fst.NewMutable[semiring.Tropical](sr)
	l0, l1 := left.AddState(), left.AddState()
	_ = left.SetStart(l0)
	_ = left.SetFinal(l1, 0)
	_ = left.AddArc(l0, fst.Arc{ILabel: c, OLabel: c, Weight: 0, NextState: l1})

	right := fst.NewMutable[semiring.Tropical](sr)
	r0, r1 := right.AddState(), right.AddState()
	_ = right.SetStart(r0)
	_ = right.SetFinal(r1, 0)
	_ = right.AddArc(r0, fst.Arc{ILabel: d, OLabel: d, Weight: 0, NextState: r1})

	rule, err := CDRewrite[semiring.Tropical](sr, rewrite, left, right, abcAlphabet(), 1)
	if err != nil {
		t.Fatalf("CDRewrite: %v", err)
	}

	if got := runCDRewrite(t, sr, rule, "cad"); got != "cbd" {
		t.Fatalf("expected \"cad\" to rewrite to \"cbd\", got %q", got)
	}
	if got := runCDRewrite(t, sr, rule, "cab"); got != "cab" {
		t.Fatalf("expected \"cab\" to pass through unchanged (no trailing \"d\"), got %q", got)
	}
}
