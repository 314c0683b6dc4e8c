package ops

import (
	"testing"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// Scenario 1: linear acceptor for "abc".
func TestLinearAcceptorABC(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.CompileString[semiring.Tropical](sr, []byte("abc"))
	if m.NumStates() != 4 {
		t.Fatalf("expected 4 states, got %d", m.NumStates())
	}
	if m.Start() != 0 {
		t.Fatalf("expected start state 0")
	}
	fw, err := m.Final(3)
	if err != nil || fw != sr.One() {
		t.Fatalf("expected final(3)=One (0), got %v err=%v", fw, err)
	}
	w, ok := acceptString[semiring.Tropical](sr, m, []fst.Label{'a' + 1, 'b' + 1, 'c' + 1})
	if !ok || w != 0 {
		t.Fatalf("expected \"abc\" accepted at cost 0, got %v %v", w, ok)
	}
}

// Scenario 3: transducer "a"->"b" composed with "b"->"c" maps "a" to "c".
func TestTransducerCompositionMapsThroughChain(t *testing.T) {
	sr := semiring.Tropical{}

	aToB := fst.NewMutable[semiring.Tropical](sr)
	s0, s1 := aToB.AddState(), aToB.AddState()
	_ = aToB.SetStart(s0)
	_ = aToB.SetFinal(s1, 0)
	_ = aToB.AddArc(s0, fst.Arc{ILabel: 'a' + 1, OLabel: 'b' + 1, Weight: 0, NextState: s1})

	bToC := fst.NewMutable[semiring.Tropical](sr)
	t0, t1 := bToC.AddState(), bToC.AddState()
	_ = bToC.SetStart(t0)
	_ = bToC.SetFinal(t1, 0)
	_ = bToC.AddArc(t0, fst.Arc{ILabel: 'b' + 1, OLabel: 'c' + 1, Weight: 0, NextState: t1})

	c := Compose[semiring.Tropical](sr, aToB, bToC)
	w, ok := acceptString[semiring.Tropical](sr, c, []fst.Label{'a' + 1})
	if !ok || w != 0 {
		t.Fatalf("expected \"a\" accepted through the chain at cost 0, got %v %v", w, ok)
	}
}

// Scenario 4: composing disjoint acceptors yields no accepting path.
func TestScenarioComposeEmptyIntersection(t *testing.T) {
	sr := semiring.Tropical{}
	a := fst.CompileString[semiring.Tropical](sr, []byte("a"))
	b := fst.CompileString[semiring.Tropical](sr, []byte("b"))
	c := Compose[semiring.Tropical](sr, a, b)
	if _, ok := acceptString[semiring.Tropical](sr, c, []fst.Label{'a' + 1}); ok {
		t.Fatalf("disjoint acceptors must not compose to an accepting path")
	}
}

// Composition identity: compose(F, identity-over-F's-alphabet) accepts
// the same language as F.
func TestScenarioComposeIdentityPreservesLanguage(t *testing.T) {
	sr := semiring.Tropical{}
	f := fst.CompileString[semiring.Tropical](sr, []byte("ab"))
	alphabet := []fst.Label{'a' + 1, 'b' + 1}
	id := identityAcceptor(sr, alphabet)
	c := Compose[semiring.Tropical](sr, f, id)
	w, ok := acceptString[semiring.Tropical](sr, c, []fst.Label{'a' + 1, 'b' + 1})
	if !ok || w != 0 {
		t.Fatalf("compose(F, identity) must accept F's language unchanged, got %v %v", w, ok)
	}
}

func identityAcceptor[S semiring.Semiring](sr S, alphabet []fst.Label) *fst.Mutable[S] {
	m := fst.NewMutable[S](sr)
	s := m.AddState()
	_ = m.SetStart(s)
	_ = m.SetFinal(s, sr.One())
	for _, l := range alphabet {
		_ = m.AddArc(s, fst.Arc{ILabel: l, OLabel: l, Weight: sr.One(), NextState: s})
	}
	return m
}

// Invert involution: invert(invert(F)) == F on arcs (ilabel/olabel swap back).
func TestInvertInvolution(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	s0, s1 := m.AddState(), m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, 0)
	_ = m.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 2, Weight: 3, NextState: s1})

	before := sortArcsCopy(m.Arcs(s0))
	if err := Invert(m); err != nil {
		t.Fatalf("Invert: %v", err)
	}
	if err := Invert(m); err != nil {
		t.Fatalf("Invert: %v", err)
	}
	after := sortArcsCopy(m.Arcs(s0))
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("invert∘invert must restore the original arcs: before=%+v after=%+v", before, after)
	}
}

// Reverse involution (semantic): language(reverse(reverse(F))) == language(F).
func TestReverseInvolutionPreservesLanguage(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.CompileString[semiring.Tropical](sr, []byte("ab"))
	once := Reverse[semiring.Tropical](sr, m)
	twice := Reverse[semiring.Tropical](sr, once)
	w, ok := acceptString[semiring.Tropical](sr, twice, []fst.Label{'a' + 1, 'b' + 1})
	if !ok || w != 0 {
		t.Fatalf("reverse∘reverse must accept the original language, got %v %v", w, ok)
	}
}

// Idempotence: determinize/minimize/optimize are each stable under a
// second application (measured by state count).
func TestIdempotence(t *testing.T) {
	sr := semiring.Tropical{}

	in := nondeterministicBranch(sr)
	det1 := Determinize[semiring.Tropical](sr, in)
	det2 := Determinize[semiring.Tropical](sr, det1)
	if det1.NumStates() != det2.NumStates() {
		t.Fatalf("determinize not idempotent on state count: %d vs %d", det1.NumStates(), det2.NumStates())
	}

	min1 := det1.Clone()
	if err := Minimize(sr, min1); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	min2 := min1.Clone()
	if err := Minimize(sr, min2); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if min1.NumStates() != min2.NumStates() {
		t.Fatalf("minimize not idempotent on state count: %d vs %d", min1.NumStates(), min2.NumStates())
	}

	opt1, err := Optimize[semiring.Tropical](sr, in.Clone())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	opt2, err := Optimize[semiring.Tropical](sr, opt1.Clone())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if opt1.NumStates() != opt2.NumStates() {
		t.Fatalf("optimize not idempotent on state count: %d vs %d", opt1.NumStates(), opt2.NumStates())
	}
}

// Connect invariant: every surviving state is both reachable from
// start and can reach a final state.
func TestConnectInvariantEveryStateLiveAndCoLive(t *testing.T) {
	sr := semiring.Tropical{}
	m := fst.NewMutable[semiring.Tropical](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	dead := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, 0)
	_ = m.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: 0, NextState: s1})
	_ = m.AddArc(s0, fst.Arc{ILabel: 2, OLabel: 2, Weight: 0, NextState: dead})

	if err := Connect(m); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	n := m.NumStates()
	reach := map[StateId]bool{m.Start(): true}
	queue := []StateId{m.Start()}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, a := range m.Arcs(s) {
			if !reach[a.NextState] {
				reach[a.NextState] = true
				queue = append(queue, a.NextState)
			}
		}
	}
	coReach := map[StateId]bool{}
	changed := true
	for changed {
		changed = false
		for s := 0; s < n; s++ {
			sid := StateId(s)
			if coReach[sid] {
				continue
			}
			if m.IsFinal(sid) {
				coReach[sid] = true
				changed = true
				continue
			}
			for _, a := range m.Arcs(sid) {
				if coReach[a.NextState] {
					coReach[sid] = true
					changed = true
					break
				}
			}
		}
	}
	for s := 0; s < n; s++ {
		sid := StateId(s)
		if !reach[sid] || !coReach[sid] {
			t.Fatalf("state %d in connect(F) is not both accessible and co-accessible", sid)
		}
	}
}

// Lazy vs eager: compose_shortest_path(A, B, 1) is arc-equal to
// shortest_path(compose(A, B), 1) after canonical arc sorting.
func TestLazyVsEagerArcEquality(t *testing.T) {
	sr := semiring.Tropical{}

	a := fst.NewMutable[semiring.Tropical](sr)
	a0, a1, a2 := a.AddState(), a.AddState(), a.AddState()
	_ = a.SetStart(a0)
	_ = a.SetFinal(a2, 0)
	_ = a.AddArc(a0, fst.Arc{ILabel: 1, OLabel: 1, Weight: 5, NextState: a1})
	_ = a.AddArc(a0, fst.Arc{ILabel: 2, OLabel: 2, Weight: 1, NextState: a1})
	_ = a.AddArc(a1, fst.Arc{ILabel: 3, OLabel: 3, Weight: 0, NextState: a2})

	b := fst.NewMutable[semiring.Tropical](sr)
	b0, b1, b2 := b.AddState(), b.AddState(), b.AddState()
	_ = b.SetStart(b0)
	_ = b.SetFinal(b2, 0)
	_ = b.AddArc(b0, fst.Arc{ILabel: 1, OLabel: 1, Weight: 0, NextState: b1})
	_ = b.AddArc(b0, fst.Arc{ILabel: 2, OLabel: 2, Weight: 0, NextState: b1})
	_ = b.AddArc(b1, fst.Arc{ILabel: 3, OLabel: 3, Weight: 0, NextState: b2})

	lazy, err := ComposeShortestPath[semiring.Tropical](sr, a, b, 1)
	if err != nil {
		t.Fatalf("ComposeShortestPath: %v", err)
	}
	eager, err := ShortestPath[semiring.Tropical](sr, Compose[semiring.Tropical](sr, a, b))
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}

	if lazy.NumStates() != eager.NumStates() {
		t.Fatalf("lazy/eager state count mismatch: %d vs %d", lazy.NumStates(), eager.NumStates())
	}
	for s := 0; s < lazy.NumStates(); s++ {
		la := sortArcsCopy(lazy.Arcs(StateId(s)))
		ea := sortArcsCopy(eager.Arcs(StateId(s)))
		if len(la) != len(ea) {
			t.Fatalf("state %d: arc count mismatch: %+v vs %+v", s, la, ea)
		}
		for i := range la {
			if la[i] != ea[i] {
				t.Fatalf("state %d arc %d mismatch after canonical sort: %+v vs %+v", s, i, la[i], ea[i])
			}
		}
	}
}
