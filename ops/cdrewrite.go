package ops

import (
	"fmt"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// CDRewrite builds the context-dependent rewrite rule "rewrite /
// leftContext _ rightContext" over alphabet as a star closure: rule =
// (contextWindow | sigmaOne)*, where contextWindow = leftContext ·
// rewrite · rightContext matches one full context-and-rewrite site
// and sigmaOne is a single-alphabet-symbol acceptor carrying penalty
// on every arc. Iterating the closure lets the rule cover an entire
// input by any mix of context-window matches and single-symbol
// passthroughs, including zero matches when the context never occurs.
// Composing an input acceptor with the result, projecting onto the
// output tape, and taking ShortestPath n=1 makes penalty the tie-break
// that prefers a rewrite over passthrough at every site where the
// context matches, yielding the left-to-right obligatory reading.
// rewrite, leftContext, and rightContext must all carry only unit
// weights: weighted inputs are rejected.
func CDRewrite[S semiring.Semiring](sr S, rewrite *fst.Mutable[S], leftContext, rightContext *fst.Mutable[S], alphabet []fst.Label, penalty semiring.Weight) (*fst.Mutable[S], error) {
	if err := requireUnitWeights(sr, rewrite); err != nil {
		return nil, err
	}
	if err := requireUnitWeights(sr, leftContext); err != nil {
		return nil, err
	}
	if err := requireUnitWeights(sr, rightContext); err != nil {
		return nil, err
	}

	contextWindow := leftContext.Clone()
	if err := Concat(sr, contextWindow, rewrite.Clone()); err != nil {
		return nil, err
	}
	if err := Concat(sr, contextWindow, rightContext.Clone()); err != nil {
		return nil, err
	}

	sigmaOne := singleSymbolAcceptor(sr, alphabet, penalty)

	rule := contextWindow
	if err := Union(sr, rule, sigmaOne); err != nil {
		return nil, err
	}
	if err := Closure(sr, rule, true); err != nil {
		return nil, err
	}

	return RmEpsilon[S](sr, rule), nil
}

// singleSymbolAcceptor builds an acceptor recognizing exactly one
// symbol from alphabet, with every arc weighted by penalty: the
// "pass one sigma symbol through unchanged, at a cost" half of a
// cdrewrite rule's closure.
func singleSymbolAcceptor[S semiring.Semiring](sr S, alphabet []fst.Label, penalty semiring.Weight) *fst.Mutable[S] {
	m := fst.NewMutable[S](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, sr.One())
	for _, l := range alphabet {
		_ = m.AddArc(s0, fst.Arc{ILabel: l, OLabel: l, Weight: penalty, NextState: s1})
	}
	return m
}

func requireUnitWeights[S semiring.Semiring](sr S, m *fst.Mutable[S]) error {
	n := m.NumStates()
	for s := 0; s < n; s++ {
		for _, a := range m.Arcs(StateId(s)) {
			if !sr.Equal(a.Weight, sr.One()) {
				return fmt.Errorf("%w: rewrite rule arc has non-unit weight %v", fsterr.ErrUnsupportedWeightedRewrite, a.Weight)
			}
		}
		if fw := m.FinalOrZero(StateId(s)); !sr.IsZero(fw) && !sr.Equal(fw, sr.One()) {
			return fmt.Errorf("%w: rewrite rule final weight %v is not unit", fsterr.ErrUnsupportedWeightedRewrite, fw)
		}
	}
	return nil
}
