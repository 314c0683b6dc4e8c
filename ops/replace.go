package ops

import (
	"fmt"
	"sort"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// NonTerminal identifies a named sub-grammar in a Replace call: any
// arc whose ilabel equals this value is expanded into a copy of the
// corresponding rule's FST, wired in with epsilon bridges.
type NonTerminal = fst.Label

// ReplaceRule pairs a non-terminal label with the FST it expands to.
type ReplaceRule[S semiring.Semiring] struct {
	Label NonTerminal
	Fst   *fst.Mutable[S]
}

// Replace expands root's recursive non-terminal arcs against rules
// into a single flattened FST. Every reference cycle among the rules
// (a rule that reaches itself directly or through other rules) is
// rejected with fsterr.ErrCyclicDependency, whether or not the cycle
// passes through label-consuming arcs, since each reference is
// expanded into a full copy. The check is a DFS white/gray/black
// coloring over the rule-reference graph before any expansion is
// attempted.
func Replace[S semiring.Semiring](sr S, root *fst.Mutable[S], rules []ReplaceRule[S]) (*fst.Mutable[S], error) {
	byLabel := make(map[NonTerminal]*fst.Mutable[S], len(rules))
	for _, r := range rules {
		byLabel[r.Label] = r.Fst
	}

	if err := checkReplaceAcyclic(root, byLabel); err != nil {
		return nil, err
	}

	out := fst.NewMutable[S](sr)
	offset, err := appendStates(out, root)
	if err != nil {
		return nil, err
	}
	if root.Start() != fst.NoStateId {
		_ = out.SetStart(offset + root.Start())
	}
	if err := expandNonTerminals(sr, out, offset, root, byLabel); err != nil {
		return nil, err
	}
	return out, nil
}

// expandNonTerminals rewrites, in out, every non-terminal arc that was
// just copied in from src (at the given offset) into an epsilon bridge
// into a fresh copy of the referenced rule's FST, recursively.
func expandNonTerminals[S semiring.Semiring](sr S, out *fst.Mutable[S], offset StateId, src *fst.Mutable[S], byLabel map[NonTerminal]*fst.Mutable[S]) error {
	n := src.NumStates()
	for s := 0; s < n; s++ {
		sid := offset + StateId(s)
		arcs := append([]fst.Arc(nil), out.Arcs(sid)...)
		anyNonTerminal := false
		for _, a := range arcs {
			if _, ok := byLabel[a.ILabel]; ok {
				anyNonTerminal = true
			}
		}
		if !anyNonTerminal {
			continue
		}
		if err := out.DeleteArcs(sid); err != nil {
			return err
		}
		for _, a := range arcs {
			sub, isNT := byLabel[a.ILabel]
			if !isNT {
				if err := out.AddArc(sid, a); err != nil {
					return err
				}
				continue
			}
			subOffset, err := appendStates(out, sub)
			if err != nil {
				return err
			}
			if sub.Start() != fst.NoStateId {
				if err := out.AddArc(sid, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: a.Weight, NextState: subOffset + sub.Start()}); err != nil {
					return err
				}
			}
			subN := sub.NumStates()
			for ss := 0; ss < subN; ss++ {
				ssid := subOffset + StateId(ss)
				fw, _ := sub.Final(StateId(ss))
				if sr.IsZero(fw) {
					continue
				}
				_ = out.SetFinal(ssid, sr.Zero())
				if err := out.AddArc(ssid, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: fw, NextState: a.NextState}); err != nil {
					return err
				}
			}
			if err := expandNonTerminals(sr, out, subOffset, sub, byLabel); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkReplaceAcyclic[S semiring.Semiring](root *fst.Mutable[S], byLabel map[NonTerminal]*fst.Mutable[S]) error {
	const (
		white = iota
		gray
		black
	)
	color := map[NonTerminal]int{}

	labelsReferenced := func(m *fst.Mutable[S]) []NonTerminal {
		seen := map[NonTerminal]bool{}
		n := m.NumStates()
		for s := 0; s < n; s++ {
			for _, a := range m.Arcs(StateId(s)) {
				if _, ok := byLabel[a.ILabel]; ok {
					seen[a.ILabel] = true
				}
			}
		}
		out := make([]NonTerminal, 0, len(seen))
		for l := range seen {
			out = append(out, l)
		}
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	}

	var visit func(label NonTerminal, m *fst.Mutable[S]) error
	visit = func(label NonTerminal, m *fst.Mutable[S]) error {
		color[label] = gray
		for _, ref := range labelsReferenced(m) {
			switch color[ref] {
			case gray:
				return fmt.Errorf("%w: non-terminal %d participates in a reference cycle", fsterr.ErrCyclicDependency, ref)
			case white:
				if err := visit(ref, byLabel[ref]); err != nil {
					return err
				}
			}
		}
		color[label] = black
		return nil
	}

	for _, ref := range labelsReferenced(root) {
		if color[ref] == white {
			if err := visit(ref, byLabel[ref]); err != nil {
				return err
			}
		}
	}
	return nil
}
