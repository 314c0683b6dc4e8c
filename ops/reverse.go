package ops

import (
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// Reverse builds the reversal of in: arcs flip direction, in's old
// final states become the new single start state's epsilon successors
// weighted by Reverse of their final weight, and in's old start state
// becomes the new sole final state at weight One.
func Reverse[S semiring.Semiring, R fst.Reader[S]](sr S, in R) *fst.Mutable[S] {
	out := fst.NewMutable[S](sr)
	n := in.NumStates()
	for i := 0; i < n; i++ {
		out.AddState()
	}
	newStart := out.AddState()
	_ = out.SetStart(newStart)

	if in.Start() != fst.NoStateId {
		_ = out.SetFinal(in.Start(), sr.One())
	}

	for s := 0; s < n; s++ {
		sid := StateId(s)
		for _, a := range in.Arcs(sid) {
			if a.NextState == fst.NoStateId {
				continue
			}
			_ = out.AddArc(a.NextState, fst.Arc{
				ILabel:    a.ILabel,
				OLabel:    a.OLabel,
				Weight:    sr.Reverse(a.Weight),
				NextState: sid,
			})
		}
		fw := in.FinalOrZero(sid)
		if !sr.IsZero(fw) {
			_ = out.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.Reverse(fw), NextState: sid})
		}
	}

	return out
}
