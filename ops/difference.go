package ops

import (
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// Complement builds an unweighted acceptor over alphabet accepting
// every string not accepted by in: a dead state
// absorbs every label missing from a given state's arc set, and
// finality is flipped (final <-> non-final) everywhere, including the
// dead state which becomes final. in must already be deterministic,
// with every label drawn from alphabet, for this to produce the exact
// set-complement; it need not be complete, since missing labels are
// routed to the dead state. Callers typically run Determinize first
// and pass in the label alphabet the dead state needs to absorb.
func Complement[S semiring.Semiring, R fst.Reader[S]](sr S, in R, alphabet []fst.Label) *fst.Mutable[S] {
	out := fst.NewMutable[S](sr)
	n := in.NumStates()
	for i := 0; i < n; i++ {
		out.AddState()
	}
	dead := out.AddState()
	_ = out.SetFinal(dead, sr.One())

	start := in.Start()
	if start == fst.NoStateId {
		_ = out.SetStart(dead)
		return out
	}
	_ = out.SetStart(start)

	for s := 0; s < n; s++ {
		sid := StateId(s)
		have := map[fst.Label]bool{}
		for _, a := range in.Arcs(sid) {
			have[a.ILabel] = true
			_ = out.AddArc(sid, fst.Arc{ILabel: a.ILabel, OLabel: a.ILabel, Weight: sr.One(), NextState: a.NextState})
		}
		for _, l := range alphabet {
			if !have[l] {
				_ = out.AddArc(sid, fst.Arc{ILabel: l, OLabel: l, Weight: sr.One(), NextState: dead})
			}
		}
		if sr.IsZero(in.FinalOrZero(sid)) {
			_ = out.SetFinal(sid, sr.One())
		}
	}
	for _, l := range alphabet {
		_ = out.AddArc(dead, fst.Arc{ILabel: l, OLabel: l, Weight: sr.One(), NextState: dead})
	}

	return out
}

// Difference returns the paths of a whose output string is rejected
// by b, by composing a against the complement of b over the given
// alphabet (for an acceptor a: the strings a accepts that b does not). b is projected to an input acceptor first since complement
// is only meaningful over a single tape.
func Difference[S semiring.Semiring, A fst.Reader[S], B fst.Reader[S]](sr S, a A, b B, alphabet []fst.Label) *fst.Mutable[S] {
	bAcceptor := fst.NewMutable[S](sr)
	n := b.NumStates()
	for i := 0; i < n; i++ {
		bAcceptor.AddState()
	}
	if b.Start() != fst.NoStateId {
		_ = bAcceptor.SetStart(b.Start())
	}
	for s := 0; s < n; s++ {
		sid := StateId(s)
		if fw := b.FinalOrZero(sid); !sr.IsZero(fw) {
			_ = bAcceptor.SetFinal(sid, fw)
		}
		for _, arc := range b.Arcs(sid) {
			_ = bAcceptor.AddArc(sid, fst.Arc{ILabel: arc.ILabel, OLabel: arc.ILabel, Weight: arc.Weight, NextState: arc.NextState})
		}
	}
	det := Determinize[S](sr, bAcceptor)
	comp := Complement[S](sr, det, alphabet)
	return Compose[S](sr, a, comp)
}
