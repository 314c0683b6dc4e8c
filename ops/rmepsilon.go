package ops

import (
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// RmEpsilon returns an epsilon-free equivalent of in: for every state
// s it computes the epsilon-closure weight to every state reachable
// via ilabel=olabel=0 arcs alone, folds that into s's final weight and
// into the weight of every non-epsilon arc leaving the closure, and
// drops the epsilon arcs themselves. The closure is computed per state
// by Bellman-Ford-style relaxation rather than a topological order,
// so it tolerates epsilon cycles as long as their weight sums
// converge under the semiring's Plus.
func RmEpsilon[S semiring.Semiring, R fst.Reader[S]](sr S, in R) *fst.Mutable[S] {
	out := fst.NewMutable[S](sr)
	n := in.NumStates()
	for i := 0; i < n; i++ {
		out.AddState()
	}
	if in.Start() != fst.NoStateId {
		_ = out.SetStart(in.Start())
	}

	for s := 0; s < n; s++ {
		closure := epsilonClosure[S](sr, in, StateId(s))

		fw := sr.Zero()
		for t, w := range closure {
			ft := in.FinalOrZero(StateId(t))
			if !sr.IsZero(ft) {
				fw = sr.Plus(fw, sr.Times(w, ft))
			}
		}
		if !sr.IsZero(fw) {
			_ = out.SetFinal(StateId(s), fw)
		}

		for t, w := range closure {
			for _, a := range in.Arcs(StateId(t)) {
				if a.IsEpsilon() {
					continue
				}
				_ = out.AddArc(StateId(s), fst.Arc{
					ILabel:    a.ILabel,
					OLabel:    a.OLabel,
					Weight:    sr.Times(w, a.Weight),
					NextState: a.NextState,
				})
			}
		}
	}
	return out
}

// epsilonClosure computes, for every state t reachable from s via a
// (possibly empty) chain of epsilon arcs, the ⨁-combined weight of all
// such chains, keyed by state id. s itself is included with weight
// One (the empty chain).
func epsilonClosure[S semiring.Semiring, R fst.Reader[S]](sr S, in R, s StateId) map[int]semiring.Weight {
	dist := map[int]semiring.Weight{int(s): sr.One()}
	queue := []StateId{s}
	inQueue := map[int]bool{int(s): true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		inQueue[int(cur)] = false
		curW := dist[int(cur)]

		for _, a := range in.Arcs(cur) {
			if !a.IsEpsilon() {
				continue
			}
			cand := sr.Times(curW, a.Weight)
			nid := int(a.NextState)
			if existing, ok := dist[nid]; ok {
				combined := sr.Plus(existing, cand)
				if sr.Equal(combined, existing) {
					continue
				}
				dist[nid] = combined
			} else {
				dist[nid] = cand
			}
			if !inQueue[nid] {
				inQueue[nid] = true
				queue = append(queue, a.NextState)
			}
		}
	}
	return dist
}
