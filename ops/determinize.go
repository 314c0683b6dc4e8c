package ops

import (
	"sort"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/internal/arena"
	"github.com/jamra/gofst/semiring"
)

// keyScratch pools the byte buffers subsetKey builds and discards on
// every subset visited during a Determinize call.
var keyScratch = arena.NewBytes()

type subsetElem struct {
	state    StateId
	residual semiring.Weight
}

// normalizeSubset sorts raw's entries ascending by state id, factors
// the common weight c = ⨁ residuals out, and returns the canonical
// (post-factoring) element list together with c. Both concrete
// semirings in this module use ordinary addition for ⊗, so
// "factoring out" c and recovering the per-element residual is plain
// float subtraction — this is not a general semiring operation, it
// relies on Tropical and Log sharing Times(a,b) = a+b.
func normalizeSubset(sr semiring.Semiring, raw map[StateId]semiring.Weight) ([]subsetElem, semiring.Weight) {
	elems := make([]subsetElem, 0, len(raw))
	for s, w := range raw {
		elems = append(elems, subsetElem{s, w})
	}
	sort.Slice(elems, func(i, j int) bool { return elems[i].state < elems[j].state })
	if len(elems) == 0 {
		return elems, sr.Zero()
	}
	c := elems[0].residual
	for _, e := range elems[1:] {
		c = sr.Plus(c, e.residual)
	}
	for i := range elems {
		elems[i].residual = elems[i].residual - c
	}
	return elems, c
}

func subsetKey(elems []subsetElem) string {
	buf := keyScratch.Get()
	for _, e := range elems {
		buf = appendUint32(buf, e.state)
		buf = appendWeightBits(buf, e.residual)
	}
	k := string(buf) // copies out before the buffer returns to the pool
	keyScratch.Put(buf)
	return k
}

// Determinize performs weighted subset construction over in, which
// must be epsilon-free. Each result state is a
// canonicalized weighted set of input states; the construction may
// not terminate for non-determinizable inputs, in which case the
// caller is expected to have pre-optimized to a tractable case
//.
func Determinize[S semiring.Semiring, R fst.Reader[S]](sr S, in R) *fst.Mutable[S] {
	out := fst.NewMutable[S](sr)
	if in.Start() == fst.NoStateId {
		return out
	}

	type queued struct {
		elems []subsetElem
		id    StateId
	}

	startElems, _ := normalizeSubset(sr, map[StateId]semiring.Weight{in.Start(): sr.One()})
	startID := out.AddState()
	_ = out.SetStart(startID)

	visited := map[string]StateId{subsetKey(startElems): startID}
	queue := []queued{{startElems, startID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		fw := sr.Zero()
		for _, e := range cur.elems {
			f := in.FinalOrZero(e.state)
			if !sr.IsZero(f) {
				fw = sr.Plus(fw, sr.Times(e.residual, f))
			}
		}
		if !sr.IsZero(fw) {
			_ = out.SetFinal(cur.id, fw)
		}

		labelSet := map[fst.Label]bool{}
		for _, e := range cur.elems {
			for _, a := range in.Arcs(e.state) {
				if a.ILabel != fst.Epsilon {
					labelSet[a.ILabel] = true
				}
			}
		}
		labels := make([]fst.Label, 0, len(labelSet))
		for l := range labelSet {
			labels = append(labels, l)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

		for _, l := range labels {
			raw := map[StateId]semiring.Weight{}
			outLabel := fst.Epsilon
			outLabelSet := false
			for _, e := range cur.elems {
				for _, a := range in.Arcs(e.state) {
					if a.ILabel != l {
						continue
					}
					if !outLabelSet {
						outLabel = a.OLabel
						outLabelSet = true
					}
					nd := sr.Times(e.residual, a.Weight)
					if ex, ok := raw[a.NextState]; ok {
						raw[a.NextState] = sr.Plus(ex, nd)
					} else {
						raw[a.NextState] = nd
					}
				}
			}
			elems, c := normalizeSubset(sr, raw)
			k := subsetKey(elems)
			nid, ok := visited[k]
			if !ok {
				nid = out.AddState()
				visited[k] = nid
				queue = append(queue, queued{elems, nid})
			}
			_ = out.AddArc(cur.id, fst.Arc{ILabel: l, OLabel: outLabel, Weight: c, NextState: nid})
		}
	}

	return out
}
