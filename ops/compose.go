// Package ops implements the algebraic operations over the fst
// package's Mutable and Frozen types: composition, epsilon removal,
// weighted determinization, minimization, shortest path, the
// union/concat/closure family, projection/inversion, difference,
// replace, reverse, the obligatory context-dependent rewrite, connect,
// the optimize pipeline, and the lazy compose-shortest-path fusion.
package ops

import (
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// composeFilter is the 3-valued epsilon-sequencing filter state:
// 0 = neutral, 1 = "B is mid epsilon-run", 2 = "A is mid
// epsilon-run".
type composeFilter uint8

const (
	filterNeutral composeFilter = 0
	filterBOnly   composeFilter = 1
	filterAOnly   composeFilter = 2
)

type productState struct {
	a, b StateId
	phi  composeFilter
}

type StateId = fst.StateId

// Compose produces a transducer C relating input x to output z iff A
// relates x to some y and B relates y to z, with weights multiplying
// along matched arcs and final states. It applies an
// epsilon-sequencing filter so every path in C
// corresponds to exactly one aligned pair of paths in (A, B). If
// either operand has no start state, the result is the empty FST.
func Compose[S semiring.Semiring, A fst.Reader[S], B fst.Reader[S]](sr S, a A, b B) *fst.Mutable[S] {
	out := fst.NewMutable[S](sr)

	var any1 fst.Reader[S] = a
	var any2 fst.Reader[S] = b
	if any1.Start() == fst.NoStateId || any2.Start() == fst.NoStateId {
		return out
	}

	visited := make(map[productState]StateId)
	var queue []productState

	start := productState{a.Start(), b.Start(), filterNeutral}
	startID := out.AddState()
	visited[start] = startID
	_ = out.SetStart(startID)
	queue = append(queue, start)

	getOrCreate := func(p productState) StateId {
		if id, ok := visited[p]; ok {
			return id
		}
		id := out.AddState()
		visited[p] = id
		queue = append(queue, p)
		return id
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curID := visited[cur]

		fwA := a.FinalOrZero(cur.a)
		fwB := b.FinalOrZero(cur.b)
		if !sr.IsZero(fwA) && !sr.IsZero(fwB) {
			_ = out.SetFinal(curID, sr.Times(fwA, fwB))
		}

		for _, arcA := range a.Arcs(cur.a) {
			if arcA.OLabel == fst.Epsilon {
				continue
			}
			for _, arcB := range arcsByILabel[S](b, cur.b, arcA.OLabel) {
				next := getOrCreate(productState{arcA.NextState, arcB.NextState, filterNeutral})
				_ = out.AddArc(curID, fst.Arc{
					ILabel:    arcA.ILabel,
					OLabel:    arcB.OLabel,
					Weight:    sr.Times(arcA.Weight, arcB.Weight),
					NextState: next,
				})
			}
		}

		if cur.phi == filterNeutral {
			for _, arcA := range a.Arcs(cur.a) {
				if arcA.OLabel != fst.Epsilon {
					continue
				}
				for _, arcB := range arcsByILabel[S](b, cur.b, fst.Epsilon) {
					next := getOrCreate(productState{arcA.NextState, arcB.NextState, filterNeutral})
					_ = out.AddArc(curID, fst.Arc{
						ILabel:    arcA.ILabel,
						OLabel:    arcB.OLabel,
						Weight:    sr.Times(arcA.Weight, arcB.Weight),
						NextState: next,
					})
				}
			}
		}

		if cur.phi != filterBOnly {
			next := filterAOnly
			if cur.phi != filterNeutral {
				next = cur.phi
			}
			for _, arcA := range a.Arcs(cur.a) {
				if arcA.OLabel != fst.Epsilon {
					continue
				}
				dst := getOrCreate(productState{arcA.NextState, cur.b, next})
				_ = out.AddArc(curID, fst.Arc{ILabel: arcA.ILabel, OLabel: fst.Epsilon, Weight: arcA.Weight, NextState: dst})
			}
		}

		if cur.phi != filterAOnly {
			next := filterBOnly
			if cur.phi != filterNeutral {
				next = cur.phi
			}
			for _, arcB := range b.Arcs(cur.b) {
				if arcB.ILabel != fst.Epsilon {
					continue
				}
				dst := getOrCreate(productState{cur.a, arcB.NextState, next})
				_ = out.AddArc(curID, fst.Arc{ILabel: fst.Epsilon, OLabel: arcB.OLabel, Weight: arcB.Weight, NextState: dst})
			}
		}
	}

	return out
}

// arcsByILabel returns the arcs of state s in r whose ilabel equals l,
// using the label-indexed binary-search accessor when r exposes one
// (Frozen snapshots), falling back to a linear scan otherwise
// (Mutable builders). Semantics are identical either way.
func arcsByILabel[S semiring.Semiring](r fst.Reader[S], s StateId, l fst.Label) []fst.Arc {
	if idx, ok := r.(fst.IlabelIndexed[S]); ok {
		return idx.ArcsByIlabel(s, l)
	}
	arcs := r.Arcs(s)
	var out []fst.Arc
	for _, a := range arcs {
		if a.ILabel == l {
			out = append(out, a)
		}
	}
	return out
}
