package ops

import (
	"container/heap"
	"fmt"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// pqItem is one entry of the shortest-path priority queue: the
// tentative best weight to reach a state. Back-pointers are kept
// separately, in ShortestPath's backArc/backSrc slices.
type pqItem struct {
	state   StateId
	dist    semiring.Weight
	heapIdx int
}

type pqueue struct {
	items []*pqItem
	less  func(a, b semiring.Weight) bool
}

func (q pqueue) Len() int { return len(q.items) }
func (q pqueue) Less(i, j int) bool {
	if q.items[i].dist != q.items[j].dist {
		return q.less(q.items[i].dist, q.items[j].dist)
	}
	// deterministic tie-break: ties resolve by lowest state id.
	return q.items[i].state < q.items[j].state
}
func (q pqueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].heapIdx = i
	q.items[j].heapIdx = j
}
func (q *pqueue) Push(x any) {
	it := x.(*pqItem)
	it.heapIdx = len(q.items)
	q.items = append(q.items, it)
}
func (q *pqueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return it
}

// ShortestPath finds the single best-weight accepting path through in
// (n=1 only) using a Dijkstra-style relaxation that
// relies on the semiring's Less being monotone with Times — true for
// both Tropical and Log. It returns the path as a fresh linear chain
// FST, or ErrNoAcceptingPath if in has no state reachable from the
// start that is also final.
func ShortestPath[S semiring.Semiring, R fst.Reader[S]](sr S, in R) (*fst.Mutable[S], error) {
	out := fst.NewMutable[S](sr)
	if in.Start() == fst.NoStateId {
		return nil, fmt.Errorf("%w: no start state", fsterr.ErrNoAcceptingPath)
	}

	n := in.NumStates()
	best := make([]semiring.Weight, n)
	backArc := make([]fst.Arc, n)
	backSrc := make([]StateId, n)
	hasBack := make([]bool, n)
	settled := make([]bool, n)
	for i := range best {
		best[i] = sr.Zero()
	}
	best[in.Start()] = sr.One()

	pq := &pqueue{less: sr.Less}
	heap.Init(pq)
	heap.Push(pq, &pqItem{state: in.Start(), dist: sr.One()})

	for pq.Len() > 0 {
		top := heap.Pop(pq).(*pqItem)
		if settled[top.state] {
			continue
		}
		if !sr.Equal(top.dist, best[top.state]) {
			continue
		}
		settled[top.state] = true

		for _, a := range in.Arcs(top.state) {
			cand := sr.Times(top.dist, a.Weight)
			if sr.IsZero(best[a.NextState]) || sr.Less(cand, best[a.NextState]) {
				best[a.NextState] = cand
				backArc[a.NextState] = a
				backSrc[a.NextState] = top.state
				hasBack[a.NextState] = true
				heap.Push(pq, &pqItem{state: a.NextState, dist: cand})
			}
		}
	}

	bestFinal := sr.Zero()
	bestFinalState := fst.NoStateId
	for s := 0; s < n; s++ {
		if settled[s] {
			fw := in.FinalOrZero(StateId(s))
			if sr.IsZero(fw) {
				continue
			}
			total := sr.Times(best[s], fw)
			if sr.IsZero(bestFinal) || sr.Less(total, bestFinal) ||
				(sr.Equal(total, bestFinal) && StateId(s) < bestFinalState) {
				bestFinal = total
				bestFinalState = StateId(s)
			}
		}
	}
	if bestFinalState == fst.NoStateId {
		return nil, fsterr.ErrNoAcceptingPath
	}

	var chain []fst.Arc
	cur := bestFinalState
	for hasBack[cur] {
		chain = append(chain, backArc[cur])
		cur = backSrc[cur]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	id := out.AddState()
	_ = out.SetStart(id)
	for _, a := range chain {
		next := out.AddState()
		_ = out.AddArc(id, fst.Arc{ILabel: a.ILabel, OLabel: a.OLabel, Weight: a.Weight, NextState: next})
		id = next
	}
	fw := in.FinalOrZero(bestFinalState)
	_ = out.SetFinal(id, fw)
	return out, nil
}
