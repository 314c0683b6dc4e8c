package ops

import (
	"container/heap"
	"fmt"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// lazyPqItem is one priority-queue entry during fused
// compose-shortest-path search: a product state discovered at a
// tentative best weight, with the tie-break key needed to reproduce
// the eager composition's deterministic arc ordering.
type lazyPqItem struct {
	ps        productState
	dist      semiring.Weight
	prevID    int
	ilabel    fst.Label
	olabel    fst.Label
	arcWeight semiring.Weight
	heapIdx   int
}

type lazyPqueue struct {
	items []*lazyPqItem
	less  func(a, b semiring.Weight) bool
}

func (q lazyPqueue) Len() int { return len(q.items) }
func (q lazyPqueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.dist != b.dist {
		return q.less(a.dist, b.dist)
	}
	if a.prevID != b.prevID {
		return a.prevID < b.prevID
	}
	if a.ilabel != b.ilabel {
		return a.ilabel < b.ilabel
	}
	return a.olabel < b.olabel
}
func (q lazyPqueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].heapIdx = i
	q.items[j].heapIdx = j
}
func (q *lazyPqueue) Push(x any) {
	it := x.(*lazyPqItem)
	it.heapIdx = len(q.items)
	q.items = append(q.items, it)
}
func (q *lazyPqueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return it
}

type lazyBackPointer struct {
	prevID         int
	ilabel, olabel fst.Label
	arcWeight      semiring.Weight
}

// ComposeShortestPath explores the product-state graph of Compose on
// demand, settling product states in priority order instead of
// materializing the full composed FST first. n must be
// 1: n=0 returns an empty result, any other n is rejected with
// ErrUnsupportedNShortest.
func ComposeShortestPath[S semiring.Semiring, A fst.Reader[S], B fst.Reader[S]](sr S, a A, b B, n int) (*fst.Mutable[S], error) {
	out := fst.NewMutable[S](sr)
	if n == 0 {
		return out, nil
	}
	if n != 1 {
		return nil, fmt.Errorf("%w: got n=%d", fsterr.ErrUnsupportedNShortest, n)
	}
	if a.Start() == fst.NoStateId || b.Start() == fst.NoStateId {
		return out, nil
	}

	ids := map[productState]int{}
	var states []productState
	idOf := func(ps productState) int {
		if id, ok := ids[ps]; ok {
			return id
		}
		id := len(states)
		ids[ps] = id
		states = append(states, ps)
		return id
	}

	best := map[int]semiring.Weight{}
	back := map[int]lazyBackPointer{}
	settled := map[int]bool{}

	start := productState{a.Start(), b.Start(), filterNeutral}
	startID := idOf(start)
	best[startID] = sr.One()

	pq := &lazyPqueue{less: sr.Less}
	heap.Init(pq)
	heap.Push(pq, &lazyPqItem{ps: start, dist: sr.One(), prevID: -1})

	for pq.Len() > 0 {
		top := heap.Pop(pq).(*lazyPqItem)
		id := idOf(top.ps)
		if settled[id] {
			continue
		}
		if !sr.Equal(top.dist, best[id]) {
			continue
		}
		settled[id] = true
		if top.prevID >= 0 {
			back[id] = lazyBackPointer{prevID: top.prevID, ilabel: top.ilabel, olabel: top.olabel, arcWeight: top.arcWeight}
		}

		relax := func(next productState, il, ol fst.Label, arcWeight semiring.Weight) {
			nid := idOf(next)
			cand := sr.Times(top.dist, arcWeight)
			if ex, ok := best[nid]; !ok || sr.IsZero(ex) || sr.Less(cand, ex) {
				best[nid] = cand
				heap.Push(pq, &lazyPqItem{ps: next, dist: cand, prevID: id, ilabel: il, olabel: ol, arcWeight: arcWeight})
			}
		}

		cur := top.ps
		for _, arcA := range a.Arcs(cur.a) {
			if arcA.OLabel == fst.Epsilon {
				continue
			}
			for _, arcB := range arcsByILabel[S](b, cur.b, arcA.OLabel) {
				relax(productState{arcA.NextState, arcB.NextState, filterNeutral}, arcA.ILabel, arcB.OLabel, sr.Times(arcA.Weight, arcB.Weight))
			}
		}
		if cur.phi == filterNeutral {
			for _, arcA := range a.Arcs(cur.a) {
				if arcA.OLabel != fst.Epsilon {
					continue
				}
				for _, arcB := range arcsByILabel[S](b, cur.b, fst.Epsilon) {
					relax(productState{arcA.NextState, arcB.NextState, filterNeutral}, arcA.ILabel, arcB.OLabel, sr.Times(arcA.Weight, arcB.Weight))
				}
			}
		}
		if cur.phi != filterBOnly {
			nextPhi := filterAOnly
			if cur.phi != filterNeutral {
				nextPhi = cur.phi
			}
			for _, arcA := range a.Arcs(cur.a) {
				if arcA.OLabel != fst.Epsilon {
					continue
				}
				relax(productState{arcA.NextState, cur.b, nextPhi}, arcA.ILabel, fst.Epsilon, arcA.Weight)
			}
		}
		if cur.phi != filterAOnly {
			nextPhi := filterBOnly
			if cur.phi != filterNeutral {
				nextPhi = cur.phi
			}
			for _, arcB := range b.Arcs(cur.b) {
				if arcB.ILabel != fst.Epsilon {
					continue
				}
				relax(productState{cur.a, arcB.NextState, nextPhi}, fst.Epsilon, arcB.OLabel, arcB.Weight)
			}
		}
	}

	bestFinalID := -1
	bestFinal := sr.Zero()
	for id, ps := range states {
		if !settled[id] {
			continue
		}
		fwA := a.FinalOrZero(ps.a)
		fwB := b.FinalOrZero(ps.b)
		if sr.IsZero(fwA) || sr.IsZero(fwB) {
			continue
		}
		total := sr.Times(best[id], sr.Times(fwA, fwB))
		if bestFinalID == -1 || sr.Less(total, bestFinal) || (sr.Equal(total, bestFinal) && id < bestFinalID) {
			bestFinal = total
			bestFinalID = id
		}
	}
	if bestFinalID == -1 {
		return out, nil
	}

	type hop struct {
		ilabel, olabel fst.Label
		weight         semiring.Weight
	}
	var hops []hop
	cur := bestFinalID
	for {
		bp, ok := back[cur]
		if !ok {
			break
		}
		hops = append(hops, hop{bp.ilabel, bp.olabel, bp.arcWeight})
		cur = bp.prevID
	}
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}

	id := out.AddState()
	_ = out.SetStart(id)
	for _, h := range hops {
		next := out.AddState()
		_ = out.AddArc(id, fst.Arc{ILabel: h.ilabel, OLabel: h.olabel, Weight: h.weight, NextState: next})
		id = next
	}
	finalA := a.FinalOrZero(states[bestFinalID].a)
	finalB := b.FinalOrZero(states[bestFinalID].b)
	_ = out.SetFinal(id, sr.Times(finalA, finalB))
	return out, nil
}
