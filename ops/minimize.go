package ops

import (
	"sort"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

type arcSig struct {
	ilabel, olabel fst.Label
	weight         semiring.Weight
	class          int
}

// signature canonicalizes state s's distinguishing features under the
// current partition: its final weight and its sorted
// (ilabel, olabel, weight, class-of-nextstate) arc list. Two states
// with an identical signature are indistinguishable for one more
// refinement round.
func signature[S semiring.Semiring, R fst.Reader[S]](in R, classOf []int, s StateId) string {
	arcs := in.Arcs(s)
	sigs := make([]arcSig, len(arcs))
	for i, a := range arcs {
		sigs[i] = arcSig{a.ILabel, a.OLabel, a.Weight, classOf[a.NextState]}
	}
	sort.Slice(sigs, func(i, j int) bool {
		x, y := sigs[i], sigs[j]
		if x.ilabel != y.ilabel {
			return x.ilabel < y.ilabel
		}
		if x.olabel != y.olabel {
			return x.olabel < y.olabel
		}
		if x.weight != y.weight {
			return x.weight < y.weight
		}
		return x.class < y.class
	})
	buf := make([]byte, 0, 16*len(sigs)+8)
	buf = appendUint32(buf, uint32(len(sigs)))
	for _, sg := range sigs {
		buf = appendUint32(buf, uint32(sg.ilabel))
		buf = appendUint32(buf, uint32(sg.olabel))
		buf = appendWeightBits(buf, sg.weight)
		buf = appendUint32(buf, uint32(sg.class))
	}
	return string(buf)
}

// Minimize merges equivalent states of m in place via partition
// refinement (Moore's algorithm): states start partitioned by final
// weight, then are iteratively split whenever their arcs disagree on
// label, weight, or target partition, until a fixed point is reached.
// m must already be deterministic. The representative kept for each
// merged class is whichever original state RemapStates encounters
// first, which is exactly RemapStates's own first-occurrence-wins
// merge semantics, so Minimize only has to compute the class mapping.
func Minimize[S semiring.Semiring](sr S, m *fst.Mutable[S]) error {
	n := m.NumStates()
	if n == 0 {
		return nil
	}

	classOf := make([]int, n)
	finalKey := func(s StateId) semiring.Weight {
		w, err := m.Final(s)
		if err != nil {
			return sr.Zero()
		}
		if sr.IsZero(w) {
			return sr.Zero()
		}
		return w
	}
	finalClasses := map[semiring.Weight]int{}
	for s := 0; s < n; s++ {
		fw := finalKey(StateId(s))
		c, ok := finalClasses[fw]
		if !ok {
			c = len(finalClasses)
			finalClasses[fw] = c
		}
		classOf[s] = c
	}

	for {
		sigToClass := map[string]int{}
		newClassOf := make([]int, n)
		changed := false
		for s := 0; s < n; s++ {
			key := signature[S](m, classOf, StateId(s))
			// keep final-weight classes from colliding with
			// differently-final states that happen to share an arc
			// signature by salting with the prior class too.
			full := key + "|" + itoaFast(classOf[s])
			c, ok := sigToClass[full]
			if !ok {
				c = len(sigToClass)
				sigToClass[full] = c
			}
			newClassOf[s] = c
			if c != classOf[s] {
				changed = true
			}
		}
		classOf = newClassOf
		if !changed {
			break
		}
	}

	numClasses := 0
	for _, c := range classOf {
		if c+1 > numClasses {
			numClasses = c + 1
		}
	}
	repAssigned := make([]bool, numClasses)
	mapping := make([]StateId, n)
	nextID := StateId(0)
	classToNewID := make([]StateId, numClasses)
	for s := 0; s < n; s++ {
		c := classOf[s]
		if !repAssigned[c] {
			repAssigned[c] = true
			classToNewID[c] = nextID
			nextID++
		}
		mapping[s] = classToNewID[c]
	}

	return m.RemapStates(mapping)
}

func itoaFast(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
