package ops

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// sortArcs sorts arcs in place by the canonical
// (ilabel, olabel, weight, nextstate) key.
func sortArcs(arcs []fst.Arc) {
	sort.SliceStable(arcs, func(i, j int) bool {
		a, b := arcs[i], arcs[j]
		if a.ILabel != b.ILabel {
			return a.ILabel < b.ILabel
		}
		if a.OLabel != b.OLabel {
			return a.OLabel < b.OLabel
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.NextState < b.NextState
	})
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendWeightBits(buf []byte, w semiring.Weight) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(w))
	return append(buf, b[:]...)
}

// sortArcsCopy returns a fresh, canonically sorted copy of an arc
// slice, leaving the input untouched.
func sortArcsCopy(arcs []fst.Arc) []fst.Arc {
	out := append([]fst.Arc(nil), arcs...)
	sortArcs(out)
	return out
}
