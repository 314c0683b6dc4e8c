package fst

import "github.com/jamra/gofst/semiring"

// Arc is a weighted transition from one state to another. An arc is
// an epsilon arc iff both ILabel and OLabel are 0.
type Arc struct {
	ILabel    Label
	OLabel    Label
	Weight    semiring.Weight
	NextState StateId
}

// IsEpsilon reports whether a is an epsilon arc (both labels 0).
func (a Arc) IsEpsilon() bool { return a.ILabel == Epsilon && a.OLabel == Epsilon }

// arcLess implements the canonical sort key for a State's arc list:
// lexicographic (ilabel, olabel, weight, nextstate).
func arcLess(a, b Arc) bool {
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
}

// ByIlabelLess orders two arcs solely by input label, the key used by
// the Frozen FST's binary search (findArc / arcsByIlabel).
func ByIlabelLess(a, b Arc) bool { return a.ILabel < b.ILabel }
