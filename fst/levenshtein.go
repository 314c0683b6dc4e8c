package fst

import "github.com/jamra/gofst/semiring"

// LevenshteinTransducer builds a weighted bounded-edit-distance acceptor
// for pattern over alphabet: a path consuming input string s is
// accepting iff the edit distance between s and pattern is at most
// maxDistance, with best path weight equal to that distance (match
// costs 0, substitution/insertion/deletion each cost 1; final weights
// are the semiring one). States are indexed
// by (position in pattern, errors spent so far); the resulting FST
// grows as (len(pattern)+1) * (maxDistance+1) states rather than the
// full O(len(s)) dynamic-programming table a naive edit-distance
// computation would walk per query.
func LevenshteinTransducer[S semiring.Semiring](sr S, pattern []byte, maxDistance int, alphabet []Label) *Mutable[S] {
	m := NewMutable[S](sr)
	rows := len(pattern) + 1
	cols := maxDistance + 1

	id := func(pos, errs int) StateId { return StateId(pos*cols + errs) }
	for i := 0; i < rows*cols; i++ {
		m.AddState()
	}
	_ = m.SetStart(id(0, 0))

	one := func(w float64) semiring.Weight { return w }

	for pos := 0; pos < rows; pos++ {
		for errs := 0; errs < cols; errs++ {
			src := id(pos, errs)

			if pos < len(pattern) {
				// Match: consume the pattern's own byte for free.
				matchLabel := Label(pattern[pos]) + 1
				_ = m.AddArc(src, Arc{ILabel: matchLabel, OLabel: matchLabel, Weight: sr.One(), NextState: id(pos+1, errs)})

				if errs+1 < cols {
					// Substitution: consume any other alphabet symbol at cost 1.
					for _, l := range alphabet {
						if l == matchLabel {
							continue
						}
						_ = m.AddArc(src, Arc{ILabel: l, OLabel: l, Weight: one(1), NextState: id(pos+1, errs+1)})
					}
					// Deletion: skip the pattern's byte without consuming input.
					_ = m.AddArc(src, Arc{ILabel: Epsilon, OLabel: Epsilon, Weight: one(1), NextState: id(pos+1, errs+1)})
				}
			}

			if errs+1 < cols {
				// Insertion: consume an extra input symbol not in pattern.
				for _, l := range alphabet {
					_ = m.AddArc(src, Arc{ILabel: l, OLabel: l, Weight: one(1), NextState: id(pos, errs+1)})
				}
			}
		}
	}

	for errs := 0; errs < cols; errs++ {
		_ = m.SetFinal(id(len(pattern), errs), sr.One())
	}
	return m
}
