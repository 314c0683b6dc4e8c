package ops

import (
	"fmt"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

// Union rewrites m in place to accept the union of its own language
// and other's: a fresh start state epsilon-branches to both operands'
// original start states.
func Union[S semiring.Semiring](sr S, m *fst.Mutable[S], other *fst.Mutable[S]) error {
	offset, err := appendStates(m, other)
	if err != nil {
		return err
	}
	oldStart := m.Start()
	newStart := m.AddState()
	if oldStart != fst.NoStateId {
		if err := m.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: oldStart}); err != nil {
			return err
		}
	}
	if other.Start() != fst.NoStateId {
		if err := m.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: offset + other.Start()}); err != nil {
			return err
		}
	}
	return m.SetStart(newStart)
}

// Concat rewrites m in place to accept the concatenation of its own
// language followed by other's: every final state of m gains an
// epsilon arc (weighted by its own final weight) to other's start
// state, and m's final states are cleared in favor of other's
//.
func Concat[S semiring.Semiring](sr S, m *fst.Mutable[S], other *fst.Mutable[S]) error {
	n := m.NumStates()
	offset, err := appendStates(m, other)
	if err != nil {
		return err
	}
	if other.Start() == fst.NoStateId {
		// nothing follows; m's language is unchanged.
		return nil
	}
	for s := 0; s < n; s++ {
		sid := StateId(s)
		w, _ := m.Final(sid)
		if sr.IsZero(w) {
			continue
		}
		if err := m.AddArc(sid, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: w, NextState: offset + other.Start()}); err != nil {
			return err
		}
		if err := m.SetFinal(sid, sr.Zero()); err != nil {
			return err
		}
	}
	return nil
}

// Closure rewrites m in place to accept the Kleene closure of its
// language. star=true gives zero-or-more (the new start state is also
// final); star=false gives one-or-more. Every original final state
// gains an epsilon arc back to the (fresh) start state weighted by its
// own final weight.
func Closure[S semiring.Semiring](sr S, m *fst.Mutable[S], star bool) error {
	oldStart := m.Start()
	newStart := m.AddState()
	if oldStart != fst.NoStateId {
		if err := m.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: oldStart}); err != nil {
			return err
		}
	}
	if star {
		if err := m.SetFinal(newStart, sr.One()); err != nil {
			return err
		}
	}
	n := newStart // original states are [0, n)
	for s := StateId(0); s < n; s++ {
		w, _ := m.Final(s)
		if sr.IsZero(w) {
			continue
		}
		if err := m.AddArc(s, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: w, NextState: newStart}); err != nil {
			return err
		}
	}
	return m.SetStart(newStart)
}

// Repeat rewrites m in place to require between min and max
// (inclusive) concatenated copies of its original language: min
// mandatory copies built via Concat, followed by (max-min) optional
// copies (each individually skippable, per optionalCopy). min must be
// >= 0 and max >= min; otherwise ErrInvalidRange is returned before m
// is modified.
func Repeat[S semiring.Semiring](sr S, m *fst.Mutable[S], min, max int) error {
	if min < 0 || max < min {
		return fmt.Errorf("%w: Repeat(%d, %d)", fsterr.ErrInvalidRange, min, max)
	}

	original := m.Clone()
	m.DeleteStates()
	s0 := m.AddState()
	if err := m.SetStart(s0); err != nil {
		return err
	}
	if err := m.SetFinal(s0, sr.One()); err != nil {
		return err
	}

	for i := 0; i < min; i++ {
		if err := Concat(sr, m, original.Clone()); err != nil {
			return err
		}
	}
	for i := 0; i < max-min; i++ {
		if err := Concat(sr, m, optionalCopy(sr, original)); err != nil {
			return err
		}
	}
	return nil
}

// optionalCopy returns a clone of m that additionally accepts the
// empty string: a fresh final super-start gains an epsilon arc to m's
// original start, with no back-arc to it. This is the "optional"
// closure variant (as opposed to Closure's star/plus), used by
// Repeat's trailing (max-min) skippable copies.
func optionalCopy[S semiring.Semiring](sr S, m *fst.Mutable[S]) *fst.Mutable[S] {
	out := m.Clone()
	oldStart := out.Start()
	newStart := out.AddState()
	if oldStart != fst.NoStateId {
		_ = out.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: oldStart})
	}
	_ = out.SetFinal(newStart, sr.One())
	_ = out.SetStart(newStart)
	return out
}

// appendStates copies every state and arc of src onto the end of dst,
// returning the offset added to every copied state id. src's final
// weights are copied onto the offset states; src's start marking is
// not applied to dst, callers wire that in themselves (Union, Concat).
func appendStates[S semiring.Semiring](dst *fst.Mutable[S], src *fst.Mutable[S]) (StateId, error) {
	offset := StateId(dst.NumStates())
	n := src.NumStates()
	dst.AddStates(n)
	for s := 0; s < n; s++ {
		sid := StateId(s)
		w, _ := src.Final(sid)
		if !dst.Semiring().IsZero(w) {
			if err := dst.SetFinal(offset+sid, w); err != nil {
				return offset, err
			}
		}
		for _, a := range src.Arcs(sid) {
			na := a
			if na.NextState != fst.NoStateId {
				na.NextState += offset
			}
			if err := dst.AddArc(offset+sid, na); err != nil {
				return offset, err
			}
		}
	}
	return offset, nil
}
