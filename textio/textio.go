// Package textio reads and writes the AT&T tabular text format: one
// arc per line (src dst ilabel olabel [weight]) and one final-state
// line per accepting state (state [weight]), the format openfst's own
// command-line tools print and consume.
package textio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/semiring"
)

// Write prints m in AT&T format to w: every arc as "src dst ilabel
// olabel weight", then every final state as "state weight".
func Write[S semiring.Semiring](sr S, m *fst.Mutable[S], w io.Writer) error {
	bw := bufio.NewWriter(w)
	n := m.NumStates()
	for s := 0; s < n; s++ {
		sid := fst.StateId(s)
		for _, a := range m.Arcs(sid) {
			if _, err := fmt.Fprintf(bw, "%d\t%d\t%d\t%d\t%s\n", sid, a.NextState, a.ILabel, a.OLabel, sr.String(a.Weight)); err != nil {
				return fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
			}
		}
	}
	for s := 0; s < n; s++ {
		sid := fst.StateId(s)
		fw, err := m.Final(sid)
		if err != nil || sr.IsZero(fw) {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", sid, sr.String(fw)); err != nil {
			return fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	return nil
}

// Read parses an AT&T-format FST from r. The first source state
// encountered becomes the start state; states referenced but never
// declared are created on demand with final weight zero.
func Read[S semiring.Semiring](sr S, r io.Reader) (*fst.Mutable[S], error) {
	m := fst.NewMutable[S](sr)
	ids := map[int]fst.StateId{}
	startSet := false

	ensure := func(n int) fst.StateId {
		if id, ok := ids[n]; ok {
			return id
		}
		id := m.AddState()
		ids[n] = id
		return id
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch len(fields) {
		case 1, 2:
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad state id %q", fsterr.ErrInvalidFormat, lineNo, fields[0])
			}
			w := sr.One()
			if len(fields) == 2 {
				w, err = parseWeight(sr, fields[1])
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", fsterr.ErrInvalidFormat, lineNo, err)
				}
			}
			sid := ensure(n)
			if err := m.SetFinal(sid, w); err != nil {
				return nil, err
			}
		case 4, 5:
			src, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad src state %q", fsterr.ErrInvalidFormat, lineNo, fields[0])
			}
			dst, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad dst state %q", fsterr.ErrInvalidFormat, lineNo, fields[1])
			}
			il, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad ilabel %q", fsterr.ErrInvalidFormat, lineNo, fields[2])
			}
			ol, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad olabel %q", fsterr.ErrInvalidFormat, lineNo, fields[3])
			}
			w := sr.One()
			if len(fields) == 5 {
				w, err = parseWeight(sr, fields[4])
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", fsterr.ErrInvalidFormat, lineNo, err)
				}
			}
			srcID := ensure(src)
			if !startSet {
				_ = m.SetStart(srcID)
				startSet = true
			}
			dstID := ensure(dst)
			if err := m.AddArc(srcID, fst.Arc{ILabel: fst.Label(il), OLabel: fst.Label(ol), Weight: w, NextState: dstID}); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: line %d: expected 1, 2, 4, or 5 fields, got %d", fsterr.ErrInvalidFormat, lineNo, len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	return m, nil
}

func parseWeight(sr semiring.Semiring, s string) (semiring.Weight, error) {
	if s == "Infinity" {
		return sr.Zero(), nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad weight %q: %w", s, err)
	}
	return w, nil
}
