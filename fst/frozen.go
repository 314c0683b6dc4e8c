package fst

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/semiring"
)

// Binary layout constants for the native snapshot format.
const (
	Magic          uint32 = 0x46535421
	FormatVersion  uint16 = 1
	headerSize            = 24 // bytes, 8-byte aligned
	stateEntrySize        = 16 // arc_offset u32 + num_arcs u32 + final_weight f64
	arcEntrySize          = 20 // ilabel u32 + olabel u32 + weight f64 + nextstate u32
)

// Frozen is the immutable contiguous snapshot used for runtime
// queries: one aligned byte buffer partitioned into header, per-state
// table, and per-arc table, with arcs grouped by source state and
// sorted by ilabel. Any number of readers may traverse a Frozen
// concurrently without synchronization.
type Frozen[S semiring.Semiring] struct {
	sr        S
	buf       []byte
	numStates uint32
	numArcs   uint32
	start     StateId
}

// NumStates returns the number of states.
func (f *Frozen[S]) NumStates() int { return int(f.numStates) }

// NumArcs returns the total number of arcs.
func (f *Frozen[S]) NumArcs() int { return int(f.numArcs) }

// Start returns the start state, or NoStateId if the FST has none.
func (f *Frozen[S]) Start() StateId { return f.start }

// Semiring returns the semiring this snapshot is built over.
func (f *Frozen[S]) Semiring() S { return f.sr }

// Bytes returns the raw contiguous byte buffer backing this snapshot,
// exactly as written by binio.Write.
func (f *Frozen[S]) Bytes() []byte { return f.buf }

func (f *Frozen[S]) stateOffset(s StateId) int { return headerSize + int(s)*stateEntrySize }

func (f *Frozen[S]) stateMeta(s StateId) (arcOffset, numArcs uint32, finalBits uint64) {
	off := f.stateOffset(s)
	arcOffset = binary.LittleEndian.Uint32(f.buf[off:])
	numArcs = binary.LittleEndian.Uint32(f.buf[off+4:])
	finalBits = binary.LittleEndian.Uint64(f.buf[off+8:])
	return
}

func (f *Frozen[S]) arcTableOffset() int {
	return headerSize + int(f.numStates)*stateEntrySize
}

func (f *Frozen[S]) arcAt(index uint32) Arc {
	off := f.arcTableOffset() + int(index)*arcEntrySize
	b := f.buf
	var a Arc
	a.ILabel = binary.LittleEndian.Uint32(b[off:])
	a.OLabel = binary.LittleEndian.Uint32(b[off+4:])
	a.Weight = floatFromBits(binary.LittleEndian.Uint64(b[off+8:]))
	a.NextState = binary.LittleEndian.Uint32(b[off+16:])
	return a
}

// FinalWeight returns the final weight of state s.
func (f *Frozen[S]) FinalWeight(s StateId) semiring.Weight {
	_, _, bits := f.stateMeta(s)
	return floatFromBits(bits)
}

// IsFinal reports whether state s has a non-zero final weight.
func (f *Frozen[S]) IsFinal(s StateId) bool {
	return !f.sr.IsZero(f.FinalWeight(s))
}

// NumArcsOf returns the number of outgoing arcs of state s.
func (f *Frozen[S]) NumArcsOf(s StateId) int {
	_, n, _ := f.stateMeta(s)
	return int(n)
}

// Arcs returns every outgoing arc of state s, in ilabel-sorted order.
func (f *Frozen[S]) Arcs(s StateId) []Arc {
	off, n, _ := f.stateMeta(s)
	out := make([]Arc, n)
	for i := uint32(0); i < n; i++ {
		out[i] = f.arcAt(off + i)
	}
	return out
}

// ArcAt returns the i-th outgoing arc of state s (0-indexed within
// that state's contiguous run).
func (f *Frozen[S]) ArcAt(s StateId, i int) Arc {
	off, _, _ := f.stateMeta(s)
	return f.arcAt(off + uint32(i))
}

// FindArc returns any arc of state s whose ilabel equals label, found
// by binary search over the ilabel-sorted contiguous run.
func (f *Frozen[S]) FindArc(s StateId, label Label) (Arc, bool) {
	off, n, _ := f.stateMeta(s)
	lo, hi := uint32(0), n
	for lo < hi {
		mid := lo + (hi-lo)/2
		a := f.arcAt(off + mid)
		if a.ILabel < label {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < n {
		a := f.arcAt(off + lo)
		if a.ILabel == label {
			return a, true
		}
	}
	return Arc{}, false
}

// ArcsByIlabel returns the contiguous sub-range of state s's arcs
// whose ilabel equals label, found with two binary searches. This
// lets composition avoid scanning a state's full arc list when only
// one input label is of interest.
func (f *Frozen[S]) ArcsByIlabel(s StateId, label Label) []Arc {
	off, n, _ := f.stateMeta(s)
	lo, hi := uint32(0), n
	for lo < hi {
		mid := lo + (hi-lo)/2
		if f.arcAt(off+mid).ILabel < label {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	start := lo
	hi = n
	for start < hi {
		mid := start + (hi-start)/2
		if f.arcAt(off+mid).ILabel <= label {
			start = mid + 1
		} else {
			hi = mid
		}
	}
	// start is now the upper bound; lo..start-1 (if lo's label matched) is our range
	if lo >= n || f.arcAt(off+lo).ILabel != label {
		return nil
	}
	count := start - lo
	out := make([]Arc, count)
	for i := uint32(0); i < count; i++ {
		out[i] = f.arcAt(off + lo + i)
	}
	return out
}

func floatFromBits(bits uint64) semiring.Weight {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(bits)
		bits >>= 8
	}
	return semiring.ReadBits(b)
}

func bitsFromFloat(w semiring.Weight) uint64 {
	b := semiring.WriteBits(w)
	var bits uint64
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(b[i])
	}
	return bits
}

// Freeze builds a Frozen snapshot from m: arcs are sorted by ilabel,
// then the header, per-state table, and arc table are written into
// one freshly allocated contiguous buffer.
func (m *Mutable[S]) Freeze() (*Frozen[S], error) {
	numStates := uint32(len(m.states))
	totalArcs := uint32(0)
	for i := range m.states {
		totalArcs += uint32(len(m.states[i].arcs))
	}

	size := headerSize + int(numStates)*stateEntrySize + int(totalArcs)*arcEntrySize
	buf := make([]byte, size)

	disc, ok := semiring.WeightTypeDiscriminator(m.sr)
	if !ok {
		return nil, fmt.Errorf("%w: unknown semiring %q", fsterr.ErrInvalidArgument, m.sr.Name())
	}

	binary.LittleEndian.PutUint32(buf[0:], Magic)
	binary.LittleEndian.PutUint16(buf[4:], FormatVersion)
	buf[6] = disc
	buf[7] = 0 // flags
	binary.LittleEndian.PutUint32(buf[8:], numStates)
	binary.LittleEndian.PutUint32(buf[12:], totalArcs)
	start := m.start
	binary.LittleEndian.PutUint32(buf[16:], start)
	binary.LittleEndian.PutUint32(buf[20:], 0) // padding

	arcTableBase := headerSize + int(numStates)*stateEntrySize
	arcCursor := uint32(0)
	for s := range m.states {
		sortedArcs := append([]Arc(nil), m.states[s].arcs...)
		sort.SliceStable(sortedArcs, func(i, j int) bool { return ByIlabelLess(sortedArcs[i], sortedArcs[j]) })

		stOff := headerSize + s*stateEntrySize
		binary.LittleEndian.PutUint32(buf[stOff:], arcCursor)
		binary.LittleEndian.PutUint32(buf[stOff+4:], uint32(len(sortedArcs)))
		binary.LittleEndian.PutUint64(buf[stOff+8:], bitsFromFloat(m.states[s].final))

		for _, a := range sortedArcs {
			aOff := arcTableBase + int(arcCursor)*arcEntrySize
			binary.LittleEndian.PutUint32(buf[aOff:], a.ILabel)
			binary.LittleEndian.PutUint32(buf[aOff+4:], a.OLabel)
			binary.LittleEndian.PutUint64(buf[aOff+8:], bitsFromFloat(a.Weight))
			binary.LittleEndian.PutUint32(buf[aOff+16:], a.NextState)
			arcCursor++
		}
	}

	return &Frozen[S]{sr: m.sr, buf: buf, numStates: numStates, numArcs: totalArcs, start: start}, nil
}

// FromBytes validates and wraps an aligned byte buffer as a Frozen
// snapshot without copying: magic, version, weight-type discriminator,
// declared counts against buffer length, and that start_state is
// either the sentinel or within range, are all checked before the
// view is exposed.
func FromBytes[S semiring.Semiring](sr S, buf []byte) (*Frozen[S], error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: buffer shorter than header", fsterr.ErrUnexpectedEOF)
	}
	magic := binary.LittleEndian.Uint32(buf[0:])
	if magic != Magic {
		return nil, fmt.Errorf("%w: got %#x", fsterr.ErrInvalidMagic, magic)
	}
	version := binary.LittleEndian.Uint16(buf[4:])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d", fsterr.ErrUnsupportedVersion, version)
	}
	disc := buf[6]
	wantDisc, ok := semiring.WeightTypeDiscriminator(sr)
	if !ok {
		return nil, fmt.Errorf("%w: unknown semiring %q", fsterr.ErrInvalidArgument, sr.Name())
	}
	if disc != wantDisc {
		return nil, fmt.Errorf("%w: file has discriminator %d, requested %q", fsterr.ErrWeightTypeMismatch, disc, sr.Name())
	}

	numStates := binary.LittleEndian.Uint32(buf[8:])
	numArcs := binary.LittleEndian.Uint32(buf[12:])
	start := binary.LittleEndian.Uint32(buf[16:])

	wantLen := headerSize + int(numStates)*stateEntrySize + int(numArcs)*arcEntrySize
	if len(buf) != wantLen {
		return nil, fmt.Errorf("%w: declared length %d, buffer has %d bytes", fsterr.ErrInvalidFormat, wantLen, len(buf))
	}
	if start != NoStateId && start >= numStates {
		return nil, fmt.Errorf("%w: start state %d out of range (have %d states)", fsterr.ErrInvalidFormat, start, numStates)
	}

	f := &Frozen[S]{sr: sr, buf: buf, numStates: numStates, numArcs: numArcs, start: start}
	if err := f.validateArcs(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Frozen[S]) validateArcs() error {
	var seen uint32
	for s := uint32(0); s < f.numStates; s++ {
		off, n, _ := f.stateMeta(s)
		if off != seen {
			return fmt.Errorf("%w: state %d arc_offset %d does not match running total %d", fsterr.ErrInvalidFormat, s, off, seen)
		}
		lastLabel := Label(0)
		for i := uint32(0); i < n; i++ {
			a := f.arcAt(off + i)
			if a.NextState != NoStateId && a.NextState >= f.numStates {
				return fmt.Errorf("%w: arc of state %d targets out-of-range state %d", fsterr.ErrInvalidFormat, s, a.NextState)
			}
			if i > 0 && a.ILabel < lastLabel {
				return fmt.Errorf("%w: arcs of state %d are not sorted by ilabel", fsterr.ErrInvalidFormat, s)
			}
			lastLabel = a.ILabel
		}
		seen += n
	}
	if seen != f.numArcs {
		return fmt.Errorf("%w: arc table length %d does not match declared num_arcs %d", fsterr.ErrInvalidFormat, seen, f.numArcs)
	}
	return nil
}
