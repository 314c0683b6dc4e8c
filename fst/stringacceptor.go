package fst

import "github.com/jamra/gofst/semiring"

// CompileString builds a linear-chain acceptor for s: one arc per
// byte, with matching ilabel/olabel (byte value + 1, so that label 0
// stays reserved for epsilon) and unit weight.
func CompileString[S semiring.Semiring](sr S, s []byte) *Mutable[S] {
	m := NewMutable[S](sr)
	cur := m.AddState()
	_ = m.SetStart(cur)
	for _, b := range s {
		next := m.AddState()
		label := Label(b) + 1
		_ = m.AddArc(cur, Arc{ILabel: label, OLabel: label, Weight: sr.One(), NextState: next})
		cur = next
	}
	_ = m.SetFinal(cur, sr.One())
	return m
}

// ByteAcceptor builds a two-state acceptor recognizing any one
// byte (offset by 1, matching CompileString's label convention).
func ByteAcceptor[S semiring.Semiring](sr S) *Mutable[S] {
	return rangeAcceptor(sr, 0, 255)
}

// AlphaAcceptor builds an acceptor recognizing a single ASCII letter.
func AlphaAcceptor[S semiring.Semiring](sr S) *Mutable[S] {
	m := NewMutable[S](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, sr.One())
	for _, rng := range [][2]byte{{'a', 'z'}, {'A', 'Z'}} {
		for b := int(rng[0]); b <= int(rng[1]); b++ {
			label := Label(b) + 1
			_ = m.AddArc(s0, Arc{ILabel: label, OLabel: label, Weight: sr.One(), NextState: s1})
		}
	}
	return m
}

// DigitAcceptor builds an acceptor recognizing a single ASCII digit.
func DigitAcceptor[S semiring.Semiring](sr S) *Mutable[S] {
	return rangeAcceptor(sr, '0', '9')
}

func rangeAcceptor[S semiring.Semiring](sr S, lo, hi byte) *Mutable[S] {
	m := NewMutable[S](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, sr.One())
	for b := int(lo); b <= int(hi); b++ {
		label := Label(b) + 1
		_ = m.AddArc(s0, Arc{ILabel: label, OLabel: label, Weight: sr.One(), NextState: s1})
	}
	return m
}

// UTF8Acceptor builds an acceptor recognizing any single well-formed
// UTF-8 encoded codepoint, one byte-sequence arc chain per lead-byte
// range (1..4 bytes long). The second-byte range is narrowed after
// E0, ED, F0 and F4 so that overlong forms, surrogates, and code
// points above U+10FFFF are rejected.
func UTF8Acceptor[S semiring.Semiring](sr S) *Mutable[S] {
	m := NewMutable[S](sr)
	start := m.AddState()
	_ = m.SetStart(start)

	addChain := func(ranges [][2]byte) {
		cur := start
		for i, rng := range ranges {
			var next StateId
			if i == len(ranges)-1 {
				next = m.AddState()
				_ = m.SetFinal(next, sr.One())
			} else {
				next = m.AddState()
			}
			for b := int(rng[0]); b <= int(rng[1]); b++ {
				label := Label(b) + 1
				_ = m.AddArc(cur, Arc{ILabel: label, OLabel: label, Weight: sr.One(), NextState: next})
			}
			cur = next
		}
	}

	cont := [2]byte{0x80, 0xBF}
	addChain([][2]byte{{0x00, 0x7F}})                   // 1-byte
	addChain([][2]byte{{0xC2, 0xDF}, cont})              // 2-byte
	addChain([][2]byte{{0xE0, 0xE0}, {0xA0, 0xBF}, cont})       // 3-byte, no overlongs
	addChain([][2]byte{{0xE1, 0xEC}, cont, cont})              // 3-byte
	addChain([][2]byte{{0xED, 0xED}, {0x80, 0x9F}, cont})       // 3-byte, no surrogates
	addChain([][2]byte{{0xEE, 0xEF}, cont, cont})              // 3-byte
	addChain([][2]byte{{0xF0, 0xF0}, {0x90, 0xBF}, cont, cont}) // 4-byte, no overlongs
	addChain([][2]byte{{0xF1, 0xF3}, cont, cont, cont})        // 4-byte
	addChain([][2]byte{{0xF4, 0xF4}, {0x80, 0x8F}, cont, cont}) // 4-byte, up to U+10FFFF
	return m
}

// SigmaStar builds Σ*, the acceptor over a given alphabet of labels
// that accepts every string (including the empty string) drawn from
// that alphabet: a single start state that is final and loops on
// every alphabet label with unit weight.
func SigmaStar[S semiring.Semiring](sr S, alphabet []Label) *Mutable[S] {
	m := NewMutable[S](sr)
	s0 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s0, sr.One())
	for _, l := range alphabet {
		_ = m.AddArc(s0, Arc{ILabel: l, OLabel: l, Weight: sr.One(), NextState: s0})
	}
	return m
}
