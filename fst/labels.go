// Package fst implements the weighted FST data model in its two
// phases: the Mutable builder and the immutable Frozen snapshot, plus
// the string/character-class acceptor helpers and a small symbol
// table. The algebraic operations (composition, determinization,
// minimization, ...) live in the sibling ops package and are built
// entirely on top of the types exported here.
package fst

import "math"

// Label is an input or output symbol on an arc. Label 0 is reserved
// as epsilon and never denotes a concrete symbol.
type Label = uint32

// Epsilon is the reserved "no symbol" label.
const Epsilon Label = 0

// StateId identifies a state within an FST.
type StateId = uint32

// NoStateId is the sentinel denoting "no state" — the maximum
// representable StateId.
const NoStateId StateId = math.MaxUint32
