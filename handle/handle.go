// Package handle implements the slot-indexed, generation-counted
// registry that sits at the boundary between Go-owned FST objects and
// opaque 32-bit handles suitable for crossing an interop line: insert,
// get, pin/unpin, remove, and an optimistic-commit primitive
// (CommitMutation) for callers that compute a replacement object
// outside the lock.
package handle

import (
	"fmt"
	"sync"

	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/internal/logging"
)

// Handle is an opaque 32-bit reference into a Table. The zero value is
// never returned by Insert and is reserved as an explicit "invalid"
// sentinel for callers that need one.
type Handle uint32

// Invalid is the reserved sentinel handle value never issued by
// Insert.
const Invalid Handle = 0

type slot[T any] struct {
	obj         T
	hasObj      bool
	generation  uint32
	pinCount    int32
	pendingFree bool
}

// Table is a handle table for one object kind: one
// instantiation per (builder-vs-frozen, semiring) pair, per the
// boundary layer's per-kind convention.
type Table[T any] struct {
	mu       sync.Mutex
	slots    []slot[T]
	freeList []uint32
}

// NewTable returns an empty handle table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{}
}

// encode/decode keep the 32-bit handle space by splitting it: the low
// 16 bits are the slot index, the high 16 bits are the generation
// (mod 2^16). This keeps the table compact while still detecting
// stale handles across reuse for any table with fewer than 65536 live
// slots, which is the practical ceiling for this engine's use.
func encode(idx uint32, generation uint32) Handle {
	return Handle((generation&0xFFFF)<<16 | (idx & 0xFFFF))
}

func decode(h Handle) (idx uint32, generation uint32) {
	v := uint32(h)
	return v & 0xFFFF, (v >> 16) & 0xFFFF
}

// Insert stores obj and returns a fresh handle for it, reusing a
// free-list slot if one is available.
func (t *Table[T]) Insert(obj T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.freeList); n > 0 {
		idx = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		s := &t.slots[idx]
		s.generation++
		if s.generation == 0 {
			s.generation = 1 // generation 0 is reserved, never issued
		}
		s.obj = obj
		s.hasObj = true
		s.pinCount = 0
		s.pendingFree = false
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{obj: obj, hasObj: true, generation: 1})
	}
	h := encode(idx, t.slots[idx].generation)
	logging.Logger().Debug().Uint32("handle", uint32(h)).Msg("handle inserted")
	return h
}

func (t *Table[T]) lookup(h Handle) (*slot[T], error) {
	idx, generation := decode(h)
	if int(idx) >= len(t.slots) {
		return nil, fmt.Errorf("%w: handle %d out of range", fsterr.ErrHandleInvalid, h)
	}
	s := &t.slots[idx]
	if !s.hasObj || s.generation != generation || s.pendingFree {
		return nil, fmt.Errorf("%w: handle %d is stale or freed", fsterr.ErrHandleInvalid, h)
	}
	return s, nil
}

// Get returns the object h refers to, rejecting stale, freed, or
// pending-free handles.
func (t *Table[T]) Get(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.obj, nil
}

// Generation returns h's slot generation, for the optimistic-commit
// protocol's snapshot/compare step.
func (t *Table[T]) Generation(h Handle) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookup(h)
	if err != nil {
		return 0, err
	}
	return s.generation, nil
}

// Pin increments h's pin count and returns the current object,
// allowing the caller to read it lock-free afterward.
func (t *Table[T]) Pin(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	s.pinCount++
	return s.obj, nil
}

// Unpin decrements h's pin count; if it drops to zero and the slot was
// marked pending-free, the slot is destroyed and recycled now. Unlike
// Get, Unpin does not reject a handle whose generation has since moved
// due to a deferred Remove: a caller holding a pin already established
// that handle's validity at Pin time, and remove intentionally bumps
// the generation on a pinned slot precisely to stop new lookups while
// still letting the existing pin holder release it.
func (t *Table[T]) Unpin(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, _ := decode(h)
	if int(idx) >= len(t.slots) {
		return fmt.Errorf("%w: handle %d out of range", fsterr.ErrHandleInvalid, h)
	}
	s := &t.slots[idx]
	if !s.hasObj {
		return fmt.Errorf("%w: handle %d already destroyed", fsterr.ErrHandleInvalid, h)
	}
	if s.pinCount > 0 {
		s.pinCount--
	}
	if s.pinCount == 0 && s.pendingFree {
		t.destroy(idx)
	}
	return nil
}

// Remove releases h. If the slot is pinned, destruction is deferred
// until the pin count drops to zero.
func (t *Table[T]) Remove(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, generation := decode(h)
	if int(idx) >= len(t.slots) {
		return fmt.Errorf("%w: handle %d out of range", fsterr.ErrHandleInvalid, h)
	}
	s := &t.slots[idx]
	if !s.hasObj || s.generation != generation {
		return fmt.Errorf("%w: handle %d already removed", fsterr.ErrHandleInvalid, h)
	}
	if s.pinCount > 0 {
		s.pendingFree = true
		s.generation++
		if s.generation == 0 {
			s.generation = 1
		}
		logging.Logger().Debug().Uint32("handle", uint32(h)).Msg("remove deferred: handle pinned")
		return nil
	}
	t.destroy(idx)
	return nil
}

func (t *Table[T]) destroy(idx uint32) {
	var zero T
	t.slots[idx].obj = zero
	t.slots[idx].hasObj = false
	t.slots[idx].pendingFree = false
	t.freeList = append(t.freeList, idx)
}

// BumpGeneration advances h's generation without touching the stored
// object, used by the optimistic-commit protocol to invalidate
// in-flight readers after a successful swap.
func (t *Table[T]) BumpGeneration(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookup(h)
	if err != nil {
		return err
	}
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	return nil
}

// CommitResult is returned from CommitMutation: Committed is false
// when the generation moved between snapshot and commit, meaning the
// caller's computed result must be discarded and the mutation retried
// or reported as InvalidArgument.
type CommitResult struct {
	Committed  bool
	Generation uint32
}

// CommitMutation implements the optimistic-commit protocol: the caller has already read snapshotGeneration under a prior
// Generation() call and computed newObj against an immutable copy
// without holding the lock. CommitMutation re-validates the handle is
// still at that generation before installing newObj, bumping the
// generation on success.
func (t *Table[T]) CommitMutation(h Handle, snapshotGeneration uint32, newObj T) (CommitResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookup(h)
	if err != nil {
		return CommitResult{}, err
	}
	if s.generation != snapshotGeneration {
		logging.Logger().Warn().Uint32("handle", uint32(h)).Msg("optimistic commit rejected: generation advanced")
		return CommitResult{Committed: false, Generation: s.generation}, nil
	}
	s.obj = newObj
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	return CommitResult{Committed: true, Generation: s.generation}, nil
}
