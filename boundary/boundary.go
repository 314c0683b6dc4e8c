// Package boundary implements the opaque-handle operation surface
// meant to sit at an interop line that cannot carry raw pointers:
// lifecycle (new, clone, free, freeze, load, save), mutable builders,
// operations that return fresh handles, in-place mutators that return
// status codes instead of detailed errors, string utilities, and a
// global teardown. It wraps four handle.Table instances — one each
// for Mutable[Tropical], Mutable[Log], Frozen[Tropical], and
// Frozen[Log] — behind a Registry[S] so the two semirings get
// independent handle spaces. Handle bookkeeping is serialized by each
// table's lock. The in-place mutators (Minimize, Union, Concat,
// Closure, Repeat, Invert, Project) modify the stored object directly
// and do not go through the table's optimistic-commit check, so calls
// that mutate the same handle concurrently, or read it while it is
// being mutated, are not synchronized with each other.
package boundary

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"

	"github.com/jamra/gofst/binio"
	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/handle"
	"github.com/jamra/gofst/ops"
	"github.com/jamra/gofst/semiring"
	"github.com/jamra/gofst/textio"
)

// Status is the boundary's result code for in-place mutating
// operations: callers at the interop line receive a status code or a
// sentinel invalid handle, never a Go error value.
type Status int

const (
	StatusOK Status = iota
	StatusOutOfMemory
	StatusInvalidArgument
	StatusInvalidState
	StatusIOError
)

// String renders a Status using the boundary surface's wire
// vocabulary (ok/oom/invalid_arg/invalid_state/io_error).
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusOutOfMemory:
		return "oom"
	case StatusInvalidState:
		return "invalid_state"
	case StatusIOError:
		return "io_error"
	default:
		return "invalid_arg"
	}
}

func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, fsterr.ErrOutOfMemory):
		return StatusOutOfMemory
	case errors.Is(err, fsterr.ErrInvalidState):
		return StatusInvalidState
	case errors.Is(err, fsterr.ErrIOError):
		return StatusIOError
	default:
		return StatusInvalidArgument
	}
}

// Registry owns the handle table for Mutable[S] builders and the
// handle table for Frozen[S] snapshots, the per-(kind, semiring)
// convention the boundary layer is scoped around.
type Registry[S semiring.Semiring] struct {
	sr      S
	mutable *handle.Table[*fst.Mutable[S]]
	frozen  *handle.Table[*fst.Frozen[S]]
}

func newRegistry[S semiring.Semiring](sr S) *Registry[S] {
	return &Registry[S]{
		sr:      sr,
		mutable: handle.NewTable[*fst.Mutable[S]](),
		frozen:  handle.NewTable[*fst.Frozen[S]](),
	}
}

var (
	// Tropical is the boundary surface for tropical-semiring FSTs.
	Tropical = newRegistry[semiring.Tropical](semiring.Tropical{})
	// Log is the boundary surface for log-semiring FSTs.
	Log = newRegistry[semiring.Log](semiring.Log{})
)

// Teardown discards every live handle in both registries, replacing
// their tables with fresh empty ones. Handles issued before Teardown
// are invalid afterward.
func Teardown() {
	Tropical.reset()
	Log.reset()
}

func (r *Registry[S]) reset() {
	r.mutable = handle.NewTable[*fst.Mutable[S]]()
	r.frozen = handle.NewTable[*fst.Frozen[S]]()
}

// Name returns the registry's semiring name (e.g. "tropical", "log").
func (r *Registry[S]) Name() string { return r.sr.Name() }

// ---- Lifecycle ----

// New inserts a fresh, empty mutable FST and returns its handle.
func (r *Registry[S]) New() handle.Handle {
	return r.mutable.Insert(fst.NewMutable[S](r.sr))
}

// Clone returns a handle to an independent deep copy of h's mutable
// FST.
func (r *Registry[S]) Clone(h handle.Handle) (handle.Handle, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(m.Clone()), nil
}

// Free releases h, whether it names a mutable builder or a frozen
// snapshot.
func (r *Registry[S]) Free(h handle.Handle) Status {
	if err := r.mutable.Remove(h); err == nil {
		return StatusOK
	}
	if err := r.frozen.Remove(h); err == nil {
		return StatusOK
	}
	return StatusInvalidArgument
}

// Freeze converts h's mutable FST into an immutable snapshot and
// returns a fresh handle into the frozen table; h is left untouched.
func (r *Registry[S]) Freeze(h handle.Handle) (handle.Handle, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return handle.Invalid, err
	}
	f, err := m.Freeze()
	if err != nil {
		return handle.Invalid, err
	}
	return r.frozen.Insert(f), nil
}

// LoadNative reads path as this engine's native binary snapshot
// format and returns a handle into the frozen table.
func (r *Registry[S]) LoadNative(path string) (handle.Handle, error) {
	f, err := binio.ReadFile(r.sr, path)
	if err != nil {
		return handle.Invalid, err
	}
	return r.frozen.Insert(f), nil
}

// LoadATT runs an external AT&T-printing tool against a foreign
// binary (e.g. openfst's fstprint), parses its stdout as AT&T text,
// and returns a handle into the mutable table. A non-zero exit or an
// unparsable stdout is reported as ErrExternalToolFailed: the
// boundary caller has no way to introspect a failing external
// process, only that the import failed.
func (r *Registry[S]) LoadATT(tool string, args ...string) (handle.Handle, error) {
	stdout, err := exec.Command(tool, args...).Output()
	if err != nil {
		return handle.Invalid, fmt.Errorf("%w: %v", fsterr.ErrExternalToolFailed, err)
	}
	m, err := textio.Read(r.sr, bytes.NewReader(stdout))
	if err != nil {
		return handle.Invalid, fmt.Errorf("%w: %v", fsterr.ErrExternalToolFailed, err)
	}
	return r.mutable.Insert(m), nil
}

// Save writes h's native binary snapshot to path, freezing a mutable
// builder handle first if h does not already name a frozen one.
func (r *Registry[S]) Save(h handle.Handle, path string) error {
	if f, err := r.frozen.Get(h); err == nil {
		return binio.WriteFile(f, path)
	}
	m, err := r.mutable.Get(h)
	if err != nil {
		return err
	}
	f, err := m.Freeze()
	if err != nil {
		return err
	}
	return binio.WriteFile(f, path)
}

// ---- Mutable builders ----

// AddState appends a fresh state to h's mutable FST and returns its id.
func (r *Registry[S]) AddState(h handle.Handle) (fst.StateId, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return fst.NoStateId, err
	}
	return m.AddState(), nil
}

// SetStart designates s as h's start state.
func (r *Registry[S]) SetStart(h handle.Handle, s fst.StateId) error {
	m, err := r.mutable.Get(h)
	if err != nil {
		return err
	}
	return m.SetStart(s)
}

// SetFinal sets the final weight of state s in h's mutable FST.
func (r *Registry[S]) SetFinal(h handle.Handle, s fst.StateId, w semiring.Weight) error {
	m, err := r.mutable.Get(h)
	if err != nil {
		return err
	}
	return m.SetFinal(s, w)
}

// AddArc appends a to state s's outgoing arc list in h's mutable FST.
func (r *Registry[S]) AddArc(h handle.Handle, s fst.StateId, a fst.Arc) error {
	m, err := r.mutable.Get(h)
	if err != nil {
		return err
	}
	return m.AddArc(s, a)
}

// NumStates returns h's state count.
func (r *Registry[S]) NumStates(h handle.Handle) (int, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return 0, err
	}
	return m.NumStates(), nil
}

// Arcs returns a copy of state s's outgoing arcs in h's mutable FST:
// a copy, not the internal view Mutable.Arcs exposes in-process,
// since a handle-table caller on the far side of an interop line
// cannot be trusted to respect the aliasing contract.
func (r *Registry[S]) Arcs(h handle.Handle, s fst.StateId) ([]fst.Arc, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return nil, err
	}
	return append([]fst.Arc(nil), m.Arcs(s)...), nil
}

// Final returns the final weight of state s in h's mutable FST.
func (r *Registry[S]) Final(h handle.Handle, s fst.StateId) (semiring.Weight, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return r.sr.Zero(), err
	}
	return m.Final(s)
}

// ---- Operations returning new handles ----

// Compose relates two mutable-handle FSTs and returns a fresh handle
// to the resulting transducer.
func (r *Registry[S]) Compose(a, b handle.Handle) (handle.Handle, error) {
	am, err := r.mutable.Get(a)
	if err != nil {
		return handle.Invalid, err
	}
	bm, err := r.mutable.Get(b)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(ops.Compose[S](r.sr, am, bm)), nil
}

// ComposeFrozen is Compose over two frozen snapshots, exercising the
// ilabel-indexed accessor Frozen exposes to composition's right-hand
// operand.
func (r *Registry[S]) ComposeFrozen(a, b handle.Handle) (handle.Handle, error) {
	af, err := r.frozen.Get(a)
	if err != nil {
		return handle.Invalid, err
	}
	bf, err := r.frozen.Get(b)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(ops.Compose[S](r.sr, af, bf)), nil
}

// ComposeFrozenShortestPath fuses ComposeFrozen with a shortest-path
// (n=1) search over frozen operands, without ever materializing the
// full product FST.
func (r *Registry[S]) ComposeFrozenShortestPath(a, b handle.Handle) (handle.Handle, error) {
	af, err := r.frozen.Get(a)
	if err != nil {
		return handle.Invalid, err
	}
	bf, err := r.frozen.Get(b)
	if err != nil {
		return handle.Invalid, err
	}
	out, err := ops.ComposeShortestPath[S](r.sr, af, bf, 1)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(out), nil
}

// Determinize returns a handle to an equivalent deterministic FST.
func (r *Registry[S]) Determinize(h handle.Handle) (handle.Handle, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(ops.Determinize[S](r.sr, m)), nil
}

// RmEpsilon returns a handle to an epsilon-free equivalent of h.
func (r *Registry[S]) RmEpsilon(h handle.Handle) (handle.Handle, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(ops.RmEpsilon[S](r.sr, m)), nil
}

// ShortestPath returns a handle to h's single best-weight accepting
// path (n=1), or ErrNoAcceptingPath if none exists.
func (r *Registry[S]) ShortestPath(h handle.Handle) (handle.Handle, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return handle.Invalid, err
	}
	out, err := ops.ShortestPath[S](r.sr, m)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(out), nil
}

// Optimize returns a handle to h reduced by the standard
// rm_epsilon/encode/determinize/minimize/decode/connect pipeline.
func (r *Registry[S]) Optimize(h handle.Handle) (handle.Handle, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return handle.Invalid, err
	}
	out, err := ops.Optimize[S](r.sr, m)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(out), nil
}

// CDRewrite builds the rule "rewrite / left _ right" over alphabet
// and returns a handle to it. rewrite, left, and right must each name
// a unit-weight mutable FST.
func (r *Registry[S]) CDRewrite(rewrite, left, right handle.Handle, alphabet []fst.Label, penalty semiring.Weight) (handle.Handle, error) {
	rw, err := r.mutable.Get(rewrite)
	if err != nil {
		return handle.Invalid, err
	}
	lc, err := r.mutable.Get(left)
	if err != nil {
		return handle.Invalid, err
	}
	rc, err := r.mutable.Get(right)
	if err != nil {
		return handle.Invalid, err
	}
	out, err := ops.CDRewrite[S](r.sr, rw, lc, rc, alphabet, penalty)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(out), nil
}

// Difference returns a handle to the FST accepting exactly what a
// accepts and b (a deterministic, epsilon-free acceptor over
// alphabet) rejects.
func (r *Registry[S]) Difference(a, b handle.Handle, alphabet []fst.Label) (handle.Handle, error) {
	am, err := r.mutable.Get(a)
	if err != nil {
		return handle.Invalid, err
	}
	bm, err := r.mutable.Get(b)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(ops.Difference[S](r.sr, am, bm, alphabet)), nil
}

// ReplaceRule pairs a non-terminal label with the handle of the
// mutable FST it expands to, the handle-surface counterpart of
// ops.ReplaceRule.
type ReplaceRule struct {
	Label fst.Label
	Fst   handle.Handle
}

// Replace expands root's non-terminal arcs against rules and returns
// a handle to the flattened result, or ErrCyclicDependency if the
// rules reference each other cyclically with no intervening
// label-consuming arc.
func (r *Registry[S]) Replace(root handle.Handle, rules []ReplaceRule) (handle.Handle, error) {
	rootM, err := r.mutable.Get(root)
	if err != nil {
		return handle.Invalid, err
	}
	opsRules := make([]ops.ReplaceRule[S], 0, len(rules))
	for _, rule := range rules {
		fm, err := r.mutable.Get(rule.Fst)
		if err != nil {
			return handle.Invalid, err
		}
		opsRules = append(opsRules, ops.ReplaceRule[S]{Label: rule.Label, Fst: fm})
	}
	out, err := ops.Replace[S](r.sr, rootM, opsRules)
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(out), nil
}

// ---- In-place mutating operations ----

// Minimize collapses equivalent states of h's (already-deterministic)
// mutable FST in place.
func (r *Registry[S]) Minimize(h handle.Handle) Status {
	m, err := r.mutable.Get(h)
	if err != nil {
		return StatusInvalidArgument
	}
	return statusFor(ops.Minimize(r.sr, m))
}

// Union rewrites h in place to accept the union of its own language
// and other's.
func (r *Registry[S]) Union(h, other handle.Handle) Status {
	m, err := r.mutable.Get(h)
	if err != nil {
		return StatusInvalidArgument
	}
	om, err := r.mutable.Get(other)
	if err != nil {
		return StatusInvalidArgument
	}
	return statusFor(ops.Union(r.sr, m, om))
}

// Concat rewrites h in place to accept its own language followed by
// other's.
func (r *Registry[S]) Concat(h, other handle.Handle) Status {
	m, err := r.mutable.Get(h)
	if err != nil {
		return StatusInvalidArgument
	}
	om, err := r.mutable.Get(other)
	if err != nil {
		return StatusInvalidArgument
	}
	return statusFor(ops.Concat(r.sr, m, om))
}

// Closure rewrites h in place to its Kleene star (star=true) or plus
// (star=false) closure.
func (r *Registry[S]) Closure(h handle.Handle, star bool) Status {
	m, err := r.mutable.Get(h)
	if err != nil {
		return StatusInvalidArgument
	}
	return statusFor(ops.Closure(r.sr, m, star))
}

// Repeat rewrites h in place to require between min and max copies of
// its own language.
func (r *Registry[S]) Repeat(h handle.Handle, min, max int) Status {
	m, err := r.mutable.Get(h)
	if err != nil {
		return StatusInvalidArgument
	}
	return statusFor(ops.Repeat(r.sr, m, min, max))
}

// Invert swaps ilabel and olabel on every arc of h in place.
func (r *Registry[S]) Invert(h handle.Handle) Status {
	m, err := r.mutable.Get(h)
	if err != nil {
		return StatusInvalidArgument
	}
	return statusFor(ops.Invert(m))
}

// Project collapses h to an acceptor over the chosen tape, in place.
func (r *Registry[S]) Project(h handle.Handle, kind ops.ProjectionKind) Status {
	m, err := r.mutable.Get(h)
	if err != nil {
		return StatusInvalidArgument
	}
	return statusFor(ops.Project(m, kind))
}

// ---- String utilities ----

// Compile parses s as AT&T text and returns a handle to the resulting
// mutable FST.
func (r *Registry[S]) Compile(s string) (handle.Handle, error) {
	m, err := textio.Read(r.sr, bytes.NewReader([]byte(s)))
	if err != nil {
		return handle.Invalid, err
	}
	return r.mutable.Insert(m), nil
}

// Print renders h's mutable FST as AT&T text.
func (r *Registry[S]) Print(h handle.Handle) (string, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := textio.Write(r.sr, m, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PrintOutput decodes h's single best accepting path on the output
// tape back into a byte string, following CompileString's byte+1
// label convention: ShortestPath n=1, projected onto the output tape,
// walked arc by arc.
func (r *Registry[S]) PrintOutput(h handle.Handle) (string, error) {
	m, err := r.mutable.Get(h)
	if err != nil {
		return "", err
	}
	best, err := ops.ShortestPath[S](r.sr, m)
	if err != nil {
		return "", err
	}
	if err := ops.Project(best, ops.ProjectOutput); err != nil {
		return "", err
	}
	var out []byte
	cur := best.Start()
	for cur != fst.NoStateId {
		arcs := best.Arcs(cur)
		if len(arcs) == 0 {
			break
		}
		out = append(out, byte(arcs[0].ILabel-1))
		cur = arcs[0].NextState
	}
	return string(out), nil
}
