// Package fsterr defines the closed set of error kinds returned by the
// transducer engine. Every operation either succeeds or returns one of
// these sentinels, optionally wrapped with context via fmt.Errorf's %w
// verb; callers compare with errors.Is.
package fsterr

import "errors"

var (
	// ErrOutOfMemory signals an allocation failure. In-place mutating
	// operations leave the receiver inconsistent when this occurs mid-operation;
	// clone first if that matters.
	ErrOutOfMemory = errors.New("fsterr: out of memory")

	// ErrInvalidArgument signals a bad handle, bad shape, or bad configuration.
	ErrInvalidArgument = errors.New("fsterr: invalid argument")

	// ErrInvalidState signals a state id out of range.
	ErrInvalidState = errors.New("fsterr: invalid state")

	// ErrIOError signals a binary/text read or write failure.
	ErrIOError = errors.New("fsterr: io error")

	// ErrExternalToolFailed signals failure of the AT&T importer's external tool.
	ErrExternalToolFailed = errors.New("fsterr: external tool failed")

	// ErrInvalidFormat signals a malformed binary or text container.
	ErrInvalidFormat = errors.New("fsterr: invalid format")

	// ErrInvalidMagic signals a binary file whose magic number doesn't match.
	ErrInvalidMagic = errors.New("fsterr: invalid magic")

	// ErrUnsupportedVersion signals a binary file version this build doesn't understand.
	ErrUnsupportedVersion = errors.New("fsterr: unsupported version")

	// ErrWeightTypeMismatch signals a binary file whose weight-type discriminator
	// doesn't match the semiring requested by the caller.
	ErrWeightTypeMismatch = errors.New("fsterr: weight type mismatch")

	// ErrUnexpectedEOF signals a truncated read.
	ErrUnexpectedEOF = errors.New("fsterr: unexpected eof")

	// ErrInvalidRange signals an invalid (min, max) pair passed to Repeat.
	ErrInvalidRange = errors.New("fsterr: invalid range")

	// ErrCyclicDependency signals a cycle among replace() sub-FSTs.
	ErrCyclicDependency = errors.New("fsterr: cyclic dependency")

	// ErrLabelOverflow signals that optimize's encode step ran out of label space.
	ErrLabelOverflow = errors.New("fsterr: label overflow")

	// ErrUnsupportedWeightedRewrite signals a cdrewrite input with non-unit weights.
	ErrUnsupportedWeightedRewrite = errors.New("fsterr: unsupported weighted rewrite")

	// ErrUnsupportedNShortest signals a shortest-path request for n != 1.
	ErrUnsupportedNShortest = errors.New("fsterr: unsupported n-shortest (only n=1)")

	// ErrNoAcceptingPath signals that shortest-path found no final state reachable
	// from the start.
	ErrNoAcceptingPath = errors.New("fsterr: no accepting path")

	// ErrHandleInvalid signals that a handle is unknown, stale, or pending-free.
	ErrHandleInvalid = errors.New("fsterr: invalid handle")
)
