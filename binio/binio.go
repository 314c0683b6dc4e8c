// Package binio reads and writes the native binary FST snapshot
// format: a bit-exact little-endian header, per-state
// table, and per-arc table, identical to what fst.Frozen already holds
// in memory. Write streams a Frozen's backing buffer straight to disk;
// Read copies a file back into memory; LoadMmap maps the file and
// hands the kernel page cache directly to fst.FromBytes, avoiding the
// read-and-copy path entirely for large snapshots.
package binio

import (
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/fsterr"
	"github.com/jamra/gofst/semiring"
)

// Write streams f's backing buffer to w verbatim: the in-memory layout
// already is the on-disk layout.
func Write[S semiring.Semiring](f *fst.Frozen[S], w io.Writer) error {
	if _, err := w.Write(f.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	return nil
}

// WriteFile is a convenience wrapper that creates (or truncates) path
// and writes f to it.
func WriteFile[S semiring.Semiring](f *fst.Frozen[S], path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	defer file.Close()
	if err := Write(f, file); err != nil {
		return err
	}
	return nil
}

// Read copies the full contents of r into memory and validates them as
// a Frozen snapshot via fst.FromBytes.
func Read[S semiring.Semiring](sr S, r io.Reader) (*fst.Frozen[S], error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	return fst.FromBytes(sr, buf)
}

// ReadFile opens path and reads it as a Frozen snapshot.
func ReadFile[S semiring.Semiring](sr S, path string) (*fst.Frozen[S], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	defer file.Close()
	return Read(sr, file)
}

// MappedFrozen bundles a Frozen snapshot with the memory mapping that
// backs its byte buffer, so callers can release the mapping once
// they're done with the snapshot.
type MappedFrozen[S semiring.Semiring] struct {
	*fst.Frozen[S]
	mapping mmap.MMap
}

// Close unmaps the underlying file. The embedded Frozen snapshot must
// not be used afterward.
func (m *MappedFrozen[S]) Close() error {
	if m.mapping == nil {
		return nil
	}
	err := m.mapping.Unmap()
	m.mapping = nil
	if err != nil {
		return fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	return nil
}

// LoadMmap memory-maps path read-only and wraps the mapped bytes
// directly as a Frozen snapshot with fst.FromBytes: no copy of the arc
// or state tables is ever made, satisfying the zero-copy loader
// contract. The returned value's Close must be called to release the
// mapping once the snapshot is no longer needed.
func LoadMmap[S semiring.Semiring](sr S, path string) (*MappedFrozen[S], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	defer file.Close()

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}

	f, err := fst.FromBytes(sr, []byte(m))
	if err != nil {
		_ = m.Unmap()
		return nil, err
	}
	return &MappedFrozen[S]{Frozen: f, mapping: m}, nil
}
