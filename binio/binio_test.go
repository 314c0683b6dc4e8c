package binio

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/semiring"
)

func buildSample(sr semiring.Tropical) *fst.Mutable[semiring.Tropical] {
	m := fst.NewMutable[semiring.Tropical](sr)
	s0 := m.AddState()
	s1 := m.AddState()
	_ = m.SetStart(s0)
	_ = m.SetFinal(s1, 2)
	_ = m.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 2, Weight: 3, NextState: s1})
	return m
}

func TestWriteReadRoundTrip(t *testing.T) {
	sr := semiring.Tropical{}
	frozen, err := buildSample(sr).Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(frozen, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read[semiring.Tropical](sr, &buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.NumStates() != frozen.NumStates() || got.Start() != frozen.Start() {
		t.Fatalf("round trip mismatch: states %d/%d start %d/%d", got.NumStates(), frozen.NumStates(), got.Start(), frozen.Start())
	}
	if !bytes.Equal(got.Bytes(), frozen.Bytes()) {
		t.Fatalf("expected byte-identical round trip")
	}
}

func TestWriteFileReadFileRoundTrip(t *testing.T) {
	sr := semiring.Tropical{}
	frozen, err := buildSample(sr).Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sample.fst")
	if err := WriteFile(frozen, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile[semiring.Tropical](sr, path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.NumArcs() != frozen.NumArcs() {
		t.Fatalf("expected matching arc counts, got %d vs %d", got.NumArcs(), frozen.NumArcs())
	}
}

func TestLoadMmapZeroCopyMatchesWrittenFile(t *testing.T) {
	sr := semiring.Tropical{}
	frozen, err := buildSample(sr).Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sample.fst")
	if err := WriteFile(frozen, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	mapped, err := LoadMmap[semiring.Tropical](sr, path)
	if err != nil {
		t.Fatalf("LoadMmap: %v", err)
	}
	defer mapped.Close()

	if mapped.NumStates() != frozen.NumStates() {
		t.Fatalf("expected matching state counts, got %d vs %d", mapped.NumStates(), frozen.NumStates())
	}
	a, ok := mapped.FindArc(0, 1)
	if !ok || a.OLabel != 2 || a.Weight != 3 {
		t.Fatalf("expected mmap-backed snapshot to expose the same arc, got %+v ok=%v", a, ok)
	}
}

func TestReadRejectsTruncatedFile(t *testing.T) {
	sr := semiring.Tropical{}
	frozen, err := buildSample(sr).Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	truncated := frozen.Bytes()[:10]
	_, err = Read[semiring.Tropical](sr, bytes.NewReader(truncated))
	if err == nil {
		t.Fatalf("expected a truncated buffer to be rejected")
	}
}
