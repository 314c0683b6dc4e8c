package fst

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jamra/gofst/fsterr"
)

// SymbolTable is a simple string↔uint32 map. It deliberately stops
// short of symbol-table-driven label resolution, and is used only by
// text I/O and by callers of
// the character-class acceptor helpers; the core Arc/Label types
// always carry raw uint32 labels.
type SymbolTable struct {
	symToLabel map[string]Label
	labelToSym []string
}

// NewSymbolTable returns a table with label 0 pre-bound to "<eps>".
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{symToLabel: make(map[string]Label), labelToSym: []string{"<eps>"}}
	t.symToLabel["<eps>"] = Epsilon
	return t
}

// AddSymbol assigns sym the next unused label, or returns its
// existing label if already present.
func (t *SymbolTable) AddSymbol(sym string) Label {
	if l, ok := t.symToLabel[sym]; ok {
		return l
	}
	l := Label(len(t.labelToSym))
	t.labelToSym = append(t.labelToSym, sym)
	t.symToLabel[sym] = l
	return l
}

// Label returns the label bound to sym, if any.
func (t *SymbolTable) Label(sym string) (Label, bool) {
	l, ok := t.symToLabel[sym]
	return l, ok
}

// Symbol returns the symbol bound to label, if any.
func (t *SymbolTable) Symbol(label Label) (string, bool) {
	if int(label) >= len(t.labelToSym) {
		return "", false
	}
	return t.labelToSym[label], true
}

// WriteText writes one "symbol\tlabel" pair per line, matching the
// AT&T ecosystem's symbol table convention.
func (t *SymbolTable) WriteText(w io.Writer) error {
	for label, sym := range t.labelToSym {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", sym, label); err != nil {
			return fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
		}
	}
	return nil
}

// ReadSymbolTable parses the format written by WriteText.
func ReadSymbolTable(r io.Reader) (*SymbolTable, error) {
	t := NewSymbolTable()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: malformed symbol table line %q", fsterr.ErrInvalidFormat, line)
		}
		label, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad label in %q: %v", fsterr.ErrInvalidFormat, line, err)
		}
		sym := fields[0]
		for int(label) >= len(t.labelToSym) {
			t.labelToSym = append(t.labelToSym, "")
		}
		t.labelToSym[label] = sym
		t.symToLabel[sym] = Label(label)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", fsterr.ErrIOError, err)
	}
	return t, nil
}
