package eval

import (
	"fmt"

	"nickandperla.net/bfi/internal/scanner"
	"nickandperla.net/bfi/internal/token"
)

// StructuralError reports a bracket that has no partner.
type StructuralError struct {
	Op     token.Op
	Rune   rune
	Line   int
	Column int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: unmatched '%c' at line %d, column %d", e.Rune, e.Line, e.Column)
}

func newStructuralError(d *scanner.StructuralDefect) *StructuralError {
	return &StructuralError{Op: d.Op, Rune: d.Rune, Line: d.Line, Column: d.Column}
}

func structuralErrorAt(in *scanner.Instruction) *StructuralError {
	return &StructuralError{Op: in.Op, Rune: in.Rune, Line: in.Line, Column: in.Column}
}
