package scanner

import (
	"fmt"

	"nickandperla.net/bfi/internal/token"
)

// Program is an ordered instruction sequence. Indices are the program
// counter's address space.
type Program struct {
	Instructions []Instruction
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// StructuralDefect describes a bracket left without a partner.
type StructuralDefect struct {
	Index  int
	Op     token.Op
	Rune   rune
	Line   int
	Column int
}

func (d *StructuralDefect) String() string {
	return fmt.Sprintf("unmatched '%c' at line %d, column %d", d.Rune, d.Line, d.Column)
}

// Validate returns the lowest-indexed unresolved bracket, or nil when every
// bracket has a partner.
func (p *Program) Validate() *StructuralDefect {
	for i, in := range p.Instructions {
		if in.Op.IsJump() && !in.Resolved {
			return &StructuralDefect{
				Index:  i,
				Op:     in.Op,
				Rune:   in.Rune,
				Line:   in.Line,
				Column: in.Column,
			}
		}
	}
	return nil
}
