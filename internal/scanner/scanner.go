// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner turns source text into a resolved instruction sequence.
package scanner

import (
	"bufio"
	"io"
	"strings"

	"nickandperla.net/bfi/internal/token"
)

// Scanner reads source rune-by-rune and emits one Instruction per rune.
type Scanner struct {
	reader *bufio.Reader
	line   int // Current line number (1-based)
	column int // Column of the next rune (1-based)
}

// Instruction is a single scanned rune with its resolved jump target.
type Instruction struct {
	Op       token.Op
	Rune     rune
	Target   int  // Jump destination, valid only when Resolved
	Resolved bool // False for brackets without a partner
	Line     int
	Column   int
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		line:   1,
		column: 1,
	}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string) *Scanner {
	return New(strings.NewReader(s))
}

// Next returns the next instruction, or io.EOF once the input is exhausted.
// Jump targets are not resolved here; see Scan.
func (s *Scanner) Next() (Instruction, error) {
	r, _, err := s.reader.ReadRune()
	if err != nil {
		return Instruction{}, err
	}

	in := Instruction{
		Op:     token.OpFromRune(r),
		Rune:   r,
		Line:   s.line,
		Column: s.column,
	}

	// Track newlines
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}

	return in, nil
}

// ScanReader scans everything from r and resolves brackets.
// The only errors are read errors from r.
func ScanReader(r io.Reader) (*Program, error) {
	s := New(r)
	p := &Program{}
	var pending []int

	for {
		in, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		idx := len(p.Instructions)
		switch in.Op {
		case token.LOOP_START:
			pending = append(pending, idx)
		case token.LOOP_END:
			if n := len(pending); n > 0 {
				open := pending[n-1]
				pending = pending[:n-1]
				in.Target = open + 1
				in.Resolved = true
				p.Instructions[open].Target = idx + 1
				p.Instructions[open].Resolved = true
			}
		}
		p.Instructions = append(p.Instructions, in)
	}

	return p, nil
}

// Scan scans a source string. It never fails; unmatched brackets are left
// unresolved and reported by Program.Validate.
func Scan(src string) *Program {
	// strings.Reader never returns a non-EOF error
	p, _ := ScanReader(strings.NewReader(src))
	return p
}
