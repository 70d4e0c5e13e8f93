// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package tape implements the interpreter's sparse, bidirectionally
// unbounded byte memory and the cursor that addresses it.
package tape

import "sort"

// Tape maps signed addresses to byte cells. Absent addresses read as zero.
type Tape struct {
	cells map[int]byte
}

// New creates a new empty tape.
func New() *Tape {
	return &Tape{
		cells: make(map[int]byte),
	}
}

// Get returns the cell at addr, or 0 if it was never written.
func (t *Tape) Get(addr int) byte {
	return t.cells[addr]
}

// Has returns true if addr has been written since the last Clear.
func (t *Tape) Has(addr int) bool {
	_, ok := t.cells[addr]
	return ok
}

// Set stores v at addr.
func (t *Tape) Set(addr int, v byte) {
	t.cells[addr] = v
}

// Inc adds one to the cell at addr, wrapping 255 to 0.
func (t *Tape) Inc(addr int) {
	t.cells[addr]++
}

// Dec subtracts one from the cell at addr, wrapping 0 to 255.
func (t *Tape) Dec(addr int) {
	t.cells[addr]--
}

// Len returns the number of written cells.
func (t *Tape) Len() int {
	return len(t.cells)
}

// Clear drops every cell.
func (t *Tape) Clear() {
	clear(t.cells)
}

// Cell is one addressed tape value.
type Cell struct {
	Addr  int
	Value byte
}

// Cells returns every written cell ordered by address.
func (t *Tape) Cells() []Cell {
	cells := make([]Cell, 0, len(t.cells))
	for addr, v := range t.cells {
		cells = append(cells, Cell{Addr: addr, Value: v})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Addr < cells[j].Addr })
	return cells
}

// State is the machine state of one interpreter session.
type State struct {
	Tape   *Tape
	Cursor int
}

// NewState creates a zeroed session state.
func NewState() *State {
	return &State{Tape: New()}
}

// Current returns the cell under the cursor.
func (s *State) Current() byte {
	return s.Tape.Get(s.Cursor)
}

// Reset clears the tape and returns the cursor to address 0.
func (s *State) Reset() {
	s.Tape.Clear()
	s.Cursor = 0
}

// Restore replaces the state with the given cells and cursor.
func (s *State) Restore(cells []Cell, cursor int) {
	s.Reset()
	for _, c := range cells {
		s.Tape.Set(c.Addr, c.Value)
	}
	s.Cursor = cursor
}
