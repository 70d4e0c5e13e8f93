// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the tape machine's instruction kinds and their source runes.
package token

// Op is the kind of a single instruction.
type Op int

const (
	NOOP Op = iota

	MOVE_RIGHT // > - advance the cursor
	MOVE_LEFT  // < - retreat the cursor
	INCREMENT  // + - add one to the current cell (wrapping)
	DECREMENT  // - - subtract one from the current cell (wrapping)
	OUTPUT     // . - write the current cell
	INPUT      // , - read one character into the current cell
	LOOP_START // [ - jump past the matching ] when the cell is zero
	LOOP_END   // ] - jump back past the matching [ when the cell is non-zero
)

// Source runes for each instruction.
const (
	RuneMoveRight = '>'
	RuneMoveLeft  = '<'
	RuneIncrement = '+'
	RuneDecrement = '-'
	RuneOutput    = '.'
	RuneInput     = ','
	RuneLoopStart = '['
	RuneLoopEnd   = ']'
)

// OpFromRune returns the instruction kind for a rune. Any rune outside the
// instruction set is NOOP.
func OpFromRune(r rune) Op {
	switch r {
	case RuneMoveRight:
		return MOVE_RIGHT
	case RuneMoveLeft:
		return MOVE_LEFT
	case RuneIncrement:
		return INCREMENT
	case RuneDecrement:
		return DECREMENT
	case RuneOutput:
		return OUTPUT
	case RuneInput:
		return INPUT
	case RuneLoopStart:
		return LOOP_START
	case RuneLoopEnd:
		return LOOP_END
	}
	return NOOP
}

// String returns the string representation of an instruction kind.
func (o Op) String() string {
	switch o {
	case NOOP:
		return "NOOP"
	case MOVE_RIGHT:
		return "MOVE_RIGHT"
	case MOVE_LEFT:
		return "MOVE_LEFT"
	case INCREMENT:
		return "INCREMENT"
	case DECREMENT:
		return "DECREMENT"
	case OUTPUT:
		return "OUTPUT"
	case INPUT:
		return "INPUT"
	case LOOP_START:
		return "LOOP_START"
	case LOOP_END:
		return "LOOP_END"
	}
	return "UNKNOWN"
}

// Rune returns the canonical source rune for an instruction kind, or 0 for NOOP.
func (o Op) Rune() rune {
	switch o {
	case MOVE_RIGHT:
		return RuneMoveRight
	case MOVE_LEFT:
		return RuneMoveLeft
	case INCREMENT:
		return RuneIncrement
	case DECREMENT:
		return RuneDecrement
	case OUTPUT:
		return RuneOutput
	case INPUT:
		return RuneInput
	case LOOP_START:
		return RuneLoopStart
	case LOOP_END:
		return RuneLoopEnd
	}
	return 0
}

// IsJump returns true if the instruction carries a jump target.
func (o Op) IsJump() bool {
	switch o {
	case LOOP_START, LOOP_END:
		return true
	}
	return false
}
