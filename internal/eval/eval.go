// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval executes resolved instruction sequences against a tape.
package eval

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"nickandperla.net/bfi/internal/scanner"
	"nickandperla.net/bfi/internal/tape"
	"nickandperla.net/bfi/internal/token"
)

// InputReader reads exactly one character for the INPUT instruction.
type InputReader func() (rune, error)

// OutputWriter writes output produced by OUTPUT and by input echo.
type OutputWriter func(text string) error

// Evaluator runs programs. It holds no tape of its own; callers pass the
// session state into every run.
type Evaluator struct {
	inputReader  InputReader
	outputWriter OutputWriter
	logger       *slog.Logger
	steps        int64 // Instructions executed by the last run
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithInputReader sets the character source for INPUT.
func WithInputReader(r InputReader) Option {
	return func(e *Evaluator) { e.inputReader = r }
}

// WithOutputWriter sets the sink for OUTPUT and input echo.
func WithOutputWriter(w OutputWriter) Option {
	return func(e *Evaluator) { e.outputWriter = w }
}

// WithLogger sets the logger for run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	stdin := bufio.NewReader(os.Stdin)
	e := &Evaluator{
		inputReader: func() (rune, error) {
			r, _, err := stdin.ReadRune()
			return r, err
		},
		outputWriter: func(text string) error {
			_, err := io.WriteString(os.Stdout, text)
			return err
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Steps returns the number of instructions executed by the last run.
func (e *Evaluator) Steps() int64 {
	return e.steps
}

// Eval scans src and runs it against st.
func (e *Evaluator) Eval(src string, st *tape.State) error {
	return e.Run(scanner.Scan(src), st)
}

// EvalReader scans everything from r and runs it against st.
func (e *Evaluator) EvalReader(r io.Reader, st *tape.State) error {
	p, err := scanner.ScanReader(r)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	return e.Run(p, st)
}

// Run executes p from the first instruction until the program counter
// passes the end. A program with any unmatched bracket is rejected before
// the first instruction runs; st is left untouched in that case.
func (e *Evaluator) Run(p *scanner.Program, st *tape.State) error {
	e.steps = 0
	start := time.Now()

	if d := p.Validate(); d != nil {
		err := newStructuralError(d)
		e.logger.Debug("program rejected", "error", err, "instructions", p.Len())
		return err
	}

	err := e.exec(p.Instructions, st)
	e.logger.Debug("run finished",
		"instructions", len(p.Instructions),
		"steps", e.steps,
		"cursor", st.Cursor,
		"cells", st.Tape.Len(),
		"elapsed", time.Since(start),
		"ok", err == nil,
	)
	return err
}

func (e *Evaluator) exec(code []scanner.Instruction, st *tape.State) error {
	pc := 0
	for pc < len(code) {
		in := &code[pc]
		e.steps++

		switch in.Op {
		case token.MOVE_RIGHT:
			st.Cursor++

		case token.MOVE_LEFT:
			st.Cursor--

		case token.INCREMENT:
			st.Tape.Inc(st.Cursor)

		case token.DECREMENT:
			st.Tape.Dec(st.Cursor)

		case token.OUTPUT:
			if err := e.outputWriter(string(rune(st.Current()))); err != nil {
				return fmt.Errorf("output at line %d, column %d: %w", in.Line, in.Column, err)
			}

		case token.INPUT:
			if err := e.input(in, st); err != nil {
				return err
			}

		case token.LOOP_START:
			if !in.Resolved {
				return structuralErrorAt(in)
			}
			if st.Current() == 0 {
				pc = in.Target
				continue
			}

		case token.LOOP_END:
			if !in.Resolved {
				return structuralErrorAt(in)
			}
			if st.Current() != 0 {
				pc = in.Target
				continue
			}
		}

		pc++
	}
	return nil
}

// input reads one character, echoes it and stores its low byte. End of input
// leaves the cell unchanged.
func (e *Evaluator) input(in *scanner.Instruction, st *tape.State) error {
	if e.inputReader == nil {
		return nil
	}
	r, err := e.inputReader()
	if err == io.EOF {
		e.logger.Debug("input exhausted", "line", in.Line, "column", in.Column)
		return nil
	}
	if err != nil {
		return fmt.Errorf("input at line %d, column %d: %w", in.Line, in.Column, err)
	}
	if err := e.outputWriter(string(r)); err != nil {
		return fmt.Errorf("echo at line %d, column %d: %w", in.Line, in.Column, err)
	}
	st.Tape.Set(st.Cursor, byte(r))
	return nil
}

// RuneReader adapts an io.RuneReader to an InputReader.
func RuneReader(r io.RuneReader) InputReader {
	return func() (rune, error) {
		c, _, err := r.ReadRune()
		return c, err
	}
}

// StringInput returns an InputReader that yields the runes of s and then io.EOF.
func StringInput(s string) InputReader {
	return RuneReader(strings.NewReader(s))
}
