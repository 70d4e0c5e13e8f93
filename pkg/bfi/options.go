// Package bfi provides the public API for the bfi tape interpreter.
package bfi

import (
	"bufio"
	"io"
	"log/slog"

	"nickandperla.net/bfi/internal/eval"
	"nickandperla.net/bfi/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// Store interface for custom snapshot stores.
type Store = store.Store

// Snapshot is a saved tape state.
type Snapshot = store.Snapshot

// InputReader reads one character for the INPUT instruction.
type InputReader = eval.InputReader

// OutputWriter receives OUTPUT bytes and input echo.
type OutputWriter = eval.OutputWriter

// WithSQLiteStore configures SQLite snapshot persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.storeErr = err
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithInputReader sets the character source for INPUT.
func WithInputReader(reader InputReader) Option {
	return func(r *Runtime) {
		r.inputReader = reader
	}
}

// WithInput reads INPUT characters from an io.Reader.
func WithInput(in io.Reader) Option {
	return func(r *Runtime) {
		rr, ok := in.(io.RuneReader)
		if !ok {
			rr = bufio.NewReader(in)
		}
		r.inputReader = eval.RuneReader(rr)
	}
}

// WithOutputWriter sets the sink for OUTPUT and input echo.
func WithOutputWriter(writer OutputWriter) Option {
	return func(r *Runtime) {
		r.outputWriter = writer
	}
}

// WithOutput sets the io.Writer for output.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.outputWriter = func(text string) error {
			_, err := io.WriteString(w, text)
			return err
		}
	}
}

// WithLogger sets the logger. Records carry the session id.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithSession overrides the generated session id.
func WithSession(id string) Option {
	return func(r *Runtime) {
		r.session = id
	}
}
