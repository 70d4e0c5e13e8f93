// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package bfi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"nickandperla.net/bfi/internal/eval"
	"nickandperla.net/bfi/internal/scanner"
	"nickandperla.net/bfi/internal/store"
	"nickandperla.net/bfi/internal/tape"
)

var (
	// ErrNoStore is returned by snapshot operations when no store is configured.
	ErrNoStore = errors.New("no snapshot store configured")
	// ErrSnapshotNotFound is returned by Load for an unknown name.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// StructuralError reports an unmatched bracket; see eval.StructuralError.
type StructuralError = eval.StructuralError

// Runtime is one interpreter session. It owns the tape and cursor that
// persist across Run calls until Reset.
type Runtime struct {
	evaluator    *eval.Evaluator
	state        *tape.State
	store        Store
	logger       *slog.Logger
	session      string
	inputReader  eval.InputReader
	outputWriter eval.OutputWriter
	storeErr     error // Deferred error from a store option
}

// New creates a new runtime with the given options.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		state:   tape.NewState(),
		session: uuid.NewString(),
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.storeErr != nil {
		return nil, fmt.Errorf("open store: %w", r.storeErr)
	}

	r.logger = r.logger.With("session", r.session)

	// Build evaluator options
	evalOpts := []eval.Option{eval.WithLogger(r.logger)}
	if r.inputReader != nil {
		evalOpts = append(evalOpts, eval.WithInputReader(r.inputReader))
	}
	if r.outputWriter != nil {
		evalOpts = append(evalOpts, eval.WithOutputWriter(r.outputWriter))
	}
	r.evaluator = eval.New(evalOpts...)

	r.logger.Debug("session started", "store", r.store != nil)
	return r, nil
}

// Run scans and executes src against the session state.
func (r *Runtime) Run(src string) error {
	return r.RunProgram(scanner.Scan(src))
}

// RunProgram executes an already scanned program against the session state.
func (r *Runtime) RunProgram(p *scanner.Program) error {
	return r.evaluator.Run(p, r.state)
}

// RunReader scans everything from reader and executes it.
func (r *Runtime) RunReader(reader io.Reader) error {
	return r.evaluator.EvalReader(reader, r.state)
}

// RunFile executes a source file.
func (r *Runtime) RunFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.RunReader(f)
}

// Reset clears the tape and returns the cursor to 0.
func (r *Runtime) Reset() {
	r.state.Reset()
	r.logger.Debug("state reset")
}

// State returns the session state.
func (r *Runtime) State() *tape.State {
	return r.state
}

// Steps returns the number of instructions executed by the last run.
func (r *Runtime) Steps() int64 {
	return r.evaluator.Steps()
}

// Session returns the session id.
func (r *Runtime) Session() string {
	return r.session
}

// Logger returns the session logger.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// Save stores the current tape and cursor under name.
func (r *Runtime) Save(name string) error {
	if r.store == nil {
		return ErrNoStore
	}
	if err := validSnapshotName(name); err != nil {
		return err
	}
	snap := &store.Snapshot{
		Name:    name,
		Session: r.session,
		Cursor:  r.state.Cursor,
		Cells:   r.state.Tape.Cells(),
		Saved:   time.Now().UTC(),
	}
	if err := r.store.Put(snap); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	r.logger.Info("snapshot saved", "name", name, "cells", len(snap.Cells), "cursor", snap.Cursor)
	return nil
}

// Load replaces the session state with the snapshot saved under name.
func (r *Runtime) Load(name string) error {
	if r.store == nil {
		return ErrNoStore
	}
	snap, err := r.store.Get(name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if snap == nil {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	r.state.Restore(snap.Cells, snap.Cursor)
	r.logger.Info("snapshot loaded", "name", name, "from_session", snap.Session, "cells", len(snap.Cells))
	return nil
}

// Delete removes the snapshot saved under name.
func (r *Runtime) Delete(name string) error {
	if r.store == nil {
		return ErrNoStore
	}
	snap, err := r.store.Get(name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if snap == nil {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err := r.store.Delete(name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	r.logger.Info("snapshot deleted", "name", name)
	return nil
}

// Snapshots returns the names of all saved snapshots.
func (r *Runtime) Snapshots() ([]string, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.List()
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

func validSnapshotName(name string) error {
	if name == "" {
		return errors.New("snapshot name must not be empty")
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("snapshot name %q must not contain whitespace", name)
	}
	return nil
}
