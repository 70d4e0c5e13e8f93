package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"nickandperla.net/bfi/internal/config"
	"nickandperla.net/bfi/pkg/bfi"
)

// maxTapeLines bounds the :tape listing.
const maxTapeLines = 32

var errInterrupted = errors.New("interrupted")

// commands are the session commands. Any other line, including one that
// starts with ':', runs as a program.
var commands = map[string]bool{
	":quit": true, ":q": true, ":help": true, ":tape": true,
	":save": true, ":load": true, ":delete": true, ":snapshots": true,
}

func printBanner(out io.Writer, cfg config.Config) {
	fmt.Fprintln(out, "bfi REPL (Ctrl+D to exit)")
	fmt.Fprintf(out, "Type %s to clear the tape, :help for commands.\n", cfg.ResetToken)
	fmt.Fprintln(out)
}

const helpText = `Commands:
  %-12s clear the tape and move the cursor to 0
  :tape        show the cursor and written cells
  :save NAME   save the tape as a snapshot
  :load NAME   replace the tape with a snapshot
  :delete NAME remove a snapshot
  :snapshots   list saved snapshots
  :quit        end the session
Any other line runs as a program against the current tape.
`

// session holds what an interactive loop needs between lines.
type session struct {
	runtime *bfi.Runtime
	cfg     config.Config
	out     io.Writer
}

// handle processes one input line and reports whether the session should end.
func (s *session) handle(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if input == s.cfg.ResetToken {
		s.runtime.Reset()
		return false
	}

	if fields := strings.Fields(input); commands[fields[0]] {
		return s.command(fields[0], fields[1:])
	}

	err := s.runtime.Run(line)
	fmt.Fprintln(s.out)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *session) command(name string, args []string) bool {
	switch name {
	case ":quit", ":q":
		return true

	case ":help":
		fmt.Fprintf(s.out, helpText, s.cfg.ResetToken)

	case ":tape":
		s.printTape()

	case ":save", ":load", ":delete":
		if len(args) != 1 {
			fmt.Fprintf(s.out, "usage: %s NAME\n", name)
			return false
		}
		var err error
		switch name {
		case ":save":
			err = s.runtime.Save(args[0])
		case ":load":
			err = s.runtime.Load(args[0])
		default:
			err = s.runtime.Delete(args[0])
		}
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}

	case ":snapshots":
		names, err := s.runtime.Snapshots()
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return false
		}
		if len(names) == 0 {
			fmt.Fprintln(s.out, "no snapshots")
		}
		for _, n := range names {
			fmt.Fprintln(s.out, n)
		}
	}
	return false
}

func (s *session) printTape() {
	st := s.runtime.State()
	cells := st.Tape.Cells()
	fmt.Fprintf(s.out, "cursor %d, %s cells written, last run %s steps\n",
		st.Cursor, humanize.Comma(int64(len(cells))), humanize.Comma(s.runtime.Steps()))

	shown := 0
	for _, c := range cells {
		if c.Value == 0 && c.Addr != st.Cursor {
			continue
		}
		if shown == maxTapeLines {
			fmt.Fprintln(s.out, "  ...")
			break
		}
		marker := " "
		if c.Addr == st.Cursor {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %6d: %3d %s\n", marker, c.Addr, c.Value, printable(c.Value))
		shown++
	}
}

func printable(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return fmt.Sprintf("'%c'", b)
	}
	return ""
}

// runBasicREPL handles non-TTY input (piped input). Lines and INPUT
// characters come from the same reader.
func runBasicREPL(s *session, reader *bufio.Reader) {
	for {
		fmt.Fprint(s.out, s.cfg.Prompt)

		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" && s.handle(line) {
			return
		}
		if err != nil {
			fmt.Fprintln(s.out)
			return
		}
	}
}

// runLinerREPL handles TTY input with line editing and history.
func runLinerREPL(s *session) {
	printBanner(s.out, s.cfg)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if s.cfg.HistoryFile != "" {
		if f, err := os.Open(s.cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(s.cfg.HistoryFile); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	promptLoop(s, ln)
}

// linePrompter is the part of *liner.State the prompt loop uses.
type linePrompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// promptLoop reads lines until :quit, end of input, or Ctrl+C.
func promptLoop(s *session, p linePrompter) {
	for {
		line, err := p.Prompt(s.cfg.Prompt)
		if err != nil {
			fmt.Fprintln(s.out)
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				s.runtime.Logger().Error("reading line", "error", err)
			}
			return
		}

		if strings.TrimSpace(line) != "" {
			p.AppendHistory(line)
		}
		if s.handle(line) {
			return
		}
	}
}

// rawCharReader returns an INPUT source that reads exactly one character
// from a terminal in raw mode. Ctrl+D is end of input and Ctrl+C aborts.
func rawCharReader(f *os.File) bfi.InputReader {
	fd := int(f.Fd())
	return func() (rune, error) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return 0, fmt.Errorf("set raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)

		buf := make([]byte, utf8.UTFMax)
		if _, err := io.ReadFull(f, buf[:1]); err != nil {
			return 0, err
		}

		b := buf[0]
		switch b {
		case 0x04: // Ctrl+D
			return 0, io.EOF
		case 0x03: // Ctrl+C
			return 0, errInterrupted
		case '\r':
			return '\n', nil
		}
		if b < utf8.RuneSelf {
			return rune(b), nil
		}

		// UTF-8 multi-byte sequence - read remaining bytes
		numBytes := 0
		switch {
		case b&0xE0 == 0xC0:
			numBytes = 1
		case b&0xF0 == 0xE0:
			numBytes = 2
		case b&0xF8 == 0xF0:
			numBytes = 3
		}
		if _, err := io.ReadFull(f, buf[1:1+numBytes]); err != nil {
			return 0, err
		}
		r, _ := utf8.DecodeRune(buf[:1+numBytes])
		return r, nil
	}
}
