// Command bfi runs tape programs from a file or interactively.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"nickandperla.net/bfi/internal/config"
	"nickandperla.net/bfi/internal/logs"
	"nickandperla.net/bfi/pkg/bfi"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bfi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bfi [flags] [FILE]\n       bfi -check FILE...\n\nWithout FILE, starts an interactive session.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		configPath = fs.String("config", "", "YAML config file (default "+config.DefaultPath()+")")
		dbPath     = fs.String("db", "", "SQLite snapshot database path (empty disables snapshots)")
		prompt     = fs.String("prompt", "", "Interactive prompt")
		reset      = fs.String("reset", "", "Interactive line that clears the tape")
		logLevel   = fs.String("log-level", "", "Log level: debug, info, warn or error")
		logFile    = fs.String("log-file", "", "Also write JSON logs to this file")
		stats      = fs.Bool("stats", false, "Print instruction count and elapsed time after a file run")
		check      = fs.Bool("check", false, "Check FILE... for unmatched brackets without running")
	)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *check {
		return checkFiles(fs.Args(), stdout, stderr)
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	// Flags override config
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.DB = *dbPath
		case "prompt":
			cfg.Prompt = *prompt
		case "reset":
			cfg.ResetToken = *reset
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger, logCloser, err := logs.New(logs.Options{Level: cfg.LogLevel, Writer: stderr, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	// Build options
	opts := []bfi.Option{
		bfi.WithLogger(logger),
		bfi.WithOutput(stdout),
	}
	if cfg.DB != "" {
		opts = append(opts, bfi.WithSQLiteStore(cfg.DB))
	}

	// Configure input reader - create reader ONCE, reuse for lines and INPUT
	tty := term.IsTerminal(int(stdin.Fd()))
	stdinReader := bufio.NewReader(stdin)
	if tty {
		opts = append(opts, bfi.WithInputReader(rawCharReader(stdin)))
	} else {
		opts = append(opts, bfi.WithInput(stdinReader))
	}

	runtime, err := bfi.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer runtime.Close()

	if fs.NArg() == 0 {
		s := &session{runtime: runtime, cfg: cfg, out: stdout}
		if tty {
			runLinerREPL(s)
		} else {
			runBasicREPL(s, stdinReader)
		}
		return 0
	}

	path := fs.Arg(0)
	start := time.Now()
	err = runtime.RunFile(path)
	if *stats {
		fmt.Fprintf(stderr, "executed %s instructions in %s\n",
			humanize.Comma(runtime.Steps()), time.Since(start).Round(time.Microsecond))
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
