package main

import (
	"fmt"
	"io"
	"os"

	"nickandperla.net/bfi/internal/scanner"
)

// checkResult holds the outcome of checking a single file.
type checkResult struct {
	path   string
	defect *scanner.StructuralDefect
	err    error
}

// checkFile scans a source file and reports its first unmatched bracket
// without running it.
func checkFile(path string) checkResult {
	f, err := os.Open(path)
	if err != nil {
		return checkResult{path: path, err: err}
	}
	defer f.Close()

	p, err := scanner.ScanReader(f)
	if err != nil {
		return checkResult{path: path, err: err}
	}
	return checkResult{path: path, defect: p.Validate()}
}

// checkFiles checks every path and returns the process exit code.
func checkFiles(paths []string, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "Error: -check needs at least one FILE")
		return 2
	}

	failed := 0
	for _, path := range paths {
		res := checkFile(path)
		switch {
		case res.err != nil:
			fmt.Fprintf(stderr, "%s: read error: %v\n", res.path, res.err)
			failed++
		case res.defect != nil:
			fmt.Fprintf(stdout, "%s:%d:%d: %s\n", res.path, res.defect.Line, res.defect.Column, res.defect)
			failed++
		}
	}

	fmt.Fprintf(stdout, "%d file(s) checked, %d failed\n", len(paths), failed)
	if failed > 0 {
		return 1
	}
	return 0
}
