package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const helloProgram = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++."

// isolate points config and history lookups at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

// stdinFile returns a regular file holding content, standing in for piped stdin.
func stdinFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write stdin file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open stdin file: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.bf")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write program: %v", err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, stdinFile(t, stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestFileModeHello(t *testing.T) {
	isolate(t)
	code, out, errOut := runCLI(t, "", writeProgram(t, helloProgram))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}
	if out != "Hello" {
		t.Errorf("expected 'Hello', got %q", out)
	}
}

func TestFileModeInput(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "xy", writeProgram(t, ",>,<.>."))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out != "xyxy" {
		t.Errorf("expected echo then output 'xyxy', got %q", out)
	}
}

func TestFileModeStructuralError(t *testing.T) {
	isolate(t)
	code, out, errOut := runCLI(t, "", writeProgram(t, "+.\n[-]\n  ]"))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if out != "" {
		t.Errorf("rejected program should print nothing, got %q", out)
	}
	want := "Error: structural error: unmatched ']' at line 3, column 3"
	if !strings.Contains(errOut, want) {
		t.Errorf("expected %q in stderr, got %q", want, errOut)
	}
}

func TestFileModeMissingFile(t *testing.T) {
	dir := isolate(t)
	code, _, errOut := runCLI(t, "", filepath.Join(dir, "nope.bf"))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(errOut, "Error: ") {
		t.Errorf("expected error line, got %q", errOut)
	}
}

func TestFileModeStats(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI(t, "", "-stats", writeProgram(t, helloProgram))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(errOut, "executed ") || !strings.Contains(errOut, " instructions in ") {
		t.Errorf("expected stats line, got %q", errOut)
	}
}

func TestTooManyArgs(t *testing.T) {
	isolate(t)
	if code, _, _ := runCLI(t, "", "a.bf", "b.bf"); code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
}

func TestInteractiveRun(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, helloProgram+"\n", "-prompt", "$ ")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out != "$ Hello\n$ \n" {
		t.Errorf("unexpected transcript %q", out)
	}
}

func TestInteractiveStatePersists(t *testing.T) {
	isolate(t)
	stdin := strings.Repeat("+", 60) + "\n>\n<+++++.\n"
	_, out, _ := runCLI(t, stdin, "-prompt", "")
	if !strings.Contains(out, "A") {
		t.Errorf("expected 'A' from accumulated cell, got %q", out)
	}
}

func TestInteractiveReset(t *testing.T) {
	isolate(t)
	_, out, _ := runCLI(t, "+++++\n:reset\n.\n", "-prompt", "")
	if out != "\n\x00\n\n" {
		t.Errorf("expected byte 0 after reset, got %q", out)
	}
}

func TestInteractiveCustomResetToken(t *testing.T) {
	isolate(t)
	_, out, _ := runCLI(t, "+++++\n  #clear  \n.\n", "-prompt", "", "-reset", "#clear")
	if !strings.Contains(out, "\x00") || strings.Contains(out, "\x05") {
		t.Errorf("expected reset by custom token, got %q", out)
	}
}

func TestInteractiveErrorContinues(t *testing.T) {
	isolate(t)
	stdin := "+++\n++ ]\n" + strings.Repeat("+", 62) + ".\n"
	_, out, _ := runCLI(t, stdin, "-prompt", "")

	want := "Error: structural error: unmatched ']' at line 1, column 4\n"
	if !strings.Contains(out, want) {
		t.Errorf("expected %q, got %q", want, out)
	}
	if !strings.Contains(out, "A") {
		t.Errorf("session should continue with state kept (3+62=65), got %q", out)
	}
}

func TestInteractiveInputFromSameStream(t *testing.T) {
	isolate(t)
	_, out, _ := runCLI(t, ",.\nZ", "-prompt", "")
	if !strings.Contains(out, "ZZ") {
		t.Errorf("expected echoed and printed 'ZZ', got %q", out)
	}
}

func TestInteractiveQuit(t *testing.T) {
	isolate(t)
	_, out, _ := runCLI(t, ":quit\n+.\n", "-prompt", "")
	if strings.Contains(out, "\x01") {
		t.Errorf("lines after :quit should not run, got %q", out)
	}
}

func TestInteractiveTapeCommand(t *testing.T) {
	isolate(t)
	_, out, _ := runCLI(t, "<"+strings.Repeat("+", 72)+"\n:tape\n", "-prompt", "")
	if !strings.Contains(out, "cursor -1, 1 cells written") {
		t.Errorf("expected tape summary, got %q", out)
	}
	if !strings.Contains(out, "'H'") {
		t.Errorf("expected cell listing, got %q", out)
	}
}

func TestInteractiveColonProgram(t *testing.T) {
	isolate(t)
	stdin := strings.Repeat("+", 65) + "\n:.\n:frob+.\n"
	_, out, _ := runCLI(t, stdin, "-prompt", "")
	if out != "\nA\nB\n\n" {
		t.Errorf("colon lines that are not commands should run, got %q", out)
	}
}

func TestInteractiveSnapshots(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "tapes.db")

	_, out, errOut := runCLI(t, strings.Repeat("+", 66)+"\n:save b\n:snapshots\n", "-prompt", "", "-db", db)
	if !strings.Contains(out, "b\n") {
		t.Fatalf("expected snapshot listing, got %q (stderr %q)", out, errOut)
	}

	_, out, _ = runCLI(t, ":load b\n.\n:load missing\n", "-prompt", "", "-db", db)
	if !strings.Contains(out, "B") {
		t.Errorf("expected restored cell 'B', got %q", out)
	}
	if !strings.Contains(out, "Error: snapshot not found: missing") {
		t.Errorf("expected not-found error, got %q", out)
	}
}

func TestInteractiveDeleteSnapshot(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "tapes.db")

	stdin := "+\n:save a\n:save b\n:delete a\n:snapshots\n:delete a\n"
	_, out, _ := runCLI(t, stdin, "-prompt", "", "-db", db)
	if strings.Contains(out, "a\nb\n") || !strings.Contains(out, "b\n") {
		t.Errorf("expected only b listed after delete, got %q", out)
	}
	if !strings.Contains(out, "Error: snapshot not found: a") {
		t.Errorf("expected not-found error on second delete, got %q", out)
	}
}

func TestInteractiveSnapshotsDisabled(t *testing.T) {
	isolate(t)
	_, out, _ := runCLI(t, ":save x\n", "-prompt", "")
	if !strings.Contains(out, "Error: no snapshot store configured") {
		t.Errorf("expected no-store error, got %q", out)
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "bfi.yml")
	if err := os.WriteFile(cfgPath, []byte("prompt: \"bf> \"\nreset_token: \"!\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, out, _ := runCLI(t, "+++\n!\n.\n", "-config", cfgPath)
	if !strings.HasPrefix(out, "bf> ") {
		t.Errorf("expected configured prompt, got %q", out)
	}
	if !strings.Contains(out, "\x00") {
		t.Errorf("expected configured reset token to clear tape, got %q", out)
	}
}

func TestBadConfig(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "bfi.yml")
	if err := os.WriteFile(cfgPath, []byte("log_level: loud\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	code, _, errOut := runCLI(t, "", "-config", cfgPath)
	if code != 1 || !strings.Contains(errOut, "Error loading config") {
		t.Errorf("expected config failure, got %d %q", code, errOut)
	}
}

func TestDebugLogging(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "bfi.log")
	code, _, errOut := runCLI(t, "", "-log-level", "debug", "-log-file", logPath, writeProgram(t, "+"))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(errOut, "run finished") {
		t.Errorf("expected debug record on stderr, got %q", errOut)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"run finished"`) {
		t.Errorf("expected JSON record in log file, got %q", data)
	}
}

func TestCheckMode(t *testing.T) {
	isolate(t)
	good := writeProgram(t, helloProgram)
	bad := writeProgram(t, "+[\n[-]")

	code, out, _ := runCLI(t, "", "-check", good)
	if code != 0 || !strings.Contains(out, "1 file(s) checked, 0 failed") {
		t.Errorf("expected clean check, got %d %q", code, out)
	}

	code, out, _ = runCLI(t, "", "-check", good, bad)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out, bad+":1:2: unmatched '[' at line 1, column 2") {
		t.Errorf("expected defect location, got %q", out)
	}
	if !strings.Contains(out, "2 file(s) checked, 1 failed") {
		t.Errorf("expected summary, got %q", out)
	}
}

func TestCheckModeNeedsFiles(t *testing.T) {
	isolate(t)
	if code, _, _ := runCLI(t, "", "-check"); code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
}
