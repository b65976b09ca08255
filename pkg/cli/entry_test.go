package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maxc-lang/maxc/pkg/cli"
)

func TestRunFileSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.mxc")
	if err := os.WriteFile(path, []byte("println(1 + 1);"), 0o644); err != nil {
		t.Fatalf("writing test program: %s", err)
	}

	if code := cli.Run([]string{path}); code != 0 {
		t.Fatalf("cli.Run(%q) = %d, want 0", path, code)
	}
}

func TestRunFileMissing(t *testing.T) {
	if code := cli.Run([]string{filepath.Join(t.TempDir(), "missing.mxc")}); code != 1 {
		t.Fatalf("cli.Run(missing file) = %d, want 1", code)
	}
}

func TestRunFileAnalysisError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.mxc")
	if err := os.WriteFile(path, []byte("let x: int = true;"), 0o644); err != nil {
		t.Fatalf("writing test program: %s", err)
	}

	if code := cli.Run([]string{path}); code != 1 {
		t.Fatalf("cli.Run(%q) = %d, want 1", path, code)
	}
}

func TestCompileAndRunBytecodeRoundtrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.mxc")
	if err := os.WriteFile(srcPath, []byte("println(21 + 21);"), 0o644); err != nil {
		t.Fatalf("writing test program: %s", err)
	}
	bcPath := filepath.Join(dir, "prog.mxcb")

	if code := cli.Run([]string{"-c", srcPath, "-o", bcPath}); code != 0 {
		t.Fatalf("cli.Run(-c) = %d, want 0", code)
	}
	if _, err := os.Stat(bcPath); err != nil {
		t.Fatalf("expected compiled bytecode file: %s", err)
	}

	if code := cli.Run([]string{"-r", bcPath}); code != 0 {
		t.Fatalf("cli.Run(-r) = %d, want 0", code)
	}
}
