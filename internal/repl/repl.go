// Package repl implements the interactive top-level loop of spec.md §5:
// "The REPL loops the last four stages with a persistent top frame" —
// lex/parse/analyze/emit re-run on every line against one env that keeps
// accumulating globals, function definitions, and user types. Grounded on
// original_source/src/repl/repl.c's command-dispatch-before-parse shape
// and funvibe-funxy's go-isatty-gated prompt (evaluator/builtins_term.go).
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/maxc-lang/maxc/internal/analyzer"
	"github.com/maxc-lang/maxc/internal/diagnostics"
	"github.com/maxc-lang/maxc/internal/lexer"
	"github.com/maxc-lang/maxc/internal/parser"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/vm"
)

const prompt = "mxc> "

// Run drives the REPL loop over in, writing program output to out and
// diagnostics/prompts to errOut, until `:q` or end of input. Returns the
// process exit code (always 0 for a normal quit; spec.md only assigns a
// nonzero exit to file-mode errors, §6).
func Run(in io.Reader, out io.Writer, errOut io.Writer) int {
	interactive := isInteractive(in)

	ctx := pipeline.NewContext("", "<repl>")
	var machine *vm.VM

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(errOut, prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		switch line {
		case "":
			continue
		case ":q", ":quit":
			return 0
		case ":mem":
			count, bytes := vm.AllocStats()
			fmt.Fprintf(errOut, "alloc: %d object(s), %s\n", count, humanize.Bytes(uint64(bytes)))
			continue
		case ":reset":
			ctx = pipeline.NewContext("", "<repl>")
			machine = nil
			continue
		}

		ctx.Reset(line)
		p := pipeline.New(lexer.Processor{}, parser.Processor{}, analyzer.Processor{}, vm.Processor{})
		ctx = p.Run(ctx)

		if ctx.HasErrors() {
			fd, hasFD := fileDescriptor(errOut)
			printer := diagnostics.NewPrinter(fd, hasFD)
			printer.Print(errOut, "<repl>", ctx.Errors)
			continue
		}

		if machine == nil {
			machine = vm.New(ctx.NGlobals, ctx.Pool)
			machine.Out = out
		} else {
			machine.GrowGlobals(ctx.NGlobals)
			machine.Pool = ctx.Pool
		}
		machine.Run(ctx.Code, nil)
	}
	return 0
}

func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// fileDescriptor reports w's file descriptor when it is backed by a real
// *os.File, so diagnostics.NewPrinter only attempts isatty detection
// against an actual terminal/pipe, never a bytes.Buffer in tests.
func fileDescriptor(w io.Writer) (uintptr, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	return f.Fd(), true
}
