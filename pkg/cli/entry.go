// Package cli implements the maxc command-line driver: manual os.Args
// dispatch over run/REPL/compile/run-bytecode, no flag-parsing framework
// (spec.md §6; SPEC_FULL.md §2.5). Grounded on
// funvibe-funxy/pkg/cli/entry.go's dispatch shape, trimmed from its
// build/test/ext/help/eval subcommand sprawl down to the four maxc needs.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/maxc-lang/maxc/internal/analyzer"
	"github.com/maxc-lang/maxc/internal/config"
	"github.com/maxc-lang/maxc/internal/diagnostics"
	"github.com/maxc-lang/maxc/internal/lexer"
	"github.com/maxc-lang/maxc/internal/parser"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/repl"
	"github.com/maxc-lang/maxc/internal/vm"
)

// Run dispatches os.Args[1:] to the appropriate subcommand and returns the
// process exit code (spec.md §7: 0 on success, 1 on any error tier).
func Run(args []string) int {
	switch {
	case len(args) == 0:
		return repl.Run(os.Stdin, os.Stdout, os.Stderr)

	case args[0] == "-c" || args[0] == "--compile":
		return runCompile(args[1:])

	case args[0] == "-r" || args[0] == "--run":
		return runBytecode(args[1:])

	case args[0] == "-help" || args[0] == "--help" || args[0] == "help":
		printUsage(os.Stdout)
		return 0

	default:
		return runFile(args)
	}
}

// runFile lexes/parses/analyzes/compiles/executes a single .mxc file
// (spec.md §6). `--stats` prints allocation telemetry after the program
// exits (SPEC_FULL.md §4's original_source/include/mem.h pool-accounting
// addition).
func runFile(args []string) int {
	path := args[0]
	showStats := false
	for _, a := range args[1:] {
		if a == "--stats" {
			showStats = true
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "maxc: reading %s: %s\n", path, err)
		return 1
	}

	ctx := pipeline.NewContext(string(source), path)
	p := pipeline.New(lexer.Processor{}, parser.Processor{}, analyzer.Processor{}, vm.Processor{})
	ctx = p.Run(ctx)

	if ctx.HasErrors() {
		printer := diagnostics.NewPrinter(os.Stderr.Fd(), true)
		printer.Print(os.Stderr, filepath.Base(path), ctx.Errors)
		return 1
	}

	machine := vm.New(ctx.NGlobals, ctx.Pool)
	code := machine.Run(ctx.Code, nil)

	if showStats {
		printStats(os.Stderr)
	}
	return code
}

// runCompile implements `maxc -c <file.mxc> [-o out.mxcb]` (supplemental,
// SPEC_FULL.md §2.5/§3): lex/parse/analyze/emit, then serialize the
// resulting Chunk + pool to a stable bytecode bundle.
func runCompile(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: maxc -c <file.mxc> [-o <out.mxcb>]")
		return 1
	}
	sourcePath := args[0]
	outPath := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + config.CompiledExt
	for i := 1; i < len(args)-1; i++ {
		if args[i] == "-o" {
			outPath = args[i+1]
		}
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "maxc: reading %s: %s\n", sourcePath, err)
		return 1
	}

	ctx := pipeline.NewContext(string(source), sourcePath)
	p := pipeline.New(lexer.Processor{}, parser.Processor{}, analyzer.Processor{}, vm.Processor{})
	ctx = p.Run(ctx)

	if ctx.HasErrors() {
		printer := diagnostics.NewPrinter(os.Stderr.Fd(), true)
		printer.Print(os.Stderr, filepath.Base(sourcePath), ctx.Errors)
		return 1
	}

	bundle := vm.NewBundle(ctx.Code, ctx.Pool, nil, ctx.NGlobals)
	data, err := bundle.Encode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "maxc: encoding bytecode: %s\n", err)
		return 1
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "maxc: writing %s: %s\n", outPath, err)
		return 1
	}
	fmt.Printf("compiled %s -> %s (%d bytes)\n", sourcePath, outPath, len(data))
	return 0
}

// runBytecode implements `maxc -r <out.mxcb>`: deserialize a previously
// compiled bundle and execute it directly, skipping lex/parse/analyze.
func runBytecode(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: maxc -r <out.mxcb>")
		return 1
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "maxc: reading %s: %s\n", args[0], err)
		return 1
	}
	bundle, err := vm.DecodeBundle(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "maxc: %s\n", err)
		return 1
	}

	machine := vm.New(bundle.NGlobals, bundle.Pool)
	return machine.Run(bundle.Code, bundle.Lines)
}

func printStats(w *os.File) {
	count, bytes := vm.AllocStats()
	fmt.Fprintf(w, "alloc: %d object(s), %s\n", count, humanize.Bytes(uint64(bytes)))
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  maxc <file.mxc> [--stats]   run a program")
	fmt.Fprintln(w, "  maxc                        start the REPL")
	fmt.Fprintln(w, "  maxc -c <file.mxc> [-o out.mxcb]   compile to bytecode")
	fmt.Fprintln(w, "  maxc -r <out.mxcb>          run compiled bytecode")
}
