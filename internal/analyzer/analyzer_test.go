package analyzer_test

import (
	"testing"

	"github.com/maxc-lang/maxc/internal/analyzer"
	"github.com/maxc-lang/maxc/internal/lexer"
	"github.com/maxc-lang/maxc/internal/parser"
	"github.com/maxc-lang/maxc/internal/pipeline"
)

// analyze lexes, parses, and analyzes src, returning the resulting
// diagnostic codes (empty when analysis succeeds).
func analyze(t *testing.T, src string) []string {
	t.Helper()
	ctx := pipeline.NewContext(src, "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("lex/parse failed for %q: %v", src, ctx.Errors)
	}
	ctx = (analyzer.Processor{}).Process(ctx)

	var codes []string
	for _, e := range ctx.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestAnalyzeValidProgram(t *testing.T) {
	codes := analyze(t, "let x: int = 1; let y = x + 41; println(y);")
	if len(codes) != 0 {
		t.Fatalf("expected no diagnostics, got %v", codes)
	}
}

func TestAnalyzeGlobalSlotCount(t *testing.T) {
	ctx := pipeline.NewContext("let a = 1; let b = 2; let c = a + b;", "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	ctx = (analyzer.Processor{}).Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", ctx.Errors)
	}
	if ctx.NGlobals != 3 {
		t.Fatalf("NGlobals = %d, want 3", ctx.NGlobals)
	}
}

func TestAnalyzeTypeMismatchOnDecl(t *testing.T) {
	codes := analyze(t, "let x: int = true;")
	if len(codes) != 1 || codes[0] != "S261" {
		t.Fatalf("codes = %v, want [S261]", codes)
	}
}

func TestAnalyzeUndefinedName(t *testing.T) {
	codes := analyze(t, "println(nope);")
	if len(codes) != 1 || codes[0] != "S250" {
		t.Fatalf("codes = %v, want [S250]", codes)
	}
}

func TestAnalyzeAssignToConst(t *testing.T) {
	codes := analyze(t, "const x = 1; x = 2;")
	if len(codes) != 1 || codes[0] != "S241" {
		t.Fatalf("codes = %v, want [S241]", codes)
	}
}

func TestAnalyzeIfConditionMustBeBool(t *testing.T) {
	codes := analyze(t, "if (1) { println(1); }")
	if len(codes) != 1 || codes[0] != "S100" {
		t.Fatalf("codes = %v, want [S100]", codes)
	}
}

func TestAnalyzeReturnOutsideFunction(t *testing.T) {
	codes := analyze(t, "return 1;")
	if len(codes) != 1 || codes[0] != "S130" {
		t.Fatalf("codes = %v, want [S130]", codes)
	}
}

func TestAnalyzeBreakOutsideLoop(t *testing.T) {
	codes := analyze(t, "break;")
	if len(codes) != 1 || codes[0] != "S140" {
		t.Fatalf("codes = %v, want [S140]", codes)
	}
}

func TestAnalyzeNoOperatorForTypes(t *testing.T) {
	codes := analyze(t, "let x = 1 + true;")
	if len(codes) != 1 || codes[0] != "S220" {
		t.Fatalf("codes = %v, want [S220]", codes)
	}
}

func TestAnalyzeFunctionCallAndReturnType(t *testing.T) {
	codes := analyze(t, "fn add(a: int, b: int): int { return a + b; } println(add(1, 2));")
	if len(codes) != 0 {
		t.Fatalf("expected no diagnostics, got %v", codes)
	}
}

func TestAnalyzeNoMatchingOverload(t *testing.T) {
	codes := analyze(t, "fn add(a: int, b: int): int { return a + b; } println(add(true, false));")
	if len(codes) != 1 || codes[0] != "S290" {
		t.Fatalf("codes = %v, want [S290]", codes)
	}
}
