package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/lexer"
	"github.com/maxc-lang/maxc/internal/parser"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/token"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewContext(src, "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	if ctx.HasErrors() {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("parse failed for %q:\n%v", src, msgs)
	}
	if ctx.Program == nil {
		t.Fatalf("parse produced a nil program for %q", src)
	}
	return ctx.Program
}

func stmt(t *testing.T, src string) *ast.Node {
	t.Helper()
	prog := parseSource(t, src)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(prog.Statements))
	}
	return prog.Statements[0]
}

func TestParseLiterals(t *testing.T) {
	cases := []struct {
		src  string
		kind ast.Kind
	}{
		{"5;", ast.Number},
		{"3.5;", ast.Number},
		{"true;", ast.Bool},
		{"false;", ast.Bool},
		{`"hi";`, ast.String},
		{"[1, 2, 3];", ast.ListLit},
		{"(1, true);", ast.TupleLit},
	}
	for _, c := range cases {
		n := stmt(t, c.src)
		if n.Kind != c.kind {
			t.Errorf("%q: got kind %v, want %v", c.src, n.Kind, c.kind)
		}
	}
}

func TestParseIntFloatDistinction(t *testing.T) {
	n := stmt(t, "5;")
	if n.IsFloatLit() {
		t.Errorf("5 parsed as a float literal")
	}
	n = stmt(t, "5.0;")
	if !n.IsFloatLit() {
		t.Errorf("5.0 not parsed as a float literal")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// "1 + 2 * 3" must parse as 1 + (2 * 3): top node is '+', rhs is '*'.
	n := stmt(t, "1 + 2 * 3;")
	if n.Kind != ast.Binary || n.Op != token.OpAdd {
		t.Fatalf("expected top-level '+', got kind=%v op=%v", n.Kind, n.Op)
	}
	if n.B.Kind != ast.Binary || n.B.Op != token.OpMul {
		t.Fatalf("expected rhs to be '*', got kind=%v op=%v", n.B.Kind, n.B.Op)
	}
}

func TestParseAssignmentRightAssoc(t *testing.T) {
	n := stmt(t, "a = b = 1;")
	if n.Kind != ast.Assignment {
		t.Fatalf("expected assignment, got %v", n.Kind)
	}
	if n.B.Kind != ast.Assignment {
		t.Fatalf("expected nested assignment on rhs, got %v", n.B.Kind)
	}
}

func TestParseSubscriptAndMember(t *testing.T) {
	n := stmt(t, "xs[0];")
	if n.Kind != ast.Subscript {
		t.Fatalf("expected subscript, got %v", n.Kind)
	}

	n = stmt(t, "p.len;")
	if n.Kind != ast.Member || n.Name != "len" {
		t.Fatalf("expected member access to 'len', got kind=%v name=%q", n.Kind, n.Name)
	}
}

func TestParseMethodCallSugar(t *testing.T) {
	// `p.push(1)` is field `push` followed by a call, so the left operand
	// is implicitly the first argument (spec.md §4.1).
	n := stmt(t, "p.push(1);")
	if n.Kind != ast.FnCall {
		t.Fatalf("expected FnCall, got %v", n.Kind)
	}
	if len(n.List) != 2 {
		t.Fatalf("expected 2 args (receiver + 1), got %d", len(n.List))
	}
	if n.List[0].Kind != ast.VariableRef || n.List[0].Name != "p" {
		t.Fatalf("expected receiver as first arg, got %+v", n.List[0])
	}
}

func TestParseIfStatement(t *testing.T) {
	n := stmt(t, "if a { 1; } else { 2; }")
	if n.Kind != ast.If {
		t.Fatalf("expected If, got %v", n.Kind)
	}
	if n.C == nil {
		t.Fatalf("expected else branch to be present")
	}
}

func TestParseForLoop(t *testing.T) {
	n := stmt(t, "for x in xs { print(x); }")
	if n.Kind != ast.For {
		t.Fatalf("expected For, got %v", n.Kind)
	}
	if len(n.ForVars) != 1 || n.ForVars[0] != "x" {
		t.Fatalf("expected loop var 'x', got %v", n.ForVars)
	}
}

func TestParseLetConst(t *testing.T) {
	n := stmt(t, "let x = 5;")
	if n.Kind != ast.VarDecl || n.BoolVal {
		t.Fatalf("expected non-const VarDecl, got kind=%v const=%v", n.Kind, n.BoolVal)
	}
	n = stmt(t, "const y = 5;")
	if n.Kind != ast.VarDecl || !n.BoolVal {
		t.Fatalf("expected const VarDecl, got kind=%v const=%v", n.Kind, n.BoolVal)
	}
}

func TestParseConstRequiresInitializer(t *testing.T) {
	ctx := pipeline.NewContext("const y;", "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	if !ctx.HasErrors() {
		t.Fatalf("expected a parse error for a const without an initializer")
	}
}

func TestParseFnDef(t *testing.T) {
	n := stmt(t, "fn add(a: int, b: int): int { return a + b; }")
	if n.Kind != ast.FnDef || n.Name != "add" {
		t.Fatalf("expected FnDef 'add', got kind=%v name=%q", n.Kind, n.Name)
	}
	if len(n.ForVars) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(n.ForVars))
	}
}

func TestParseFnDefGroupedParams(t *testing.T) {
	// "a, b: int" assigns int to both (spec.md §4.1).
	n := stmt(t, "fn add(a, b: int): int { return a + b; }")
	if len(n.ForVars) != 2 || n.ForVars[0] != "a" || n.ForVars[1] != "b" {
		t.Fatalf("expected params a,b, got %v", n.ForVars)
	}
	if n.List[0].CType.String() != "int" || n.List[1].CType.String() != "int" {
		t.Fatalf("expected both grouped params typed int, got %v %v", n.List[0].CType, n.List[1].CType)
	}
}

func TestParseOperatorOverloadDef(t *testing.T) {
	n := stmt(t, "fn `+`(a: int, b: int): int { return a; }")
	if n.Kind != ast.FnDef || n.Op != token.OpAdd {
		t.Fatalf("expected operator-overload FnDef for '+', got kind=%v op=%v", n.Kind, n.Op)
	}
}

func TestParseFailureBlock(t *testing.T) {
	n := stmt(t, "div(10, 0).FAILURE { -1 };")
	if n.Kind != ast.FnCall {
		t.Fatalf("expected FnCall, got %v", n.Kind)
	}
	if n.FailureBlock == nil {
		t.Fatalf("expected a FAILURE block to be attached")
	}
}

func TestParseStructLiteralAndDecl(t *testing.T) {
	n := stmt(t, "object Point { x: int, y: int }")
	if n.Kind != ast.Object || n.Name != "Point" {
		t.Fatalf("expected object decl 'Point', got kind=%v name=%q", n.Kind, n.Name)
	}

	n = stmt(t, "new Point { x: 1, y: 2 };")
	if n.Kind != ast.StructInit || n.Name != "Point" || len(n.List) != 2 {
		t.Fatalf("expected StructInit 'Point' with 2 fields, got %+v", n)
	}
}

func TestParseTypeAnnotations(t *testing.T) {
	n := stmt(t, "let xs: [int] = [1, 2];")
	if n.CType.Kind != n.CType.Kind { // sanity: field exists
		t.Fatal("unreachable")
	}
	if got := n.CType.String(); got != "[int]" {
		t.Errorf("expected list-of-int annotation, got %q", got)
	}

	n = stmt(t, "let t: (int, bool) = (1, true);")
	if got := n.CType.String(); got != "(int, bool)" {
		t.Errorf("expected tuple annotation, got %q", got)
	}

	n = stmt(t, "let f: fn(int): int = g;")
	if got := n.CType.String(); got != "fn(int): int" {
		t.Errorf("expected function-type annotation, got %q", got)
	}

	n = stmt(t, "let o: int? = none;")
	if got := n.CType.String(); got != "int?" {
		t.Errorf("expected optional annotation, got %q", got)
	}
}

func TestParseImportMissingModuleIsFatal(t *testing.T) {
	ctx := pipeline.NewContext("import util;", "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	if !ctx.HasErrors() {
		t.Fatalf("expected a fatal error for an unresolvable import")
	}
}

func TestParseImportSplicesStatements(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greet.mxc"), []byte("let z = 9;"), 0o644); err != nil {
		t.Fatalf("writing fixture module: %s", err)
	}

	ctx := pipeline.NewContext("import greet;", filepath.Join(dir, "main.mxc"))
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", ctx.Errors)
	}
	if len(ctx.Program.Statements) != 1 {
		t.Fatalf("expected a single spliced import statement, got %d", len(ctx.Program.Statements))
	}
	n := ctx.Program.Statements[0]
	if n.Kind != ast.NonScopeBlock {
		t.Fatalf("expected NonScopeBlock, got %v", n.Kind)
	}
	if len(n.List) != 1 || n.List[0].Kind != ast.VarDecl {
		t.Fatalf("expected one spliced VarDecl, got %v", n.List)
	}
}

func TestParserRecoversAfterError(t *testing.T) {
	// Two malformed statements in a row must not hang the parser; it
	// should report errors for both and still terminate (spec.md §4.1's
	// sentinel-node recovery).
	ctx := pipeline.NewContext("let = ; let = ;", "<test>")
	ctx = (lexer.Processor{}).Process(ctx)
	ctx = (parser.Processor{}).Process(ctx)
	if !ctx.HasErrors() {
		t.Fatalf("expected parse errors for malformed declarations")
	}
}
