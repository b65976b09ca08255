// Package analyzer implements the single recursive mutating walk of
// spec.md §4.3: it inputs the raw AST and returns the same tree with
// ctype, vid, isglobal, and impl fields filled in, plus the count of
// global variables.
//
// Grounded on funvibe-funxy/internal/analyzer's per-concern file split
// (declarations*.go, expressions.go, statements.go, inference*.go) — the
// contents here are maxc's much smaller node-kind set, not funxy's.
package analyzer

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/diagnostics"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// Analyzer carries the cursors into the two parallel scope trees
// (spec.md §3) plus loop/function nesting state, across one recursive
// walk.
type Analyzer struct {
	ctx *pipeline.Context

	scope *symbols.Scope
	env   *symbols.FuncEnv

	ops *typesystem.OperatorRegistry

	loopNest int
	curFn    *ast.Node // enclosing FnDef, for Return's type check; nil at top level

	nextGlobalVid int
}

// New builds an Analyzer rooted at ctx's persistent global scope (shared
// across REPL submissions, per spec.md §5).
func New(ctx *pipeline.Context) *Analyzer {
	if !builtinsRegistered(ctx.Globals) {
		registerBuiltins(ctx.Globals)
	}
	return &Analyzer{
		ctx:           ctx,
		scope:         ctx.Globals,
		env:           ctx.GlobalEnv,
		ops:           ctx.Ops,
		nextGlobalVid: ctx.NGlobals,
	}
}

// Analyze walks prog's statements in place and returns the updated global
// variable count (spec.md §4.3: "returns the count of global variables").
func (a *Analyzer) Analyze(prog *ast.Program) int {
	for _, stmt := range prog.Statements {
		if stmt == nil {
			continue
		}
		a.visitStmt(stmt)
	}
	return a.nextGlobalVid
}

func (a *Analyzer) errorf(code string, n *ast.Node, msg string) {
	a.ctx.AddError(diagnostics.NewSemanticError(code, n.Tok, msg))
}

// declareLocalOrGlobal registers v in the current scope and, depending on
// whether a function body is currently open, either the function-env
// (locals, slot-numbered at function exit) or the top-level global
// sequence (spec.md §4.3 "Slot numbering": "Globals get a separate
// sequence rooted at the top-level env").
func (a *Analyzer) declareLocalOrGlobal(v *symbols.Variable) {
	a.scope.Declare(v)
	if a.env.Parent() == nil && a.curFn == nil {
		v.IsGlobal = true
		v.Vid = a.nextGlobalVid
		a.nextGlobalVid++
		return
	}
	a.env.AddLocal(v)
}

// visitStmt dispatches a statement-position node. Most expression kinds
// are also valid statements (an expression statement's value is simply
// discarded by the emitter); visitExpr handles those.
func (a *Analyzer) visitStmt(n *ast.Node) {
	switch n.Kind {
	case ast.Block, ast.NonScopeBlock:
		a.visitBlock(n)
	case ast.If:
		a.visitIf(n)
	case ast.For:
		a.visitFor(n)
	case ast.While:
		a.visitWhile(n)
	case ast.Return:
		a.visitReturn(n)
	case ast.Break:
		a.visitBreak(n)
	case ast.VarDecl:
		a.visitVarDecl(n)
	case ast.FnDef:
		a.visitFnDef(n)
	case ast.Object:
		a.visitObjectDecl(n)
	default:
		a.visitExpr(n)
	}
}

// visitExpr dispatches an expression-position node, filling n.CType.
func (a *Analyzer) visitExpr(n *ast.Node) typesystem.Type {
	if n == nil {
		return typesystem.TNone
	}
	switch n.Kind {
	case ast.Number:
		if n.IsFloatLit() {
			n.CType = typesystem.TFloat
		} else {
			n.CType = typesystem.TInt
		}
	case ast.Bool:
		n.CType = typesystem.TBool
	case ast.Char:
		n.CType = typesystem.TChar
	case ast.String:
		n.CType = typesystem.TString
	case ast.NoneLit:
		n.CType = typesystem.TNone
	case ast.ListLit:
		a.visitListLit(n)
	case ast.TupleLit:
		a.visitTupleLit(n)
	case ast.Subscript:
		a.visitSubscript(n)
	case ast.StructInit:
		a.visitStructInit(n)
	case ast.Binary:
		a.visitBinary(n)
	case ast.Unary:
		a.visitUnary(n)
	case ast.Member:
		a.visitMember(n)
	case ast.Assignment:
		a.visitAssignment(n)
	case ast.If:
		a.visitIf(n)
		n.IsExpr = true
	case ast.Block:
		a.visitBlock(n)
		if len(n.List) > 0 {
			n.CType = n.List[len(n.List)-1].CType
		} else {
			n.CType = typesystem.TNone
		}
	case ast.VariableRef:
		a.visitVariableRef(n)
	case ast.FnCall:
		a.visitFnCall(n)
	default:
		a.errorf("S900", n, "internal: unhandled expression node kind")
		n.CType = typesystem.TError
	}
	return n.CType
}
