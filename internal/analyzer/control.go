package analyzer

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// visitBlock opens a new lexical scope, visits every statement, and pops
// it — except NonScopeBlock, whose declarations share the enclosing scope
// (spec.md §4.1: "the resulting statement list is spliced at the import
// site as a non-scope block").
func (a *Analyzer) visitBlock(n *ast.Node) {
	if n.Kind != ast.NonScopeBlock {
		parent := a.scope
		a.scope = symbols.NewScope(parent)
		defer func() { a.scope = parent }()
	}
	for _, stmt := range n.List {
		if stmt == nil {
			continue
		}
		a.visitStmt(stmt)
	}
}

// visitIf handles both the statement and expression form (spec.md §4.1,
// §4.3's If entry): cond must be Bool; in expression position the else
// branch's type is propagated as the node's ctype.
func (a *Analyzer) visitIf(n *ast.Node) {
	condType := a.visitExpr(n.A)
	if condType.Kind != typesystem.Bool {
		a.errorf("S100", n.A, "if condition must be bool, got "+condType.String())
	}
	a.visitBlock(n.B)
	if n.C != nil {
		if n.IsExpr && n.C.Kind == ast.If {
			n.C.IsExpr = true
		}
		a.visitStmt(n.C)
	}
	if n.IsExpr {
		n.CType = typesystem.TNone
		if n.C == nil {
			a.errorf("S101", n, "if used as an expression requires an else branch")
		} else if n.C.Kind == ast.If {
			n.CType = n.C.CType
		} else if len(n.C.List) > 0 {
			n.CType = n.C.List[len(n.C.List)-1].CType
		}
	} else {
		n.CType = typesystem.TNone
	}
}

// visitFor accepts any List- or Tuple-typed source expression (spec.md
// §4.3: "the iterator protocol is intentionally partial"; DESIGN.md
// records the Open Question decision) and introduces its loop variables
// as locals typed with the list's element type, or Uninferred for a
// tuple or a list of unknown element type.
func (a *Analyzer) visitFor(n *ast.Node) {
	iterType := a.visitExpr(n.A)
	if iterType.Kind != typesystem.List && iterType.Kind != typesystem.Tuple {
		a.errorf("S110", n.A, "for-loop source must be a list or tuple, got "+iterType.String())
	}

	parent := a.scope
	a.scope = symbols.NewScope(parent)
	defer func() { a.scope = parent }()

	elemType := typesystem.TUninferred
	if iterType.Kind == typesystem.List && iterType.Elem != nil {
		elemType = *iterType.Elem
	}
	for _, name := range n.ForVars {
		v := &symbols.Variable{Name: name, Type: elemType}
		a.declareLocalOrGlobal(v)
		n.ForVarDecls = append(n.ForVarDecls, v)
	}

	a.loopNest++
	a.visitStmt(n.B)
	a.loopNest--
	n.CType = typesystem.TNone
}

func (a *Analyzer) visitWhile(n *ast.Node) {
	condType := a.visitExpr(n.A)
	if condType.Kind != typesystem.Bool {
		a.errorf("S120", n.A, "while condition must be bool, got "+condType.String())
	}
	a.loopNest++
	a.visitStmt(n.B)
	a.loopNest--
	n.CType = typesystem.TNone
}

// visitReturn checks against the enclosing function's return type,
// accepting Error where Optional(T) is expected (spec.md §4.3).
func (a *Analyzer) visitReturn(n *ast.Node) {
	var valType typesystem.Type = typesystem.TNone
	if n.A != nil {
		valType = a.visitExpr(n.A)
	}
	if a.curFn == nil {
		a.errorf("S130", n, "return outside of a function")
		n.CType = typesystem.TNone
		return
	}
	declared := a.curFn.CType
	if declared.Kind == typesystem.Uninferred {
		a.curFn.CType = valType
	} else if !typesystem.CheckReturnType(declared, valType, a.scope) {
		a.errorf("S131", n, "return type "+valType.String()+" does not match declared "+declared.String())
	}
	n.CType = valType
}

// visitBreak requires an enclosing loop (spec.md §4.3: "requires
// loop_nest > 0").
func (a *Analyzer) visitBreak(n *ast.Node) {
	if a.loopNest <= 0 {
		a.errorf("S140", n, "break outside of a loop")
	}
	n.CType = typesystem.TNone
}
