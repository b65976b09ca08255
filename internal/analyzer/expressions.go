package analyzer

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/config"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// visitListLit types to List(elem) where elem is the first element's type;
// every subsequent element is checked against it. Empty lists take
// List(nil) and defer to first-use context (spec.md §4.3).
func (a *Analyzer) visitListLit(n *ast.Node) {
	if len(n.List) == 0 {
		n.CType = typesystem.Type{Kind: typesystem.List}
		return
	}
	elem := a.visitExpr(n.List[0])
	for _, e := range n.List[1:] {
		t := a.visitExpr(e)
		if !typesystem.CheckType(elem, t, a.scope) {
			a.errorf("S200", e, "list element type "+t.String()+" does not match "+elem.String())
		}
	}
	n.CType = typesystem.TList(elem)
}

func (a *Analyzer) visitTupleLit(n *ast.Node) {
	elems := make([]typesystem.Type, len(n.List))
	for i, e := range n.List {
		elems[i] = a.visitExpr(e)
	}
	n.CType = typesystem.TTuple(elems)
}

// visitSubscript: base[index]. base must be List, Tuple or String (a
// string subscript yields Char); index must be
// Int (tuple indices are still runtime values in this language — no
// const-index arity checking, matching the VM's uniform SUBSCR opcode).
func (a *Analyzer) visitSubscript(n *ast.Node) {
	baseType := a.visitExpr(n.A)
	idxType := a.visitExpr(n.B)
	if idxType.Kind != typesystem.Int {
		a.errorf("S210", n.B, "subscript index must be int, got "+idxType.String())
	}
	switch baseType.Kind {
	case typesystem.List:
		if baseType.Elem != nil {
			n.CType = *baseType.Elem
		} else {
			n.CType = typesystem.TUninferred
		}
	case typesystem.Tuple:
		n.CType = typesystem.TAny
	case typesystem.String:
		n.CType = typesystem.TChar
	default:
		a.errorf("S211", n.A, "cannot subscript "+baseType.String())
		n.CType = typesystem.TError
	}
}

// visitBinary recurses on children, queries the operator registry, and
// records a rewrite to impl's FnDef when a user overload was registered
// (spec.md §4.2, §4.3).
func (a *Analyzer) visitBinary(n *ast.Node) {
	lt := a.visitExpr(n.A)
	rt := a.visitExpr(n.B)
	entry, ok := a.ops.Lookup(n.Op, lt, rt)
	if !ok {
		a.errorf("S220", n, "no operator for "+lt.String()+" and "+rt.String())
		n.CType = typesystem.TError
		return
	}
	n.CType = entry.Ret
	if fn, ok := entry.Impl.(*ast.Node); ok && fn != nil {
		n.Impl = fn
	}
}

func (a *Analyzer) visitUnary(n *ast.Node) {
	t := a.visitExpr(n.A)
	n.CType = t
}

// visitMember handles `list.len` specially (spec.md §4.3); otherwise looks
// up the field by name on the struct type of the left operand.
func (a *Analyzer) visitMember(n *ast.Node) {
	lt := a.visitExpr(n.A)
	if n.Name == config.ListLenMember && (lt.Kind == typesystem.List || lt.Kind == typesystem.String) {
		n.CType = typesystem.TInt
		return
	}
	if lt.Kind != typesystem.Struct {
		a.errorf("S230", n, "cannot access field '"+n.Name+"' on "+lt.String())
		n.CType = typesystem.TError
		return
	}
	for _, f := range lt.Fields {
		if f.Name == n.Name {
			n.CType = f.Type
			return
		}
	}
	a.errorf("S231", n, "type "+lt.String()+" has no field '"+n.Name+"'")
	n.CType = typesystem.TError
}

// visitAssignment requires the destination to be Variable, Subscript, or
// Member; rejects const targets; clears UNINIT; checks type compatibility
// (spec.md §4.3).
func (a *Analyzer) visitAssignment(n *ast.Node) {
	srcType := a.visitExpr(n.B)

	var dstType typesystem.Type
	switch n.A.Kind {
	case ast.VariableRef:
		// Resolved directly (not via visitExpr) so the normal
		// uninitialized-use check doesn't fire on a variable's first
		// assignment.
		v, ok := a.scope.Lookup(n.A.Name)
		if !ok {
			a.errorf("S250", n.A, "undefined name '"+n.A.Name+"'")
			n.A.CType = typesystem.TError
			n.CType = typesystem.TError
			return
		}
		n.A.Variable = v
		if v.IsConst() {
			a.errorf("S241", n, "cannot assign to const '"+v.Name+"'")
		}
		v.ClearUninit()
		if v.Type.Kind == typesystem.Uninferred {
			v.Type = srcType
		}
		dstType = v.Type
		n.A.CType = dstType
	case ast.Subscript, ast.Member:
		dstType = a.visitExpr(n.A)
	default:
		a.errorf("S240", n.A, "assignment target must be a variable, subscript, or field access")
		dstType = a.visitExpr(n.A)
	}

	if !typesystem.CheckType(dstType, srcType, a.scope) {
		a.errorf("S242", n, "cannot assign "+srcType.String()+" to "+dstType.String())
	}
	n.CType = dstType
}

// visitVariableRef resolves a use by walking lexical scopes root-upwards
// (spec.md §4.3 "Load"), erroring if uninitialized, and marking used.
// Struct-typed loads may be field-wise initialized, so the UNINIT check is
// skipped for them (spec.md: "except for struct-typed loads").
func (a *Analyzer) visitVariableRef(n *ast.Node) {
	v, ok := a.scope.Lookup(n.Name)
	if !ok {
		a.errorf("S250", n, "undefined name '"+n.Name+"'")
		n.CType = typesystem.TError
		return
	}
	if v.IsUninit() && v.Type.Kind != typesystem.Struct {
		a.errorf("S251", n, "use of uninitialized variable '"+n.Name+"'")
	}
	v.MarkUsed()
	n.Variable = v
	n.CType = v.Type
	if v.IsFunction() {
		n.CType = v.Func.FType
	}
}
