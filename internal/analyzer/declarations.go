package analyzer

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// resolveDeclared resolves a parsed type annotation's Undefined(name)
// against the current scope chain's user-defined types, matching the
// lookup CheckType does internally but surfacing its own diagnostic when
// unresolved (spec.md §4.2: "unresolved is a fatal type error").
func (a *Analyzer) resolveDeclared(n *ast.Node, t typesystem.Type) typesystem.Type {
	if t.Kind != typesystem.Undefined {
		return t
	}
	if resolved, ok := a.scope.LookupType(t.Name); ok {
		return resolved
	}
	a.errorf("S260", n, "undefined type '"+t.Name+"'")
	return typesystem.TError
}

// visitVarDecl infers from the initializer when the declared type is
// Uninferred, resolves Undefined via the user-type table, pushes the
// variable into the current function-env and lexical scope, and marks
// UNINIT when there is no initializer (spec.md §4.3).
func (a *Analyzer) visitVarDecl(n *ast.Node) {
	declared := a.resolveDeclared(n, n.CType)

	var attrs symbols.Attr
	if n.BoolVal {
		attrs |= symbols.AttrConst
	}

	if n.B != nil {
		initType := a.visitExpr(n.B)
		if declared.Kind == typesystem.Uninferred {
			declared = initType
		} else if !typesystem.CheckType(declared, initType, a.scope) {
			a.errorf("S261", n, "cannot initialize "+declared.String()+" with "+initType.String())
		}
	} else {
		attrs |= symbols.AttrUninit
	}

	v := &symbols.Variable{Name: n.Name, Type: declared, Attrs: attrs}
	a.declareLocalOrGlobal(v)
	n.Variable = v
	n.CType = declared
}

// visitObjectDecl registers a struct type's fields in the current scope's
// user-type table (spec.md §4.1: "object Name { field: T, ... }").
func (a *Analyzer) visitObjectDecl(n *ast.Node) {
	fields := make([]typesystem.Field, len(n.ForVars))
	for i, fname := range n.ForVars {
		ft := typesystem.TUninferred
		if i < len(n.List) && n.List[i] != nil {
			ft = n.List[i].CType
		}
		fields[i] = typesystem.Field{Name: fname, Type: a.resolveDeclared(n, ft)}
	}
	st := typesystem.TStruct(n.Name, fields)
	a.scope.DeclareType(n.Name, st)
	n.CType = st
}

// visitStructInit types `new Name { field: expr, ... }` against the
// struct type's declared fields, checking each initializer and that every
// field is covered (spec.md §3's StructInit node).
func (a *Analyzer) visitStructInit(n *ast.Node) {
	st, ok := a.scope.LookupType(n.Name)
	if !ok {
		a.errorf("S270", n, "undefined struct type '"+n.Name+"'")
		n.CType = typesystem.TError
		return
	}

	seen := make(map[string]bool, len(n.ForVars))
	for i, fname := range n.ForVars {
		valType := a.visitExpr(n.List[i])
		seen[fname] = true
		var field *typesystem.Field
		for fi := range st.Fields {
			if st.Fields[fi].Name == fname {
				field = &st.Fields[fi]
				break
			}
		}
		if field == nil {
			a.errorf("S271", n.List[i], "type '"+n.Name+"' has no field '"+fname+"'")
			continue
		}
		if !typesystem.CheckType(field.Type, valType, a.scope) {
			a.errorf("S272", n.List[i], "field '"+fname+"' expects "+field.Type.String()+", got "+valType.String())
		}
	}
	for _, f := range st.Fields {
		if !seen[f.Name] {
			a.errorf("S273", n, "missing field '"+f.Name+"' in struct literal for '"+n.Name+"'")
		}
	}
	n.CType = st
}
