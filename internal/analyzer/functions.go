package analyzer

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// visitFnDef pushes the function into the enclosing env, opens a fresh
// function-env and lexical scope, enters each parameter as a local,
// visits the body, and on exit back-fills ftype.ret when uninferred or
// checks it against the declared return. Operator-tagged definitions
// additionally register in the operator table (spec.md §4.3).
func (a *Analyzer) visitFnDef(n *ast.Node) {
	argTypes := make([]typesystem.Type, len(n.List))
	for i, pt := range n.List {
		argTypes[i] = a.resolveDeclared(n, pt.CType)
	}
	declaredRet := a.resolveDeclared(n, n.CType)
	n.CType = declaredRet

	info := &symbols.FuncInfo{
		Args:  &symbols.VarList{},
		FType: typesystem.TFunction(argTypes, declaredRet),
	}
	fnVar := &symbols.Variable{Name: n.Name, Func: info}
	a.declareLocalOrGlobal(fnVar)
	n.Variable = fnVar
	n.FnInfo = info

	parentScope, parentEnv := a.scope, a.env
	a.scope = symbols.NewScope(parentScope)
	a.env = symbols.NewFuncEnv(parentEnv)

	for i, pname := range n.ForVars {
		pv := &symbols.Variable{Name: pname, Type: argTypes[i]}
		a.scope.Declare(pv)
		a.env.AddLocal(pv)
		info.Args.Add(pv)
	}

	savedFn, savedLoop := a.curFn, a.loopNest
	a.curFn, a.loopNest = n, 0

	a.visitStmt(n.A)

	a.curFn, a.loopNest = savedFn, savedLoop

	if n.CType.Kind == typesystem.Uninferred {
		n.CType = typesystem.TNone
	}
	info.FType = typesystem.TFunction(argTypes, n.CType)

	n.LVars = a.env.Locals.AssignSlots()
	a.scope, a.env = parentScope, parentEnv

	if n.Op != 0 && len(argTypes) >= 2 {
		a.ops.Register(n.Op, argTypes[0], argTypes[1], n.CType, n)
	}
}

// visitFnCall types all arguments, resolves the callee through overload
// selection, and sets ctype = callee.ret. A present failure_block requires
// ret to be Optional(T), types the block against T, and unwraps ret to T
// (spec.md §4.3).
func (a *Analyzer) visitFnCall(n *ast.Node) {
	argTypes := make([]typesystem.Type, len(n.List))
	for i, arg := range n.List {
		argTypes[i] = a.visitExpr(arg)
	}

	var ret typesystem.Type
	if n.A.Kind == ast.VariableRef {
		ret = a.resolveOverload(n, n.A.Name, argTypes)
	} else {
		calleeType := a.visitExpr(n.A)
		if calleeType.Kind != typesystem.Function {
			a.errorf("S280", n.A, "cannot call a value of type "+calleeType.String())
			ret = typesystem.TError
		} else {
			ret = *calleeType.Ret
		}
	}

	if n.FailureBlock != nil {
		if ret.Kind != typesystem.Optional || ret.Base == nil {
			a.errorf("S281", n, "'.FAILURE' requires a call returning an optional type, got "+ret.String())
			n.CType = ret
			a.visitStmt(n.FailureBlock)
			return
		}
		base := *ret.Base
		a.visitStmt(n.FailureBlock)
		var handlerType typesystem.Type = typesystem.TNone
		if len(n.FailureBlock.List) > 0 {
			handlerType = n.FailureBlock.List[len(n.FailureBlock.List)-1].CType
		}
		if !typesystem.CheckType(base, handlerType, a.scope) {
			a.errorf("S282", n.FailureBlock, "'.FAILURE' block type "+handlerType.String()+" does not match "+base.String())
		}
		n.CType = base
		return
	}

	n.CType = ret
}

// resolveOverload implements spec.md §4.3's "Overload resolution": walk
// the scope chain's bindings of name and select by arity/AnyVararg/Any
// rules, resolving to the innermost match.
func (a *Analyzer) resolveOverload(n *ast.Node, name string, argTypes []typesystem.Type) typesystem.Type {
	candidates := a.scope.Candidates(name)
	for _, cand := range candidates {
		if !cand.IsFunction() {
			continue
		}
		ft := cand.Func.FType
		if matchesOverload(ft, argTypes) {
			cand.MarkUsed()
			n.A.Variable = cand
			n.FnInfo = cand.Func
			return *ft.Ret
		}
	}
	a.errorf("S290", n, "no matching overload for '"+name+"'"+describeCallArgs(argTypes))
	return typesystem.TError
}

func matchesOverload(ft typesystem.Type, argTypes []typesystem.Type) bool {
	if len(ft.Elems) == 0 {
		return len(argTypes) == 0
	}
	if ft.Elems[0].Kind == typesystem.AnyVararg {
		return true
	}
	if ft.Elems[0].Kind == typesystem.Any {
		return len(argTypes) == 1
	}
	if len(ft.Elems) != len(argTypes) {
		return false
	}
	for i := range ft.Elems {
		if ft.Elems[i].Kind != argTypes[i].Kind {
			return false
		}
	}
	return true
}

func describeCallArgs(argTypes []typesystem.Type) string {
	if len(argTypes) == 0 {
		return " (0 arguments)"
	}
	return ", first argument type: " + argTypes[0].String()
}
