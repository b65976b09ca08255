package typesystem

import "github.com/maxc-lang/maxc/internal/token"

// OperatorEntry is one registration in the global operator table
// (spec.md §4.2: "A global table maps (OperatorKind, LhsType, RhsType) ->
// { ret: Type, impl?: FnDef }").
type OperatorEntry struct {
	Ret  Type
	Impl interface{} // *ast.Node (FnDef), set for user-defined overloads
}

type operatorKey struct {
	Op  token.OpCode
	Lhs Kind
	Rhs Kind
}

// OperatorRegistry is the operator table threaded through analysis. It is
// not a package-level global (spec.md §9's "reify global compiler state"
// design note applies here too): each compilation/REPL session owns one,
// seeded with the builtin entries.
type OperatorRegistry struct {
	table map[operatorKey]OperatorEntry
}

func NewOperatorRegistry() *OperatorRegistry {
	r := &OperatorRegistry{table: make(map[operatorKey]OperatorEntry)}
	r.registerBuiltins()
	return r
}

func (r *OperatorRegistry) registerBuiltins() {
	numeric := func(op token.OpCode, k Kind, ret Type) {
		r.table[operatorKey{op, k, k}] = OperatorEntry{Ret: ret}
	}
	for _, k := range []Kind{Int, Float} {
		var t Type
		if k == Int {
			t = TInt
		} else {
			t = TFloat
		}
		numeric(token.OpAdd, k, t)
		numeric(token.OpSub, k, t)
		numeric(token.OpMul, k, t)
		numeric(token.OpDiv, k, t)
		numeric(token.OpMod, k, t)
		numeric(token.OpEq, k, TBool)
		numeric(token.OpNeq, k, TBool)
		numeric(token.OpLt, k, TBool)
		numeric(token.OpLe, k, TBool)
		numeric(token.OpGt, k, TBool)
		numeric(token.OpGe, k, TBool)
	}
	numeric(token.OpAnd, Bool, TBool)
	numeric(token.OpOr, Bool, TBool)
	numeric(token.OpEq, Bool, TBool)
	numeric(token.OpNeq, Bool, TBool)

	// "+" on String (spec.md §4.2).
	r.table[operatorKey{token.OpAdd, String, String}] = OperatorEntry{Ret: TString}
	r.table[operatorKey{token.OpEq, String, String}] = OperatorEntry{Ret: TBool}
	r.table[operatorKey{token.OpNeq, String, String}] = OperatorEntry{Ret: TBool}
}

// Lookup finds the entry for (op, lhs, rhs), honoring implicit int->float
// promotion the same way the VM's arithmetic does.
func (r *OperatorRegistry) Lookup(op token.OpCode, lhs, rhs Type) (OperatorEntry, bool) {
	e, ok := r.table[operatorKey{op, lhs.Kind, rhs.Kind}]
	if ok {
		return e, true
	}
	if lhs.Kind == Int && rhs.Kind == Float || lhs.Kind == Float && rhs.Kind == Int {
		return r.table[operatorKey{op, Float, Float}], true
	}
	return OperatorEntry{}, false
}

// Register adds a user-defined operator overload (from a
// `fn \`+\`(a: T, b: U): V` declaration, spec.md §4.2). impl is the
// *ast.Node FnDef; stored as interface{} to avoid an import cycle between
// typesystem and ast.
func (r *OperatorRegistry) Register(op token.OpCode, lhs, rhs Type, ret Type, impl interface{}) {
	r.table[operatorKey{op, lhs.Kind, rhs.Kind}] = OperatorEntry{Ret: ret, Impl: impl}
}
