// Package ast defines the abstract syntax tree produced by the parser and
// mutated in place by the analyzer.
//
// spec.md §9 flags the original's pointer-to-base-with-downcasts AST shape
// as something a memory-safe language should redo as "a tagged-variant tree
// ... pattern-match per node kind" rather than an interface-per-node-kind
// hierarchy. This package takes that redesign: every node is one Node
// struct carrying a Kind discriminant, and callers switch on Kind instead
// of type-asserting an interface.
package ast

import (
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/token"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// Kind discriminates the node-kind set from spec.md §3.
type Kind int

const (
	Number Kind = iota
	Bool
	Char
	String
	ListLit
	TupleLit
	Subscript
	Object
	StructInit
	Binary
	Member
	Unary
	Assignment
	If
	ExprIf
	For
	While
	Block
	TypedBlock
	NonScopeBlock
	Return
	Break
	VariableRef
	FnCall
	FnDef
	VarDecl
	NoneLit
)

// Node is the single tagged-variant AST node. Every node carries CType,
// filled in by the analyzer (spec.md invariant (i)).
type Node struct {
	Kind  Kind
	Tok   token.Token
	CType typesystem.Type

	// Literals
	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	CharVal   rune
	StringVal string

	// Generic children, used differently per Kind (documented per
	// constructor below rather than per field, since the same slot means
	// different things for different Kinds — this is the tradeoff of a
	// tagged union over one struct per kind).
	A, B, C *Node   // primary operand slots (lhs/rhs/extra)
	List    []*Node // list/tuple elements, call args, block statements

	Op     token.OpCode // Binary/Unary operator
	Impl   *Node        // operator-overload rewrite target (FnDef), if any
	Name   string       // identifier text (Member field name, etc.)
	IsExpr bool         // If: true when used as an expression (propagates else-type)

	ForVars []string            // For: loop induction variable names
	ForVarDecls []*symbols.Variable // For: one Variable per ForVars entry, filled by the analyzer

	Variable *symbols.Variable // VariableRef / declaration site

	FnInfo   *symbols.FuncInfo
	TypeVars []string // FnDef: generic type-variable names
	LVars    int      // FnDef: number of locals (filled by slot numbering)

	FailureBlock *Node // FnCall: optional `.FAILURE { ... }` handler
}

// NewNumber builds an Int or Float literal node (spec.md §4.3: "numbers
// distinguish int vs float by the presence of '.' in the lexeme").
func NewNumber(tok token.Token, isFloat bool, i int64, f float64) *Node {
	return &Node{Kind: Number, Tok: tok, IntVal: i, FloatVal: f, BoolVal: isFloat}
}

// IsFloatLit reports whether a Number node is a float literal.
func (n *Node) IsFloatLit() bool { return n.BoolVal }

func NewBool(tok token.Token, v bool) *Node {
	return &Node{Kind: Bool, Tok: tok, BoolVal: v}
}

func NewChar(tok token.Token, v rune) *Node {
	return &Node{Kind: Char, Tok: tok, CharVal: v}
}

func NewString(tok token.Token, v string) *Node {
	return &Node{Kind: String, Tok: tok, StringVal: v}
}

func NewList(tok token.Token, elems []*Node) *Node {
	return &Node{Kind: ListLit, Tok: tok, List: elems}
}

func NewTuple(tok token.Token, elems []*Node) *Node {
	return &Node{Kind: TupleLit, Tok: tok, List: elems}
}

// NewSubscript: A[B]
func NewSubscript(tok token.Token, base, index *Node) *Node {
	return &Node{Kind: Subscript, Tok: tok, A: base, B: index}
}

// NewStructInit: `new Name { field: expr, ... }`. Name is the struct name,
// List holds field-init expressions, ForVars (reused) holds field names in
// the same order.
func NewStructInit(tok token.Token, name string, fieldNames []string, values []*Node) *Node {
	return &Node{Kind: StructInit, Tok: tok, Name: name, ForVars: fieldNames, List: values}
}

// NewBinary: A op B. Impl is filled by the analyzer when operator
// resolution finds a user-defined overload (spec.md §4.2).
func NewBinary(tok token.Token, op token.OpCode, a, b *Node) *Node {
	return &Node{Kind: Binary, Tok: tok, Op: op, A: a, B: b}
}

// NewMember: A.Name
func NewMember(tok token.Token, a *Node, name string) *Node {
	return &Node{Kind: Member, Tok: tok, A: a, Name: name}
}

func NewUnary(tok token.Token, op token.OpCode, a *Node) *Node {
	return &Node{Kind: Unary, Tok: tok, Op: op, A: a}
}

// NewAssignment: A = B (A is Variable, Subscript, or Member per spec.md §4.3).
func NewAssignment(tok token.Token, dst, src *Node) *Node {
	return &Node{Kind: Assignment, Tok: tok, A: dst, B: src}
}

// NewIf: if A { B } else { C }. IsExpr marks the expression form.
func NewIf(tok token.Token, cond, then, els *Node, isExpr bool) *Node {
	return &Node{Kind: If, Tok: tok, A: cond, B: then, C: els, IsExpr: isExpr}
}

// NewFor: for vars in A B (A = iterable, B = body).
func NewFor(tok token.Token, vars []string, iter, body *Node) *Node {
	return &Node{Kind: For, Tok: tok, ForVars: vars, A: iter, B: body}
}

func NewWhile(tok token.Token, cond, body *Node) *Node {
	return &Node{Kind: While, Tok: tok, A: cond, B: body}
}

func NewBlock(tok token.Token, stmts []*Node) *Node {
	return &Node{Kind: Block, Tok: tok, List: stmts}
}

func NewTypedBlock(tok token.Token, stmts []*Node) *Node {
	return &Node{Kind: TypedBlock, Tok: tok, List: stmts}
}

// NewNonScopeBlock splices an import's statements in without a new scope
// (spec.md §4.1: "the resulting statement list is spliced at the import
// site as a non-scope block").
func NewNonScopeBlock(tok token.Token, stmts []*Node) *Node {
	return &Node{Kind: NonScopeBlock, Tok: tok, List: stmts}
}

func NewReturn(tok token.Token, val *Node) *Node {
	return &Node{Kind: Return, Tok: tok, A: val}
}

func NewBreak(tok token.Token) *Node {
	return &Node{Kind: Break, Tok: tok}
}

func NewVariableRef(tok token.Token, name string) *Node {
	return &Node{Kind: VariableRef, Tok: tok, Name: name}
}

// NewFnCall: A(args...). FailureBlock is filled by the parser when a
// `.FAILURE { ... }` handler follows the call.
func NewFnCall(tok token.Token, fn *Node, args []*Node, failure *Node) *Node {
	return &Node{Kind: FnCall, Tok: tok, A: fn, List: args, FailureBlock: failure}
}

// NewFnDef: fn name(params) [: T] (block | = expr). A = body block
// (possibly a single-expression block), lvars filled by slot numbering.
func NewFnDef(tok token.Token, name string, typeVars []string, op token.OpCode, body *Node) *Node {
	return &Node{Kind: FnDef, Tok: tok, Name: name, TypeVars: typeVars, Op: op, A: body}
}

// NewVarDecl: let/const name[:T] = init. B = init (nil if none), C = block
// for struct-like field-only decls (unused by `let`, present for symmetry
// with StructInit-style multi-target decls in §4.3).
func NewVarDecl(tok token.Token, name string, init *Node) *Node {
	return &Node{Kind: VarDecl, Tok: tok, Name: name, B: init}
}

func NewNone(tok token.Token) *Node {
	return &Node{Kind: NoneLit, Tok: tok}
}

// Program is the root of a parsed compilation unit.
type Program struct {
	File       string
	Statements []*Node
}
