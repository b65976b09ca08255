// Package typesystem implements the Type tagged union, structural equality,
// and the global operator registry described in spec.md §4.2.
package typesystem

import "fmt"

// Kind discriminates the Type variants of spec.md §3.
type Kind int

const (
	Int Kind = iota
	UInt
	Float
	Bool
	Char
	String
	None
	Any
	AnyVararg
	Uninferred
	Undefined
	Error
	List
	Tuple
	Function
	Optional
	Struct
	TypeVar
)

// Impl is a capability bitset (spec.md §3: "types also carry an `impl`
// bitset describing capabilities (e.g. Show)").
type Impl uint8

const (
	ImplShow Impl = 1 << iota
	ImplEq
)

// Field is a named, typed struct field or function parameter.
type Field struct {
	Name string
	Type Type
}

// Type is the tagged union described in spec.md §3. Only the fields
// relevant to Kind are meaningful; this mirrors the Node tagged union in
// package ast for the same reason (spec.md §9's redesign note applies to
// both the AST and the type representation).
type Type struct {
	Kind Kind
	Impl Impl

	Name string // Undefined(name), Struct(name), TypeVar(name)

	Elem  *Type  // List(elem)
	Elems []Type // Tuple(elems), Function(args)
	Ret   *Type  // Function(ret)
	Base  *Type  // Optional(base)

	Fields []Field // Struct(fields)
}

func mk(k Kind) Type { return Type{Kind: k} }

var (
	TInt        = mk(Int)
	TUInt       = mk(UInt)
	TFloat      = mk(Float)
	TBool       = mk(Bool)
	TChar       = mk(Char)
	TString     = mk(String)
	TNone       = mk(None)
	TAny        = mk(Any)
	TAnyVararg  = mk(AnyVararg)
	TUninferred = mk(Uninferred)
	TError      = mk(Error)
)

func TUndefined(name string) Type { return Type{Kind: Undefined, Name: name} }
func TList(elem Type) Type         { return Type{Kind: List, Elem: &elem} }
func TTuple(elems []Type) Type     { return Type{Kind: Tuple, Elems: elems} }
func TFunction(args []Type, ret Type) Type {
	return Type{Kind: Function, Elems: args, Ret: &ret}
}
func TOptional(base Type) Type { return Type{Kind: Optional, Base: &base} }
func TStruct(name string, fields []Field) Type {
	return Type{Kind: Struct, Name: name, Fields: fields}
}
func TTypeVar(name string) Type { return Type{Kind: TypeVar, Name: name} }

// IsEmptyList reports a List literal whose element type hasn't been
// inferred yet (spec.md invariant (iii): "List(T).elem is present when T
// has been inferred ... else null").
func (t Type) IsEmptyList() bool { return t.Kind == List && t.Elem == nil }

func (t Type) String() string {
	switch t.Kind {
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case String:
		return "string"
	case None:
		return "none"
	case Any:
		return "any"
	case AnyVararg:
		return "any..."
	case Uninferred:
		return "<uninferred>"
	case Undefined:
		return "undefined(" + t.Name + ")"
	case Error:
		return "error"
	case List:
		if t.Elem == nil {
			return "[]"
		}
		return "[" + t.Elem.String() + "]"
	case Tuple:
		s := "("
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	case Function:
		s := "fn("
		for i, a := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		s += ")"
		if t.Ret != nil {
			s += ": " + t.Ret.String()
		}
		return s
	case Optional:
		if t.Base == nil {
			return "?"
		}
		return t.Base.String() + "?"
	case Struct:
		return t.Name
	case TypeVar:
		return "'" + t.Name
	default:
		return fmt.Sprintf("<type kind %d>", t.Kind)
	}
}

// TypeTable resolves Undefined(name) references against the user-defined
// struct types visible in the current scope chain (spec.md §4.2).
type TypeTable interface {
	LookupType(name string) (Type, bool)
}

// stripOptional removes one level of Optional (spec.md §4.2: "Strip one
// level of Optional from both sides before comparing").
func stripOptional(t Type) Type {
	if t.Kind == Optional && t.Base != nil {
		return *t.Base
	}
	return t
}

// CheckType implements spec.md §4.2's structural equality, resolving
// Undefined(name) against tt. A nil tt means "no resolution possible";
// an unresolved Undefined is treated as unequal to everything (the caller
// is expected to have already raised a fatal type error for it, per
// spec.md's "unresolved is a fatal type error").
func CheckType(a, b Type, tt TypeTable) bool {
	a = resolveUndefined(a, tt)
	b = resolveUndefined(b, tt)
	a, b = stripOptional(a), stripOptional(b)

	// spec.md §4.2: "return-type checking accepts Error as a match for
	// Optional(T)" — callers compare against the *unstripped* Optional,
	// so this special case is also handled by CheckReturnType below; here
	// we only handle the symmetric structural cases.
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case List:
		if a.Elem == nil || b.Elem == nil {
			return true // empty-list type is untyped until first use
		}
		return CheckType(*a.Elem, *b.Elem, tt)
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !CheckType(a.Elems[i], b.Elems[i], tt) {
				return false
			}
		}
		return true
	case Function:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		if a.Ret == nil || b.Ret == nil || !CheckType(*a.Ret, *b.Ret, tt) {
			return false
		}
		for i := range a.Elems {
			if !CheckType(a.Elems[i], b.Elems[i], tt) {
				return false
			}
		}
		return true
	case Struct:
		return a.Name == b.Name
	case TypeVar:
		return a.Name == b.Name
	default:
		return true // same Kind tag, no payload to compare
	}
}

func resolveUndefined(t Type, tt TypeTable) Type {
	if t.Kind != Undefined || tt == nil {
		return t
	}
	if resolved, ok := tt.LookupType(t.Name); ok {
		return resolved
	}
	return t
}

// CheckReturnType implements the special case in spec.md §4.2: "return-type
// checking accepts Error as a match for Optional(T) (used by failing
// calls)".
func CheckReturnType(declared, actual Type, tt TypeTable) bool {
	if declared.Kind == Optional && actual.Kind == Error {
		return true
	}
	return CheckType(declared, actual, tt)
}
