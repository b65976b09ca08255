// Package symbols implements the Variable/Scope symbol table described in
// spec.md §3 and §4.3: two parallel scope trees (lexical, for name
// resolution; function-env, for slot numbering), and Variable objects
// shared by reference between a declaration and every use of it.
package symbols

import "github.com/maxc-lang/maxc/internal/typesystem"

// Attr is the Variable attribute bitset from spec.md §3 (const,
// uninitialized, used).
type Attr uint8

const (
	AttrConst Attr = 1 << iota
	AttrUninit
	AttrUsed
)

// FuncInfo holds the extra fields a function-bound Variable carries
// (spec.md §3: "Function variables additionally hold a FuncInfo").
type FuncInfo struct {
	Args        *VarList
	FType       typesystem.Type // Function(args, ret)
	IsGeneric   bool
	IsBuiltin   bool
	BuiltinKind string
}

// Variable binds a name to a slot id, a global flag, a type, and an
// attribute bitset. It is intentionally a pointer-identity object: the
// same *Variable is referenced from the declaration node and from every
// use node, reifying spec.md §9's "back these by indices into a
// per-function variable arena" redesign note — the "index" here is the
// Variable's own pointer identity inside that arena (VarList), which is
// safe in Go unlike the raw aliased pointers the original C/C++ used.
type Variable struct {
	Name     string
	Vid      int
	IsGlobal bool
	Type     typesystem.Type
	Attrs    Attr
	Func     *FuncInfo // non-nil for function bindings
}

func (v *Variable) IsConst() bool    { return v.Attrs&AttrConst != 0 }
func (v *Variable) IsUninit() bool   { return v.Attrs&AttrUninit != 0 }
func (v *Variable) IsUsed() bool     { return v.Attrs&AttrUsed != 0 }
func (v *Variable) MarkUsed()        { v.Attrs |= AttrUsed }
func (v *Variable) ClearUninit()     { v.Attrs &^= AttrUninit }
func (v *Variable) IsFunction() bool { return v.Func != nil }

// VarList is a per-function arena of locals, in declaration order. After a
// function body is analyzed, slot numbering assigns consecutive Vids 0..n-1
// across this list (spec.md §4.3 "Slot numbering").
type VarList struct {
	vars []*Variable
}

func (vl *VarList) Add(v *Variable) { vl.vars = append(vl.vars, v) }
func (vl *VarList) Len() int        { return len(vl.vars) }
func (vl *VarList) At(i int) *Variable { return vl.vars[i] }

// AssignSlots numbers vl's variables 0..n-1 in declaration order and
// returns n (spec.md §4.3).
func (vl *VarList) AssignSlots() int {
	for i, v := range vl.vars {
		v.Vid = i
	}
	return len(vl.vars)
}
