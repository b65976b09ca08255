package symbols

import "github.com/maxc-lang/maxc/internal/typesystem"

// UserType is a user-defined struct type registered in a scope
// (spec.md §3: "it has ... a list of user-defined types").
type UserType struct {
	Name string
	Type typesystem.Type
}

// Scope is one node of the lexical-scope tree (spec.md §3: "Scope is a
// tree of environments. Each environment owns a list of declared variables
// and a list of user-defined types; it has a parent pointer (or null at
// global)").
type Scope struct {
	parent *Scope
	vars   map[string]*Variable
	types  map[string]*Variable // function bindings looked up by name for overload sets
	utypes map[string]typesystem.Type
	order  []*Variable // declaration order, for overload-resolution innermost-wins walks
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		vars:   make(map[string]*Variable),
		utypes: make(map[string]typesystem.Type),
	}
}

func (s *Scope) Parent() *Scope { return s.parent }

// Declare adds v to this scope. Multiple function bindings may share a
// name (overloading); non-function redeclaration of a name shadows.
func (s *Scope) Declare(v *Variable) {
	s.vars[v.Name] = v
	s.order = append(s.order, v)
}

// DeclareType registers a user struct type, resolved later by Undefined(name).
func (s *Scope) DeclareType(name string, t typesystem.Type) {
	s.utypes[name] = t
}

// LookupType implements typesystem.TypeTable by walking the scope chain
// root-upwards... actually innermost-upward, matching name resolution
// (spec.md §4.3 "Load": "walk lexical scopes root-upwards" is spec.md's
// wording for "from the current scope outward to the root").
func (s *Scope) LookupType(name string) (typesystem.Type, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.utypes[name]; ok {
			return t, true
		}
	}
	return typesystem.Type{}, false
}

// Lookup finds the nearest-enclosing binding for name (spec.md §4.3
// "Load": "resolves by walking lexical scopes root-upwards until a
// variable of that name is found").
func (s *Scope) Lookup(name string) (*Variable, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupLocal finds a binding declared directly in this scope, without
// walking to parents (used for duplicate-declaration checks).
func (s *Scope) LookupLocal(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Candidates returns every binding of name visible from s, innermost
// scope first, for overload resolution (spec.md §4.3).
func (s *Scope) Candidates(name string) []*Variable {
	var out []*Variable
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			out = append(out, v)
		}
		for _, v := range sc.order {
			if v.Name == name && v.IsFunction() && v != sc.vars[name] {
				out = append(out, v)
			}
		}
	}
	return out
}

// FuncEnv is one node of the parallel function-local scope tree used for
// slot numbering (spec.md §3: "Two parallel scope trees exist: the lexical
// scope ... and the function-local scope (for slot numbering and
// emission)").
type FuncEnv struct {
	parent *FuncEnv
	Locals VarList
}

func NewFuncEnv(parent *FuncEnv) *FuncEnv {
	return &FuncEnv{parent: parent}
}

func (f *FuncEnv) Parent() *FuncEnv { return f.parent }

func (f *FuncEnv) AddLocal(v *Variable) { f.Locals.Add(v) }
