package analyzer

import (
	"github.com/maxc-lang/maxc/internal/config"
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// registerBuiltins seeds the global scope with the builtin-function table
// of spec.md §4.4 plus SPEC_FULL.md's supplemental yamlencode/yamldecode/
// typename entries, each as an AnyVararg binding so overload resolution's
// rule (b) ("first param of AnyVararg matches any number of args") always
// accepts the call; the VM's builtin dispatcher does its own arity
// checking at the kind level.
func registerBuiltins(scope *symbols.Scope) {
	def := func(name string, ret typesystem.Type) {
		v := &symbols.Variable{
			Name: name,
			Func: &symbols.FuncInfo{
				Args:        &symbols.VarList{},
				FType:       typesystem.TFunction([]typesystem.Type{typesystem.TAnyVararg}, ret),
				IsBuiltin:   true,
				BuiltinKind: name,
			},
		}
		v.Func.Args.Add(&symbols.Variable{Name: "args", Type: typesystem.TAnyVararg})
		scope.Declare(v)
	}

	def(config.PrintFuncName, typesystem.TNone)
	def(config.PrintlnFuncName, typesystem.TNone)
	def(config.ObjectIDFuncName, typesystem.TString)
	def(config.LenFuncName, typesystem.TInt)
	def(config.ToFloatFuncName, typesystem.TFloat)
	def(config.ErrorFuncName, typesystem.TError)
	def(config.YamlEncodeFuncName, typesystem.TString)
	def(config.YamlDecodeFuncName, typesystem.TAny)
	def(config.TypeNameFuncName, typesystem.TString)
}

// builtinsRegistered reports whether scope already carries the builtin
// table, so a REPL's repeated Analyzer.New calls against the same
// persistent global scope don't redeclare (and duplicate-overload) them.
func builtinsRegistered(scope *symbols.Scope) bool {
	_, ok := scope.LookupLocal(config.PrintFuncName)
	return ok
}
