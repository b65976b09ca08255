// Package config holds named constants shared across the pipeline stages:
// version, source file extension, and builtin function/type names.
// Grounded on funvibe-funxy/internal/config/constants.go.
package config

// Version is the maxc toolchain version.
var Version = "0.1.0"

// SourceFileExt is the recognized maxc source extension (spec.md §6).
const SourceFileExt = ".mxc"

// CompiledExt is the extension for serialized bytecode bundles (§3 of
// SPEC_FULL.md, supplemental to spec.md).
const CompiledExt = ".mxcb"

// Builtin function names (spec.md §4.4's "handful of builtins", plus the
// supplemental yaml/typename builtins from SPEC_FULL.md §3).
const (
	PrintFuncName      = "print"
	PrintlnFuncName    = "println"
	ObjectIDFuncName   = "objectid"
	LenFuncName        = "len"
	ToFloatFuncName    = "tofloat"
	ErrorFuncName      = "error"
	YamlEncodeFuncName = "yamlencode"
	YamlDecodeFuncName = "yamldecode"
	TypeNameFuncName   = "typename"
)

// BuiltinNames lists every builtin in table order. The analyzer's global
// scope and the VM's builtin dispatch table each list these names
// themselves rather than reading this slice.
var BuiltinNames = []string{
	PrintFuncName, PrintlnFuncName, ObjectIDFuncName, LenFuncName,
	ToFloatFuncName, ErrorFuncName, YamlEncodeFuncName, YamlDecodeFuncName,
	TypeNameFuncName,
}

// FailureBlockKeyword is the postfix-call failure-handler keyword
// (spec.md §4.1: "call().FAILURE { ... }").
const FailureBlockKeyword = "FAILURE"

// ListLenMember is the special-cased `.len` member on lists (spec.md §4.3:
// "Member handles list.len specially (returns Int)").
const ListLenMember = "len"
