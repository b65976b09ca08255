package vm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Header is the common prefix every heap object carries: a refcount and a
// stable identity (spec.md §3: "Obj points to a heap record beginning
// with a refcount and a vtable"; objectid's identity is this UUID, wiring
// google/uuid into the domain stack per SPEC_FULL.md).
type Header struct {
	Refcount   int
	ID         uuid.UUID
	vtableKind string
}

func newHeader(kind string) Header {
	allocCount++
	allocBytes += approxObjectSize(kind)
	return Header{Refcount: 1, ID: uuid.New(), vtableKind: kind}
}

// allocCount/allocBytes back the opt-in pool-accounting telemetry
// (SPEC_FULL.md §4: original_source/include/mem.h's running mem_used
// counter, surfaced here through the CLI's --stats flag and the REPL's
// :mem command via github.com/dustin/go-humanize). approxObjectSize is a
// rough per-kind estimate, not a real allocator's byte count — good enough
// for telemetry, not for a bounded-memory guarantee.
var (
	allocCount int64
	allocBytes int64
)

func approxObjectSize(kind string) int64 {
	switch kind {
	case "String":
		return 24
	case "List", "Tuple", "Iterator":
		return 40
	case "Struct":
		return 56
	case "Function":
		return 80
	case "BuiltinFunction", "CFunction":
		return 32
	case "Error":
		return 24
	default:
		return 24
	}
}

// AllocStats reports the running count and estimated byte total of every
// heap object allocated this process, for --stats/:mem telemetry.
func AllocStats() (count int64, bytes int64) {
	return allocCount, allocBytes
}

// HeapObject is the vtable every Obj-kind MxcValue points to: tostring,
// dealloc, and mark (spec.md §3). Go's GC already reclaims memory, so
// Dealloc here only releases the object's own references to other heap
// objects it holds (spec.md §9: reference counting without cycle
// collection — Dealloc is the "free this node's outgoing edges" step, not
// a raw memory free).
type HeapObject interface {
	header() *Header
	ToString() string
	Dealloc(vm *VM)
	Mark()
}

func (h *Header) header() *Header { return h }
func (h *Header) Mark()           {}

// StringObj is the heap String variant.
type StringObj struct {
	Header
	Value string
}

func NewString(s string) *StringObj {
	return &StringObj{Header: newHeader("String"), Value: s}
}
func (s *StringObj) ToString() string { return s.Value }
func (s *StringObj) Dealloc(vm *VM)   {}

// ListObj is the heap List variant; elements are unboxed MxcValues
// (spec.md §3: "List(elem: [Value])").
type ListObj struct {
	Header
	Elems []MxcValue
}

func NewList(elems []MxcValue) *ListObj {
	return &ListObj{Header: newHeader("List"), Elems: elems}
}
func (l *ListObj) ToString() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.ToString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *ListObj) Dealloc(vm *VM) {
	for _, e := range l.Elems {
		vm.Decref(e)
	}
}

// TupleObj is the heap Tuple variant.
type TupleObj struct {
	Header
	Elems []MxcValue
}

func NewTuple(elems []MxcValue) *TupleObj {
	return &TupleObj{Header: newHeader("Tuple"), Elems: elems}
}
func (t *TupleObj) ToString() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.ToString()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleObj) Dealloc(vm *VM) {
	for _, e := range t.Elems {
		vm.Decref(e)
	}
}

// StructObj is the heap Struct variant (spec.md §3: "Struct(fields: [Value])").
type StructObj struct {
	Header
	TypeName string
	Fields   []MxcValue
	FieldIdx map[string]int
}

func NewStruct(typeName string, fieldNames []string, fields []MxcValue) *StructObj {
	idx := make(map[string]int, len(fieldNames))
	for i, n := range fieldNames {
		idx[n] = i
	}
	return &StructObj{Header: newHeader("Struct"), TypeName: typeName, Fields: fields, FieldIdx: idx}
}
func (s *StructObj) ToString() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.ToString()
	}
	return s.TypeName + "{" + strings.Join(parts, ", ") + "}"
}
func (s *StructObj) Dealloc(vm *VM) {
	for _, f := range s.Fields {
		vm.Decref(f)
	}
}

// FunctionObj is a compiled user function (spec.md §3:
// "Function(code, nlvars, var_info)").
type FunctionObj struct {
	Header
	Name    string
	Code    []byte
	NLVars  int
	VarInfo []string // parameter names, for trace/debug output
}

func NewFunction(name string, code []byte, nlvars int, varInfo []string) *FunctionObj {
	return &FunctionObj{Header: newHeader("Function"), Name: name, Code: code, NLVars: nlvars, VarInfo: varInfo}
}
func (f *FunctionObj) ToString() string { return fmt.Sprintf("<fn %s>", f.Name) }
func (f *FunctionObj) Dealloc(vm *VM)   {}

// BuiltinFunctionObj tags a native builtin by kind (spec.md §3:
// "BuiltinFunction(kind)").
type BuiltinFunctionObj struct {
	Header
	Kind string
}

func NewBuiltinFunction(kind string) *BuiltinFunctionObj {
	return &BuiltinFunctionObj{Header: newHeader("BuiltinFunction"), Kind: kind}
}
func (b *BuiltinFunctionObj) ToString() string { return fmt.Sprintf("<builtin %s>", b.Kind) }
func (b *BuiltinFunctionObj) Dealloc(vm *VM)   {}

// CFunctionObj wraps a native Go function pointer (spec.md §3:
// "CFunction(fnptr)"; §4.5: "User-defined C builtins ... use the same
// mechanism through a CFunction object wrapping a native function
// pointer").
type CFunctionObj struct {
	Header
	Name string
	Fn   func(vm *VM, args []MxcValue) MxcValue
}

func NewCFunction(name string, fn func(vm *VM, args []MxcValue) MxcValue) *CFunctionObj {
	return &CFunctionObj{Header: newHeader("CFunction"), Name: name, Fn: fn}
}
func (c *CFunctionObj) ToString() string { return fmt.Sprintf("<cfunction %s>", c.Name) }
func (c *CFunctionObj) Dealloc(vm *VM)   {}

// ErrorObj is the heap Error variant produced by division-by-zero,
// out-of-range subscripts, and the `error("msg")` builtin (spec.md §4.5).
type ErrorObj struct {
	Header
	Msg string
}

func NewError(msg string) *ErrorObj {
	return &ErrorObj{Header: newHeader("Error"), Msg: msg}
}
func (e *ErrorObj) ToString() string { return "error: " + e.Msg }
func (e *ErrorObj) Dealloc(vm *VM)   {}

// IteratorObj walks a List or Tuple's elements in source order (DESIGN.md:
// the Open Question decision restricting the iterator protocol to
// List/Tuple values, per spec.md §9).
type IteratorObj struct {
	Header
	Elems []MxcValue
	Pos   int
}

func NewIterator(elems []MxcValue) *IteratorObj {
	return &IteratorObj{Header: newHeader("Iterator"), Elems: elems}
}
func (it *IteratorObj) ToString() string { return "<iterator>" }
func (it *IteratorObj) Dealloc(vm *VM) {
	for _, e := range it.Elems {
		vm.Decref(e)
	}
}

// Next returns the next element and true, or an invalid value and false
// at end of iteration.
func (it *IteratorObj) Next() (MxcValue, bool) {
	if it.Pos >= len(it.Elems) {
		return Invalid, false
	}
	v := it.Elems[it.Pos]
	it.Pos++
	return v, true
}

// True and False are the singleton boolean heap objects spec.md §3
// reserves alongside the unboxed VBool path. No opcode or builtin
// currently produces them (yamldecode and the comparison opcodes return
// unboxed BoolVal values); singletons are never refcount-freed
// (spec.md invariant, "Singletons ... are never refcount-freed").
var (
	True  = &boolObj{Header: Header{Refcount: 1, vtableKind: "Bool"}, Value: true}
	False = &boolObj{Header: Header{Refcount: 1, vtableKind: "Bool"}, Value: false}
)

type boolObj struct {
	Header
	Value bool
}

func (b *boolObj) ToString() string { return fmt.Sprintf("%t", b.Value) }
func (b *boolObj) Dealloc(vm *VM)   {}
