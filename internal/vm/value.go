package vm

import (
	"fmt"
	"math"
)

// ValueKind discriminates MxcValue's variants (spec.md §3: "MxcValue is a
// tagged union of Int(i64), Float(f64), Obj(ref), Invalid").
type ValueKind uint8

const (
	VInvalid ValueKind = iota
	VInt
	VFloat
	VBool
	VObj
)

// MxcValue is the unboxed stack value: arithmetic on Int/Float/Bool never
// touches the heap (spec.md §4.5: "Arithmetic operates on unboxed Int(i64)
// / Float(f64) via the MxcValue tagged union — no heap allocation for
// numeric paths"). Grounded on funvibe-funxy/internal/vm/value.go's
// {Type, Data uint64, Obj} shape, adapted to this package's own
// HeapObject interface in place of funxy's evaluator.Object.
type MxcValue struct {
	Kind ValueKind
	Data uint64 // int64 bits, float64 bits, or bool (0/1)
	Obj  HeapObject
}

func IntVal(v int64) MxcValue     { return MxcValue{Kind: VInt, Data: uint64(v)} }
func FloatVal(v float64) MxcValue { return MxcValue{Kind: VFloat, Data: math.Float64bits(v)} }

func BoolVal(v bool) MxcValue {
	var d uint64
	if v {
		d = 1
	}
	return MxcValue{Kind: VBool, Data: d}
}

func ObjVal(o HeapObject) MxcValue { return MxcValue{Kind: VObj, Obj: o} }

var Invalid = MxcValue{Kind: VInvalid}

func (v MxcValue) AsInt() int64     { return int64(v.Data) }
func (v MxcValue) AsFloat() float64 { return math.Float64frombits(v.Data) }
func (v MxcValue) AsBool() bool     { return v.Data == 1 }

func (v MxcValue) IsObj() bool { return v.Kind == VObj }

// ToString implements the builtin-driven display path: for unboxed kinds
// it formats directly; for Obj it defers to the heap object's vtable
// (spec.md §3: "a vtable ... providing tostring").
func (v MxcValue) ToString() string {
	switch v.Kind {
	case VInt:
		return fmt.Sprintf("%d", v.AsInt())
	case VFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case VBool:
		return fmt.Sprintf("%t", v.AsBool())
	case VObj:
		if v.Obj != nil {
			return v.Obj.ToString()
		}
		return "<nil>"
	default:
		return "<invalid>"
	}
}

// Equals implements the uniform `==` used by the OPEQ/NOTEQ opcodes;
// heap objects compare equal when their kind and rendered text match.
func (v MxcValue) Equals(other MxcValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case VInt, VBool:
		return v.Data == other.Data
	case VFloat:
		return v.AsFloat() == other.AsFloat()
	case VObj:
		if v.Obj == nil || other.Obj == nil {
			return v.Obj == other.Obj
		}
		return v.Obj.ToString() == other.Obj.ToString() && v.Obj.header().vtableKind == other.Obj.header().vtableKind
	default:
		return true
	}
}
