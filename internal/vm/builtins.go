package vm

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/maxc-lang/maxc/internal/config"
)

// builtinTable wires every name in config.BuiltinNames to its native
// implementation. print/println/objectid/len/tofloat/error mirror
// spec.md §4.4; yamlencode/yamldecode/typename are SPEC_FULL.md's
// supplemental builtins, wiring gopkg.in/yaml.v3 into the domain stack.
func builtinTable(vm *VM) map[string]func(vm *VM, args []MxcValue) MxcValue {
	return map[string]func(vm *VM, args []MxcValue) MxcValue{
		config.PrintFuncName:      builtinPrint,
		config.PrintlnFuncName:    builtinPrintln,
		config.ObjectIDFuncName:   builtinObjectID,
		config.LenFuncName:        builtinLen,
		config.ToFloatFuncName:    builtinToFloat,
		config.ErrorFuncName:      builtinError,
		config.YamlEncodeFuncName: builtinYamlEncode,
		config.YamlDecodeFuncName: builtinYamlDecode,
		config.TypeNameFuncName:   builtinTypeName,
	}
}

func builtinPrint(vm *VM, args []MxcValue) MxcValue {
	var buf bytes.Buffer
	for i, a := range args {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(a.ToString())
	}
	fmt.Fprint(vm.Out, buf.String())
	return Invalid
}

func builtinPrintln(vm *VM, args []MxcValue) MxcValue {
	builtinPrint(vm, args)
	fmt.Fprintln(vm.Out)
	return Invalid
}

// builtinObjectID returns a stable identity string for a heap object
// (spec.md §4.4), backed by the uuid already stamped into its Header at
// allocation.
func builtinObjectID(vm *VM, args []MxcValue) MxcValue {
	if len(args) == 0 || args[0].Kind != VObj || args[0].Obj == nil {
		return ObjVal(NewError("objectid expects a heap value"))
	}
	id := args[0].Obj.header().ID
	if id == uuid.Nil {
		args[0].Obj.header().ID = uuid.New()
		id = args[0].Obj.header().ID
	}
	return ObjVal(NewString(id.String()))
}

func builtinLen(vm *VM, args []MxcValue) MxcValue {
	if len(args) != 1 {
		return ObjVal(NewError("len expects exactly one argument"))
	}
	return IntVal(int64(aggregateLen(args[0])))
}

func builtinToFloat(vm *VM, args []MxcValue) MxcValue {
	if len(args) != 1 {
		return ObjVal(NewError("tofloat expects exactly one argument"))
	}
	switch args[0].Kind {
	case VInt:
		return FloatVal(float64(args[0].AsInt()))
	case VFloat:
		return args[0]
	default:
		return ObjVal(NewError("tofloat expects an int or float"))
	}
}

func builtinError(vm *VM, args []MxcValue) MxcValue {
	msg := ""
	if len(args) > 0 {
		msg = args[0].ToString()
	}
	return vm.raiseError(msg)
}

// builtinYamlEncode marshals a heap value's structural shape to YAML text
// (SPEC_FULL.md's supplemental builtin).
func builtinYamlEncode(vm *VM, args []MxcValue) MxcValue {
	if len(args) != 1 {
		return ObjVal(NewError("yamlencode expects exactly one argument"))
	}
	out, err := yaml.Marshal(toGoValue(args[0]))
	if err != nil {
		return ObjVal(NewError("yamlencode: " + err.Error()))
	}
	return ObjVal(NewString(string(out)))
}

// builtinYamlDecode parses YAML text into a maxc List/String/Int/Float/Bool
// value tree.
func builtinYamlDecode(vm *VM, args []MxcValue) MxcValue {
	if len(args) != 1 || args[0].Kind != VObj {
		return ObjVal(NewError("yamldecode expects a string argument"))
	}
	s, ok := args[0].Obj.(*StringObj)
	if !ok {
		return ObjVal(NewError("yamldecode expects a string argument"))
	}
	var decoded interface{}
	if err := yaml.Unmarshal([]byte(s.Value), &decoded); err != nil {
		return ObjVal(NewError("yamldecode: " + err.Error()))
	}
	return fromGoValue(decoded)
}

func builtinTypeName(vm *VM, args []MxcValue) MxcValue {
	if len(args) != 1 {
		return ObjVal(NewError("typename expects exactly one argument"))
	}
	switch args[0].Kind {
	case VInt:
		return ObjVal(NewString("int"))
	case VFloat:
		return ObjVal(NewString("float"))
	case VBool:
		return ObjVal(NewString("bool"))
	case VObj:
		if args[0].Obj != nil {
			return ObjVal(NewString(args[0].Obj.header().vtableKind))
		}
		return ObjVal(NewString("none"))
	default:
		return ObjVal(NewString("none"))
	}
}

func toGoValue(v MxcValue) interface{} {
	switch v.Kind {
	case VInt:
		return v.AsInt()
	case VFloat:
		return v.AsFloat()
	case VBool:
		return v.AsBool()
	case VObj:
		switch o := v.Obj.(type) {
		case *StringObj:
			return o.Value
		case *ListObj:
			out := make([]interface{}, len(o.Elems))
			for i, e := range o.Elems {
				out[i] = toGoValue(e)
			}
			return out
		case *TupleObj:
			out := make([]interface{}, len(o.Elems))
			for i, e := range o.Elems {
				out[i] = toGoValue(e)
			}
			return out
		case *StructObj:
			m := make(map[string]interface{}, len(o.Fields))
			for name, idx := range o.FieldIdx {
				m[name] = toGoValue(o.Fields[idx])
			}
			return m
		default:
			return o.ToString()
		}
	default:
		return nil
	}
}

func fromGoValue(v interface{}) MxcValue {
	switch x := v.(type) {
	case nil:
		return Invalid
	case int:
		return IntVal(int64(x))
	case int64:
		return IntVal(x)
	case float64:
		return FloatVal(x)
	case bool:
		return BoolVal(x)
	case string:
		return ObjVal(NewString(x))
	case []interface{}:
		elems := make([]MxcValue, len(x))
		for i, e := range x {
			elems[i] = fromGoValue(e)
		}
		return ObjVal(NewList(elems))
	case map[string]interface{}:
		names := make([]string, 0, len(x))
		vals := make([]MxcValue, 0, len(x))
		for k, val := range x {
			names = append(names, k)
			vals = append(vals, fromGoValue(val))
		}
		return ObjVal(NewStruct("yaml", names, vals))
	default:
		return ObjVal(NewString(fmt.Sprintf("%v", x)))
	}
}
