package vm

import "fmt"

// Run executes code starting at pc 0 in a fresh top frame, returning the
// process exit code (0 on clean completion, 1 on an uncaught runtime
// error, per spec.md §7). A REPL passes the same VM back in across
// submissions so Globals/Pool persist (spec.md §5).
func (vm *VM) Run(code []byte, lines []int) int {
	f := newFrame(nil, "<top>", code, lines, 0, len(vm.Stack))
	vm.frame = f
	return vm.runFrame()
}

func (vm *VM) runFrame() int {
	f := vm.frame
	for {
		if f.PC >= len(f.Code) {
			return vm.checkUncaughtErr()
		}
		op := Opcode(f.Code[f.PC])
		f.PC++

		switch op {
		case END:
			return vm.checkUncaughtErr()

		case PUSHCONST_0, PUSHCONST_1, PUSHCONST_2, PUSHCONST_3:
			vm.push(IntVal(int64(op - PUSHCONST_0)))

		case IPUSH:
			v := int32(ReadU32(f.Code, f.PC))
			f.PC += 4
			vm.push(IntVal(int64(v)))

		case FPUSH:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			vm.push(FloatVal(vm.Pool[idx].(float64)))

		case PUSHTRUE:
			vm.push(BoolVal(true))
		case PUSHFALSE:
			vm.push(BoolVal(false))
		case PUSHNULL:
			vm.push(Invalid)

		case ADD, SUB, MUL, DIV, MOD:
			if code := vm.binaryInt(op); code != 0 {
				return code
			}
		case INEG:
			a := vm.pop()
			vm.push(IntVal(-a.AsInt()))
		case INC:
			a := vm.pop()
			vm.push(IntVal(a.AsInt() + 1))
		case DEC:
			a := vm.pop()
			vm.push(IntVal(a.AsInt() - 1))

		case FADD, FSUB, FMUL, FDIV, FMOD:
			vm.binaryFloat(op)
		case FNEG:
			a := vm.pop()
			vm.push(FloatVal(-a.AsFloat()))

		case STRCAT:
			b, a := vm.pop(), vm.pop()
			s := a.ToString() + b.ToString()
			vm.Decref(a)
			vm.Decref(b)
			vm.push(ObjVal(NewString(s)))

		case OPEQ, NOTEQ, LT, LTE, GT, GTE:
			vm.compareInt(op)
		case FEQ, FNOTEQ, FLT, FLTE, FGT, FGTE:
			vm.compareFloat(op)

		case LOGAND:
			b, a := vm.pop(), vm.pop()
			vm.push(BoolVal(a.AsBool() && b.AsBool()))
		case LOGOR:
			b, a := vm.pop(), vm.pop()
			vm.push(BoolVal(a.AsBool() || b.AsBool()))

		case JMP:
			target := ReadU32(f.Code, f.PC)
			f.PC = int(target)
		case JMP_EQ:
			target := ReadU32(f.Code, f.PC)
			f.PC += 4
			v := vm.pop()
			if v.AsBool() {
				f.PC = int(target)
			}
		case JMP_NOTEQ:
			target := ReadU32(f.Code, f.PC)
			f.PC += 4
			v := vm.pop()
			if !v.AsBool() {
				f.PC = int(target)
			}
		case JMP_NERR:
			// Jump past the `.FAILURE` handler when the call result is not
			// an Error; otherwise fall through so the handler can POP it.
			// Either way this is the "subsequent JMP_NERR detects it" step
			// of spec.md §4.5, so it clears PendingErr: the program has
			// now had its chance to handle whatever error was produced.
			target := ReadU32(f.Code, f.PC)
			f.PC += 4
			top := vm.peek(0)
			if _, isErr := top.Obj.(*ErrorObj); !(top.Kind == VObj && isErr) {
				f.PC = int(target)
			}
			vm.PendingErr = nil

		case STORE_LOCAL:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			v := vm.pop()
			vm.Decref(f.LVars[idx])
			f.LVars[idx] = v
		case LOAD_LOCAL:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			vm.push(f.LVars[idx])
		case STORE_GLOBAL:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			v := vm.pop()
			vm.GrowGlobals(int(idx) + 1)
			vm.Decref(vm.Globals[idx])
			vm.Globals[idx] = v
		case LOAD_GLOBAL:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			vm.push(vm.Globals[idx])

		case LISTSET:
			n := ReadU32(f.Code, f.PC)
			f.PC += 4
			elems := make([]MxcValue, n)
			for i := int(n) - 1; i >= 0; i-- {
				elems[i] = vm.pop()
			}
			vm.push(ObjVal(NewList(elems)))
		case TUPLESET:
			n := ReadU32(f.Code, f.PC)
			f.PC += 4
			elems := make([]MxcValue, n)
			for i := int(n) - 1; i >= 0; i-- {
				elems[i] = vm.pop()
			}
			vm.push(ObjVal(NewTuple(elems)))
		case STRINGSET:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			vm.push(ObjVal(NewString(vm.Pool[idx].(string))))

		case STRUCTSET:
			nameIdx := ReadU32(f.Code, f.PC)
			f.PC += 4
			fieldsIdx := ReadU32(f.Code, f.PC)
			f.PC += 4
			name := vm.Pool[nameIdx].(string)
			fieldNames := vm.Pool[fieldsIdx].([]string)
			fields := make([]MxcValue, len(fieldNames))
			for i := len(fieldNames) - 1; i >= 0; i-- {
				fields[i] = vm.pop()
			}
			vm.push(ObjVal(NewStruct(name, fieldNames, fields)))

		case SUBSCR:
			idx, base := vm.pop(), vm.pop()
			v, code := vm.subscript(base, idx)
			if code != 0 {
				return code
			}
			vm.push(v)
		case SUBSCR_STORE:
			val, idx, base := vm.pop(), vm.pop(), vm.pop()
			if code := vm.subscriptStore(base, idx, val); code != 0 {
				return code
			}

		case MEMBER_LOAD:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			name := vm.Pool[idx].(string)
			base := vm.pop()
			s, ok := base.Obj.(*StructObj)
			if !ok {
				return vm.RuntimeError("member access on non-struct value")
			}
			vm.push(s.Fields[s.FieldIdx[name]])
		case MEMBER_STORE:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			name := vm.Pool[idx].(string)
			val, base := vm.pop(), vm.pop()
			s, ok := base.Obj.(*StructObj)
			if !ok {
				return vm.RuntimeError("member access on non-struct value")
			}
			fi := s.FieldIdx[name]
			vm.Decref(s.Fields[fi])
			s.Fields[fi] = val

		case LISTLENGTH:
			base := vm.pop()
			vm.push(IntVal(int64(aggregateLen(base))))

		case MAKEITER:
			base := vm.pop()
			var elems []MxcValue
			switch o := base.Obj.(type) {
			case *ListObj:
				elems = o.Elems
			case *TupleObj:
				elems = o.Elems
			default:
				return vm.RuntimeError("for-loop source is not iterable")
			}
			vm.push(ObjVal(NewIterator(elems)))

		case ITER_NEXT:
			base := vm.peek(0)
			it, ok := base.Obj.(*IteratorObj)
			if !ok {
				return vm.RuntimeError("for-loop target is not iterable")
			}
			v, hasNext := it.Next()
			if hasNext {
				vm.push(v)
				vm.push(BoolVal(true))
			} else {
				vm.push(BoolVal(false))
			}

		case FUNCTIONSET:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			fn := vm.Pool[idx].(*FunctionObj)
			vm.push(ObjVal(fn))
		case BLTINFN_SET:
			idx := ReadU32(f.Code, f.PC)
			f.PC += 4
			kind := vm.Pool[idx].(string)
			vm.push(ObjVal(NewBuiltinFunction(kind)))

		case CALL:
			argc := ReadU32(f.Code, f.PC)
			f.PC += 4
			if code := vm.call(int(argc)); code != 0 {
				return code
			}
			f = vm.frame

		case CALL_BLTIN:
			argc := ReadU32(f.Code, f.PC)
			f.PC += 4
			nameIdx := ReadU32(f.Code, f.PC)
			f.PC += 4
			name := vm.Pool[nameIdx].(string)
			args := make([]MxcValue, argc)
			for i := int(argc) - 1; i >= 0; i-- {
				args[i] = vm.pop()
			}
			impl, ok := vm.Builtins[name]
			if !ok {
				return vm.RuntimeError("unknown builtin '%s'", name)
			}
			vm.push(impl(vm, args))

		case RET:
			if code := vm.ret(); code != 0 {
				return code
			}
			if vm.frame == nil {
				return vm.checkUncaughtErr()
			}
			f = vm.frame

		case SHOWINT, SHOWFLOAT, SHOWBOOL:
			v := vm.pop()
			fmt.Fprint(vm.Out, v.ToString())

		case SHOWSEP:
			fmt.Fprint(vm.Out, " ")

		case POP:
			vm.popDiscard()

		case DUP:
			v := vm.peek(0)
			vm.push(v)

		default:
			return vm.RuntimeError("unknown opcode %d", op)
		}
	}
}

func (vm *VM) binaryInt(op Opcode) int {
	b, a := vm.pop(), vm.pop()
	switch op {
	case ADD:
		vm.push(IntVal(a.AsInt() + b.AsInt()))
	case SUB:
		vm.push(IntVal(a.AsInt() - b.AsInt()))
	case MUL:
		vm.push(IntVal(a.AsInt() * b.AsInt()))
	case DIV:
		if b.AsInt() == 0 {
			vm.push(vm.raiseError("division by zero"))
			return 0
		}
		vm.push(IntVal(a.AsInt() / b.AsInt()))
	case MOD:
		if b.AsInt() == 0 {
			vm.push(vm.raiseError("division by zero"))
			return 0
		}
		vm.push(IntVal(a.AsInt() % b.AsInt()))
	}
	return 0
}

func (vm *VM) binaryFloat(op Opcode) {
	b, a := vm.pop(), vm.pop()
	switch op {
	case FADD:
		vm.push(FloatVal(a.AsFloat() + b.AsFloat()))
	case FSUB:
		vm.push(FloatVal(a.AsFloat() - b.AsFloat()))
	case FMUL:
		vm.push(FloatVal(a.AsFloat() * b.AsFloat()))
	case FDIV:
		vm.push(FloatVal(a.AsFloat() / b.AsFloat()))
	case FMOD:
		af, bf := a.AsFloat(), b.AsFloat()
		vm.push(FloatVal(af - bf*float64(int64(af/bf))))
	}
}

func (vm *VM) compareInt(op Opcode) {
	b, a := vm.pop(), vm.pop()
	switch op {
	case OPEQ:
		vm.push(BoolVal(a.Equals(b)))
	case NOTEQ:
		vm.push(BoolVal(!a.Equals(b)))
	case LT:
		vm.push(BoolVal(a.AsInt() < b.AsInt()))
	case LTE:
		vm.push(BoolVal(a.AsInt() <= b.AsInt()))
	case GT:
		vm.push(BoolVal(a.AsInt() > b.AsInt()))
	case GTE:
		vm.push(BoolVal(a.AsInt() >= b.AsInt()))
	}
}

func (vm *VM) compareFloat(op Opcode) {
	b, a := vm.pop(), vm.pop()
	switch op {
	case FEQ:
		vm.push(BoolVal(a.AsFloat() == b.AsFloat()))
	case FNOTEQ:
		vm.push(BoolVal(a.AsFloat() != b.AsFloat()))
	case FLT:
		vm.push(BoolVal(a.AsFloat() < b.AsFloat()))
	case FLTE:
		vm.push(BoolVal(a.AsFloat() <= b.AsFloat()))
	case FGT:
		vm.push(BoolVal(a.AsFloat() > b.AsFloat()))
	case FGTE:
		vm.push(BoolVal(a.AsFloat() >= b.AsFloat()))
	}
}

func aggregateLen(v MxcValue) int {
	switch o := v.Obj.(type) {
	case *ListObj:
		return len(o.Elems)
	case *TupleObj:
		return len(o.Elems)
	case *StringObj:
		return len(o.Value)
	default:
		return 0
	}
}

func (vm *VM) subscript(base, idx MxcValue) (MxcValue, int) {
	i := int(idx.AsInt())
	switch o := base.Obj.(type) {
	case *ListObj:
		if i < 0 || i >= len(o.Elems) {
			return vm.raiseError("list index out of range"), 0
		}
		return o.Elems[i], 0
	case *TupleObj:
		if i < 0 || i >= len(o.Elems) {
			return vm.raiseError("tuple index out of range"), 0
		}
		return o.Elems[i], 0
	case *StringObj:
		r := []rune(o.Value)
		if i < 0 || i >= len(r) {
			return vm.raiseError("string index out of range"), 0
		}
		return ObjVal(NewString(string(r[i]))), 0
	default:
		return Invalid, vm.RuntimeError("value is not subscriptable")
	}
}

func (vm *VM) subscriptStore(base, idx, val MxcValue) int {
	i := int(idx.AsInt())
	o, ok := base.Obj.(*ListObj)
	if !ok {
		return vm.RuntimeError("assignment target is not a mutable list")
	}
	if i < 0 || i >= len(o.Elems) {
		return vm.RuntimeError("list index out of range")
	}
	vm.Decref(o.Elems[i])
	o.Elems[i] = val
	return 0
}

// call invokes the callee (Function, BuiltinFunction, or CFunction) that
// sits directly below the argc arguments, which were pushed in
// left-to-right order. For a Function it pops callee and arguments and
// pushes a new Frame whose locals 0..argc-1 receive the arguments
// directly; the callee's code has no STORE_LOCAL prologue for them.
func (vm *VM) call(argc int) int {
	calleeVal := vm.Stack[len(vm.Stack)-argc-1]
	switch callee := calleeVal.Obj.(type) {
	case *FunctionObj:
		args := make([]MxcValue, argc)
		copy(args, vm.Stack[len(vm.Stack)-argc:])
		vm.Stack = vm.Stack[:len(vm.Stack)-argc-1]

		nf := newFrame(vm.frame, callee.Name, callee.Code, nil, callee.NLVars, len(vm.Stack))
		for i, a := range args {
			nf.LVars[i] = a
		}
		vm.frame = nf
		return 0
	case *CFunctionObj:
		args := make([]MxcValue, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = vm.pop()
		}
		vm.pop() // callee
		vm.push(callee.Fn(vm, args))
		return 0
	case *BuiltinFunctionObj:
		args := make([]MxcValue, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = vm.pop()
		}
		vm.pop() // callee
		impl, ok := vm.Builtins[callee.Kind]
		if !ok {
			return vm.RuntimeError("unknown builtin '%s'", callee.Kind)
		}
		vm.push(impl(vm, args))
		return 0
	default:
		return vm.RuntimeError("value is not callable")
	}
}

// ret pops the current frame's return value, tears the frame down, and
// restores the caller (or signals top-level completion by leaving
// vm.frame nil).
func (vm *VM) ret() int {
	var retVal MxcValue
	if len(vm.Stack) > vm.frame.StackBase {
		retVal = vm.pop()
	}
	for _, lv := range vm.frame.LVars {
		vm.Decref(lv)
	}
	vm.Stack = vm.Stack[:vm.frame.StackBase]
	vm.frame = vm.frame.Prev
	if vm.frame != nil {
		vm.push(retVal)
	}
	return 0
}
