package vm

import (
	"fmt"
	"io"
	"os"
)

// VM is the stack-based machine of spec.md §4.5: one shared operand stack
// across all frames, a global-variable array sized by the persistent
// top-frame's global count, and a literal pool shared by every chunk
// compiled against one pipeline.Context (REPL submissions keep appending
// to the same pool). Grounded on funvibe-funxy/internal/vm's vm.go/
// vm_exec.go split, with the refcount bookkeeping spec.md §9 calls for
// replacing funxy's GC-backed evaluator.Object.
type VM struct {
	Stack []MxcValue
	frame *Frame

	Globals []MxcValue
	Pool    []interface{}

	Builtins map[string]func(vm *VM, args []MxcValue) MxcValue

	Out io.Writer

	UncaughtErr *ErrorObj

	// PendingErr is spec.md §4.5's occurred_rterr: set whenever an
	// Error-producing opcode or builtin runs (division by zero, subscript
	// out of range, `error(...)`), cleared when a JMP_NERR actually
	// inspects it for a `.FAILURE` handler. Tracked VM-wide rather than
	// per Frame — maxc runs one call chain on one shared stack, so "the
	// current frame" and "the VM" coincide. If still set when the
	// top-level frame reaches its end, it propagated uncaught all the way
	// up the frame chain and Run reports it and exits 1.
	PendingErr *ErrorObj
}

// New builds a VM ready to run code against an already-sized globals
// array (nglobals comes from pipeline.Context.NGlobals, persistent across
// REPL submissions).
func New(nglobals int, pool []interface{}) *VM {
	vm := &VM{
		Globals: make([]MxcValue, nglobals),
		Pool:    pool,
		Out:     os.Stdout,
	}
	vm.Builtins = builtinTable(vm)
	return vm
}

// GrowGlobals extends Globals to at least n entries, for REPL re-entry
// after a submission declares new top-level bindings (spec.md §5).
func (vm *VM) GrowGlobals(n int) {
	if n <= len(vm.Globals) {
		return
	}
	grown := make([]MxcValue, n)
	copy(grown, vm.Globals)
	vm.Globals = grown
}

func (vm *VM) push(v MxcValue) {
	vm.Stack = append(vm.Stack, v)
	vm.incref(v)
}

func (vm *VM) pop() MxcValue {
	n := len(vm.Stack)
	v := vm.Stack[n-1]
	vm.Stack = vm.Stack[:n-1]
	return v
}

// popDiscard pops and immediately decrefs, for the use_ret=false trailing
// POP the emitter inserts when a statement's value is unused (spec.md
// §4.4).
func (vm *VM) popDiscard() {
	v := vm.pop()
	vm.Decref(v)
}

func (vm *VM) peek(depth int) MxcValue {
	return vm.Stack[len(vm.Stack)-1-depth]
}

func (vm *VM) incref(v MxcValue) {
	if v.Kind == VObj && v.Obj != nil {
		v.Obj.header().Refcount++
	}
}

// Decref releases one reference; at zero it calls Dealloc so the object's
// own outgoing references are released too (spec.md §9: reference
// counting without cycle collection — Go's GC reclaims the freed node
// itself once nothing, including this VM's bookkeeping, points to it).
func (vm *VM) Decref(v MxcValue) {
	if v.Kind != VObj || v.Obj == nil {
		return
	}
	h := v.Obj.header()
	if h.Refcount <= 0 {
		return
	}
	h.Refcount--
	if h.Refcount == 0 {
		v.Obj.Dealloc(vm)
	}
}

// RuntimeError reports an internal invariant violation (stack underflow,
// jump past end of code, and the like) as a fatal bug, per spec.md §7:
// "internal invariants violated ... are treated as fatal internal bugs
// with a stderr trace and a nonzero exit." Distinct from PendingErr, which
// tracks an ordinary Error *value* the program itself produced.
func (vm *VM) RuntimeError(format string, args ...interface{}) int {
	vm.UncaughtErr = NewError(fmt.Sprintf(format, args...))
	fmt.Fprintf(os.Stderr, "runtime error: %s\n", vm.UncaughtErr.Msg)
	return 1
}

// raiseError builds an Error value and marks it pending (spec.md §4.5's
// occurred_rterr), so it still terminates the program with exit 1 if it
// is never consumed by a `.FAILURE` handler — even when it is only ever
// printed or otherwise used as an ordinary value along the way.
func (vm *VM) raiseError(msg string) MxcValue {
	e := NewError(msg)
	vm.PendingErr = e
	return ObjVal(e)
}

// checkUncaughtErr reports spec.md §4.5's "propagates up the frame chain
// until it reaches the top frame" outcome: an Error that was produced but
// never inspected by a JMP_NERR. Called when the top-level frame's code
// runs out (spec.md §7's "on uncaught runtime error" exit-code case).
func (vm *VM) checkUncaughtErr() int {
	if vm.PendingErr != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", vm.PendingErr.Msg)
		return 1
	}
	return 0
}
