package machine

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mna/hanyu/lang/compiler"
	"github.com/mna/hanyu/lang/token"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// Result classifies how Interpret finished: success, a compile-time
// diagnostic list, or a runtime fault.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// VM is a single bytecode interpreter instance: its value stack, call
// frames, global table, string-intern pool, and GC heap. The stack is
// preallocated at its maximum capacity and never grows past it, so that
// pointers taken into it for open upvalues (see function.go) stay valid for
// the VM's entire lifetime.
type VM struct {
	stack  []Value
	frames []CallFrame

	globals *Table
	strings *Table
	heap    *heap

	openUpvalues *Upvalue

	// Stdout is where PRINT writes; defaults to os.Stdout via New, but tests
	// may substitute a buffer.
	Stdout io.Writer
}

// New returns a VM with its minimal set of native functions already defined
// in its global table.
func New() *VM {
	vm := &VM{
		stack:   make([]Value, 0, stackMax),
		frames:  make([]CallFrame, 0, framesMax),
		globals: NewTable(),
		strings: NewTable(),
		heap:    newHeap(),
		Stdout:  os.Stdout,
	}
	vm.defineNative("clock", 0, func([]Value) (Value, error) {
		return Number(float64(time.Now().UnixNano()) / 1e9), nil
	})
	return vm
}

func (vm *VM) defineNative(name string, arity int, fn NativeFn) {
	n := &Native{Name: name, NumParams: arity, Fn: fn}
	vm.heap.track(&n.obj)
	vm.globals.Set(name, n)
}

// Interpret compiles and executes source in a fresh top-level call frame.
// Globals and interned strings persist across calls on the same VM, the way
// a REPL accumulates state one line at a time.
func (vm *VM) Interpret(source []rune) (Result, error) {
	proto, err := compiler.Compile(source)
	if err != nil {
		return ResultCompileError, err
	}

	fn := &Function{Proto: proto}
	vm.heap.track(&fn.obj)
	closure := &Closure{Fn: fn}
	vm.heap.track(&closure.obj)

	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	if err := vm.push(closure); err != nil {
		return ResultRuntimeError, err
	}
	if err := vm.callClosure(closure, 0); err != nil {
		return ResultRuntimeError, err
	}

	if err := vm.run(); err != nil {
		return ResultRuntimeError, err
	}
	return ResultOK, nil
}

// ---- stack and frame primitives -------------------------------------------

func (vm *VM) push(v Value) error {
	if len(vm.stack) >= stackMax {
		return vm.runtimeError("stack overflow")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) Value { return vm.stack[len(vm.stack)-1-distance] }

func (vm *VM) currentFrame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

func (vm *VM) runtimeError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	line := 0
	var stack []string
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		chunk := &f.closure.Fn.Proto.Chunk
		l := 0
		if f.ip-1 >= 0 && f.ip-1 < len(chunk.Lines) {
			l = chunk.Lines[f.ip-1]
		}
		if i == len(vm.frames)-1 {
			line = l
		}
		name := f.closure.Fn.Proto.Name
		if name == "" {
			name = "script"
		}
		stack = append(stack, fmt.Sprintf("[line %d] in %s", l, name))
	}
	return &RuntimeError{Msg: msg, Line: line, Stack: stack}
}

// ---- upvalues --------------------------------------------------------------

func (vm *VM) captureUpvalue(slot int) *Upvalue {
	var prev *Upvalue
	cur := vm.openUpvalues
	for cur != nil && cur.slot > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.slot == slot {
		return cur
	}
	created := &Upvalue{Location: &vm.stack[slot], slot: slot}
	vm.heap.track(&created.obj)
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.slot >= last {
		uv := vm.openUpvalues
		uv.close()
		vm.openUpvalues = uv.Next
	}
}

// ---- calling convention -----------------------------------------------------

func (vm *VM) callValue(callee Value, argCount int) error {
	switch c := callee.(type) {
	case *Closure:
		return vm.callClosure(c, argCount)
	case *Native:
		if argCount != c.NumParams {
			return vm.runtimeError("expected %d arguments but got %d", c.NumParams, argCount)
		}
		args := append([]Value(nil), vm.stack[len(vm.stack)-argCount:]...)
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stack = vm.stack[:len(vm.stack)-argCount-1]
		return vm.push(result)
	case *Class:
		instance := NewInstance(c)
		vm.heap.track(&instance.obj)
		vm.stack[len(vm.stack)-argCount-1] = instance
		if init, ok := c.Method(token.InitializerName); ok {
			return vm.callClosure(init, argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("expected 0 arguments but got %d", argCount)
		}
		return nil
	case *BoundMethod:
		vm.stack[len(vm.stack)-argCount-1] = c.Receiver
		return vm.callClosure(c.Method, argCount)
	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

func (vm *VM) callClosure(c *Closure, argCount int) error {
	if argCount != c.Fn.Proto.Arity {
		return vm.runtimeError("expected %d arguments but got %d", c.Fn.Proto.Arity, argCount)
	}
	if len(vm.frames) >= framesMax {
		return vm.runtimeError("stack overflow")
	}
	vm.frames = append(vm.frames, CallFrame{
		closure: c,
		ip:      0,
		base:    len(vm.stack) - argCount - 1,
	})
	return nil
}

func (vm *VM) invoke(name string, argCount int) error {
	receiver := vm.peek(argCount)
	inst, ok := receiver.(*Instance)
	if !ok {
		return vm.runtimeError("only instances have methods")
	}
	if v, ok := inst.Fields.Get(name); ok {
		vm.stack[len(vm.stack)-argCount-1] = v
		return vm.callValue(v, argCount)
	}
	method, ok := inst.Class.Method(name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name)
	}
	return vm.callClosure(method, argCount)
}

// ---- bytecode operand decoding ----------------------------------------------

func (vm *VM) readByte(f *CallFrame) byte {
	b := f.closure.Fn.Proto.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readUint16(f *CallFrame) uint16 {
	hi := vm.readByte(f)
	lo := vm.readByte(f)
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant(f *CallFrame) any {
	return f.closure.Fn.Proto.Chunk.Constants[vm.readByte(f)]
}

// toValue converts a raw constant-pool entry into its runtime Value.
func (vm *VM) toValue(c any) Value {
	switch c := c.(type) {
	case float64:
		return Number(c)
	case string:
		return InternString(vm.heap, vm.strings, c)
	default:
		panic(fmt.Sprintf("unexpected constant type %T", c))
	}
}

func valuesEqual(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case *String:
		bs, ok := b.(*String)
		return ok && a == bs
	default:
		return a == b
	}
}
