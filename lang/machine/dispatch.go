package machine

import (
	"fmt"
	"math"

	"github.com/mna/hanyu/lang/compiler"
)

// run is the fetch-decode-execute loop: a flat for{switch} over one opcode
// at a time, operating on the current top CallFrame. The frame pointer is
// re-fetched at the top of every iteration rather than cached across
// iterations, since CALL/RETURN/INVOKE/SUPER_INVOKE push and pop frames.
func (vm *VM) run() error {
	for {
		frame := vm.currentFrame()
		op := compiler.OpCode(vm.readByte(frame))

		switch op {
		case compiler.CONSTANT:
			if err := vm.push(vm.toValue(vm.readConstant(frame))); err != nil {
				return err
			}

		case compiler.NIL:
			if err := vm.push(Nil{}); err != nil {
				return err
			}
		case compiler.TRUE:
			if err := vm.push(Bool(true)); err != nil {
				return err
			}
		case compiler.FALSE:
			if err := vm.push(Bool(false)); err != nil {
				return err
			}

		case compiler.POP:
			vm.pop()
		case compiler.DUP:
			if err := vm.push(vm.peek(0)); err != nil {
				return err
			}

		case compiler.GET_LOCAL:
			slot := frame.base + int(vm.readByte(frame))
			if err := vm.push(vm.stack[slot]); err != nil {
				return err
			}
		case compiler.SET_LOCAL:
			slot := frame.base + int(vm.readByte(frame))
			vm.stack[slot] = vm.peek(0)

		case compiler.GET_GLOBAL:
			name := vm.readConstant(frame).(string)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("undefined variable '%s'", name)
			}
			if err := vm.push(v); err != nil {
				return err
			}
		case compiler.DEFINE_GLOBAL:
			name := vm.readConstant(frame).(string)
			vm.globals.Set(name, vm.pop())
		case compiler.SET_GLOBAL:
			name := vm.readConstant(frame).(string)
			if _, ok := vm.globals.Get(name); !ok {
				return vm.runtimeError("undefined variable '%s'", name)
			}
			vm.globals.Set(name, vm.peek(0))

		case compiler.GET_UPVALUE:
			idx := vm.readByte(frame)
			if err := vm.push(frame.closure.Upvalues[idx].get()); err != nil {
				return err
			}
		case compiler.SET_UPVALUE:
			idx := vm.readByte(frame)
			frame.closure.Upvalues[idx].set(vm.peek(0))

		case compiler.GET_PROPERTY:
			name := vm.readConstant(frame).(string)
			obj, ok := vm.pop().(HasAttrs)
			if !ok {
				return vm.runtimeError("only instances have properties")
			}
			v, found := obj.GetProperty(name)
			if !found {
				return vm.runtimeError("undefined property '%s'", name)
			}
			if bound, ok := v.(*BoundMethod); ok {
				vm.heap.track(&bound.obj)
			}
			if err := vm.push(v); err != nil {
				return err
			}
		case compiler.SET_PROPERTY:
			name := vm.readConstant(frame).(string)
			value := vm.pop()
			obj, ok := vm.pop().(HasSetAttrs)
			if !ok {
				return vm.runtimeError("only instances have fields")
			}
			obj.SetProperty(name, value)
			if err := vm.push(value); err != nil {
				return err
			}

		case compiler.GET_SUPER:
			name := vm.readConstant(frame).(string)
			superclass := vm.pop().(*Class)
			receiver := vm.pop()
			method, ok := superclass.Method(name)
			if !ok {
				return vm.runtimeError("undefined property '%s'", name)
			}
			bound := &BoundMethod{Receiver: receiver, Method: method}
			vm.heap.track(&bound.obj)
			if err := vm.push(bound); err != nil {
				return err
			}

		case compiler.EQUAL:
			b, a := vm.pop(), vm.pop()
			if err := vm.push(Bool(valuesEqual(a, b))); err != nil {
				return err
			}
		case compiler.GREATER, compiler.LESS:
			b, bOk := vm.peek(0).(Number)
			a, aOk := vm.peek(1).(Number)
			if !aOk || !bOk {
				return vm.runtimeError("operands must be numbers")
			}
			vm.pop()
			vm.pop()
			var result bool
			if op == compiler.GREATER {
				result = a > b
			} else {
				result = a < b
			}
			if err := vm.push(Bool(result)); err != nil {
				return err
			}

		case compiler.ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD:
			if err := vm.arith(op); err != nil {
				return err
			}

		case compiler.NEGATE:
			n, ok := vm.peek(0).(Number)
			if !ok {
				return vm.runtimeError("operand must be a number")
			}
			vm.pop()
			if err := vm.push(-n); err != nil {
				return err
			}
		case compiler.NOT:
			if err := vm.push(Bool(!IsTruthy(vm.pop()))); err != nil {
				return err
			}

		case compiler.PRINT:
			v := vm.pop()
			if vm.Stdout != nil {
				fmt.Fprintln(vm.Stdout, v.String())
			}

		case compiler.JUMP:
			offset := vm.readUint16(frame)
			frame.ip += int(offset)
		case compiler.JUMP_IF_FALSE:
			offset := vm.readUint16(frame)
			if !IsTruthy(vm.peek(0)) {
				frame.ip += int(offset)
			}
		case compiler.LOOP:
			offset := vm.readUint16(frame)
			frame.ip -= int(offset)

		case compiler.CALL:
			argCount := int(vm.readByte(frame))
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
		case compiler.INVOKE:
			name := frame.closure.Fn.Proto.Chunk.Constants[vm.readByte(frame)].(string)
			argCount := int(vm.readByte(frame))
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
		case compiler.SUPER_INVOKE:
			name := frame.closure.Fn.Proto.Chunk.Constants[vm.readByte(frame)].(string)
			argCount := int(vm.readByte(frame))
			superclass := vm.pop().(*Class)
			method, ok := superclass.Method(name)
			if !ok {
				return vm.runtimeError("undefined property '%s'", name)
			}
			if err := vm.callClosure(method, argCount); err != nil {
				return err
			}

		case compiler.CLOSURE:
			proto := vm.readConstant(frame).(*compiler.FunctionProto)
			fn := &Function{Proto: proto}
			vm.heap.track(&fn.obj)
			closure := &Closure{Fn: fn, Upvalues: make([]*Upvalue, proto.UpvalueCount)}
			vm.heap.track(&closure.obj)
			for i := 0; i < proto.UpvalueCount; i++ {
				isLocal := vm.readByte(frame)
				index := vm.readByte(frame)
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			if err := vm.push(closure); err != nil {
				return err
			}
		case compiler.CLOSE_UPVALUE:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case compiler.RETURN:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}
			vm.stack = vm.stack[:frame.base]
			if err := vm.push(result); err != nil {
				return err
			}
			if vm.heap.needsCollection() {
				vm.collectGarbage()
			}

		case compiler.CLASS:
			name := vm.readConstant(frame).(string)
			class := NewClass(name)
			vm.heap.track(&class.obj)
			if err := vm.push(class); err != nil {
				return err
			}
		case compiler.INHERIT:
			superclass, ok := vm.peek(1).(*Class)
			if !ok {
				return vm.runtimeError("superclass must be a class")
			}
			subclass := vm.peek(0).(*Class)
			it := superclass.Methods.Iterate()
			for it.Next() {
				name, method := it.Pair()
				subclass.Methods.Put(name, method)
			}
			vm.pop() // subclass; the superclass stays as the "super" local
		case compiler.METHOD:
			name := vm.readConstant(frame).(string)
			method := vm.pop().(*Closure)
			class := vm.peek(0).(*Class)
			class.Methods.Put(name, method)

		default:
			return vm.runtimeError("unknown opcode %s", op)
		}
	}
}

func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	if an, ok := a.(Number); ok {
		if bn, ok := b.(Number); ok {
			vm.pop()
			vm.pop()
			return vm.push(an + bn)
		}
	}
	if as, ok := a.(*String); ok {
		if bs, ok := b.(*String); ok {
			vm.pop()
			vm.pop()
			return vm.push(InternString(vm.heap, vm.strings, as.s+bs.s))
		}
	}
	return vm.runtimeError("operands must be two numbers or two strings")
}

func (vm *VM) arith(op compiler.OpCode) error {
	b, bOk := vm.peek(0).(Number)
	a, aOk := vm.peek(1).(Number)
	if !aOk || !bOk {
		return vm.runtimeError("operands must be numbers")
	}
	vm.pop()
	vm.pop()
	var result Number
	switch op {
	case compiler.SUB:
		result = a - b
	case compiler.MUL:
		result = a * b
	case compiler.DIV:
		// IEEE-754 division: a zero divisor yields +Inf/-Inf/NaN rather than a
		// runtime fault.
		result = a / b
	case compiler.MOD:
		result = Number(math.Mod(float64(a), float64(b)))
	}
	return vm.push(result)
}
