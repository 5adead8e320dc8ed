package machine

import "github.com/mna/hanyu/lang/compiler"

// Function is the heap object wrapping a compiled FunctionProto. A bare
// Function is never called directly; CLOSURE always wraps it in a Closure
// first, even for functions that capture no upvalues, keeping the calling
// convention uniform.
type Function struct {
	obj
	Proto *compiler.FunctionProto
}

func (f *Function) String() string {
	if f.Proto.Name == "" {
		return "<script>"
	}
	return "<功能 " + f.Proto.Name + ">"
}
func (*Function) Type() string { return "function" }
func (f *Function) Arity() int { return f.Proto.Arity }

// Upvalue is a reference to a variable captured by a closure, either "open"
// (Location points into a live CallFrame's slot in the VM's value stack) or
// "closed" (Location points at Closed, the value's own copy). The VM keeps
// open upvalues in a single list sorted by stack slot so that two closures
// capturing the same local share one Upvalue.
type Upvalue struct {
	obj
	Location *Value
	Closed   Value
	Next     *Upvalue // next open upvalue, further down the stack
	slot     int      // stack index Location points at while open; used to keep Next sorted
}

func (u *Upvalue) isOpen() bool { return u.Location != &u.Closed }

func (u *Upvalue) get() Value  { return *u.Location }
func (u *Upvalue) set(v Value) { *u.Location = v }

func (u *Upvalue) close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// Closure is the callable runtime value produced by the CLOSURE
// instruction: a Function together with the upvalues it captured at
// creation time.
type Closure struct {
	obj
	Fn       *Function
	Upvalues []*Upvalue
}

func (c *Closure) String() string { return c.Fn.String() }
func (*Closure) Type() string     { return "function" }
func (c *Closure) Arity() int     { return c.Fn.Arity() }

// NativeFn is the Go implementation backing a Native value, such as
// clock().
type NativeFn func(args []Value) (Value, error)

// Native is a VM-provided function implemented in Go rather than compiled
// bytecode. clock() is the language's only native.
type Native struct {
	obj
	Name      string
	NumParams int
	Fn        NativeFn
}

func (n *Native) String() string { return "<native 功能 " + n.Name + ">" }
func (*Native) Type() string     { return "native" }
func (n *Native) Arity() int     { return n.NumParams }
