package machine

import "github.com/dolthub/swiss"

// Class is a runtime class value: a name and its method table. Method and
// field tables use github.com/dolthub/swiss rather than the custom Table,
// which is reserved for globals and string interning.
type Class struct {
	obj
	Name    string
	Methods *swiss.Map[string, *Closure]
}

// NewClass returns an empty class named name.
func NewClass(name string) *Class {
	return &Class{Name: name, Methods: swiss.NewMap[string, *Closure](8)}
}

func (c *Class) String() string { return "<类 " + c.Name + ">" }
func (*Class) Type() string     { return "class" }

// Method looks up a method by name, without walking any inheritance chain:
// INHERIT already copied the superclass's methods into Methods at class-
// declaration time, so resolution is a flat lookup after inheritance.
func (c *Class) Method(name string) (*Closure, bool) {
	return c.Methods.Get(name)
}

// Instance is a runtime instance of a Class, with its own field table.
type Instance struct {
	obj
	Class  *Class
	Fields *swiss.Map[string, Value]
}

// NewInstance returns a fresh, fieldless instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: swiss.NewMap[string, Value](4)}
}

func (i *Instance) String() string { return "<" + i.Class.Name + " 实例>" }
func (*Instance) Type() string     { return "instance" }

func (i *Instance) GetProperty(name string) (Value, bool) {
	if v, ok := i.Fields.Get(name); ok {
		return v, true
	}
	if m, ok := i.Class.Method(name); ok {
		return &BoundMethod{Receiver: i, Method: m}, true
	}
	return nil, false
}

func (i *Instance) SetProperty(name string, v Value) {
	i.Fields.Put(name, v)
}

// BoundMethod pairs a method closure with the receiver it was looked up on,
// so that calling it later still has access to "this" via the closure's
// reserved slot-0 convention.
type BoundMethod struct {
	obj
	Receiver Value
	Method   *Closure
}

func (b *BoundMethod) String() string { return b.Method.String() }
func (*BoundMethod) Type() string     { return "bound method" }
func (b *BoundMethod) Arity() int     { return b.Method.Arity() }
