// Package machine implements the runtime: value representation, the
// garbage-collected heap, the global/string-intern hash table, and the
// stack-based virtual machine that executes lang/compiler's bytecode.
package machine

// Value is the interface implemented by every value the VM manipulates.
// This language's value universe is a closed, fixed set — nil, booleans,
// numbers, strings, functions/closures, natives, classes, instances, and
// bound methods — so Value keeps only the two members every one of them
// needs, and the handful of narrower capability interfaces below cover call
// dispatch and property access instead of a wider interface hierarchy.
type Value interface {
	// String returns the value's printed representation, as used by the
	// PRINT opcode and by runtime error messages.
	String() string
	// Type returns a short, lowercase name for the value's type.
	Type() string
}

// Callable is implemented by any value that may appear as the callee of a
// CALL instruction: closures and natives. Classes are callable too (calling
// a class constructs an instance) but go through NewInstance rather than
// this interface, since constructing an instance is not "executing a body".
type Callable interface {
	Value
	Arity() int
}

// HasAttrs is implemented by values whose properties may be read with
// GET_PROPERTY: instances (fields and bound methods) and classes (static
// lookups are not part of this language, so only Instance implements this
// today, but the interface is kept separate from Value so the VM's property
// dispatch can stay a single type switch rather than growing more cases
// later).
type HasAttrs interface {
	Value
	GetProperty(name string) (Value, bool)
}

// HasSetAttrs is implemented by values whose properties may be written with
// SET_PROPERTY.
type HasSetAttrs interface {
	HasAttrs
	SetProperty(name string, v Value)
}
