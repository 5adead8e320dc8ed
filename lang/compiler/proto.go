package compiler

// FunctionKind distinguishes the compilation context of a function body,
// needed to validate "this"/"super"/bare "return" and to decide whether an
// initializer implicitly returns the instance.
type FunctionKind int

const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindInitializer
)

// UpvalueDesc describes how a CLOSURE instruction captures one upvalue slot:
// either by lifting a local from the immediately enclosing function
// (IsLocal true, Index is a local slot) or by forwarding an upvalue already
// captured by the enclosing function (IsLocal false, Index is an upvalue
// index in the enclosing function).
type UpvalueDesc struct {
	Index   uint8
	IsLocal bool
}

// FunctionProto is the compile-time, static description of a function: its
// arity, the chunk of bytecode compiled for its body, and the upvalue
// descriptors the VM's CLOSURE opcode consults to build the runtime
// Closure. It is the static counterpart of the runtime Function object,
// minus the identity/GC concerns that belong to the runtime value wrapping
// it.
type FunctionProto struct {
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Upvalues     []UpvalueDesc
	Kind         FunctionKind
}
