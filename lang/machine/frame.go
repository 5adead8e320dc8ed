package machine

// CallFrame is one activation record on the VM's call stack: a closure, the
// instruction pointer into its chunk, and the base index into the VM's
// value stack where its locals (including slot 0, "this" for methods)
// begin.
type CallFrame struct {
	closure *Closure
	ip      int
	base    int
}
