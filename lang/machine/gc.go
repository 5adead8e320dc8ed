package machine

// collectGarbage runs one mark-and-sweep cycle: every reachable value is
// found by walking the roots (the value stack, every call frame's closure,
// the open-upvalue list, and the globals table) and marking transitively,
// then every heap object left unmarked is unlinked by heap.sweep.
//
// The string-intern pool is not a root: before the sweep, every pool entry
// whose string was not marked is deleted from the pool, so the pool never
// keeps an otherwise unreachable string alive.
func (vm *VM) collectGarbage() {
	for _, v := range vm.stack {
		vm.markValue(v)
	}
	for _, f := range vm.frames {
		vm.markValue(f.closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.Next {
		vm.markUpvalue(uv)
	}
	for _, k := range vm.globals.Keys() {
		if v, ok := vm.globals.Get(k); ok {
			vm.markValue(v)
		}
	}
	for _, k := range vm.strings.Keys() {
		if v, ok := vm.strings.Get(k); ok && !v.(*String).marked {
			vm.strings.Delete(k)
		}
	}
	vm.heap.sweep()
	vm.heap.growThreshold()
}

// markObj marks o, reporting whether this call is the one that transitioned
// it from unmarked to marked (so callers only trace an object's children
// once, which also breaks reference cycles).
func markObj(o *obj) bool {
	if o.marked {
		return false
	}
	o.marked = true
	return true
}

func (vm *VM) markUpvalue(uv *Upvalue) {
	if !markObj(&uv.obj) {
		return
	}
	if !uv.isOpen() {
		vm.markValue(uv.Closed)
	}
}

func (vm *VM) markValue(v Value) {
	switch o := v.(type) {
	case nil, Nil, Bool, Number:
		// value types: nothing heap-allocated to trace
	case *String:
		markObj(&o.obj)
	case *Function:
		markObj(&o.obj)
	case *Native:
		markObj(&o.obj)
	case *Closure:
		if markObj(&o.obj) {
			vm.markValue(o.Fn)
			for _, uv := range o.Upvalues {
				vm.markUpvalue(uv)
			}
		}
	case *Class:
		if markObj(&o.obj) {
			it := o.Methods.Iterate()
			for it.Next() {
				_, m := it.Pair()
				vm.markValue(m)
			}
		}
	case *Instance:
		if markObj(&o.obj) {
			vm.markValue(o.Class)
			it := o.Fields.Iterate()
			for it.Next() {
				_, fv := it.Pair()
				vm.markValue(fv)
			}
		}
	case *BoundMethod:
		if markObj(&o.obj) {
			vm.markValue(o.Receiver)
			vm.markValue(o.Method)
		}
	}
}
