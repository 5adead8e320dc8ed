package machine

// String is a heap-allocated, interned string object. Interning means two
// equal string literals or concatenation results always resolve to the same
// *String, so the VM's EQUAL instruction can compare strings by pointer
// identity instead of content.
type String struct {
	obj
	s string
}

func (s *String) String() string { return s.s }
func (*String) Type() string     { return "string" }

// InternString returns the canonical *String for s, allocating and
// registering a new one in strings only the first time s is seen.
func InternString(h *heap, strings *Table, s string) *String {
	if v, ok := strings.Get(s); ok {
		return v.(*String)
	}
	str := &String{s: s}
	h.track(&str.obj)
	strings.Set(s, str)
	return str
}
