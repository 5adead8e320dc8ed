package machine

import "strconv"

// Nil is the machine's singleton absent-value type, corresponding to the
// 空 literal.
type Nil struct{}

func (Nil) String() string { return "空" }
func (Nil) Type() string   { return "nil" }

// Bool is a boolean value, corresponding to the 真/假 literals.
type Bool bool

func (b Bool) String() string {
	if b {
		return "真"
	}
	return "假"
}
func (Bool) Type() string { return "bool" }

// Number is a double-precision float, the language's only numeric type.
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (Number) Type() string     { return "number" }

// IsTruthy implements the language's truthiness rule: everything is truthy
// except 空 and 假, matching clox's falsey set exactly.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}
