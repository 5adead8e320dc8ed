package compiler

import "fmt"

// OpCode identifies a single bytecode instruction. Opcodes that take an
// operand are followed immediately in the code stream by that operand,
// encoded big-endian when it spans more than one byte.
type OpCode uint8

// "x OP y" is a stack picture describing the state of the operand stack
// before and after execution of the instruction.
const ( //nolint:revive
	CONSTANT OpCode = iota //        - CONSTANT<k>       value       push constants[k]
	NIL                    //        - NIL               Nil
	TRUE                   //        - TRUE              True
	FALSE                  //        - FALSE             False
	POP                    //        x POP               -
	DUP                    //        x DUP               x x         duplicate top of stack

	GET_LOCAL  // - GET_LOCAL<s>     value
	SET_LOCAL  // value SET_LOCAL<s> value
	GET_GLOBAL // - GET_GLOBAL<k>    value
	DEFINE_GLOBAL
	SET_GLOBAL
	GET_UPVALUE
	SET_UPVALUE
	GET_PROPERTY
	SET_PROPERTY
	GET_SUPER

	EQUAL
	GREATER
	LESS
	ADD
	SUB
	MUL
	DIV
	MOD
	NEGATE
	NOT

	PRINT

	JUMP          //  - JUMP<o16>           -     unconditional, forward
	JUMP_IF_FALSE //  cond JUMP_IF_FALSE<o16> cond forward, does not pop
	LOOP          //  - LOOP<o16>           -     unconditional, backward

	CALL         // fn arg1..argn CALL<argc>         result
	INVOKE       // recv arg1..argn INVOKE<k><argc>   result
	SUPER_INVOKE // recv arg1..argn super SUPER_INVOKE<k><argc> result

	CLOSURE       // - CLOSURE<k>[is-local,index]*  closure
	CLOSE_UPVALUE // value CLOSE_UPVALUE -  close topmost open upvalue, pop it

	RETURN

	CLASS
	INHERIT
	METHOD

	// opcodeMax is the exclusive upper bound of valid opcode values.
	opcodeMax
)

var opcodeNames = [...]string{
	CONSTANT:      "constant",
	NIL:           "nil",
	TRUE:          "true",
	FALSE:         "false",
	POP:           "pop",
	DUP:           "dup",
	GET_LOCAL:     "get_local",
	SET_LOCAL:     "set_local",
	GET_GLOBAL:    "get_global",
	DEFINE_GLOBAL: "define_global",
	SET_GLOBAL:    "set_global",
	GET_UPVALUE:   "get_upvalue",
	SET_UPVALUE:   "set_upvalue",
	GET_PROPERTY:  "get_property",
	SET_PROPERTY:  "set_property",
	GET_SUPER:     "get_super",
	EQUAL:         "equal",
	GREATER:       "greater",
	LESS:          "less",
	ADD:           "add",
	SUB:           "sub",
	MUL:           "mul",
	DIV:           "div",
	MOD:           "mod",
	NEGATE:        "negate",
	NOT:           "not",
	PRINT:         "print",
	JUMP:          "jump",
	JUMP_IF_FALSE: "jump_if_false",
	LOOP:          "loop",
	CALL:          "call",
	INVOKE:        "invoke",
	SUPER_INVOKE:  "super_invoke",
	CLOSURE:       "closure",
	CLOSE_UPVALUE: "close_upvalue",
	RETURN:        "return",
	CLASS:         "class",
	INHERIT:       "inherit",
	METHOD:        "method",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", uint8(op))
}

// byteOperandOps take a single 8-bit operand (a constant/local/upvalue/
// argument-count index). CLOSURE also takes a single constant-index operand
// but is disassembled separately, since its operand is followed by a
// variable number of upvalue descriptor pairs.
var byteOperandOps = map[OpCode]bool{
	CONSTANT:      true,
	GET_LOCAL:     true,
	SET_LOCAL:     true,
	GET_GLOBAL:    true,
	DEFINE_GLOBAL: true,
	SET_GLOBAL:    true,
	GET_UPVALUE:   true,
	SET_UPVALUE:   true,
	GET_PROPERTY:  true,
	SET_PROPERTY:  true,
	GET_SUPER:     true,
	CALL:          true,
	CLASS:         true,
	METHOD:        true,
}

// wordOperandOps take a 16-bit big-endian jump offset operand.
var wordOperandOps = map[OpCode]bool{
	JUMP:          true,
	JUMP_IF_FALSE: true,
	LOOP:          true,
}

// twoByteOperandOps take two 8-bit operands (a constant index and an
// argument count, for the method-call fusion opcodes).
var twoByteOperandOps = map[OpCode]bool{
	INVOKE:       true,
	SUPER_INVOKE: true,
}
