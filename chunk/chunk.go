// Package chunk holds the compiled-unit data model: the Value/object
// model and the Chunk (bytecode buffer + line map + constant pool) that
// the compiler emits into and the VM executes out of.
package chunk

import "fmt"

// OpCode identifies a bytecode instruction. Every opcode is one byte,
// optionally followed by one or two operand bytes (see OperandBytes).
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpReturn
)

var opcodeNames = map[OpCode]string{
	OpConstant: "OP_CONSTANT", OpNil: "OP_NIL", OpTrue: "OP_TRUE", OpFalse: "OP_FALSE",
	OpPop: "OP_POP", OpGetLocal: "OP_GET_LOCAL", OpSetLocal: "OP_SET_LOCAL",
	OpGetGlobal: "OP_GET_GLOBAL", OpDefineGlobal: "OP_DEFINE_GLOBAL", OpSetGlobal: "OP_SET_GLOBAL",
	OpEqual: "OP_EQUAL", OpGreater: "OP_GREATER", OpLess: "OP_LESS",
	OpAdd: "OP_ADD", OpSubtract: "OP_SUBTRACT", OpMultiply: "OP_MULTIPLY", OpDivide: "OP_DIVIDE",
	OpNot: "OP_NOT", OpNegate: "OP_NEGATE", OpPrint: "OP_PRINT",
	OpJump: "OP_JUMP", OpJumpIfFalse: "OP_JUMP_IF_FALSE", OpLoop: "OP_LOOP",
	OpReturn: "OP_RETURN",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", byte(op))
}

// OperandBytes reports how many operand bytes follow this opcode in the
// code stream: 0 for no operand, 1 for a constant/local/global slot
// index, 2 for a big-endian jump offset.
func (op OpCode) OperandBytes() int {
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetGlobal, OpDefineGlobal, OpSetGlobal:
		return 1
	case OpJump, OpJumpIfFalse, OpLoop:
		return 2
	default:
		return 0
	}
}

// MaxConstants is the limit on a chunk's constant pool: constant indices
// are encoded as a single byte operand.
const MaxConstants = 256

// Chunk is one compiled unit: a byte-addressable code buffer, a parallel
// per-byte line map (used only for diagnostics), and an ordered constant
// pool indexed by the byte operand of OP_CONSTANT and the variable
// opcodes.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// New returns an empty Chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends one instruction byte (an opcode or an operand byte) and
// the source line it originated from. code.length == lines.length is
// maintained as an invariant by construction.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends value to the constant pool and returns its 0-based
// index. Callers are responsible for enforcing MaxConstants; Chunk itself
// never rejects an append.
func (c *Chunk) AddConstant(value Value) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}
