// Package debug implements the human-readable bytecode disassembler
// described in spec.md §6, used by tests and by the CLI's disasm
// subcommand.
package debug

import (
	"encoding/binary"
	"fmt"
	"io"

	"nilan/chunk"
)

// Disassemble writes every instruction in c to w, one line per
// instruction, preceded by a name header.
func Disassemble(w io.Writer, c *chunk.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction decodes and writes the single instruction at
// offset, returning the offset of the next instruction.
//
// Format: "<4-digit offset> <4-digit line or '   |'> <opcode name>
// [<4-digit operand> '<value>']" — the "|" stands in for the line number
// when it's unchanged from the previous byte's line.
func DisassembleInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := chunk.OpCode(c.Code[offset])

	switch op.OperandBytes() {
	case 0:
		fmt.Fprintf(w, "%-16s\n", op.String())
		return offset + 1
	case 1:
		slot := c.Code[offset+1]
		return constantOrSlotInstruction(w, c, op, slot, offset)
	case 2:
		jump := binary.BigEndian.Uint16(c.Code[offset+1 : offset+3])
		return jumpInstruction(w, op, jump, offset)
	default:
		fmt.Fprintf(w, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func constantOrSlotInstruction(w io.Writer, c *chunk.Chunk, op chunk.OpCode, operand byte, offset int) int {
	switch op {
	case chunk.OpConstant, chunk.OpGetGlobal, chunk.OpDefineGlobal, chunk.OpSetGlobal:
		value := c.Constants[operand]
		fmt.Fprintf(w, "%-16s %4d '%s'\n", op.String(), operand, value.String())
	default: // OP_GET_LOCAL, OP_SET_LOCAL: operand is a stack slot, not a constant index
		fmt.Fprintf(w, "%-16s %4d\n", op.String(), operand)
	}
	return offset + 2
}

func jumpInstruction(w io.Writer, op chunk.OpCode, jump uint16, offset int) int {
	sign := 1
	if op == chunk.OpLoop {
		sign = -1
	}
	target := offset + 3 + sign*int(jump)
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op.String(), offset, target)
	return offset + 3
}
