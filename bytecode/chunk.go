package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/josharian/intern"
)

// Chunk is a self-contained bytecode program: an opcode stream plus its
// parallel constant pool. Writing a constant with AddConstant pushes
// the value onto Constants and appends Constant(index) to Code.
type Chunk struct {
	Code      []byte
	Constants []Value
}

// AddConstant appends value to the constant pool and emits a Constant
// instruction referencing it. String constants are interned so that
// repeated identical literals across a program share one backing
// string.
func (c *Chunk) AddConstant(value Value) {
	if value.Kind == KindObj && value.Obj.Kind == ObjString {
		value.Obj.Str = intern.String(value.Obj.Str)
	}
	c.Constants = append(c.Constants, value)
	c.Emit(OpConstant, len(c.Constants)-1)
}

// Emit appends the encoded instruction for op and its operands,
// returning the byte offset the instruction was written at.
func (c *Chunk) Emit(op Opcode, operands ...int) int {
	position := len(c.Code)
	c.Code = append(c.Code, MakeInstruction(op, operands...)...)
	return position
}

// EmitPlaceholderJump emits op (OpJump/OpJumpIfFalse/OpLoop) followed
// by an OpOffset(0) placeholder, and returns the byte offset of the
// OpOffset instruction so PatchJump can rewrite its operand once the
// real target is known.
func (c *Chunk) EmitPlaceholderJump(op Opcode) int {
	c.Emit(op)
	return c.Emit(OpOffset, 0)
}

// PatchJump rewrites the OpOffset placeholder at offsetPos so that,
// when executed, it advances the instruction pointer by the distance
// from the instruction immediately after the OpOffset slot to target.
func (c *Chunk) PatchJump(offsetPos int, target int) {
	from := offsetPos + InstructionLength(OpOffset)
	k := target - from
	binary.BigEndian.PutUint16(c.Code[offsetPos+1:], uint16(k))
}

// EmitLoop emits OpLoop followed by an OpOffset whose operand is the
// backward distance from the instruction after it to loopStart.
func (c *Chunk) EmitLoop(loopStart int) {
	c.Emit(OpLoop)
	offsetPos := c.Emit(OpOffset, 0)
	from := offsetPos + InstructionLength(OpOffset)
	k := from - loopStart
	binary.BigEndian.PutUint16(c.Code[offsetPos+1:], uint16(k))
}

// Disassemble renders Code as a human-readable listing, one
// instruction per line, resolving Constant operands to their value.
func (c *Chunk) Disassemble() string {
	var b strings.Builder
	ip := 0
	for ip < len(c.Code) {
		op := Opcode(c.Code[ip])
		fmt.Fprintf(&b, "%04d %s", ip, op)
		switch operandWidths[op] {
		case 1:
			fmt.Fprintf(&b, " %d", c.Code[ip+1])
		case 2:
			operand := ReadUint16(c.Code, ip+1)
			if op == OpConstant {
				fmt.Fprintf(&b, " %d (%s)", operand, c.Constants[operand])
			} else {
				fmt.Fprintf(&b, " %d", operand)
			}
		}
		b.WriteByte('\n')
		ip += InstructionLength(op)
	}
	return b.String()
}
