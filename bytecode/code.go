// Package bytecode defines the chunk format that parsed declarations
// (once the semantic analyser has accepted them) are compiled to, and
// the Value/Object runtime
// representation shared between the compiler's constant pool and the
// virtual machine.
package bytecode

import (
	"encoding/binary"
	"fmt"
)

type Opcode byte

const (
	OpConstant Opcode = iota
	OpPop
	OpNegate
	OpNot
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpGreater
	OpLess
	OpTrue
	OpFalse
	OpReadVariable
	OpAssignVariable
	OpJumpIfFalse
	OpJump
	OpLoop
	OpOffset
	OpCall
	OpReturn
	OpPrint
)

var opcodeNames = map[Opcode]string{
	OpConstant:       "Constant",
	OpPop:            "Pop",
	OpNegate:         "Negate",
	OpNot:            "Not",
	OpAdd:            "Add",
	OpSubtract:       "Subtract",
	OpMultiply:       "Multiply",
	OpDivide:         "Divide",
	OpEqual:          "Equal",
	OpGreater:        "Greater",
	OpLess:           "Less",
	OpTrue:           "True",
	OpFalse:          "False",
	OpReadVariable:   "ReadVariable",
	OpAssignVariable: "AssignVariable",
	OpJumpIfFalse:    "JumpIfFalse",
	OpJump:           "Jump",
	OpLoop:           "Loop",
	OpOffset:         "Offset",
	OpCall:           "Call",
	OpReturn:         "Return",
	OpPrint:          "Print",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// operandWidths gives the number of immediate bytes each opcode is
// followed by in the instruction stream. OpJumpIfFalse/OpJump/OpLoop
// carry no inline operand of their own; under this two-slot jump
// encoding they are always immediately followed by a standalone
// OpOffset(k) instruction, which PatchJump rewrites once the jump
// target is known.
var operandWidths = map[Opcode]int{
	OpConstant:       2,
	OpReadVariable:   2,
	OpAssignVariable: 2,
	OpOffset:         2,
	OpCall:           1,
}

// MakeInstruction encodes op and its operands (big-endian) into a byte
// sequence ready to append to a Chunk's code.
func MakeInstruction(op Opcode, operands ...int) []byte {
	width := operandWidths[op]
	instruction := make([]byte, 1+width)
	instruction[0] = byte(op)
	if width == 0 {
		return instruction
	}
	switch width {
	case 1:
		instruction[1] = byte(operands[0])
	case 2:
		binary.BigEndian.PutUint16(instruction[1:], uint16(operands[0]))
	}
	return instruction
}

// ReadUint16 decodes a big-endian uint16 operand starting at code[offset].
func ReadUint16(code []byte, offset int) uint16 {
	return binary.BigEndian.Uint16(code[offset:])
}

// InstructionLength returns 1 plus op's operand width: how far the
// instruction pointer must advance past an instance of op.
func InstructionLength(op Opcode) int {
	return 1 + operandWidths[op]
}
