package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeInstruction(t *testing.T) {
	operand := 65000
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpConstant, []int{operand}, []byte{byte(OpConstant), 253, 232}},
		{OpReadVariable, []int{1}, []byte{byte(OpReadVariable), 0, 1}},
		{OpAssignVariable, []int{1}, []byte{byte(OpAssignVariable), 0, 1}},
		{OpOffset, []int{operand}, []byte{byte(OpOffset), 253, 232}},
		{OpCall, []int{3}, []byte{byte(OpCall), 3}},
		{OpAdd, nil, []byte{byte(OpAdd)}},
		{OpPop, nil, []byte{byte(OpPop)}},
		{OpReturn, nil, []byte{byte(OpReturn)}},
	}

	for _, tt := range tests {
		instruction := MakeInstruction(tt.op, tt.operands...)
		require.Equal(t, tt.expected, instruction)
	}
}

func TestInstructionLength(t *testing.T) {
	require.Equal(t, 3, InstructionLength(OpConstant))
	require.Equal(t, 3, InstructionLength(OpOffset))
	require.Equal(t, 2, InstructionLength(OpCall))
	require.Equal(t, 1, InstructionLength(OpAdd))
	require.Equal(t, 1, InstructionLength(OpJumpIfFalse))
}

func TestReadUint16(t *testing.T) {
	code := []byte{byte(OpConstant), 253, 232}
	require.Equal(t, uint16(65000), ReadUint16(code, 1))
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "Constant", OpConstant.String())
	require.Equal(t, "Offset", OpOffset.String())
	require.Contains(t, Opcode(200).String(), "Opcode(200)")
}
