package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkAddConstantEmitsConstantInstruction(t *testing.T) {
	chunk := &Chunk{}
	chunk.AddConstant(NumberValue(5))
	chunk.AddConstant(StringValue("hi"))

	require.Equal(t, []byte{byte(OpConstant), 0, 0, byte(OpConstant), 0, 1}, chunk.Code)
	require.Len(t, chunk.Constants, 2)
	require.Equal(t, 5.0, chunk.Constants[0].Number)
	require.Equal(t, "hi", chunk.Constants[1].Obj.Str)
}

func TestChunkAddConstantInternsStrings(t *testing.T) {
	chunk := &Chunk{}
	chunk.AddConstant(StringValue("shared"))
	chunk.AddConstant(StringValue("shared"))

	require.Equal(t, "shared", chunk.Constants[0].Obj.Str)
	require.Equal(t, chunk.Constants[0].Obj.Str, chunk.Constants[1].Obj.Str)
}

func TestChunkPatchJumpRewritesForwardOffset(t *testing.T) {
	chunk := &Chunk{}
	chunk.Emit(OpTrue)
	jumpIfFalse := chunk.EmitPlaceholderJump(OpJumpIfFalse)
	chunk.Emit(OpFalse)
	target := len(chunk.Code)
	chunk.PatchJump(jumpIfFalse, target)

	from := jumpIfFalse + InstructionLength(OpOffset)
	k := int(ReadUint16(chunk.Code, jumpIfFalse+1))
	require.Equal(t, target, from+k)
}

func TestChunkEmitLoopRewritesBackwardOffset(t *testing.T) {
	chunk := &Chunk{}
	loopStart := len(chunk.Code)
	chunk.Emit(OpTrue)
	chunk.EmitLoop(loopStart)

	offsetPos := len(chunk.Code) - InstructionLength(OpOffset)
	from := offsetPos + InstructionLength(OpOffset)
	k := int(ReadUint16(chunk.Code, offsetPos+1))
	require.Equal(t, loopStart, from-k)
}

func TestChunkDisassembleResolvesConstants(t *testing.T) {
	chunk := &Chunk{}
	chunk.AddConstant(NumberValue(42))
	chunk.Emit(OpReturn)

	listing := chunk.Disassemble()
	require.Contains(t, listing, "Constant")
	require.Contains(t, listing, "42")
	require.Contains(t, listing, "Return")
}
