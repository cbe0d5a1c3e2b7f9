// Package vm implements the stack-based bytecode virtual machine:
// fetch-decode-execute over a bytecode.Chunk's opcode stream, a shared
// value stack, and a call-frame stack for function invocation.
package vm

import (
	"fmt"
	"io"
	"os"

	"nilan/bytecode"
)

// CallFrame captures one in-flight function invocation: the Function
// whose Chunk is executing, the instruction pointer within it, and the
// base offset into the shared value stack where its locals begin.
type CallFrame struct {
	fn   *bytecode.Function
	ip   int
	base int
}

// Native is a VM-provided implementation for an extern declaration
// (one with no compiled Chunk). It receives the call's arguments and
// returns the call's result.
type Native func(vm *VM, args []bytecode.Value) (bytecode.Value, error)

// VM is the runtime that executes a compiled program's Functions.
type VM struct {
	stack   Stack
	frames  []CallFrame
	out     io.Writer
	natives map[string]Native
}

// New returns a VM that writes print output to out. A nil out defaults
// to os.Stdout.
func New(out io.Writer) *VM {
	if out == nil {
		out = os.Stdout
	}
	vm := &VM{out: out, natives: map[string]Native{}}
	vm.natives["puts"] = func(vm *VM, args []bytecode.Value) (bytecode.Value, error) {
		if len(args) != 1 {
			return bytecode.Value{}, runtimeErrorf("puts expects 1 argument, got %d", len(args))
		}
		fmt.Fprintln(vm.out, args[0].String())
		return bytecode.NumberValue(0), nil
	}
	return vm
}

// Run executes functions[entry] to completion and returns its result.
func (vm *VM) Run(functions map[string]*bytecode.Function, entry string) (bytecode.Value, error) {
	fn, ok := functions[entry]
	if !ok {
		return bytecode.Value{}, runtimeErrorf("undefined entry point %q", entry)
	}
	if fn.Chunk == nil {
		return bytecode.Value{}, runtimeErrorf("entry point %q has no compiled body", entry)
	}

	vm.stack = vm.stack[:0]
	vm.frames = []CallFrame{{fn: fn, ip: 0, base: 0}}

	for {
		frame := &vm.frames[len(vm.frames)-1]
		code := frame.fn.Chunk.Code
		if frame.ip >= len(code) {
			return bytecode.Value{}, runtimeErrorf("instruction pointer ran off the end of %q's chunk", frame.fn.Name)
		}
		op := bytecode.Opcode(code[frame.ip])

		switch op {
		case bytecode.OpConstant:
			index := bytecode.ReadUint16(code, frame.ip+1)
			if int(index) >= len(frame.fn.Chunk.Constants) {
				return bytecode.Value{}, runtimeErrorf("constant index %d out of range", index)
			}
			vm.stack.Push(frame.fn.Chunk.Constants[index])
			frame.ip += bytecode.InstructionLength(op)

		case bytecode.OpPop:
			if _, ok := vm.stack.Pop(); !ok {
				return bytecode.Value{}, runtimeErrorf("stack underflow on Pop")
			}
			frame.ip++

		case bytecode.OpNegate:
			v, err := vm.popNumber()
			if err != nil {
				return bytecode.Value{}, err
			}
			vm.stack.Push(bytecode.NumberValue(-v))
			frame.ip++

		case bytecode.OpNot:
			v, err := vm.popBool()
			if err != nil {
				return bytecode.Value{}, err
			}
			vm.stack.Push(bytecode.BoolValue(!v))
			frame.ip++

		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return bytecode.Value{}, err
			}
			frame.ip++

		case bytecode.OpSubtract:
			if err := vm.numericBinary(func(l, r float64) float64 { return l - r }); err != nil {
				return bytecode.Value{}, err
			}
			frame.ip++

		case bytecode.OpMultiply:
			if err := vm.numericBinary(func(l, r float64) float64 { return l * r }); err != nil {
				return bytecode.Value{}, err
			}
			frame.ip++

		case bytecode.OpDivide:
			if err := vm.numericBinary(func(l, r float64) float64 { return l / r }); err != nil {
				return bytecode.Value{}, err
			}
			frame.ip++

		case bytecode.OpEqual:
			r, ok1 := vm.stack.Pop()
			l, ok2 := vm.stack.Pop()
			if !ok1 || !ok2 {
				return bytecode.Value{}, runtimeErrorf("stack underflow on Equal")
			}
			vm.stack.Push(bytecode.BoolValue(valuesEqual(l, r)))
			frame.ip++

		case bytecode.OpGreater:
			if err := vm.numericCompare(func(l, r float64) bool { return l > r }); err != nil {
				return bytecode.Value{}, err
			}
			frame.ip++

		case bytecode.OpLess:
			if err := vm.numericCompare(func(l, r float64) bool { return l < r }); err != nil {
				return bytecode.Value{}, err
			}
			frame.ip++

		case bytecode.OpTrue:
			vm.stack.Push(bytecode.BoolValue(true))
			frame.ip++

		case bytecode.OpFalse:
			vm.stack.Push(bytecode.BoolValue(false))
			frame.ip++

		case bytecode.OpReadVariable:
			index := int(bytecode.ReadUint16(code, frame.ip+1))
			slot := frame.base + index
			if slot < 0 || slot >= len(vm.stack) {
				return bytecode.Value{}, runtimeErrorf("variable slot %d out of range", index)
			}
			vm.stack.Push(vm.stack[slot])
			frame.ip += bytecode.InstructionLength(op)

		case bytecode.OpAssignVariable:
			index := int(bytecode.ReadUint16(code, frame.ip+1))
			v, ok := vm.stack.Pop()
			if !ok {
				return bytecode.Value{}, runtimeErrorf("stack underflow on AssignVariable")
			}
			slot := frame.base + index
			if slot < 0 || slot >= len(vm.stack) {
				return bytecode.Value{}, runtimeErrorf("variable slot %d out of range", index)
			}
			vm.stack[slot] = v
			frame.ip += bytecode.InstructionLength(op)

		case bytecode.OpJumpIfFalse:
			cond, err := vm.popBool()
			if err != nil {
				return bytecode.Value{}, err
			}
			from, k, err := readOffset(code, frame.ip+1)
			if err != nil {
				return bytecode.Value{}, err
			}
			if cond {
				frame.ip = from
			} else {
				frame.ip = from + k
			}

		case bytecode.OpJump:
			from, k, err := readOffset(code, frame.ip+1)
			if err != nil {
				return bytecode.Value{}, err
			}
			frame.ip = from + k

		case bytecode.OpLoop:
			from, k, err := readOffset(code, frame.ip+1)
			if err != nil {
				return bytecode.Value{}, err
			}
			frame.ip = from - k

		case bytecode.OpOffset:
			return bytecode.Value{}, runtimeErrorf("Offset encountered outside jump/loop decode")

		case bytecode.OpCall:
			argc := int(code[frame.ip+1])
			result, halt, err := vm.call(frame, argc)
			if err != nil {
				return bytecode.Value{}, err
			}
			if halt {
				return result, nil
			}

		case bytecode.OpReturn:
			result, halt, err := vm.doReturn()
			if err != nil {
				return bytecode.Value{}, err
			}
			if halt {
				return result, nil
			}

		case bytecode.OpPrint:
			v, ok := vm.stack.Pop()
			if !ok {
				return bytecode.Value{}, runtimeErrorf("stack underflow on Print")
			}
			fmt.Fprintln(vm.out, v.String())
			frame.ip++

		default:
			return bytecode.Value{}, runtimeErrorf("unknown opcode %v at ip %d", op, frame.ip)
		}
	}
}

// readOffset decodes the Offset(k) instruction expected at code[pos]
// and returns the instruction-pointer position immediately after it
// (from) together with k, mirroring bytecode.Chunk.PatchJump/EmitLoop's
// anchor.
func readOffset(code []byte, pos int) (from int, k int, err error) {
	if pos >= len(code) || bytecode.Opcode(code[pos]) != bytecode.OpOffset {
		return 0, 0, runtimeErrorf("malformed jump: expected Offset at %d", pos)
	}
	k = int(bytecode.ReadUint16(code, pos+1))
	from = pos + bytecode.InstructionLength(bytecode.OpOffset)
	return from, k, nil
}

func (vm *VM) popNumber() (float64, error) {
	v, ok := vm.stack.Pop()
	if !ok {
		return 0, runtimeErrorf("stack underflow")
	}
	if !v.IsNumber() {
		return 0, runtimeErrorf("expected Number, got %s", v)
	}
	return v.Number, nil
}

func (vm *VM) popBool() (bool, error) {
	v, ok := vm.stack.Pop()
	if !ok {
		return false, runtimeErrorf("stack underflow")
	}
	if !v.IsBool() {
		return false, runtimeErrorf("expected Bool, got %s", v)
	}
	return v.Bool, nil
}

func (vm *VM) numericBinary(f func(l, r float64) float64) error {
	r, err := vm.popNumber()
	if err != nil {
		return err
	}
	l, err := vm.popNumber()
	if err != nil {
		return err
	}
	vm.stack.Push(bytecode.NumberValue(f(l, r)))
	return nil
}

func (vm *VM) numericCompare(f func(l, r float64) bool) error {
	r, err := vm.popNumber()
	if err != nil {
		return err
	}
	l, err := vm.popNumber()
	if err != nil {
		return err
	}
	vm.stack.Push(bytecode.BoolValue(f(l, r)))
	return nil
}

// add implements Add's dual role: numeric addition, or string
// concatenation when both operands are String objects.
func (vm *VM) add() error {
	r, ok1 := vm.stack.Pop()
	l, ok2 := vm.stack.Pop()
	if !ok1 || !ok2 {
		return runtimeErrorf("stack underflow on Add")
	}
	if l.IsString() && r.IsString() {
		vm.stack.Push(bytecode.StringValue(l.Obj.Str + r.Obj.Str))
		return nil
	}
	if !l.IsNumber() || !r.IsNumber() {
		return runtimeErrorf("Add expects two Numbers or two Strings, got %s and %s", l, r)
	}
	vm.stack.Push(bytecode.NumberValue(l.Number + r.Number))
	return nil
}

func valuesEqual(l, r bytecode.Value) bool {
	if l.Kind != r.Kind {
		return false
	}
	switch l.Kind {
	case bytecode.KindBool:
		return l.Bool == r.Bool
	case bytecode.KindNumber:
		return l.Number == r.Number
	case bytecode.KindObj:
		if l.IsString() && r.IsString() {
			return l.Obj.Str == r.Obj.Str
		}
		return l.Obj == r.Obj
	default:
		return false
	}
}

// call dispatches OpCall: it pops argc arguments and the callee
// Function value beneath them, then either invokes a native
// implementation directly or pushes a new CallFrame over the callee's
// Chunk. halt is true only when the outermost frame has just returned.
func (vm *VM) call(frame *CallFrame, argc int) (result bytecode.Value, halt bool, err error) {
	if len(vm.stack) < argc+1 {
		return bytecode.Value{}, false, runtimeErrorf("stack underflow on Call")
	}
	calleeValue := vm.stack[len(vm.stack)-argc-1]
	if calleeValue.Kind != bytecode.KindObj || calleeValue.Obj.Kind != bytecode.ObjFunction {
		return bytecode.Value{}, false, runtimeErrorf("cannot call a non-function value %s", calleeValue)
	}
	callee := calleeValue.Obj.Fn
	args := append([]bytecode.Value(nil), vm.stack[len(vm.stack)-argc:]...)
	vm.stack = vm.stack[:len(vm.stack)-argc-1]

	frame.ip += bytecode.InstructionLength(bytecode.OpCall)

	if callee.Chunk == nil {
		native, ok := vm.natives[callee.Name]
		if !ok {
			return bytecode.Value{}, false, runtimeErrorf("no native implementation for extern %q", callee.Name)
		}
		result, err := native(vm, args)
		if err != nil {
			return bytecode.Value{}, false, err
		}
		vm.stack.Push(result)
		return bytecode.Value{}, false, nil
	}

	base := len(vm.stack)
	for _, a := range args {
		vm.stack.Push(a)
	}
	vm.frames = append(vm.frames, CallFrame{fn: callee, ip: 0, base: base})
	return bytecode.Value{}, false, nil
}

// doReturn dispatches OpReturn: it pops the current frame's result,
// discards its locals, and resumes the caller, or halts if it was the
// outermost frame.
func (vm *VM) doReturn() (result bytecode.Value, halt bool, err error) {
	current := vm.frames[len(vm.frames)-1]
	v, ok := vm.stack.Pop()
	if !ok {
		return bytecode.Value{}, false, runtimeErrorf("stack underflow on Return")
	}
	vm.stack = vm.stack[:current.base]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.stack.Push(v)
	if len(vm.frames) == 0 {
		return v, true, nil
	}
	return bytecode.Value{}, false, nil
}
