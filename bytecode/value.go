package bytecode

import "fmt"

// ValueKind tags the three shapes a Value can take: a Bool, a Number,
// or a shared reference to an Object (String or Function).
type ValueKind byte

const (
	KindBool ValueKind = iota
	KindNumber
	KindObj
)

// Value is the VM's runtime representation: a small tagged union,
// passed by copy on the value stack. Obj values alias a shared Object
// rather than copying it; Objects are never mutated in place, so
// aliasing is safe.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	Obj    *Object
}

func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Number: n} }
func StringValue(s string) Value {
	return Value{Kind: KindObj, Obj: &Object{Kind: ObjString, Str: s}}
}
func FunctionValue(fn *Function) Value {
	return Value{Kind: KindObj, Obj: &Object{Kind: ObjFunction, Fn: fn}}
}

func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsString() bool { return v.Kind == KindObj && v.Obj.Kind == ObjString }

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindNumber:
		return fmt.Sprintf("%g", v.Number)
	case KindObj:
		return v.Obj.String()
	default:
		return "<invalid value>"
	}
}

// ObjectKind distinguishes the two heap-allocated object shapes the
// language has: strings and functions.
type ObjectKind byte

const (
	ObjString ObjectKind = iota
	ObjFunction
)

// Object is shared (reference) owner of heap data. Objects are never
// mutated once constructed; every operation that would otherwise
// require mutation (string concatenation, for instance) produces a new
// Object instead. Go's garbage collector reclaims the backing memory
// once the last Value referencing an Object is dropped, so no explicit
// reference count is tracked.
type Object struct {
	Kind ObjectKind
	Str  string
	Fn   *Function
}

func (o *Object) String() string {
	switch o.Kind {
	case ObjString:
		return o.Str
	case ObjFunction:
		return fmt.Sprintf("<fn %s>", o.Fn.Name)
	default:
		return "<object>"
	}
}

// Function is a first-class callable Value: its display name, arity,
// and the Chunk compiled for its body.
type Function struct {
	Name  string
	Arity int
	Chunk *Chunk
}
