// Package types implements the nilan type system core: the Type
// representation and the substitute/unify/expand algebra used by the
// semantic analyser to perform Hindley-Milner style inference with
// rank-1 polymorphism and explicit generalization at declaration sites.
package types

// Constructor is the payload of an Apply node. Unlike a plain label,
// some constructors carry their own data (Unique wraps another
// constructor to form a nominal type; FunctionType carries the formal
// parameters and body of a higher-rank type used during instantiation).
type Constructor interface {
	isConstructor()
}

// Simple is a constructor with no payload of its own.
type Simple string

const (
	Bool   Simple = "Bool"
	Number Simple = "Number"
	String Simple = "String"
	Void   Simple = "Void"
	Array  Simple = "Array"
	Arrow  Simple = "Arrow"
)

func (Simple) isConstructor() {}

// RecordConstructor is a named-field product type. Reserved: no surface
// syntax currently constructs one.
type RecordConstructor struct {
	Fields []string
}

func (RecordConstructor) isConstructor() {}

// UniqueConstructor nominally wraps another constructor so that two
// structurally identical Apply trees with different Unique tags fail
// to unify.
type UniqueConstructor struct {
	Tag   string
	Inner Constructor
}

func (UniqueConstructor) isConstructor() {}

// FunctionTypeConstructor stores a higher-rank function type: formal
// parameter names together with a body type, for use as the
// constructor of an Apply whose Arguments supply the actual parameter
// types at the point of use. unify and expand reveal its structure by
// substituting Arguments for Formals in Body.
type FunctionTypeConstructor struct {
	Formals []string
	Body    Type
}

func (FunctionTypeConstructor) isConstructor() {}

// Type is the closed set of type representations: a possibly-unbound
// Variable, a constructor Applied to zero or more argument types, or a
// PolymorphicType scheme universally quantified over formal parameters.
type Type interface {
	isType()
}

// Variable is a type variable, identified by name. Variables are
// treated as rigid: unify only ever succeeds between two variables
// sharing the same name.
type Variable struct {
	Name string
}

func (Variable) isType() {}

// Apply applies Constructor to Arguments.
type Apply struct {
	Constructor Constructor
	Arguments   []Type
}

func (Apply) isType() {}

// PolymorphicType is a type scheme: Inner, universally quantified over
// Formals. Instantiating a scheme substitutes each formal with either a
// fresh variable or an explicit type argument supplied at the call
// site.
type PolymorphicType struct {
	Formals []string
	Inner   Type
}

func (PolymorphicType) isType() {}

// Mono wraps a constructor with no type arguments, e.g. Mono(Bool).
func Mono(c Simple) Type {
	return Apply{Constructor: c}
}
