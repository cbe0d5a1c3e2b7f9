package types

import (
	"fmt"
	"reflect"
)

// Substitute applies env to t, replacing bound Variables with their
// mapped Type and pushing the substitution through Apply's Arguments.
// Apply nodes whose Constructor is a FunctionTypeConstructor are
// revealed first: the constructor's own Formals/Body pair is resolved
// against its Arguments before env is applied to the result, so that a
// partially-applied higher-rank type is never substituted through
// blindly. PolymorphicType bodies are substituted under a fresh inner
// scope that rebinds the formal parameters to themselves, so that env
// can never capture a formal it doesn't own.
func Substitute(t Type, env TypeEnv) Type {
	switch v := t.(type) {
	case Variable:
		if bound, ok := env[v.Name]; ok {
			return bound.Type
		}
		return v

	case Apply:
		if ft, ok := v.Constructor.(FunctionTypeConstructor); ok {
			inner := zipArgumentTypes(ft.Formals, v.Arguments)
			return Substitute(Substitute(ft.Body, inner), env)
		}
		args := make([]Type, len(v.Arguments))
		for i, arg := range v.Arguments {
			args[i] = Substitute(arg, env)
		}
		return Apply{Constructor: v.Constructor, Arguments: args}

	case PolymorphicType:
		formals := append([]string(nil), v.Formals...)
		inner := env.Clone()
		for _, name := range formals {
			inner[name] = TypeValue{Type: Variable{Name: name}}
		}
		return PolymorphicType{Formals: formals, Inner: Substitute(v.Inner, inner)}

	default:
		return t
	}
}

// Expand performs one step of eta-expansion: it unwraps a
// FunctionTypeConstructor Apply (substituting Arguments for Formals in
// Body and recursing) or a UniqueConstructor Apply (dropping the
// nominal wrapper and recursing on the inner constructor with the same
// Arguments). Any other Type is returned unchanged.
func Expand(t Type) Type {
	apply, ok := t.(Apply)
	if !ok {
		return t
	}
	switch ctor := apply.Constructor.(type) {
	case FunctionTypeConstructor:
		env := zipArgumentTypes(ctor.Formals, apply.Arguments)
		return Expand(Substitute(ctor.Body, env))
	case UniqueConstructor:
		return Expand(Apply{Constructor: ctor.Inner, Arguments: apply.Arguments})
	default:
		return t
	}
}

// Occurs reports whether the type variable named name appears free
// within t. A formal of a PolymorphicType shadows an outer variable of
// the same name, so occurrence does not cross into the scheme's body
// for a formal it binds itself.
func Occurs(name string, t Type) bool {
	switch v := t.(type) {
	case Variable:
		return v.Name == name
	case Apply:
		if ft, ok := v.Constructor.(FunctionTypeConstructor); ok {
			shadowed := false
			for _, formal := range ft.Formals {
				if formal == name {
					shadowed = true
					break
				}
			}
			if !shadowed && Occurs(name, ft.Body) {
				return true
			}
		}
		for _, arg := range v.Arguments {
			if Occurs(name, arg) {
				return true
			}
		}
		return false
	case PolymorphicType:
		for _, formal := range v.Formals {
			if formal == name {
				return false
			}
		}
		return Occurs(name, v.Inner)
	default:
		return false
	}
}

// Unify attempts to unify a and b, following the ordered rule set:
//  1. Apply(FunctionType(formals, body), args) on either side is
//     expanded before anything else is considered.
//  2. Variable vs Variable succeeds only for identical names (variables
//     are rigid; there is no binding step, so the occurs-check is
//     satisfied as a corollary of this rule rather than a separate
//     pass).
//  3. PolymorphicType vs PolymorphicType unifies the inner types under
//     the right scheme's formals renamed to the left scheme's.
//  4. Apply vs Apply requires equal constructors (Unique constructors
//     compare their nominal tags) and unifies arguments pairwise.
//  5. Any other pairing is a type mismatch.
func Unify(a, b Type) error {
	if expanded, ok := expandFunctionType(a); ok {
		return Unify(expanded, b)
	}
	if expanded, ok := expandFunctionType(b); ok {
		return Unify(a, expanded)
	}

	switch av := a.(type) {
	case Variable:
		bv, ok := b.(Variable)
		if !ok || av.Name != bv.Name {
			return mismatch(a, b)
		}
		return nil

	case PolymorphicType:
		bv, ok := b.(PolymorphicType)
		if !ok {
			return mismatch(a, b)
		}
		renamed := zipArgumentTypes(bv.Formals, variablesFrom(av.Formals))
		return Unify(av.Inner, Substitute(bv.Inner, renamed))

	case Apply:
		bv, ok := b.(Apply)
		if !ok {
			return mismatch(a, b)
		}
		return unifyApply(av, bv)

	default:
		return mismatch(a, b)
	}
}

func expandFunctionType(t Type) (Type, bool) {
	apply, ok := t.(Apply)
	if !ok {
		return nil, false
	}
	ft, ok := apply.Constructor.(FunctionTypeConstructor)
	if !ok {
		return nil, false
	}
	env := zipArgumentTypes(ft.Formals, apply.Arguments)
	return Substitute(ft.Body, env), true
}

func unifyApply(a, b Apply) error {
	if !constructorsEqual(a.Constructor, b.Constructor) {
		return mismatch(a, b)
	}
	if len(a.Arguments) != len(b.Arguments) {
		return fmt.Errorf("type mismatch: %s takes %d argument(s), %s takes %d",
			describeConstructor(a.Constructor), len(a.Arguments),
			describeConstructor(b.Constructor), len(b.Arguments))
	}
	for i := range a.Arguments {
		if err := Unify(a.Arguments[i], b.Arguments[i]); err != nil {
			return err
		}
	}
	return nil
}

func constructorsEqual(a, b Constructor) bool {
	au, aIsUnique := a.(UniqueConstructor)
	bu, bIsUnique := b.(UniqueConstructor)
	if aIsUnique || bIsUnique {
		if !aIsUnique || !bIsUnique {
			return false
		}
		return au.Tag == bu.Tag && constructorsEqual(au.Inner, bu.Inner)
	}
	return reflect.DeepEqual(a, b)
}

func mismatch(a, b Type) error {
	return fmt.Errorf("type mismatch: cannot unify %s with %s", describe(a), describe(b))
}

func describe(t Type) string {
	switch v := t.(type) {
	case Variable:
		return "'" + v.Name
	case Apply:
		return describeConstructor(v.Constructor)
	case PolymorphicType:
		return fmt.Sprintf("forall %v. %s", v.Formals, describe(v.Inner))
	default:
		return fmt.Sprintf("%v", t)
	}
}

func describeConstructor(c Constructor) string {
	switch v := c.(type) {
	case Simple:
		return string(v)
	case RecordConstructor:
		return "Record"
	case UniqueConstructor:
		return v.Tag
	case FunctionTypeConstructor:
		return "FunctionType"
	default:
		return fmt.Sprintf("%v", c)
	}
}
