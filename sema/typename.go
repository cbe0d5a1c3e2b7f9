package sema

import (
	"fmt"

	"nilan/ast"
	"nilan/token"
	"nilan/types"
)

// translateTypeName resolves a parsed ast.TypeName to a types.Type
// against typeEnv, which carries the built-in constructors and, inside
// a generic declaration's own translation, its generic formals bound to
// themselves as type variables. ast.TypeName carries no span of its
// own, so span anchors any diagnostic at the declaration site (a
// parameter name or function name token) that owns this type name.
func translateTypeName(tn ast.TypeName, typeEnv types.TypeEnv, span token.Span) (types.Type, error) {
	if tn.IsFunction {
		params := make([]types.Type, 0, len(tn.ParamTypes)+1)
		for _, p := range tn.ParamTypes {
			pt, err := translateTypeName(p, typeEnv, span)
			if err != nil {
				return nil, err
			}
			params = append(params, pt)
		}
		ret := types.Type(types.Mono(types.Void))
		if tn.ReturnType != nil {
			var err error
			ret, err = translateTypeName(*tn.ReturnType, typeEnv, span)
			if err != nil {
				return nil, err
			}
		}
		return types.Apply{Constructor: types.Arrow, Arguments: append(params, ret)}, nil
	}

	if tn.Name == "Array" {
		if len(tn.Args) != 1 {
			return nil, errorAt(span, fmt.Sprintf("Array takes exactly one type argument, got %d", len(tn.Args)))
		}
		elem, err := translateTypeName(tn.Args[0], typeEnv, span)
		if err != nil {
			return nil, err
		}
		return types.Apply{Constructor: types.Array, Arguments: []types.Type{elem}}, nil
	}

	bound, ok := typeEnv[tn.Name]
	if !ok {
		return nil, errorAt(span, fmt.Sprintf("unknown type %q", tn.Name))
	}
	return bound.Type, nil
}

// typeEnvWithGenerics extends typeEnv with a function declaration's own
// generic formals, each bound to a type Variable of the same name, so
// that translateTypeName resolves "T" inside the declaration's own
// parameter and return types instead of reporting it unknown.
func typeEnvWithGenerics(typeEnv types.TypeEnv, generics []string) types.TypeEnv {
	if len(generics) == 0 {
		return typeEnv
	}
	extended := typeEnv.Clone()
	for _, name := range generics {
		extended[name] = types.TypeValue{Type: types.Variable{Name: name}}
	}
	return extended
}
