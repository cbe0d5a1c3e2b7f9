package sema

import (
	"nilan/types"
)

// builtinTypeEnv binds the built-in type names Bool, Number, String and
// Void.
func builtinTypeEnv() types.TypeEnv {
	return types.TypeEnv{
		"Bool":   {Type: types.Mono(types.Bool)},
		"Number": {Type: types.Mono(types.Number)},
		"String": {Type: types.Mono(types.String)},
		"Void":   {Type: types.Mono(types.Void)},
	}
}

// builtinVariableEnv holds puts(s: String) -> Void, the one extern the
// analyser accepts calls to without a source declaration. The bytecode
// compiler does not share this table: it resolves a call to puts only
// when the program declares "extern fn puts".
func builtinVariableEnv() types.VariableEnv {
	puts := types.Apply{Constructor: types.Arrow, Arguments: []types.Type{
		types.Mono(types.String),
		types.Mono(types.Void),
	}}
	return types.VariableEnv{"puts": puts}
}
