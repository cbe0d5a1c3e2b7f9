// Package sema implements the semantic analyser: a two-pass walk (all
// signatures first, then every body) over a parsed program that
// resolves every identifier, infers and
// checks the type of every expression, and aborts on the first
// diagnostic it cannot recover from.
package sema

import (
	"fmt"

	"nilan/ast"
	"nilan/token"
	"nilan/types"
)

// Analyser holds the mutable state threaded through analysis: the
// global type and variable environments (seeded with the built-in
// constructors and the puts extern), and a counter for minting fresh
// type variables during generic instantiation.
type Analyser struct {
	typeEnv    types.TypeEnv
	globals    types.VariableEnv
	freshCount int
}

// New returns an Analyser with the built-in type and variable
// environments.
func New() *Analyser {
	return &Analyser{
		typeEnv: builtinTypeEnv(),
		globals: builtinVariableEnv(),
	}
}

func (a *Analyser) fresh() string {
	a.freshCount++
	return fmt.Sprintf("t%d", a.freshCount)
}

// Analyse translates every declaration in decls, in two passes: the
// first registers every function's signature (so forward references
// and recursive calls resolve), the second translates each function
// body against the now-complete global environment. It returns on the
// first error encountered.
func (a *Analyser) Analyse(decls []ast.Declaration) ([]TypedDeclaration, error) {
	for _, decl := range decls {
		if err := a.registerSignature(decl); err != nil {
			return nil, err
		}
	}

	tagged := make([]TypedDeclaration, 0, len(decls))
	for _, decl := range decls {
		signature, err := a.translateDeclarationBody(decl)
		if err != nil {
			return nil, err
		}
		tagged = append(tagged, TypedDeclaration{Declaration: decl, Signature: signature})
	}
	return tagged, nil
}

func (a *Analyser) registerSignature(decl ast.Declaration) error {
	switch fn := decl.Function.(type) {
	case ast.FunctionDeclaration:
		signature, err := a.functionSignature(fn.Name, fn.GenericParams, fn.Params, fn.ReturnType)
		if err != nil {
			return err
		}
		a.globals[fn.Name.Lexeme] = signature
		return nil

	case ast.ExternFunctionDeclaration:
		signature, err := a.functionSignature(fn.Name, nil, fn.Params, fn.ReturnType)
		if err != nil {
			return err
		}
		a.globals[fn.Name.Lexeme] = signature
		return nil

	default:
		return errorAt(token.Span{}, "top-level declarations must be functions")
	}
}

func (a *Analyser) functionSignature(name token.Token, generics []token.Token, params []ast.Param, returnType *ast.TypeName) (types.Type, error) {
	genericNames := make([]string, len(generics))
	for i, g := range generics {
		genericNames[i] = g.Lexeme
	}
	localTypeEnv := typeEnvWithGenerics(a.typeEnv, genericNames)

	paramTypes := make([]types.Type, 0, len(params)+1)
	for _, p := range params {
		pt, err := translateTypeName(p.TypeName, localTypeEnv, p.Name.Span)
		if err != nil {
			return nil, err
		}
		paramTypes = append(paramTypes, pt)
	}

	ret := types.Type(types.Mono(types.Void))
	if returnType != nil {
		var err error
		ret, err = translateTypeName(*returnType, localTypeEnv, name.Span)
		if err != nil {
			return nil, err
		}
	}

	arrow := types.Apply{Constructor: types.Arrow, Arguments: append(paramTypes, ret)}
	return types.Generalize(genericNames, arrow), nil
}

func (a *Analyser) translateDeclarationBody(decl ast.Declaration) (types.Type, error) {
	switch fn := decl.Function.(type) {
	case ast.FunctionDeclaration:
		signature := a.globals[fn.Name.Lexeme]

		genericNames := make([]string, len(fn.GenericParams))
		for i, g := range fn.GenericParams {
			genericNames[i] = g.Lexeme
		}
		localTypeEnv := typeEnvWithGenerics(a.typeEnv, genericNames)

		varEnv := a.globals.Clone()
		for i, p := range fn.Params {
			pt, err := translateTypeName(p.TypeName, localTypeEnv, p.Name.Span)
			if err != nil {
				return nil, err
			}
			varEnv[p.Name.Lexeme] = pt
		}

		analysis := &bodyAnalyser{analyser: a}
		if err := analysis.translateBlock(fn.Body, varEnv); err != nil {
			return nil, err
		}
		return signature, nil

	case ast.ExternFunctionDeclaration:
		return a.globals[fn.Name.Lexeme], nil

	default:
		return nil, errorAt(token.Span{}, "top-level declarations must be functions")
	}
}
