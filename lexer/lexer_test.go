package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nilan/token"
)

func tokenTypes(tokens []token.Token) []token.TokenType {
	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.TokenType
	}
	return types
}

func TestScanOperators(t *testing.T) {
	expected := []token.TokenType{
		token.EQUAL_EQUAL, token.DIV, token.ASSIGN, token.MULT, token.ADD,
		token.LARGER, token.SUB, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.LARGER_EQUAL, token.BANG, token.BANG, token.EOF,
	}

	lex := New("==/=*+>-<!=<=>=!!")
	require.Equal(t, expected, tokenTypes(lex.Scan()))
}

func TestScanPunctuation(t *testing.T) {
	expected := []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR, token.MULT, token.MULT,
		token.SEMICOLON, token.ADD, token.NOT_EQUAL, token.LESS_EQUAL, token.EOF,
	}

	lex := New("(){}**;+!=<=")
	require.Equal(t, expected, tokenTypes(lex.Scan()))
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	lex := New("fn main let x return while if else true false")
	tokens := lex.Scan()
	expected := []token.TokenType{
		token.FUNC, token.IDENTIFIER, token.LET, token.IDENTIFIER, token.RETURN,
		token.WHILE, token.IF, token.ELSE, token.TRUE, token.FALSE, token.EOF,
	}
	require.Equal(t, expected, tokenTypes(tokens))
	require.Equal(t, "main", tokens[1].Lexeme)
}

func TestScanNumberLiteral(t *testing.T) {
	lex := New("1 2.5 100")
	tokens := lex.Scan()
	require.Equal(t, 1.0, tokens[0].Literal)
	require.Equal(t, 2.5, tokens[1].Literal)
	require.Equal(t, 100.0, tokens[2].Literal)
}

func TestScanStringLiteral(t *testing.T) {
	lex := New(`"foo" "bar baz"`)
	tokens := lex.Scan()
	require.Equal(t, token.STRING, tokens[0].TokenType)
	require.Equal(t, "foo", tokens[0].Literal)
	require.Equal(t, "bar baz", tokens[1].Literal)
}

func TestScanUnterminatedStringIsError(t *testing.T) {
	lex := New(`"unterminated`)
	tokens := lex.Scan()
	require.Equal(t, token.ERROR, tokens[0].TokenType)
}

func TestScanSkipsLineComments(t *testing.T) {
	lex := New("1 // a comment\n2")
	tokens := lex.Scan()
	require.Equal(t, []token.TokenType{token.NUMBER, token.NUMBER, token.EOF}, tokenTypes(tokens))
}

func TestScanUnknownByteIsError(t *testing.T) {
	lex := New("@")
	tokens := lex.Scan()
	require.Equal(t, token.ERROR, tokens[0].TokenType)
}

func TestScanTokenSpans(t *testing.T) {
	lex := New("let x = 42;")
	tokens := lex.Scan()
	require.Equal(t, token.Span{Start: 0, End: 3}, tokens[0].Span)
	require.Equal(t, token.Span{Start: 4, End: 5}, tokens[1].Span)
}
