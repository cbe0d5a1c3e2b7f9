package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		lexeme    string
	}{
		{name: "assign", tokenType: ASSIGN, lexeme: "="},
		{name: "mult", tokenType: MULT, lexeme: "*"},
		{name: "left paren", tokenType: LPA, lexeme: "("},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.lexeme, Span{Start: 0, End: len(tt.lexeme)}, 1, 0)
			require.Equal(t, tt.tokenType, got.TokenType)
			require.Equal(t, tt.lexeme, got.Lexeme)
			require.Nil(t, got.Literal)
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	got := CreateLiteralToken(NUMBER, 42.0, "42", Span{Start: 0, End: 2}, 1, 0)
	require.Equal(t, NUMBER, got.TokenType)
	require.Equal(t, 42.0, got.Literal)
	require.Equal(t, "42", got.Lexeme)
}

func TestKeyWords(t *testing.T) {
	for _, kw := range []string{"fn", "let", "if", "else", "while", "return", "print", "true", "false", "extern"} {
		_, ok := KeyWords[kw]
		require.Truef(t, ok, "expected %q to be a keyword", kw)
	}
}

func TestSpanJoin(t *testing.T) {
	a := Span{Start: 2, End: 5}
	b := Span{Start: 4, End: 9}
	require.Equal(t, Span{Start: 2, End: 9}, a.Join(b))
}
