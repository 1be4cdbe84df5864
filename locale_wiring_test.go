package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerLocaleTranslatesFunctionNameAndBooleanKeyword(t *testing.T) {
	registry := NewLocaleRegistry()
	require.NoError(t, registry.RegisterLocale(frenchLocaleConfig(), []byte(frenchPackYAML)))
	loc, ok := registry.Get("fr-FR")
	require.True(t, ok)

	lexer := NewLexerWithLocale("=SOMME(1;VRAI)", loc)
	tokens, lexErrors := lexer.Tokenize()
	require.Empty(t, lexErrors)

	var sawFunction, sawBoolean, sawComma bool
	for _, tok := range tokens {
		switch {
		case tok.Type == TokenFunction && tok.Value == "SUM":
			sawFunction = true
		case tok.Type == TokenBoolean && tok.Value == "TRUE":
			sawBoolean = true
		case tok.Type == TokenComma:
			sawComma = true
		}
	}
	assert.True(t, sawFunction, "expected SOMME to canonicalize to SUM")
	assert.True(t, sawBoolean, "expected VRAI to canonicalize to TRUE")
	assert.True(t, sawComma, "expected ';' to tokenize as the argument separator")
}

func TestSpreadsheetSetLocaleParsesLocalizedFormula(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.RegisterLocale(frenchLocaleConfig(), []byte(frenchPackYAML)))
	require.NoError(t, s.SetLocale("fr-FR"))

	require.NoError(t, s.Set("Sheet1!A1", 1.0))
	require.NoError(t, s.Set("Sheet1!A2", 2.0))
	require.NoError(t, s.Set("Sheet1!A3", "=SOMME(A1;A2)"))
	require.NoError(t, s.Calculate())

	val, err := s.Get("Sheet1!A3")
	require.NoError(t, err)
	assert.Equal(t, 3.0, val)
}

func TestSpreadsheetSetLocaleRejectsUnknownID(t *testing.T) {
	s := NewSpreadsheet()
	err := s.SetLocale("xx-XX")
	require.Error(t, err)
}
