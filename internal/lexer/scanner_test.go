package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestScanTokensSkipsComments(t *testing.T) {
	src := "* a full line comment\n(1) READ-ITEM A ."
	tokens := NewScanner(src).ScanTokens()
	require.NotEmpty(t, tokens)
	assert.Equal(t, TokenOpHeader, tokens[0].Type)
	assert.Equal(t, "1", tokens[0].Lexeme)
}

func TestScanTokensOperationHeaderVsAliasGroup(t *testing.T) {
	tokens := NewScanner("(4) TRANSFER A TO C .").ScanTokens()
	require.Len(t, tokens, 7)
	assert.Equal(t, TokenOpHeader, tokens[0].Type)
	assert.Equal(t, "4", tokens[0].Lexeme)
	assert.Equal(t, []TokenType{
		TokenOpHeader, TokenIdent, TokenIdent, TokenIdent, TokenIdent, TokenPeriod, TokenEOF,
	}, tokenTypes(tokens))
}

func TestScanTokensParenthesizedAlias(t *testing.T) {
	tokens := NewScanner("PRODUCT-NO (a)").ScanTokens()
	require.Len(t, tokens, 3)
	assert.Equal(t, TokenIdent, tokens[0].Type)
	assert.Equal(t, "PRODUCT-NO", tokens[0].Lexeme)
	assert.Equal(t, TokenAliasGroup, tokens[1].Type)
	assert.Equal(t, "A", tokens[1].Lexeme)
}

func TestScanTokensDecimalVsInteger(t *testing.T) {
	tokens := NewScanner("12.50 7").ScanTokens()
	require.Len(t, tokens, 3)
	assert.Equal(t, TokenDecimal, tokens[0].Type)
	assert.Equal(t, "12.50", tokens[0].Lexeme)
	assert.Equal(t, TokenInteger, tokens[1].Type)
	assert.Equal(t, "7", tokens[1].Lexeme)
}

func TestScanTokensQuotedTextWithDoubledQuote(t *testing.T) {
	tokens := NewScanner(`"SAY ""HELLO"""`).ScanTokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, TokenString, tokens[0].Type)
	assert.Equal(t, `SAY "HELLO"`, tokens[0].Lexeme)
}

func TestScanTokensUnterminatedStringPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewScanner(`"unterminated`).ScanTokens()
	})
}

func TestScanTokensCaseNormalization(t *testing.T) {
	tokens := NewScanner("read-item a .").ScanTokens()
	assert.Equal(t, "READ-ITEM", tokens[0].Lexeme)
	assert.Equal(t, "A", tokens[1].Lexeme)
}

func TestScanTokensFullOperation(t *testing.T) {
	src := `(0)  INPUT CUSTOMER-ORDERS FILE-A PRODUCT-CATALOG FILE-B ;
         OUTPUT INVOICE-OUTPUT FILE-C ;
         HSP D .`
	tokens := NewScanner(src).ScanTokens()
	assert.Equal(t, TokenOpHeader, tokens[0].Type)
	last := tokens[len(tokens)-1]
	assert.Equal(t, TokenEOF, last.Type)
	assert.Equal(t, TokenPeriod, tokens[len(tokens)-2].Type)
}
