package lexer_test

import (
	"testing"

	"github.com/mna/hanyu/lang/lexer"
	"github.com/mna/hanyu/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]token.Token, []lexer.Value, error) {
	t.Helper()
	var el lexer.ErrorList
	l := lexer.NewLexer([]rune(src), el.Add)

	var toks []token.Token
	var vals []lexer.Value
	for {
		tok, val := l.Scan()
		toks = append(toks, tok)
		vals = append(vals, val)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, el.Err()
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, vals, err := scanAll(t, "变量 答案 = 真；")
	require.NoError(t, err)
	require.Equal(t, []token.Token{token.VAR, token.IDENT, token.EQ, token.TRUE, token.SEMI, token.EOF}, toks)
	require.Equal(t, "答案", vals[1].Lexeme)
}

func TestScanNumber(t *testing.T) {
	toks, vals, err := scanAll(t, "3.14")
	require.NoError(t, err)
	require.Equal(t, []token.Token{token.NUMBER, token.EOF}, toks)
	require.InDelta(t, 3.14, vals[0].Number, 1e-9)
}

func TestScanString(t *testing.T) {
	toks, vals, err := scanAll(t, `"你好"`)
	require.NoError(t, err)
	require.Equal(t, []token.Token{token.STRING, token.EOF}, toks)
	require.Equal(t, "你好", vals[0].String)
}

func TestScanMultilineStringAdvancesLine(t *testing.T) {
	toks, vals, err := scanAll(t, "\"a\nb\" 变量")
	require.NoError(t, err)
	require.Equal(t, []token.Token{token.STRING, token.VAR, token.EOF}, toks)
	require.Equal(t, 2, vals[1].Line)
}

func TestScanUnterminatedString(t *testing.T) {
	_, _, err := scanAll(t, `"never closed`)
	require.Error(t, err)
}

func TestScanLineComment(t *testing.T) {
	toks, _, err := scanAll(t, "变量 // 这是注释\n真")
	require.NoError(t, err)
	require.Equal(t, []token.Token{token.VAR, token.TRUE, token.EOF}, toks)
}

func TestScanCompoundOperators(t *testing.T) {
	toks, _, err := scanAll(t, "i++ i-- i+=1 i-=1 不等 等 大等 小等")
	require.NoError(t, err)
	require.Equal(t, []token.Token{
		token.IDENT, token.PLUS_PLUS,
		token.IDENT, token.MINUS_MINUS,
		token.IDENT, token.PLUS_EQ, token.NUMBER,
		token.IDENT, token.MINUS_EQ, token.NUMBER,
		token.BANG_EQ, token.EQ_EQ, token.GREATER_EQ, token.LESS_EQ,
		token.EOF,
	}, toks)
}

func TestScanIllegalCharacter(t *testing.T) {
	_, _, err := scanAll(t, "变量 @")
	require.Error(t, err)
}
