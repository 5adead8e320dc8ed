package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEqual(t, "unknown", tok.String(), "token %d missing a string representation", tok)
	}
}

func TestLookupKeyword(t *testing.T) {
	for lit, want := range Keywords {
		require.Equal(t, want, LookupKeyword(lit))
	}
}

func TestLookupKeywordNotAKeyword(t *testing.T) {
	require.Equal(t, IDENT, LookupKeyword("不是关键字"))
}

func TestKeywordsRoundTripThroughNames(t *testing.T) {
	// Every keyword token's canonical lexeme (as given in names) must itself
	// resolve back to the same token through LookupKeyword.
	for lit, tok := range Keywords {
		require.Equal(t, lit, names[tok])
	}
}
