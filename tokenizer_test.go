package twee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizer_Narrative(t *testing.T) {
	tok := NewTokenizer("Start", "Hi<<pause>>[img[foo]]* not a selection", 1)

	assert.Equal(t, TokText, tok.Next().Kind)
	start := tok.Next()
	assert.Equal(t, TokCommandStart, start.Kind)

	tok.CommandMode = true
	ident := tok.Next()
	assert.Equal(t, TokIdentifier, ident.Kind)
	assert.Equal(t, "pause", ident.Value)
	end := tok.Next()
	assert.Equal(t, TokCommandEnd, end.Kind)

	tok.CommandMode = false
	open := tok.Next()
	assert.Equal(t, TokSpecialOpen, open.Kind)
}

func TestTokenizer_AsteriskOnlyAtColumnOne(t *testing.T) {
	tok := NewTokenizer("Start", "x * y\n* [[A|B]]", 1)
	text := tok.Next()
	require.Equal(t, TokText, text.Kind)
	assert.Contains(t, text.Value, "*")

	// After the newline, the asterisk starts a new line and is its own
	// token.
	star := tok.Next()
	assert.Equal(t, TokAsterisk, star.Kind)
}

func TestTokenizer_ReservedWordsCaseFolded(t *testing.T) {
	tok := NewTokenizer("Start", "TRUE or False AND Not Is", 1)
	tok.CommandMode = true

	kinds := []TokenKind{}
	for {
		tk := tok.Next()
		if tk.Kind == TokEOF {
			break
		}
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []TokenKind{TokTrue, TokOr, TokFalse, TokAnd, TokNot, TokIs}, kinds)
}

func TestTokenizer_MaximalMunchOperators(t *testing.T) {
	tok := NewTokenizer("Start", "<= >= <> == != < >", 1)
	tok.CommandMode = true

	want := []TokenKind{
		TokLesserEqual, TokGreaterEqual, TokNotEqualWeird,
		TokEquals, TokNotEqual, TokLesserThan, TokGreaterThan,
	}
	for _, w := range want {
		tk := tok.Next()
		assert.Equal(t, w, tk.Kind)
	}
}

func TestTokenizer_StringEscapesAreTransparent(t *testing.T) {
	tok := NewTokenizer("Start", `"a\"b"`, 1)
	tok.CommandMode = true
	tk := tok.Next()
	require.Equal(t, TokString, tk.Kind)
	assert.Equal(t, `"a\"b"`, tk.Value)
}

func TestTokenizer_Peek_DoesNotConsume(t *testing.T) {
	tok := NewTokenizer("Start", "abc def", 1)
	tok.CommandMode = true

	peeked := tok.Peek(2)
	require.Len(t, peeked, 2)
	assert.Equal(t, "abc", peeked[0].Value)
	assert.Equal(t, "def", peeked[1].Value)

	// Nothing was consumed: Next() reproduces the same first token.
	first := tok.Next()
	assert.Equal(t, "abc", first.Value)
}
