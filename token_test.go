package twee

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "<<", TokCommandStart.String())
	assert.Equal(t, "eof", TokEOF.String())
}

func TestReservedWords_KeysAreLowerCase(t *testing.T) {
	// reservedWords is consulted after lower-casing the scanned identifier
	// (tokenizer.go scanIdentifier), so its keys must already be lower-case.
	for word := range reservedWords {
		assert.Equal(t, strings.ToLower(word), word)
	}
}

func TestReservedWords_CoversAllSixKeywords(t *testing.T) {
	want := []string{"true", "false", "or", "and", "not", "is"}
	for _, w := range want {
		_, ok := reservedWords[w]
		assert.True(t, ok, "missing reserved word %q", w)
	}
}
