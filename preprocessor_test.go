package twee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	t.Run("splits passages and tracks start lines", func(t *testing.T) {
		src := "junk before\n::Start\nHello<<pause>>\n::Next\nWorld\n"
		passages := Preprocess(src)
		require.Len(t, passages, 2)

		assert.Equal(t, "Start", passages[0].Name)
		assert.Equal(t, "Hello<<pause>>", passages[0].Body)
		assert.Equal(t, 3, passages[0].StartLine)

		assert.Equal(t, "Next", passages[1].Name)
		assert.Equal(t, "World", passages[1].Body)
		assert.Equal(t, 5, passages[1].StartLine)
	})

	t.Run("trims trailing blank lines from body", func(t *testing.T) {
		src := "::Start\nHello\n\n\n"
		passages := Preprocess(src)
		require.Len(t, passages, 1)
		assert.Equal(t, "Hello", passages[0].Body)
	})

	t.Run("normalises CRLF and strips a BOM", func(t *testing.T) {
		src := "\xef\xbb\xbf::Start\r\nHello\r\n"
		passages := Preprocess(src)
		require.Len(t, passages, 1)
		assert.Equal(t, "Start", passages[0].Name)
		assert.Equal(t, "Hello", passages[0].Body)
	})

	t.Run("empty passage body", func(t *testing.T) {
		src := "::Start\n::Next\nBody\n"
		passages := Preprocess(src)
		require.Len(t, passages, 2)
		assert.Equal(t, "", passages[0].Body)
	})

	t.Run("no passages before first :: line", func(t *testing.T) {
		passages := Preprocess("nothing here at all")
		assert.Empty(t, passages)
	})
}
