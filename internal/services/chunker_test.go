package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	chunker := NewTextChunker()

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, chunker.ChunkText("  \n\n ", 100, 10))
	})

	t.Run("fits in one chunk", func(t *testing.T) {
		chunks := chunker.ChunkText("Go developer.\n\nFive years of experience.", 100, 10)
		require.Len(t, chunks, 1)
		assert.Equal(t, "Go developer.\n\nFive years of experience.", chunks[0])
	})

	t.Run("paragraphs overlap", func(t *testing.T) {
		para := strings.Repeat("x", 39) + "."
		text := strings.Join([]string{para, para, para, para, para}, "\n\n")

		chunks := chunker.ChunkText(text, 100, 10)
		require.Greater(t, len(chunks), 1)
		for i, c := range chunks {
			assert.LessOrEqual(t, len(c), 100)
			if i > 0 {
				assert.True(t, strings.HasPrefix(c, lastNRunes(chunks[i-1], 10)))
			}
		}
	})

	t.Run("long paragraph splits on sentences", func(t *testing.T) {
		text := strings.Repeat("Built distributed systems in Go. ", 20)
		chunks := chunker.ChunkText(text, 120, 0)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 120)
			assert.Contains(t, c, "Built distributed systems in Go")
		}
	})
}

func TestLastNRunes(t *testing.T) {
	assert.Equal(t, "", lastNRunes("abc", 0))
	assert.Equal(t, "abc", lastNRunes("abc", 5))
	assert.Equal(t, "éü", lastNRunes("aéü", 2))
	assert.True(t, utf8.ValidString(lastNRunes("日本語テキスト", 3)))
}

func TestCleanText(t *testing.T) {
	in := "  Ada Lovelace  \n\n\n   \nEngineer\n  Go, SQL  \n\n\n\nLondon "
	assert.Equal(t, "Ada Lovelace\n\nEngineer\nGo, SQL\n\nLondon", CleanText(in))
}
