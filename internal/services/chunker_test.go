package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextIsOneChunk(t *testing.T) {
	chunks := NewTextChunker(100, 20).Chunk("Jane Doe\n\nSkills: Go, Rust")
	assert.Equal(t, []string{"Jane Doe\n\nSkills: Go, Rust"}, chunks)
}

func TestChunk_EmptyText(t *testing.T) {
	assert.Empty(t, NewTextChunker(100, 20).Chunk("  \n\n  "))
}

func TestChunk_RespectsSizeAndKeepsAllWords(t *testing.T) {
	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, "Built distributed systems in Go. Led a team of five. Shipped features weekly!")
	}
	text := strings.Join(paras, "\n\n")

	chunker := NewTextChunker(120, 30)
	chunks := chunker.Chunk(text)
	require.Greater(t, len(chunks), 1)

	joined := strings.Join(chunks, " ")
	for _, word := range []string{"distributed", "team", "weekly"} {
		assert.Contains(t, joined, word)
	}
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120)
	}
}

func TestChunk_LongSentenceIsCut(t *testing.T) {
	long := strings.Repeat("é", 250)
	chunks := NewTextChunker(100, 10).Chunk(long)
	require.GreaterOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
	}
}

func TestNewTextChunker_Defaults(t *testing.T) {
	c := NewTextChunker(0, -5)
	assert.Equal(t, defaultChunkSize, c.size)
	assert.Equal(t, 0, c.overlap)

	c = NewTextChunker(100, 150)
	assert.Equal(t, 25, c.overlap)
}
