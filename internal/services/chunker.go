package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// TextChunker splits resume text into overlapping chunks for embedding.
type TextChunker struct {
	size    int
	overlap int
}

// NewTextChunker returns a chunker producing chunks of at most size runes,
// each starting with the last overlap runes of the previous one.
func NewTextChunker(size, overlap int) *TextChunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &TextChunker{size: size, overlap: overlap}
}

// Chunk packs paragraphs into chunks. Paragraphs longer than the chunk size
// are split on sentence boundaries, and sentences that still do not fit are
// cut by rune count.
func (c *TextChunker) Chunk(text string) []string {
	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		if tail := lastRunes(chunk, c.overlap); tail != "" {
			current.WriteString(tail)
		}
	}

	add := func(piece, sep string) {
		if current.Len() > 0 && runeLen(current.String())+runeLen(sep)+runeLen(piece) > c.size {
			flush()
			if runeLen(current.String())+runeLen(sep)+runeLen(piece) > c.size {
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(normalizeNewlines(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if runeLen(para) <= c.size {
			add(para, "\n\n")
			continue
		}
		for _, sentence := range splitSentences(para) {
			for _, piece := range splitRunes(sentence, c.size-c.overlap) {
				add(piece, " ")
			}
		}
	}

	// The pending buffer may hold only the overlap tail of the last chunk.
	if current.Len() > 0 {
		pending := current.String()
		if len(chunks) == 0 || pending != lastRunes(chunks[len(chunks)-1], c.overlap) {
			chunks = append(chunks, pending)
		}
	}

	return chunks
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// splitSentences cuts after '.', '!' and '?' keeping the punctuation.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func splitRunes(s string, n int) []string {
	if n <= 0 || runeLen(s) <= n {
		return []string{s}
	}
	runes := []rune(s)
	var out []string
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
