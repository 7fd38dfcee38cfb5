package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits resume text into overlapping passages for embedding.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

type chunkBuilder struct {
	chunks  []string
	current strings.Builder
	max     int
	overlap int
}

// add appends piece using sep, flushing first when piece would overflow the
// current chunk.
func (b *chunkBuilder) add(piece, sep string) {
	if b.current.Len() > 0 && utf8.RuneCountInString(b.current.String())+utf8.RuneCountInString(piece)+len(sep) > b.max {
		b.flush()
	}
	if b.current.Len() > 0 {
		b.current.WriteString(sep)
	}
	b.current.WriteString(piece)
}

// flush closes the current chunk and seeds the next one with its tail.
func (b *chunkBuilder) flush() {
	prev := b.current.String()
	b.chunks = append(b.chunks, prev)
	b.current.Reset()
	b.current.WriteString(lastRunes(prev, b.overlap))
}

// ChunkText implements TextChunker. Paragraphs are kept whole when they fit;
// longer ones are split on sentence boundaries.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	b := &chunkBuilder{max: maxChunkSize, overlap: overlap}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			b.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			b.add(sentence, " ")
		}
	}

	if b.current.Len() > 0 {
		b.chunks = append(b.chunks, b.current.String())
	}

	return b.chunks
}

func splitIntoSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var sentences []string
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
