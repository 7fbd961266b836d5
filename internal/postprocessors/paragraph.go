package postprocessors

import (
	"strings"

	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// ParagraphSeparator divides paragraphs in extracted text
const ParagraphSeparator = "\n\n"

// ParagraphChunker splits content on blank lines.
// Line endings are normalised to "\n" first so CRLF text splits the same
// way as LF text. This is the first processor in the pipeline (Order = 0).
type ParagraphChunker struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*ParagraphChunker)(nil)

// NewParagraphChunker creates a new paragraph chunker.
func NewParagraphChunker() *ParagraphChunker {
	return &ParagraphChunker{}
}

// Process splits every input chunk into paragraphs.
// Offsets refer to the line-ending-normalised text.
func (c *ParagraphChunker) Process(chunks []driven.Chunk) []driven.Chunk {
	var result []driven.Chunk
	position := 0

	for _, chunk := range chunks {
		content := normaliseLineEndings(chunk.Content)
		offset := chunk.StartOffset

		for _, part := range strings.Split(content, ParagraphSeparator) {
			result = append(result, driven.Chunk{
				Content:     part,
				Position:    position,
				StartOffset: offset,
				EndOffset:   offset + len(part),
			})
			position++
			offset += len(part) + len(ParagraphSeparator)
		}
	}

	return result
}

// Name returns the processor name.
func (c *ParagraphChunker) Name() string {
	return "paragraph-chunker"
}

// Order returns 0 - chunker should be first.
func (c *ParagraphChunker) Order() int {
	return 0
}

func normaliseLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Trimmer strips surrounding whitespace and drops empty chunks.
// Positions are renumbered so they stay contiguous.
type Trimmer struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*Trimmer)(nil)

// NewTrimmer creates a new trimmer.
func NewTrimmer() *Trimmer {
	return &Trimmer{}
}

// Process trims chunks and removes the empty ones.
func (t *Trimmer) Process(chunks []driven.Chunk) []driven.Chunk {
	result := make([]driven.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk.Content)
		if trimmed == "" {
			continue
		}

		lead := strings.Index(chunk.Content, trimmed)
		newChunk := chunk
		newChunk.Content = trimmed
		newChunk.Position = len(result)
		newChunk.StartOffset = chunk.StartOffset + lead
		newChunk.EndOffset = newChunk.StartOffset + len(trimmed)
		result = append(result, newChunk)
	}

	return result
}

// Name returns the processor name.
func (t *Trimmer) Name() string {
	return "trimmer"
}

// Order returns 5 - runs right after the chunker.
func (t *Trimmer) Order() int {
	return 5
}
