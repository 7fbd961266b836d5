package postprocessors

import (
	"sort"
	"sync"

	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline implements PostProcessorPipeline.
// It chains multiple post-processors in order, starting with a chunker.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.PostProcessor
	sorted     bool
}

// NewPipeline creates a new post-processor pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]driven.PostProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order.
// Input is the extracted document text; output is the chunks to embed.
func (p *Pipeline) Process(content string) []driven.Chunk {
	processors := p.ordered()

	chunks := []driven.Chunk{
		{
			Content:     content,
			Position:    0,
			StartOffset: 0,
			EndOffset:   len(content),
		},
	}

	for _, proc := range processors {
		chunks = proc.Process(chunks)
	}

	return chunks
}

// ordered returns a sorted snapshot of the processors
func (p *Pipeline) ordered() []driven.PostProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}

	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	return processors
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	processors := p.ordered()

	names := make([]string, len(processors))
	for i, proc := range processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline splits text into trimmed, non-empty paragraphs.
// With dedupe set, repeated paragraphs within a document are dropped.
func DefaultPipeline(dedupe bool) *Pipeline {
	p := NewPipeline()
	p.Add(NewParagraphChunker())
	p.Add(NewTrimmer())
	if dedupe {
		p.Add(NewDeduplicator())
	}
	return p
}
