package postprocessors

import (
	"testing"

	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

func contents(chunks []driven.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if len(p.processors) != 0 {
		t.Errorf("expected empty processors, got %d", len(p.processors))
	}
}

func TestPipeline_ListIsOrdered(t *testing.T) {
	p := NewPipeline()
	p.Add(NewDeduplicator())
	p.Add(NewTrimmer())
	p.Add(NewParagraphChunker())

	names := p.List()
	want := []string{"paragraph-chunker", "trimmer", "deduplicator"}
	if !equalStrings(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestDefaultPipeline(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"two paragraphs", "Alpha beta gamma\n\nDelta epsilon zeta", []string{"Alpha beta gamma", "Delta epsilon zeta"}},
		{"crlf", "Alpha\r\n\r\nBeta\r\nstill beta", []string{"Alpha", "Beta\nstill beta"}},
		{"blank paragraphs dropped", "\n\n  \n\nAlpha\n\n\n\n\n\nBeta\n\n", []string{"Alpha", "Beta"}},
		{"single newline kept", "line one\nline two", []string{"line one\nline two"}},
		{"surrounding whitespace trimmed", "   Alpha  \n\n\tBeta\t", []string{"Alpha", "Beta"}},
		{"empty", "", []string{}},
		{"whitespace only", " \r\n \t ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := DefaultPipeline(false).Process(tt.content)
			if got := contents(chunks); !equalStrings(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			for i, c := range chunks {
				if c.Position != i {
					t.Errorf("chunk %d has position %d", i, c.Position)
				}
			}
		})
	}
}

func TestDefaultPipeline_KeepsDuplicatesUnlessAsked(t *testing.T) {
	content := "Same paragraph\n\nsame PARAGRAPH\n\nOther"

	kept := DefaultPipeline(false).Process(content)
	if len(kept) != 3 {
		t.Errorf("expected 3 chunks without dedupe, got %d", len(kept))
	}

	deduped := DefaultPipeline(true).Process(content)
	want := []string{"Same paragraph", "Other"}
	if got := contents(deduped); !equalStrings(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
	if deduped[1].Position != 1 {
		t.Errorf("expected renumbered position 1, got %d", deduped[1].Position)
	}
}

func TestParagraphChunker_Offsets(t *testing.T) {
	text := "ab\n\ncd"
	chunks := NewParagraphChunker().Process([]driven.Chunk{{Content: text, EndOffset: len(text)}})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].StartOffset != 4 || chunks[1].EndOffset != 6 {
		t.Errorf("unexpected offsets %d-%d", chunks[1].StartOffset, chunks[1].EndOffset)
	}
	if text[chunks[1].StartOffset:chunks[1].EndOffset] != "cd" {
		t.Errorf("offsets do not address the chunk text")
	}
}

func TestTrimmer_Offsets(t *testing.T) {
	chunks := NewTrimmer().Process([]driven.Chunk{{Content: "  hi ", StartOffset: 10, EndOffset: 15}})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].StartOffset != 12 || chunks[0].EndOffset != 14 {
		t.Errorf("unexpected offsets %d-%d", chunks[0].StartOffset, chunks[0].EndOffset)
	}
}

func TestProcessorOrder(t *testing.T) {
	if NewParagraphChunker().Order() >= NewTrimmer().Order() {
		t.Error("chunker must run before trimmer")
	}
	if NewTrimmer().Order() >= NewDeduplicator().Order() {
		t.Error("trimmer must run before deduplicator")
	}
}
