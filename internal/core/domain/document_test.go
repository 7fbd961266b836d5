package domain

import (
	"encoding/json"
	"testing"
)

func TestNewChunk(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"plain", "Alpha beta gamma", "Alpha beta gamma", true},
		{"trims surrounding whitespace", "\n  Alpha beta \t\n", "Alpha beta", true},
		{"empty", "", "", false},
		{"whitespace only", " \n\t ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, ok := NewChunk("a.txt", tt.content)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if chunk.Content != tt.want {
				t.Errorf("expected content %q, got %q", tt.want, chunk.Content)
			}
			if ok && chunk.Source != "a.txt" {
				t.Errorf("expected source a.txt, got %s", chunk.Source)
			}
		})
	}
}

func TestDocumentHit_JSON(t *testing.T) {
	hit := DocumentHit{Source: "docs/a.txt", Content: "Alpha", Distance: 0.25}

	data, err := json.Marshal(hit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"source":"docs/a.txt","content":"Alpha","distance":0.25}`
	if string(data) != expected {
		t.Errorf("expected %s, got %s", expected, data)
	}
}

func TestIngestResult_Rebuilt(t *testing.T) {
	empty := &IngestResult{}
	if empty.Rebuilt() {
		t.Error("expected no rebuild for zero chunks")
	}

	full := &IngestResult{IndexedChunks: 2}
	if !full.Rebuilt() {
		t.Error("expected rebuild for indexed chunks")
	}
}
