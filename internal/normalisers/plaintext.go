package normalisers

import (
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

var (
	_ driven.Normaliser = (*PlaintextNormaliser)(nil)
	_ driven.Normaliser = (*MarkdownNormaliser)(nil)
)

// PlaintextNormaliser passes UTF-8 text through unchanged.
type PlaintextNormaliser struct{}

// NewPlaintextNormaliser creates a plain text reader.
func NewPlaintextNormaliser() *PlaintextNormaliser {
	return &PlaintextNormaliser{}
}

func (n *PlaintextNormaliser) Normalise(content []byte) (string, error) {
	return decodeText(content)
}

func (n *PlaintextNormaliser) SupportedTypes() []string {
	return []string{".txt", ".text"}
}

func (n *PlaintextNormaliser) Priority() int {
	return 10
}

// MarkdownNormaliser reads Markdown as text. Markup is kept; headings and
// lists still read naturally once embedded.
type MarkdownNormaliser struct{}

// NewMarkdownNormaliser creates a Markdown reader.
func NewMarkdownNormaliser() *MarkdownNormaliser {
	return &MarkdownNormaliser{}
}

func (n *MarkdownNormaliser) Normalise(content []byte) (string, error) {
	return decodeText(content)
}

func (n *MarkdownNormaliser) SupportedTypes() []string {
	return []string{".md", ".markdown"}
}

func (n *MarkdownNormaliser) Priority() int {
	return 50
}

// decodeText validates UTF-8 and strips a byte order mark.
func decodeText(content []byte) (string, error) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", domain.ErrUnsupportedFormat)
	}
	return string(content), nil
}
