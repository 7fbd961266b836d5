package normalisers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

var _ driven.Normaliser = (*PDFNormaliser)(nil)

// PDFNormaliser extracts the text layer of a PDF.
// Page texts are concatenated in page order without a separator.
type PDFNormaliser struct{}

// NewPDFNormaliser creates a PDF reader.
func NewPDFNormaliser() *PDFNormaliser {
	return &PDFNormaliser{}
}

func (n *PDFNormaliser) Normalise(content []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: corrupt pdf: %v", domain.ErrUnsupportedFormat, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

func (n *PDFNormaliser) SupportedTypes() []string {
	return []string{".pdf"}
}

func (n *PDFNormaliser) Priority() int {
	return 50
}
