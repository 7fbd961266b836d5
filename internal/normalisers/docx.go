package normalisers

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

var _ driven.Normaliser = (*DOCXNormaliser)(nil)

const docxBodyPart = "word/document.xml"

// DOCXNormaliser extracts paragraph text from Word documents.
// Each paragraph is followed by a newline, so an empty paragraph in the
// document yields a blank line and therefore a paragraph break.
type DOCXNormaliser struct{}

// NewDOCXNormaliser creates a DOCX reader.
func NewDOCXNormaliser() *DOCXNormaliser {
	return &DOCXNormaliser{}
}

func (n *DOCXNormaliser) Normalise(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", domain.ErrUnsupportedFormat, err)
	}

	for _, file := range reader.File {
		if file.Name != docxBodyPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", docxBodyPart, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", docxBodyPart, err)
		}

		return parseDocumentXML(body)
	}

	return "", fmt.Errorf("%w: missing %s", domain.ErrUnsupportedFormat, docxBodyPart)
}

func (n *DOCXNormaliser) SupportedTypes() []string {
	return []string{".docx"}
}

func (n *DOCXNormaliser) Priority() int {
	return 50
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: malformed document body: %v", domain.ErrUnsupportedFormat, err)
	}

	var b strings.Builder
	for _, para := range doc.Body.Paragraphs {
		for _, r := range para.Runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
