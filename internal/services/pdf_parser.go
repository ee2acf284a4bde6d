package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ResumeTextExtractor pulls plain text out of an uploaded resume.
type ResumeTextExtractor interface {
	ExtractText(data []byte, name string) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() ResumeTextExtractor {
	return &pdfParserService{}
}

// ExtractText implements ResumeTextExtractor. Only PDF is readable; Word
// files return ErrUnsupportedFile.
func (p *pdfParserService) ExtractText(data []byte, name string) (string, error) {
	if ResumeMIMEType(name) != "application/pdf" {
		return "", fmt.Errorf("%w: text extraction needs a PDF", ErrUnsupportedFile)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable page, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

// CleanText trims every line and drops blank ones, keeping paragraph breaks
// as single blank lines.
func CleanText(text string) string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
