package corpus

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFLoader handles extraction of text from PDF files.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Load(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
		}
		buf.WriteString(text)
		// Pages are glued with a newline so that words never join across them.
		buf.WriteString("\n")
	}
	return buf.String(), nil
}
