// Package corpus reads documents from disk as plain text so they can be turned
// into word-frequency vectors.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sanonone/kektorcluster/pkg/textanalyzer"
)

// Loader defines the contract for reading a file and extracting its text content.
type Loader interface {
	// Load reads the file at the given path and returns its text content.
	Load(path string) (string, error)
}

// TextLoader reads plain text files (txt, md, html, ...). Markup is left in
// place; the tokenizer strips it.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Load(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// AutoLoader selects the loader by file extension.
type AutoLoader struct {
	textLoader Loader
	pdfLoader  Loader
	docxLoader Loader
}

func NewAutoLoader() *AutoLoader {
	return &AutoLoader{
		textLoader: NewTextLoader(),
		pdfLoader:  NewPDFLoader(),
		docxLoader: NewDocxLoader(),
	}
}

func (l *AutoLoader) Load(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return l.pdfLoader.Load(path)
	case ".docx":
		return l.docxLoader.Load(path)
	default:
		return l.textLoader.Load(path)
	}
}

// LoadDir loads every regular, non-hidden file of dir (not recursively) in
// name order. Each document is named after its file without the extension.
func LoadDir(dir string, loader Loader) ([]textanalyzer.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []textanalyzer.Document
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		text, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		docs = append(docs, textanalyzer.Document{
			Name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Text: text,
		})
	}
	return docs, nil
}
