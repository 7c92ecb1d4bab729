package corpus

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxLoader extracts the paragraph text of .docx files.
type DocxLoader struct{}

func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

func (l *DocxLoader) Load(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("invalid docx: word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return parseDocxXML(rc)
}

// parseDocxXML streams document.xml and emits the text of each <w:p>
// paragraph on its own line.
func parseDocxXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var result, para strings.Builder
	inParagraph, inText := false, false

	for {
		t, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch se := t.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "p":
				inParagraph = true
				para.Reset()
			case "t":
				inText = true
			}
		case xml.CharData:
			if inParagraph && inText {
				para.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph && strings.TrimSpace(para.String()) != "" {
					result.WriteString(para.String())
					result.WriteString("\n")
				}
				inParagraph = false
			}
		}
	}
	return result.String(), nil
}
