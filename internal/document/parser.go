// Package document turns uploaded resume files into plain text.
package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxUploadSize is the hard limit for resume uploads.
const MaxUploadSize int64 = 5 * 1024 * 1024

var (
	ErrFileTooLarge    = errors.New("file exceeds the 5 MB limit")
	ErrUnsupportedType = errors.New("unsupported file type, upload a PDF or DOCX")
	ErrNoText          = errors.New("no text content found in document")
)

// ValidateUpload rejects files that are too large or not PDF/DOCX before any
// bytes are read.
func ValidateUpload(filename string, size int64) error {
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return nil
	}
	return ErrUnsupportedType
}

type Parser interface {
	ExtractText(path string) (string, error)
}

type parser struct{}

func NewParser() Parser {
	return &parser{}
}

func (p *parser) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", path)
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPDF(path)
	case ".docx":
		text, err = extractDOCX(path)
	default:
		return "", ErrUnsupportedType
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX reads the text runs of word/document.xml, one line per paragraph.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer rc.Close()
		return readWordXML(rc)
	}

	return "", fmt.Errorf("failed to open DOCX: word/document.xml missing")
}

func readWordXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
