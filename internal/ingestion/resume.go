package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Document formats accepted for resume upload.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatText = "text"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are not PDF, DOCX or plain text.
	ErrUnsupportedFormat = errors.New("unsupported file type: only PDF, DOCX and plain text are accepted")
	// ErrEmptyDocument is returned when no text could be extracted.
	ErrEmptyDocument = errors.New("could not extract text from file; it may be empty, scanned or corrupted")
)

// DetectFormat picks a document format from the declared content type, falling
// back to the file extension when the content type is missing or generic.
func DetectFormat(filename, contentType string) (string, error) {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case mimePDF:
			return FormatPDF, nil
		case mimeDOCX:
			return FormatDOCX, nil
		case mimeText, "text/markdown":
			return FormatText, nil
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".md":
		return FormatText, nil
	}
	return "", ErrUnsupportedFormat
}

// ExtractResumeText returns the cleaned text of an uploaded resume.
func ExtractResumeText(filename, contentType string, data []byte) (string, error) {
	format, err := DetectFormat(filename, contentType)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = extractPDFText(data)
	case FormatDOCX:
		text, err = extractDocxText(data)
	default:
		text = string(data)
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText pulls run text out of WordprocessingML, one line per paragraph.
func documentXMLText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read docx body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
