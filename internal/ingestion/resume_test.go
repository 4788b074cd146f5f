package ingestion

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        string
		wantErr     bool
	}{
		{"pdf by content type", "resume", "application/pdf", FormatPDF, false},
		{"docx by content type", "resume", mimeDOCX, FormatDOCX, false},
		{"text with charset", "resume", "text/plain; charset=utf-8", FormatText, false},
		{"pdf by extension", "Resume.PDF", "application/octet-stream", FormatPDF, false},
		{"docx by extension", "cv.docx", "", FormatDOCX, false},
		{"markdown by extension", "cv.md", "", FormatText, false},
		{"legacy doc rejected", "cv.doc", "application/msword", "", true},
		{"image rejected", "scan.png", "image/png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractResumeText_PlainText(t *testing.T) {
	text, err := ExtractResumeText("cv.txt", "text/plain", []byte("Jane Doe\r\n\r\n\r\n\r\nSkills:   Go,  SQL"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nSkills: Go, SQL", text)
}

func TestExtractResumeText_EmptyDocument(t *testing.T) {
	_, err := ExtractResumeText("cv.txt", "text/plain", []byte("   \n\t "))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExtractResumeText_CorruptPDF(t *testing.T) {
	_, err := ExtractResumeText("cv.pdf", "application/pdf", []byte("not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestExtractResumeText_Docx(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t xml:space="preserve">Skills: </w:t></w:r><w:r><w:t>Go, SQL</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	text, err := ExtractResumeText("cv.docx", mimeDOCX, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills: Go, SQL", text)
}

func TestDocumentXMLText(t *testing.T) {
	xmlBody := `<w:document xmlns:w="w"><w:body>` +
		`<w:p><w:r><w:t>A</w:t><w:tab/><w:t>B</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>C</w:t><w:br/><w:t>D</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading"/></w:pPr></w:p>` +
		`</w:body></w:document>`

	text, err := documentXMLText(xmlBody)
	require.NoError(t, err)
	assert.Equal(t, "A\tB\nC\nD\n\n", text)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
