// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Service extracts text best-effort: unreadable files or pages become empty
// strings, never hard failures. Output is truncated to maxChars runes.
type Service struct {
	maxChars int
}

func New(maxChars int) *Service {
	return &Service{maxChars: maxChars}
}

// Text returns the textual content of an uploaded file, chosen by extension
// with a content sniff as fallback, truncated to the configured budget.
func (s *Service) Text(filename string, data []byte) string {
	var text string
	switch kind(filename, data) {
	case "pdf":
		text = pdfText(data)
	case "docx":
		text = docxText(data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}
	return s.truncate(text)
}

func (s *Service) truncate(text string) string {
	if s.maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= s.maxChars {
		return text
	}
	return string(runes[:s.maxChars])
}

func kind(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	case ".txt", ".md", ".text":
		return "txt"
	}
	mime := mimetype.Detect(data)
	switch {
	case mime.Is("application/pdf"):
		return "pdf"
	case mime.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return "docx"
	}
	return "txt"
}

// pdfText joins the plain text of every readable page. Pages that fail to
// decode contribute nothing. The parser panics on some malformed files, so
// the whole pass is guarded.
func pdfText(data []byte) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// docxText pulls paragraph text out of word/document.xml. A DOCX file is a
// zip archive; w:t elements carry the runs, w:p closes a paragraph.
func docxText(data []byte) string {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return ""
		}
		defer rc.Close()
		return documentXMLText(rc)
	}
	return ""
}

func documentXMLText(r io.Reader) string {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	var inText bool
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch tok := token.(type) {
		case xml.StartElement:
			if tok.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(tok)
			}
		}
	}
	return b.String()
}
