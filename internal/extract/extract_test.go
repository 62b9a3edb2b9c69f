package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTextPlain(t *testing.T) {
	s := New(30000)
	got := s.Text("contract.txt", []byte("This Agreement is between Acme Corp and Globex Inc."))
	if got != "This Agreement is between Acme Corp and Globex Inc." {
		t.Errorf("unexpected text: %q", got)
	}
}

func TestTextTruncationBound(t *testing.T) {
	s := New(100)

	at := s.Text("a.txt", []byte(strings.Repeat("x", 100)))
	if utf8.RuneCountInString(at) != 100 {
		t.Errorf("input at bound must survive unchanged, got %d runes", utf8.RuneCountInString(at))
	}

	over := s.Text("b.txt", []byte(strings.Repeat("x", 5000)))
	if utf8.RuneCountInString(over) != 100 {
		t.Errorf("expected truncation to 100 runes, got %d", utf8.RuneCountInString(over))
	}

	// Multi-byte runes must not be split.
	multi := s.Text("c.txt", []byte(strings.Repeat("é", 200)))
	if !utf8.ValidString(multi) {
		t.Error("truncation produced invalid UTF-8")
	}
	if utf8.RuneCountInString(multi) != 100 {
		t.Errorf("expected 100 runes, got %d", utf8.RuneCountInString(multi))
	}
}

func TestTextInvalidUTF8Dropped(t *testing.T) {
	s := New(30000)
	got := s.Text("weird.txt", []byte{'o', 'k', 0xff, 0xfe, '!'})
	if !utf8.ValidString(got) {
		t.Errorf("expected valid UTF-8, got %q", got)
	}
	if !strings.Contains(got, "ok") || !strings.Contains(got, "!") {
		t.Errorf("expected readable bytes preserved, got %q", got)
	}
}

func makeDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextDocx(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>This Agreement is made between</w:t></w:r></w:p>
    <w:p><w:r><w:t>Acme Corp</w:t></w:r><w:r><w:t> and Globex Inc.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	s := New(30000)
	got := s.Text("contract.docx", makeDocx(t, docXML))
	if !strings.Contains(got, "This Agreement is made between") {
		t.Errorf("missing first paragraph: %q", got)
	}
	if !strings.Contains(got, "Acme Corp and Globex Inc.") {
		t.Errorf("expected runs joined within a paragraph: %q", got)
	}
	if !strings.Contains(got, "between\n") {
		t.Errorf("expected paragraph break after first paragraph: %q", got)
	}
}

func TestTextUnreadableDocxIsEmpty(t *testing.T) {
	s := New(30000)
	if got := s.Text("broken.docx", []byte("not a zip archive")); got != "" {
		t.Errorf("expected empty string for unreadable docx, got %q", got)
	}
}

func TestTextUnreadablePdfIsEmpty(t *testing.T) {
	s := New(30000)
	if got := s.Text("broken.pdf", []byte("%PDF-garbage")); got != "" {
		t.Errorf("expected empty string for unreadable pdf, got %q", got)
	}
}

func TestKindSniffsWithoutExtension(t *testing.T) {
	if k := kind("upload", []byte("plain words")); k != "txt" {
		t.Errorf("expected txt fallback, got %q", k)
	}
	if k := kind("upload", []byte("%PDF-1.4\n%stuff")); k != "pdf" {
		t.Errorf("expected pdf sniff, got %q", k)
	}
}
