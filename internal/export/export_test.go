package export

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderReportHTML(t *testing.T) {
	md := "## Executive Summary\nShort and sweet.\n\n- first\n- second"
	html, err := RenderReportHTML("agreement.pdf", "Acme Corp", md)
	if err != nil {
		t.Fatalf("RenderReportHTML failed: %v", err)
	}
	if !strings.Contains(html, "<h2>Executive Summary</h2>") {
		t.Errorf("expected markdown heading converted, got %q", html)
	}
	if !strings.Contains(html, "<li>first</li>") {
		t.Error("expected list items converted")
	}
	if !strings.Contains(html, "Perspective analysis for Acme Corp") {
		t.Error("expected party name in page meta")
	}
	if !strings.Contains(html, "<title>agreement.pdf</title>") {
		t.Error("expected title in page head")
	}
}

func TestRenderReportHTMLEscapesTitle(t *testing.T) {
	html, err := RenderReportHTML(`<script>alert(1)</script>`, "P", "body")
	if err != nil {
		t.Fatalf("RenderReportHTML failed: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("expected title to be escaped")
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	s := NewService()
	_, err := s.Export(Request{Format: "odt", Title: "t", Party: "p", Markdown: "m"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Agreement 2024", "My-Agreement-2024"},
		{"weird/../chars!!", "weirdchars"},
		{"", "report"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	got := percentEncodeForDataURL("a b<c>")
	if got != "a%20b%3Cc%3E" {
		t.Errorf("unexpected encoding: %q", got)
	}
}
