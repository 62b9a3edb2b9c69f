// Package export renders a perspective report as a downloadable PDF or DOCX.
package export

import "errors"

// Format is the requested download format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Request describes one report download.
type Request struct {
	Format Format
	// Title is the uploaded file name, used for the output filename.
	Title string
	// Party is the perspective the report was written for.
	Party string
	// Markdown is the stored report, verbatim model output.
	Markdown string
}

// Result contains the rendered download.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrUnsupportedFormat indicates a format other than pdf or docx.
	ErrUnsupportedFormat = errors.New("export format unsupported")
	// ErrPDFDependencyMissing indicates the headless browser is unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates pandoc is unavailable.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
