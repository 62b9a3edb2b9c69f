package export

// Service renders report downloads.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Export renders the report for the requested format.
func (s *Service) Export(req Request) (*Result, error) {
	html, err := RenderReportHTML(req.Title, req.Party, req.Markdown)
	if err != nil {
		return nil, err
	}

	switch req.Format {
	case FormatPDF:
		return renderPDF(html, req.Title)
	case FormatDOCX:
		return renderDOCX(html, req.Title)
	default:
		return nil, ErrUnsupportedFormat
	}
}
