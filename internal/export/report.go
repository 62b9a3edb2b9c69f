package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var reportTemplate = template.Must(template.New("report").Parse(reportPage))

const reportPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, "Times New Roman", serif; max-width: 46em; margin: 2em auto; color: #1a1a1a; line-height: 1.5; }
  h1 { font-size: 1.6em; border-bottom: 2px solid #1a1a1a; padding-bottom: 0.3em; }
  h2 { font-size: 1.2em; margin-top: 1.6em; }
  .meta { color: #555; font-size: 0.9em; margin-bottom: 2em; }
  ul { padding-left: 1.4em; }
  @page { margin: 2cm; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Perspective analysis for {{.Party}}. Automated analysis, not legal advice.</div>
{{.Body}}
</body>
</html>`

type reportTemplateData struct {
	Title string
	Party string
	Body  template.HTML
}

// RenderReportHTML converts the stored markdown report into a printable HTML
// page.
func RenderReportHTML(title, party, reportMarkdown string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(reportMarkdown), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	err := reportTemplate.Execute(&page, reportTemplateData{
		Title: title,
		Party: party,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("render report page: %w", err)
	}
	return page.String(), nil
}

// sanitizeFilename creates a safe filename stem from a title.
func sanitizeFilename(title string) string {
	result := ""
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result += string(r)
		case r == ' ':
			result += "-"
		case r == '-', r == '_':
			result += string(r)
		}
	}
	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "report"
	}
	return result
}
