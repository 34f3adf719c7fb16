package export

import (
	"bytes"
	"fmt"
	"html/template"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
	body { font-family: Georgia, 'Times New Roman', serif; color: #1b1b1b; margin: 0; padding: 0; }
	h1 { font-size: 22px; border-bottom: 2px solid #1a4480; padding-bottom: 8px; }
	h2 { font-size: 16px; color: #1a4480; margin-top: 28px; }
	.meta { color: #555; font-size: 13px; margin-bottom: 24px; }
	table { width: 100%; border-collapse: collapse; font-size: 13px; }
	th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; vertical-align: top; }
	th { background: #f4f6f8; }
	.status-approved { color: #2e7d32; font-weight: bold; }
	.status-rejected { color: #c62828; font-weight: bold; }
	.status-pending { color: #8a6d3b; }
	.observations { white-space: pre-wrap; background: #fafafa; border: 1px solid #eee; padding: 10px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
	Version {{.Version}} &middot; Reviewed by {{.ReviewerName}} on {{.ReviewDate}}
</div>

{{if .Summary}}<h2>Summary</h2><p>{{.Summary}}</p>{{end}}
{{if .Description}}<h2>Description</h2><p>{{.Description}}</p>{{end}}

{{if .Comments}}
<h2>Review Comments</h2>
<table>
	<tr><th>Author</th><th>Comment</th><th>Date</th></tr>
	{{range .Comments}}<tr><td>{{.Author}}</td><td>{{.Text}}</td><td>{{.Date}}</td></tr>{{end}}
</table>
{{end}}

{{if .Risks}}
<h2>Identified Risks</h2>
<table>
	<tr><th>Risk</th><th>Legal Suggestion</th><th>Final Definition</th><th>Category</th></tr>
	{{range .Risks}}<tr><td>{{.Text}}</td><td>{{.Suggestion}}</td><td>{{.Definition}}</td><td>{{.Category}}</td></tr>{{end}}
</table>
{{end}}

{{if .Observations}}
<h2>Observations</h2>
<div class="observations">{{.Observations}}</div>
{{end}}

{{if .Approvals}}
<h2>Approval History</h2>
<table>
	<tr><th>Approver</th><th>Status</th><th>Comments</th><th>Decided</th></tr>
	{{range .Approvals}}<tr><td>{{.Name}}</td><td class="status-{{.Status}}">{{.Status}}</td><td>{{.Comments}}</td><td>{{.DecidedAt}}</td></tr>{{end}}
</table>
{{end}}
</body>
</html>`))

func renderReportHTML(report Report) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("render report template: %w", err)
	}
	return buf.String(), nil
}
