package export

import (
	"strings"
	"testing"
)

func sampleReport() Report {
	return Report{
		Title:        "Master services agreement",
		Summary:      "Annual renewal",
		Description:  "Standard terms with vendor amendments",
		Version:      3,
		ReviewerName: "Ana Souza",
		ReviewDate:   "2026-03-01",
		Comments: []ReportComment{
			{Author: "Ana Souza", Text: "Payment terms look fine", Date: "2026-03-01"},
		},
		Risks: []ReportRisk{
			{Text: "Unlimited liability clause", Suggestion: "Cap at 12 months of fees", Definition: "Accepted", Category: "Liability"},
		},
		Observations: "Renewal due in March",
		Approvals: []ReportApproval{
			{Name: "Carlos Lima", Status: "approved", Comments: "ok", DecidedAt: "2026-03-02 09:00"},
		},
	}
}

func TestRenderReportHTML(t *testing.T) {
	html, err := renderReportHTML(sampleReport())
	if err != nil {
		t.Fatalf("renderReportHTML() error = %v", err)
	}
	for _, want := range []string{
		"Master services agreement",
		"Version 3",
		"Ana Souza",
		"Unlimited liability clause",
		"Cap at 12 months of fees",
		"Liability",
		"Renewal due in March",
		"Carlos Lima",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report HTML should contain %q", want)
		}
	}
}

func TestRenderReportHTMLOmitsEmptySections(t *testing.T) {
	report := Report{Title: "Bare", Version: 1, ReviewerName: "Ana Souza", ReviewDate: "2026-03-01"}
	html, err := renderReportHTML(report)
	if err != nil {
		t.Fatalf("renderReportHTML() error = %v", err)
	}
	for _, section := range []string{"Review Comments", "Identified Risks", "Observations", "Approval History"} {
		if strings.Contains(html, section) {
			t.Errorf("empty report should not render the %q section", section)
		}
	}
}

func TestRenderReportHTMLEscapesInput(t *testing.T) {
	report := sampleReport()
	report.Title = `<script>alert("x")</script>`
	html, err := renderReportHTML(report)
	if err != nil {
		t.Fatalf("renderReportHTML() error = %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("report HTML must escape user content")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Master services agreement", "Master-services-agreement"},
		{"NDA_2026 v3", "NDA_2026-v3"},
		{"", "review"},
		{"///", "review"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewService("pandoc")
	if _, err := svc.Export(sampleReport(), "odt"); err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
