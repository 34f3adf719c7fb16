package export

// Service renders review reports to downloadable formats.
type Service struct {
	pandocPath string
}

func NewService(pandocPath string) *Service {
	if pandocPath == "" {
		pandocPath = "pandoc"
	}
	return &Service{pandocPath: pandocPath}
}

// Export renders a report in the requested format: "pdf" or "docx".
func (s *Service) Export(report Report, format string) (*Result, error) {
	html, err := renderReportHTML(report)
	if err != nil {
		return nil, err
	}
	switch format {
	case "pdf":
		return exportPDF(html, report.Title)
	case "docx":
		return exportDOCX(s.pandocPath, html, report.Title)
	default:
		return nil, ErrUnsupportedFormat
	}
}
