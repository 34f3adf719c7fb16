package export

import "errors"

var (
	ErrPDFDependencyMissing  = errors.New("pdf export dependency missing")
	ErrDOCXDependencyMissing = errors.New("docx export dependency missing")
	ErrUnsupportedFormat     = errors.New("unsupported export format")
)

// Result is a rendered export ready to stream to the client.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// Report is the flattened content of one review version, assembled by the
// service layer and rendered here.
type Report struct {
	Title        string
	Summary      string
	Description  string
	Version      int
	ReviewerName string
	ReviewDate   string
	Comments     []ReportComment
	Risks        []ReportRisk
	Observations string
	Approvals    []ReportApproval
}

type ReportComment struct {
	Author string
	Text   string
	Date   string
}

type ReportRisk struct {
	Text       string
	Suggestion string
	Definition string
	Category   string
}

type ReportApproval struct {
	Name      string
	Status    string
	Comments  string
	DecidedAt string
}
