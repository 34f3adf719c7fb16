package store

import "time"

type Document struct {
	ID              int64
	Title           string
	Summary         string
	Description     string
	DocumentVersion int
	ReviewVersion   int
	RiskVersion     int
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Review is one version snapshot of a document's review state. Rows are
// immutable once written; an edit that changes anything produces a new row.
type Review struct {
	ID            int64
	DocumentID    int64
	Version       int
	ReviewerEmail string
	ReviewerName  string
	ReviewDate    time.Time
	CreatedAt     time.Time
}

// ReviewDetail is a Review joined with its document's current fields.
type ReviewDetail struct {
	Review
	Title             string
	Summary           string
	Description       string
	DocumentVersion   int
	DocumentCreatedBy string
}

// ReviewSummary is one row of the filtered review listing.
type ReviewSummary struct {
	ReviewDetail
	PendingApprovals int
	ApprovedCount    int
}

type ReviewComment struct {
	ID            int64
	ReviewID      int64
	ReviewerEmail string
	ReviewerName  string
	Comments      string
	ReviewDate    time.Time
}

type Risk struct {
	ID              int64
	ReviewID        int64
	RiskText        string
	LegalSuggestion string
	FinalDefinition string
	CategoryID      *int64
	CreatedAt       time.Time
}

type Viewer struct {
	ReviewID  int64
	UserEmail string
	CanView   bool
	GrantedAt time.Time
}

type Attachment struct {
	ID         int64
	ReviewID   int64
	FileName   string
	StorageKey string
	FileSize   int64
	UploadedBy string
	UploadedAt time.Time
}

type ApprovalRequest struct {
	ID          int64
	ReviewID    int64
	RequestedBy string
	Status      string
	CreatedAt   time.Time
}

type Approval struct {
	ID            int64
	ReviewID      int64
	ApproverEmail string
	ApproverName  string
	Status        string
	Comments      string
	CreatedAt     time.Time
	DecidedAt     *time.Time
}

// PendingApproval is an approver's to-do item joined with document context.
type PendingApproval struct {
	Approval
	DocumentID   int64
	Version      int
	Title        string
	ReviewerName string
}

type RiskCategory struct {
	ID          int64
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryUsage reports how many risks reference a category before deletion.
type CategoryUsage struct {
	TotalRisks int
	RiskIDs    []int64
}

// RiskInput is a caller-submitted risk candidate.
type RiskInput struct {
	RiskText        string
	LegalSuggestion string
	FinalDefinition string
	CategoryID      *int64
}

// VersionState is everything an edit is diffed against: the document row plus
// the aggregated comment/risk/observation state of its latest version.
type VersionState struct {
	Document     Document
	Latest       Review
	Comments     []ReviewComment
	Risks        []Risk
	Observations string
}

// CreateReviewInput seeds a document together with its first version.
type CreateReviewInput struct {
	Title         string
	Summary       string
	Description   string
	Comments      []string
	Risks         []RiskInput
	Observations  string
	ReviewerEmail string
	ReviewerName  string
}

// EditPlan is the persisted outcome of a version diff: which counters to bump
// and which newly detected items to append to the new version row.
type EditPlan struct {
	DocumentID    int64
	PriorReviewID int64
	Title         string
	Summary       string
	Description   string
	BumpDocument  bool
	BumpReview    bool
	BumpRisk      bool
	NewComments   []string
	NewRisks      []RiskInput
	Observations  string
	EditorEmail   string
	EditorName    string
}

// ListFilters narrows the review listing. Status is one of
// "pending", "approved", "in_review" or empty.
type ListFilters struct {
	Status    string
	Search    string
	Approvers []string
	Reviewers []string
}
