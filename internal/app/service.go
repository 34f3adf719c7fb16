package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lexrev/api/internal/auth"
	"lexrev/api/internal/config"
	"lexrev/api/internal/directory"
	"lexrev/api/internal/email"
	"lexrev/api/internal/export"
	"lexrev/api/internal/rbac"
	"lexrev/api/internal/search"
	"lexrev/api/internal/storage"
	"lexrev/api/internal/store"
	"lexrev/api/internal/util"
)

// Session is an authenticated caller: identity plus the permission set
// resolved from the corporate directory at login.
type Session struct {
	Email       string
	Name        string
	Permissions rbac.Permissions
	Token       string
	ExpiresAt   time.Time
}

type dataStore interface {
	Ping(ctx context.Context) error
	CreateReview(context.Context, store.CreateReviewInput) (int64, error)
	GetReviewVisibleTo(context.Context, int64, string) (store.ReviewDetail, error)
	GetReviewForApprover(context.Context, int64) (store.ReviewDetail, error)
	GetDocument(context.Context, int64) (store.Document, error)
	ListReviews(context.Context, string, store.ListFilters) ([]store.ReviewSummary, error)
	ListVersions(context.Context, int64, string) ([]store.ReviewDetail, error)
	LatestVersionState(context.Context, int64) (store.VersionState, error)
	ApplyEdit(context.Context, store.EditPlan) (int64, error)
	ReviewComments(context.Context, int64) ([]store.ReviewComment, error)
	ReviewRisks(context.Context, int64) ([]store.Risk, error)
	GetObservations(context.Context, int64) (string, error)
	DeleteDocumentCascade(context.Context, int64) ([]string, []int64, error)
	AddViewers(context.Context, int64, []string) error
	RemoveViewer(context.Context, int64, string) error
	ListViewers(context.Context, int64) ([]store.Viewer, error)
	CanUserView(context.Context, int64, string) (bool, error)
	AddAttachment(context.Context, store.Attachment) (int64, error)
	GetAttachment(context.Context, int64) (store.Attachment, error)
	ListAttachments(context.Context, int64) ([]store.Attachment, error)
	CreateApprovalRequest(context.Context, int64, string, []store.ApproverInput) (int64, error)
	DecideApproval(context.Context, int64, string, string, string) (store.Approval, error)
	GetApproval(context.Context, int64, string) (store.Approval, error)
	ListApprovals(context.Context, int64) ([]store.Approval, error)
	PendingForApprover(context.Context, string) ([]store.PendingApproval, error)
	PendingApprovalCount(context.Context, int64) (int, error)
	CloseApprovalRequests(context.Context, int64) error
	ListCategories(context.Context) ([]store.RiskCategory, error)
	GetCategory(context.Context, int64) (store.RiskCategory, error)
	CreateCategory(context.Context, string, string, string) (int64, error)
	UpdateCategory(context.Context, int64, string, string) (bool, error)
	CategoryUsage(context.Context, int64) (store.CategoryUsage, error)
	DeleteCategoryCascade(context.Context, int64) (bool, error)
}

type userDirectory interface {
	IsConfigured() bool
	Lookup(ctx context.Context, email string) (directory.User, error)
	ResolveName(ctx context.Context, email string) string
}

type notifier interface {
	IsConfigured() bool
	SendApprovalRequest(to string, data email.ApprovalRequestData) error
	SendDecisionNotice(to string, data email.DecisionNoticeData) error
}

type searchIndex interface {
	Search(q search.Query) (search.Response, error)
	IndexReview(r search.ReviewRecord)
	DeleteReviews(reviewIDs []string)
}

type objectStore interface {
	Put(ctx context.Context, key, fileName string, reader io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

type exporter interface {
	Export(report export.Report, format string) (*export.Result, error)
}

type Service struct {
	cfg        config.Config
	store      dataStore
	directory  userDirectory
	notifier   notifier
	search     searchIndex
	objects    objectStore
	exporter   exporter
	signingKey []byte
}

func New(
	cfg config.Config,
	dataStore *store.PostgresStore,
	dir *directory.Service,
	mailer *email.Service,
	searchSvc *search.Service,
	objects *storage.Service,
	exportSvc *export.Service,
) *Service {
	svc := &Service{
		cfg:        cfg,
		store:      dataStore,
		signingKey: auth.DeriveKey(cfg.SecretKey),
	}
	if dir != nil {
		svc.directory = dir
	}
	if mailer != nil {
		svc.notifier = mailer
	}
	if searchSvc != nil {
		svc.search = searchSvc
	}
	if objects != nil {
		svc.objects = objects
	}
	if exportSvc != nil {
		svc.exporter = exportSvc
	}
	return svc
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Login resolves identity through the directory and issues a session token.
// A directory outage degrades to a minimal permission set rather than
// blocking sign-in.
func (s *Service) Login(ctx context.Context, userEmail string) (Session, error) {
	userEmail = strings.TrimSpace(strings.ToLower(userEmail))
	if userEmail == "" || !strings.Contains(userEmail, "@") {
		return Session{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "a valid email is required", nil)
	}

	name := userEmail
	permissions := rbac.Unrestricted()
	if s.directory != nil && s.directory.IsConfigured() {
		user, err := s.directory.Lookup(ctx, userEmail)
		if err != nil {
			log.Printf("login: directory lookup for %s failed: %v", userEmail, err)
			permissions = rbac.Restricted(rbac.ActionView, rbac.ActionApprove)
		} else {
			if strings.TrimSpace(user.Name) != "" {
				name = user.Name
			}
			permissions = rbac.FromStrings(user.Actions)
		}
	}

	expiresAt := time.Now().Add(s.cfg.SessionTTL)
	token, err := auth.IssueSessionToken(s.signingKey, auth.SessionClaims{
		Email:   userEmail,
		Name:    name,
		Actions: permissions.Strings(),
		Exp:     expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}
	return Session{
		Email:       userEmail,
		Name:        name,
		Permissions: permissions,
		Token:       token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := auth.ParseSessionToken(s.signingKey, token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Email:       claims.Email,
		Name:        claims.Name,
		Permissions: rbac.FromStrings(claims.Actions),
		Token:       token,
		ExpiresAt:   time.Unix(claims.Exp, 0),
	}, nil
}

func requireAction(sess Session, action rbac.Action) error {
	if !sess.Permissions.Can(action) {
		return domainError(http.StatusForbidden, "FORBIDDEN", fmt.Sprintf("missing %s permission", action), nil)
	}
	return nil
}

// notFound is the one error shown for both absent reviews and reviews the
// caller may not see.
func notFound() *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", "review not found", nil)
}

// CreateReview creates a document and its first review version. All three
// facet counters start at 1.
func (s *Service) CreateReview(ctx context.Context, sess Session, sub Submission) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sub.Title) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}

	// Diffing against an empty state trims and dedupes the submitted items.
	cs := ComputeChangeSet(store.VersionState{}, sub)
	reviewID, err := s.store.CreateReview(ctx, store.CreateReviewInput{
		Title:         strings.TrimSpace(sub.Title),
		Summary:       strings.TrimSpace(sub.Summary),
		Description:   strings.TrimSpace(sub.Description),
		Comments:      cs.NewComments,
		Risks:         cs.NewRisks,
		Observations:  strings.TrimSpace(sub.Observations),
		ReviewerEmail: sess.Email,
		ReviewerName:  sess.Name,
	})
	if err != nil {
		return nil, err
	}

	s.indexReview(ctx, reviewID)
	return s.GetReview(ctx, sess, reviewID)
}

// GetReview returns one version with its aggregated comments, risks,
// observations, viewers, approvals, and attachments. Callers without a viewer
// grant get NOT_FOUND, never FORBIDDEN.
func (s *Service) GetReview(ctx context.Context, sess Session, reviewID int64) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionView); err != nil {
		return nil, err
	}
	detail, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, err
	}
	return s.reviewPayload(ctx, detail)
}

func (s *Service) reviewPayload(ctx context.Context, detail store.ReviewDetail) (map[string]any, error) {
	comments, err := s.store.ReviewComments(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	risks, err := s.store.ReviewRisks(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	observations, err := s.store.GetObservations(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	viewers, err := s.store.ListViewers(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	approvals, err := s.store.ListApprovals(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.store.ListAttachments(ctx, detail.ID)
	if err != nil {
		return nil, err
	}

	commentItems := make([]map[string]any, 0, len(comments))
	for _, comment := range comments {
		commentItems = append(commentItems, map[string]any{
			"id":         comment.ID,
			"reviewId":   comment.ReviewID,
			"author":     comment.ReviewerName,
			"email":      comment.ReviewerEmail,
			"comments":   comment.Comments,
			"reviewDate": comment.ReviewDate.Format(time.RFC3339),
		})
	}
	riskItems := make([]map[string]any, 0, len(risks))
	for _, risk := range risks {
		riskItems = append(riskItems, map[string]any{
			"id":              risk.ID,
			"reviewId":        risk.ReviewID,
			"riskText":        risk.RiskText,
			"legalSuggestion": risk.LegalSuggestion,
			"finalDefinition": risk.FinalDefinition,
			"categoryId":      risk.CategoryID,
		})
	}
	viewerItems := make([]map[string]any, 0, len(viewers))
	for _, viewer := range viewers {
		viewerItems = append(viewerItems, map[string]any{
			"email":     viewer.UserEmail,
			"grantedAt": viewer.GrantedAt.Format(time.RFC3339),
		})
	}
	approvalItems := make([]map[string]any, 0, len(approvals))
	for _, approval := range approvals {
		approvalItems = append(approvalItems, approvalPayload(approval))
	}
	attachmentItems := make([]map[string]any, 0, len(attachments))
	for _, att := range attachments {
		attachmentItems = append(attachmentItems, map[string]any{
			"id":         att.ID,
			"fileName":   att.FileName,
			"fileSize":   att.FileSize,
			"uploadedBy": att.UploadedBy,
			"uploadedAt": att.UploadedAt.Format(time.RFC3339),
		})
	}

	return map[string]any{
		"id":            detail.ID,
		"documentId":    detail.DocumentID,
		"version":       detail.Version,
		"title":         detail.Title,
		"summary":       detail.Summary,
		"description":   detail.Description,
		"reviewerEmail": detail.ReviewerEmail,
		"reviewerName":  detail.ReviewerName,
		"reviewDate":    detail.ReviewDate.Format(time.RFC3339),
		"comments":      commentItems,
		"risks":         riskItems,
		"observations":  observations,
		"viewers":       viewerItems,
		"approvals":     approvalItems,
		"attachments":   attachmentItems,
	}, nil
}

func approvalPayload(approval store.Approval) map[string]any {
	item := map[string]any{
		"id":            approval.ID,
		"reviewId":      approval.ReviewID,
		"approverEmail": approval.ApproverEmail,
		"approverName":  approval.ApproverName,
		"status":        approval.Status,
		"comments":      approval.Comments,
		"createdAt":     approval.CreatedAt.Format(time.RFC3339),
	}
	if approval.DecidedAt != nil {
		item["decidedAt"] = approval.DecidedAt.Format(time.RFC3339)
	}
	return item
}

func (s *Service) ListReviews(ctx context.Context, sess Session, filters store.ListFilters) ([]map[string]any, error) {
	if err := requireAction(sess, rbac.ActionView); err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx, sess.Email, filters)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, map[string]any{
			"id":               review.ID,
			"documentId":       review.DocumentID,
			"version":          review.Version,
			"title":            review.Title,
			"summary":          review.Summary,
			"reviewerEmail":    review.ReviewerEmail,
			"reviewerName":     review.ReviewerName,
			"reviewDate":       review.ReviewDate.Format(time.RFC3339),
			"pendingApprovals": review.PendingApprovals,
			"approvedCount":    review.ApprovedCount,
		})
	}
	return items, nil
}

// ListVersions returns a document's version history, restricted to versions
// the caller can view. A document with no visible versions is reported as
// missing.
func (s *Service) ListVersions(ctx context.Context, sess Session, documentID int64) ([]map[string]any, error) {
	if err := requireAction(sess, rbac.ActionView); err != nil {
		return nil, err
	}
	versions, err := s.store.ListVersions(ctx, documentID, sess.Email)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, notFound()
	}
	items := make([]map[string]any, 0, len(versions))
	for _, version := range versions {
		items = append(items, map[string]any{
			"id":            version.ID,
			"documentId":    version.DocumentID,
			"version":       version.Version,
			"title":         version.Title,
			"reviewerEmail": version.ReviewerEmail,
			"reviewerName":  version.ReviewerName,
			"reviewDate":    version.ReviewDate.Format(time.RFC3339),
		})
	}
	return items, nil
}

// SubmitEdit diffs the submission against the latest version and either
// records a new version or reports the edit as a no-op. The response carries
// versionChanged so callers can tell the two apart.
func (s *Service) SubmitEdit(ctx context.Context, sess Session, reviewID int64, sub Submission) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionEdit); err != nil {
		return nil, err
	}
	if _, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound()
		}
		return nil, err
	}
	if strings.TrimSpace(sub.Title) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}

	state, err := s.store.LatestVersionState(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	cs := ComputeChangeSet(state, sub)
	if cs.Empty() {
		detail, err := s.store.GetReviewForApprover(ctx, state.Latest.ID)
		if err != nil {
			return nil, err
		}
		payload, err := s.reviewPayload(ctx, detail)
		if err != nil {
			return nil, err
		}
		payload["versionChanged"] = false
		return payload, nil
	}

	newReviewID, err := s.store.ApplyEdit(ctx, store.EditPlan{
		DocumentID:    state.Document.ID,
		PriorReviewID: state.Latest.ID,
		Title:         strings.TrimSpace(sub.Title),
		Summary:       strings.TrimSpace(sub.Summary),
		Description:   strings.TrimSpace(sub.Description),
		BumpDocument:  cs.DocumentChanged,
		BumpReview:    cs.ReviewChanged,
		BumpRisk:      cs.RiskChanged,
		NewComments:   cs.NewComments,
		NewRisks:      cs.NewRisks,
		Observations:  strings.TrimSpace(sub.Observations),
		EditorEmail:   sess.Email,
		EditorName:    sess.Name,
	})
	if err != nil {
		return nil, err
	}

	s.indexReview(ctx, newReviewID)

	detail, err := s.store.GetReviewForApprover(ctx, newReviewID)
	if err != nil {
		return nil, err
	}
	payload, err := s.reviewPayload(ctx, detail)
	if err != nil {
		return nil, err
	}
	payload["versionChanged"] = true
	return payload, nil
}

// DeleteReview removes the whole document behind a review version: every
// version, their child rows, attachment objects, and search entries.
func (s *Service) DeleteReview(ctx context.Context, sess Session, reviewID int64) error {
	if err := requireAction(sess, rbac.ActionDelete); err != nil {
		return err
	}
	detail, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound()
	}
	if err != nil {
		return err
	}

	keys, reviewIDs, err := s.store.DeleteDocumentCascade(ctx, detail.DocumentID)
	if err != nil {
		return err
	}

	if s.objects != nil {
		for _, key := range keys {
			if err := s.objects.Remove(ctx, key); err != nil {
				log.Printf("delete review %d: remove object %s: %v", reviewID, key, err)
			}
		}
	}
	if s.search != nil {
		ids := make([]string, 0, len(reviewIDs))
		for _, id := range reviewIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		s.search.DeleteReviews(ids)
	}
	return nil
}

// AddViewers grants view access on one version. Grants are copied forward on
// the next edit, not applied retroactively to older versions.
func (s *Service) AddViewers(ctx context.Context, sess Session, reviewID int64, emails []string) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionEdit); err != nil {
		return nil, err
	}
	if _, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound()
		}
		return nil, err
	}

	cleaned := make([]string, 0, len(emails))
	seen := make(map[string]struct{})
	for _, raw := range emails {
		addr := strings.TrimSpace(strings.ToLower(raw))
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		cleaned = append(cleaned, addr)
	}
	if len(cleaned) == 0 {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "at least one valid email is required", nil)
	}

	if err := s.store.AddViewers(ctx, reviewID, cleaned); err != nil {
		return nil, err
	}
	return s.GetReview(ctx, sess, reviewID)
}

func (s *Service) RemoveViewer(ctx context.Context, sess Session, reviewID int64, userEmail string) error {
	if err := requireAction(sess, rbac.ActionEdit); err != nil {
		return err
	}
	detail, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound()
	}
	if err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(userEmail), detail.ReviewerEmail) {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "the reviewer's own grant cannot be removed", nil)
	}
	return s.store.RemoveViewer(ctx, reviewID, userEmail)
}

// UploadAttachment validates and stores one file against a review version.
func (s *Service) UploadAttachment(ctx context.Context, sess Session, reviewID int64, fileName string, size int64, reader io.Reader) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionEdit); err != nil {
		return nil, err
	}
	if _, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound()
		}
		return nil, err
	}
	if s.objects == nil {
		return nil, domainError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "attachment storage is not configured", nil)
	}
	if err := storage.ValidateUpload(fileName, size); err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	}

	key := util.NewID("att")
	if err := s.objects.Put(ctx, key, fileName, reader, size); err != nil {
		return nil, err
	}
	attachmentID, err := s.store.AddAttachment(ctx, store.Attachment{
		ReviewID:   reviewID,
		FileName:   fileName,
		StorageKey: key,
		FileSize:   size,
		UploadedBy: sess.Email,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":       attachmentID,
		"reviewId": reviewID,
		"fileName": fileName,
		"fileSize": size,
	}, nil
}

// DownloadAttachment streams an attachment if the caller can view the version
// it belongs to.
func (s *Service) DownloadAttachment(ctx context.Context, sess Session, attachmentID int64) (store.Attachment, io.ReadCloser, error) {
	if err := requireAction(sess, rbac.ActionView); err != nil {
		return store.Attachment{}, nil, err
	}
	att, err := s.store.GetAttachment(ctx, attachmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Attachment{}, nil, notFound()
	}
	if err != nil {
		return store.Attachment{}, nil, err
	}
	canView, err := s.store.CanUserView(ctx, att.ReviewID, sess.Email)
	if err != nil {
		return store.Attachment{}, nil, err
	}
	if !canView {
		return store.Attachment{}, nil, notFound()
	}
	if s.objects == nil {
		return store.Attachment{}, nil, domainError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "attachment storage is not configured", nil)
	}
	reader, err := s.objects.Get(ctx, att.StorageKey)
	if err != nil {
		return store.Attachment{}, nil, err
	}
	return att, reader, nil
}

// SearchReviews runs full-text search and filters the hits down to versions
// the caller holds a viewer grant on.
func (s *Service) SearchReviews(ctx context.Context, sess Session, query search.Query) (search.Response, error) {
	if err := requireAction(sess, rbac.ActionView); err != nil {
		return search.Response{}, err
	}
	if s.search == nil {
		return search.Response{Query: query.Text, Results: []search.Result{}}, nil
	}
	resp, err := s.search.Search(query)
	if err != nil {
		return search.Response{}, err
	}
	visible := make([]search.Result, 0, len(resp.Results))
	for _, hit := range resp.Results {
		reviewID, err := strconv.ParseInt(hit.ReviewID, 10, 64)
		if err != nil {
			continue
		}
		canView, err := s.store.CanUserView(ctx, reviewID, sess.Email)
		if err != nil {
			return search.Response{}, err
		}
		if canView {
			visible = append(visible, hit)
		}
	}
	resp.Results = visible
	resp.Total = len(visible)
	return resp, nil
}

// ExportReview renders one version's report as PDF or DOCX.
func (s *Service) ExportReview(ctx context.Context, sess Session, reviewID int64, format string) (*export.Result, error) {
	if err := requireAction(sess, rbac.ActionView); err != nil {
		return nil, err
	}
	detail, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "export is not configured", nil)
	}

	report, err := s.buildReport(ctx, detail)
	if err != nil {
		return nil, err
	}
	result, err := s.exporter.Export(report, format)
	if errors.Is(err, export.ErrUnsupportedFormat) {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be pdf or docx", nil)
	}
	return result, err
}

func (s *Service) buildReport(ctx context.Context, detail store.ReviewDetail) (export.Report, error) {
	comments, err := s.store.ReviewComments(ctx, detail.ID)
	if err != nil {
		return export.Report{}, err
	}
	risks, err := s.store.ReviewRisks(ctx, detail.ID)
	if err != nil {
		return export.Report{}, err
	}
	observations, err := s.store.GetObservations(ctx, detail.ID)
	if err != nil {
		return export.Report{}, err
	}
	approvals, err := s.store.ListApprovals(ctx, detail.ID)
	if err != nil {
		return export.Report{}, err
	}

	categoryNames := make(map[int64]string)
	report := export.Report{
		Title:        detail.Title,
		Summary:      detail.Summary,
		Description:  detail.Description,
		Version:      detail.Version,
		ReviewerName: detail.ReviewerName,
		ReviewDate:   detail.ReviewDate.Format("2006-01-02"),
		Observations: observations,
	}
	for _, comment := range comments {
		report.Comments = append(report.Comments, export.ReportComment{
			Author: comment.ReviewerName,
			Text:   comment.Comments,
			Date:   comment.ReviewDate.Format("2006-01-02"),
		})
	}
	for _, risk := range risks {
		categoryName := ""
		if risk.CategoryID != nil {
			name, ok := categoryNames[*risk.CategoryID]
			if !ok {
				category, err := s.store.GetCategory(ctx, *risk.CategoryID)
				if err == nil {
					name = category.Name
				}
				categoryNames[*risk.CategoryID] = name
			}
			categoryName = name
		}
		report.Risks = append(report.Risks, export.ReportRisk{
			Text:       risk.RiskText,
			Suggestion: risk.LegalSuggestion,
			Definition: risk.FinalDefinition,
			Category:   categoryName,
		})
	}
	for _, approval := range approvals {
		decidedAt := ""
		if approval.DecidedAt != nil {
			decidedAt = approval.DecidedAt.Format("2006-01-02 15:04")
		}
		report.Approvals = append(report.Approvals, export.ReportApproval{
			Name:      approval.ApproverName,
			Status:    approval.Status,
			Comments:  approval.Comments,
			DecidedAt: decidedAt,
		})
	}
	return report, nil
}

func (s *Service) indexReview(ctx context.Context, reviewID int64) {
	if s.search == nil {
		return
	}
	detail, err := s.store.GetReviewForApprover(ctx, reviewID)
	if err != nil {
		log.Printf("index review %d: %v", reviewID, err)
		return
	}
	s.search.IndexReview(search.ReviewRecord{
		ID:         strconv.FormatInt(detail.ID, 10),
		DocumentID: strconv.FormatInt(detail.DocumentID, 10),
		Version:    detail.Version,
		Title:      detail.Title,
		Summary:    detail.Summary,
		Reviewer:   detail.ReviewerName,
	})
}
