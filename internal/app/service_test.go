package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"lexrev/api/internal/auth"
	"lexrev/api/internal/config"
	"lexrev/api/internal/rbac"
	"lexrev/api/internal/search"
	"lexrev/api/internal/store"
)

type fakeStore struct {
	createReviewFn          func(context.Context, store.CreateReviewInput) (int64, error)
	getReviewVisibleToFn    func(context.Context, int64, string) (store.ReviewDetail, error)
	getReviewForApproverFn  func(context.Context, int64) (store.ReviewDetail, error)
	listReviewsFn           func(context.Context, string, store.ListFilters) ([]store.ReviewSummary, error)
	listVersionsFn          func(context.Context, int64, string) ([]store.ReviewDetail, error)
	latestVersionStateFn    func(context.Context, int64) (store.VersionState, error)
	applyEditFn             func(context.Context, store.EditPlan) (int64, error)
	reviewCommentsFn        func(context.Context, int64) ([]store.ReviewComment, error)
	reviewRisksFn           func(context.Context, int64) ([]store.Risk, error)
	deleteDocumentCascadeFn func(context.Context, int64) ([]string, []int64, error)
	addViewersFn            func(context.Context, int64, []string) error
	removeViewerFn          func(context.Context, int64, string) error
	canUserViewFn           func(context.Context, int64, string) (bool, error)
	getAttachmentFn         func(context.Context, int64) (store.Attachment, error)
	createApprovalReqFn     func(context.Context, int64, string, []store.ApproverInput) (int64, error)
	decideApprovalFn        func(context.Context, int64, string, string, string) (store.Approval, error)
	getApprovalFn           func(context.Context, int64, string) (store.Approval, error)
	listApprovalsFn         func(context.Context, int64) ([]store.Approval, error)
	pendingForApproverFn    func(context.Context, string) ([]store.PendingApproval, error)
	pendingApprovalCountFn  func(context.Context, int64) (int, error)
	closeApprovalReqsFn     func(context.Context, int64) error
	getCategoryFn           func(context.Context, int64) (store.RiskCategory, error)
	updateCategoryFn        func(context.Context, int64, string, string) (bool, error)
	categoryUsageFn         func(context.Context, int64) (store.CategoryUsage, error)
	deleteCategoryFn        func(context.Context, int64) (bool, error)
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) CreateReview(ctx context.Context, input store.CreateReviewInput) (int64, error) {
	if f.createReviewFn != nil {
		return f.createReviewFn(ctx, input)
	}
	return 1, nil
}
func (f *fakeStore) GetReviewVisibleTo(ctx context.Context, reviewID int64, userEmail string) (store.ReviewDetail, error) {
	if f.getReviewVisibleToFn != nil {
		return f.getReviewVisibleToFn(ctx, reviewID, userEmail)
	}
	return store.ReviewDetail{}, sql.ErrNoRows
}
func (f *fakeStore) GetReviewForApprover(ctx context.Context, reviewID int64) (store.ReviewDetail, error) {
	if f.getReviewForApproverFn != nil {
		return f.getReviewForApproverFn(ctx, reviewID)
	}
	return store.ReviewDetail{}, sql.ErrNoRows
}
func (f *fakeStore) GetDocument(context.Context, int64) (store.Document, error) {
	return store.Document{}, sql.ErrNoRows
}
func (f *fakeStore) ListReviews(ctx context.Context, userEmail string, filters store.ListFilters) ([]store.ReviewSummary, error) {
	if f.listReviewsFn != nil {
		return f.listReviewsFn(ctx, userEmail, filters)
	}
	return nil, nil
}
func (f *fakeStore) ListVersions(ctx context.Context, documentID int64, userEmail string) ([]store.ReviewDetail, error) {
	if f.listVersionsFn != nil {
		return f.listVersionsFn(ctx, documentID, userEmail)
	}
	return nil, nil
}
func (f *fakeStore) LatestVersionState(ctx context.Context, reviewID int64) (store.VersionState, error) {
	if f.latestVersionStateFn != nil {
		return f.latestVersionStateFn(ctx, reviewID)
	}
	return store.VersionState{}, nil
}
func (f *fakeStore) ApplyEdit(ctx context.Context, plan store.EditPlan) (int64, error) {
	if f.applyEditFn != nil {
		return f.applyEditFn(ctx, plan)
	}
	return 0, nil
}
func (f *fakeStore) ReviewComments(ctx context.Context, reviewID int64) ([]store.ReviewComment, error) {
	if f.reviewCommentsFn != nil {
		return f.reviewCommentsFn(ctx, reviewID)
	}
	return nil, nil
}
func (f *fakeStore) ReviewRisks(ctx context.Context, reviewID int64) ([]store.Risk, error) {
	if f.reviewRisksFn != nil {
		return f.reviewRisksFn(ctx, reviewID)
	}
	return nil, nil
}
func (f *fakeStore) GetObservations(context.Context, int64) (string, error) { return "", nil }
func (f *fakeStore) DeleteDocumentCascade(ctx context.Context, documentID int64) ([]string, []int64, error) {
	if f.deleteDocumentCascadeFn != nil {
		return f.deleteDocumentCascadeFn(ctx, documentID)
	}
	return nil, nil, nil
}
func (f *fakeStore) AddViewers(ctx context.Context, reviewID int64, emails []string) error {
	if f.addViewersFn != nil {
		return f.addViewersFn(ctx, reviewID, emails)
	}
	return nil
}
func (f *fakeStore) RemoveViewer(ctx context.Context, reviewID int64, userEmail string) error {
	if f.removeViewerFn != nil {
		return f.removeViewerFn(ctx, reviewID, userEmail)
	}
	return nil
}
func (f *fakeStore) ListViewers(context.Context, int64) ([]store.Viewer, error) { return nil, nil }
func (f *fakeStore) CanUserView(ctx context.Context, reviewID int64, userEmail string) (bool, error) {
	if f.canUserViewFn != nil {
		return f.canUserViewFn(ctx, reviewID, userEmail)
	}
	return true, nil
}
func (f *fakeStore) AddAttachment(context.Context, store.Attachment) (int64, error) { return 1, nil }
func (f *fakeStore) GetAttachment(ctx context.Context, attachmentID int64) (store.Attachment, error) {
	if f.getAttachmentFn != nil {
		return f.getAttachmentFn(ctx, attachmentID)
	}
	return store.Attachment{}, sql.ErrNoRows
}
func (f *fakeStore) ListAttachments(context.Context, int64) ([]store.Attachment, error) {
	return nil, nil
}
func (f *fakeStore) CreateApprovalRequest(ctx context.Context, reviewID int64, requestedBy string, approvers []store.ApproverInput) (int64, error) {
	if f.createApprovalReqFn != nil {
		return f.createApprovalReqFn(ctx, reviewID, requestedBy, approvers)
	}
	return 1, nil
}
func (f *fakeStore) DecideApproval(ctx context.Context, reviewID int64, approverEmail, decision, comments string) (store.Approval, error) {
	if f.decideApprovalFn != nil {
		return f.decideApprovalFn(ctx, reviewID, approverEmail, decision, comments)
	}
	return store.Approval{}, nil
}
func (f *fakeStore) GetApproval(ctx context.Context, reviewID int64, approverEmail string) (store.Approval, error) {
	if f.getApprovalFn != nil {
		return f.getApprovalFn(ctx, reviewID, approverEmail)
	}
	return store.Approval{}, sql.ErrNoRows
}
func (f *fakeStore) ListApprovals(ctx context.Context, reviewID int64) ([]store.Approval, error) {
	if f.listApprovalsFn != nil {
		return f.listApprovalsFn(ctx, reviewID)
	}
	return nil, nil
}
func (f *fakeStore) PendingForApprover(ctx context.Context, approverEmail string) ([]store.PendingApproval, error) {
	if f.pendingForApproverFn != nil {
		return f.pendingForApproverFn(ctx, approverEmail)
	}
	return nil, nil
}
func (f *fakeStore) PendingApprovalCount(ctx context.Context, reviewID int64) (int, error) {
	if f.pendingApprovalCountFn != nil {
		return f.pendingApprovalCountFn(ctx, reviewID)
	}
	return 1, nil
}
func (f *fakeStore) CloseApprovalRequests(ctx context.Context, reviewID int64) error {
	if f.closeApprovalReqsFn != nil {
		return f.closeApprovalReqsFn(ctx, reviewID)
	}
	return nil
}
func (f *fakeStore) ListCategories(context.Context) ([]store.RiskCategory, error) { return nil, nil }
func (f *fakeStore) GetCategory(ctx context.Context, categoryID int64) (store.RiskCategory, error) {
	if f.getCategoryFn != nil {
		return f.getCategoryFn(ctx, categoryID)
	}
	return store.RiskCategory{}, sql.ErrNoRows
}
func (f *fakeStore) CreateCategory(context.Context, string, string, string) (int64, error) {
	return 1, nil
}
func (f *fakeStore) UpdateCategory(ctx context.Context, categoryID int64, name, description string) (bool, error) {
	if f.updateCategoryFn != nil {
		return f.updateCategoryFn(ctx, categoryID, name, description)
	}
	return true, nil
}
func (f *fakeStore) CategoryUsage(ctx context.Context, categoryID int64) (store.CategoryUsage, error) {
	if f.categoryUsageFn != nil {
		return f.categoryUsageFn(ctx, categoryID)
	}
	return store.CategoryUsage{}, nil
}
func (f *fakeStore) DeleteCategoryCascade(ctx context.Context, categoryID int64) (bool, error) {
	if f.deleteCategoryFn != nil {
		return f.deleteCategoryFn(ctx, categoryID)
	}
	return true, nil
}

type fakeSearch struct {
	searchFn  func(search.Query) (search.Response, error)
	indexed   []search.ReviewRecord
	deletedID []string
}

func (f *fakeSearch) Search(q search.Query) (search.Response, error) {
	if f.searchFn != nil {
		return f.searchFn(q)
	}
	return search.Response{Results: []search.Result{}}, nil
}
func (f *fakeSearch) IndexReview(r search.ReviewRecord) { f.indexed = append(f.indexed, r) }
func (f *fakeSearch) DeleteReviews(reviewIDs []string)  { f.deletedID = append(f.deletedID, reviewIDs...) }

type fakeObjects struct {
	putFn   func(ctx context.Context, key, fileName string, reader io.Reader, size int64) error
	removed []string
}

func (f *fakeObjects) Put(ctx context.Context, key, fileName string, reader io.Reader, size int64) error {
	if f.putFn != nil {
		return f.putFn(ctx, key, fileName, reader, size)
	}
	return nil
}
func (f *fakeObjects) Get(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(nil), nil
}
func (f *fakeObjects) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func newTestService(fs *fakeStore) *Service {
	return &Service{
		cfg: config.Config{
			BaseURL:     "http://localhost:8790",
			SessionTTL:  time.Hour,
			ApprovalTTL: time.Hour,
		},
		store:      fs,
		signingKey: auth.DeriveKey("test-secret"),
	}
}

func testSession() Session {
	return Session{
		Email:       "reviewer@example.com",
		Name:        "Reviewer",
		Permissions: rbac.Unrestricted(),
	}
}

func testDetail(reviewID, documentID int64, version int) store.ReviewDetail {
	return store.ReviewDetail{
		Review: store.Review{
			ID:            reviewID,
			DocumentID:    documentID,
			Version:       version,
			ReviewerEmail: "reviewer@example.com",
			ReviewerName:  "Reviewer",
			ReviewDate:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		Title:   "Master services agreement",
		Summary: "Annual renewal",
	}
}

func assertDomainError(t *testing.T, err error, status int, code string) *DomainError {
	t.Helper()
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Status != status || domainErr.Code != code {
		t.Fatalf("expected %d %s, got %d %s", status, code, domainErr.Status, domainErr.Code)
	}
	return domainErr
}

func TestGetReviewHidesUngrantedReviews(t *testing.T) {
	fs := &fakeStore{
		getReviewVisibleToFn: func(context.Context, int64, string) (store.ReviewDetail, error) {
			return store.ReviewDetail{}, sql.ErrNoRows
		},
	}
	svc := newTestService(fs)

	_, err := svc.GetReview(context.Background(), testSession(), 42)
	domainErr := assertDomainError(t, err, 404, "NOT_FOUND")
	if domainErr.Message != "review not found" {
		t.Fatalf("denied access must read like a missing review, got %q", domainErr.Message)
	}
}

func TestGetReviewRequiresViewPermission(t *testing.T) {
	svc := newTestService(&fakeStore{})
	sess := testSession()
	sess.Permissions = rbac.Restricted(rbac.ActionApprove)

	_, err := svc.GetReview(context.Background(), sess, 42)
	assertDomainError(t, err, 403, "FORBIDDEN")
}

func TestCreateReviewRequiresTitle(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.CreateReview(context.Background(), testSession(), Submission{Title: "   "})
	assertDomainError(t, err, 422, "VALIDATION_ERROR")
}

func TestSubmitEditNoOpKeepsVersion(t *testing.T) {
	detail := testDetail(7, 3, 2)
	applied := false
	fs := &fakeStore{
		getReviewVisibleToFn: func(context.Context, int64, string) (store.ReviewDetail, error) {
			return detail, nil
		},
		getReviewForApproverFn: func(context.Context, int64) (store.ReviewDetail, error) {
			return detail, nil
		},
		latestVersionStateFn: func(context.Context, int64) (store.VersionState, error) {
			return store.VersionState{
				Document: store.Document{ID: 3, Title: "Master services agreement", Summary: "Annual renewal"},
				Latest:   detail.Review,
			}, nil
		},
		applyEditFn: func(context.Context, store.EditPlan) (int64, error) {
			applied = true
			return 0, nil
		},
	}
	svc := newTestService(fs)

	payload, err := svc.SubmitEdit(context.Background(), testSession(), 7, Submission{
		Title:   "  Master services agreement ",
		Summary: "Annual renewal",
	})
	if err != nil {
		t.Fatalf("SubmitEdit() error = %v", err)
	}
	if applied {
		t.Fatal("no-op edit must not write a new version")
	}
	if payload["versionChanged"] != false {
		t.Fatalf("expected versionChanged false, got %v", payload["versionChanged"])
	}
	if payload["version"] != 2 {
		t.Fatalf("expected latest version 2, got %v", payload["version"])
	}
}

func TestSubmitEditBumpsOnlyChangedFacets(t *testing.T) {
	detail := testDetail(7, 3, 2)
	var plan store.EditPlan
	fs := &fakeStore{
		getReviewVisibleToFn: func(context.Context, int64, string) (store.ReviewDetail, error) {
			return detail, nil
		},
		getReviewForApproverFn: func(_ context.Context, reviewID int64) (store.ReviewDetail, error) {
			next := testDetail(reviewID, 3, 3)
			return next, nil
		},
		latestVersionStateFn: func(context.Context, int64) (store.VersionState, error) {
			return store.VersionState{
				Document: store.Document{ID: 3, Title: "Master services agreement", Summary: "Annual renewal"},
				Latest:   detail.Review,
			}, nil
		},
		applyEditFn: func(_ context.Context, p store.EditPlan) (int64, error) {
			plan = p
			return 8, nil
		},
	}
	svc := newTestService(fs)

	payload, err := svc.SubmitEdit(context.Background(), testSession(), 7, Submission{
		Title:   "Master services agreement",
		Summary: "Annual renewal",
		Risks:   []store.RiskInput{{RiskText: "Unlimited liability clause"}},
	})
	if err != nil {
		t.Fatalf("SubmitEdit() error = %v", err)
	}
	if payload["versionChanged"] != true {
		t.Fatalf("expected versionChanged true, got %v", payload["versionChanged"])
	}
	if plan.BumpDocument || plan.BumpReview || !plan.BumpRisk {
		t.Fatalf("only the risk counter should bump, got %+v", plan)
	}
	if len(plan.NewRisks) != 1 || plan.NewRisks[0].RiskText != "Unlimited liability clause" {
		t.Fatalf("unexpected new risks: %+v", plan.NewRisks)
	}
	if plan.PriorReviewID != 7 || plan.DocumentID != 3 {
		t.Fatalf("plan must target the latest version, got %+v", plan)
	}
}

func TestAddViewersRejectsEmptyList(t *testing.T) {
	fs := &fakeStore{
		getReviewVisibleToFn: func(context.Context, int64, string) (store.ReviewDetail, error) {
			return testDetail(7, 3, 2), nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.AddViewers(context.Background(), testSession(), 7, []string{"  ", "not-an-email"})
	assertDomainError(t, err, 422, "VALIDATION_ERROR")
}

func TestRemoveViewerKeepsReviewerGrant(t *testing.T) {
	fs := &fakeStore{
		getReviewVisibleToFn: func(context.Context, int64, string) (store.ReviewDetail, error) {
			return testDetail(7, 3, 2), nil
		},
	}
	svc := newTestService(fs)

	err := svc.RemoveViewer(context.Background(), testSession(), 7, "Reviewer@Example.com")
	assertDomainError(t, err, 422, "VALIDATION_ERROR")
}

func TestDeleteReviewPurgesObjectsAndIndex(t *testing.T) {
	fs := &fakeStore{
		getReviewVisibleToFn: func(context.Context, int64, string) (store.ReviewDetail, error) {
			return testDetail(7, 3, 2), nil
		},
		deleteDocumentCascadeFn: func(context.Context, int64) ([]string, []int64, error) {
			return []string{"att-1", "att-2"}, []int64{6, 7}, nil
		},
	}
	objects := &fakeObjects{}
	index := &fakeSearch{}
	svc := newTestService(fs)
	svc.objects = objects
	svc.search = index

	if err := svc.DeleteReview(context.Background(), testSession(), 7); err != nil {
		t.Fatalf("DeleteReview() error = %v", err)
	}
	if len(objects.removed) != 2 {
		t.Fatalf("expected 2 removed objects, got %v", objects.removed)
	}
	if len(index.deletedID) != 2 || index.deletedID[0] != "6" || index.deletedID[1] != "7" {
		t.Fatalf("expected review ids purged from index, got %v", index.deletedID)
	}
}

func TestSearchReviewsFiltersByViewerGrant(t *testing.T) {
	fs := &fakeStore{
		canUserViewFn: func(_ context.Context, reviewID int64, _ string) (bool, error) {
			return reviewID == 6, nil
		},
	}
	svc := newTestService(fs)
	svc.search = &fakeSearch{
		searchFn: func(search.Query) (search.Response, error) {
			return search.Response{
				Results: []search.Result{
					{ReviewID: "6", Title: "Visible"},
					{ReviewID: "7", Title: "Hidden"},
				},
				Total: 2,
			}, nil
		},
	}

	resp, err := svc.SearchReviews(context.Background(), testSession(), search.Query{Text: "agreement"})
	if err != nil {
		t.Fatalf("SearchReviews() error = %v", err)
	}
	if resp.Total != 1 || len(resp.Results) != 1 || resp.Results[0].ReviewID != "6" {
		t.Fatalf("expected only granted hits, got %+v", resp)
	}
}

func TestListVersionsReportsMissingWhenNoneVisible(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.ListVersions(context.Background(), testSession(), 3)
	assertDomainError(t, err, 404, "NOT_FOUND")
}
