package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"lexrev/api/internal/auth"
	"lexrev/api/internal/email"
	"lexrev/api/internal/rbac"
	"lexrev/api/internal/store"
)

var allowedDecisions = map[string]struct{}{
	"approved": {},
	"rejected": {},
}

// RequestApproval opens (or re-arms) an approval round on a review version
// and notifies each approver with a time-limited access link. Notification
// failures are reported per recipient but never fail the request itself.
func (s *Service) RequestApproval(ctx context.Context, sess Session, reviewID int64, approverEmails []string) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionEdit); err != nil {
		return nil, err
	}
	detail, err := s.store.GetReviewVisibleTo(ctx, reviewID, sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, err
	}

	approvers := make([]store.ApproverInput, 0, len(approverEmails))
	seen := make(map[string]struct{})
	for _, raw := range approverEmails {
		addr := strings.TrimSpace(strings.ToLower(raw))
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		name := addr
		if s.directory != nil && s.directory.IsConfigured() {
			name = s.directory.ResolveName(ctx, addr)
		}
		approvers = append(approvers, store.ApproverInput{Email: addr, Name: name})
	}
	if len(approvers) == 0 {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "at least one approver email is required", nil)
	}

	requestID, err := s.store.CreateApprovalRequest(ctx, reviewID, sess.Email, approvers)
	if err != nil {
		return nil, err
	}

	deliveries := make([]email.Delivery, 0, len(approvers))
	for _, approver := range approvers {
		delivery := email.Delivery{Email: approver.Email}
		if s.notifier != nil && s.notifier.IsConfigured() {
			link, err := s.approvalLink(reviewID, approver.Email)
			if err == nil {
				err = s.notifier.SendApprovalRequest(approver.Email, email.ApprovalRequestData{
					ApproverName: approver.Name,
					Title:        detail.Title,
					Version:      detail.Version,
					ReviewerName: detail.ReviewerName,
					ApprovalURL:  link,
				})
			}
			if err != nil {
				log.Printf("request approval: notify %s: %v", approver.Email, err)
				delivery.Error = err.Error()
			} else {
				delivery.Sent = true
			}
		}
		deliveries = append(deliveries, delivery)
	}

	approvals, err := s.store.ListApprovals(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	approvalItems := make([]map[string]any, 0, len(approvals))
	for _, approval := range approvals {
		approvalItems = append(approvalItems, approvalPayload(approval))
	}
	return map[string]any{
		"requestId":  requestID,
		"reviewId":   reviewID,
		"approvals":  approvalItems,
		"deliveries": deliveries,
	}, nil
}

func (s *Service) approvalLink(reviewID int64, approverEmail string) (string, error) {
	token, err := auth.IssueApprovalToken(s.signingKey, auth.ApprovalClaims{
		ReviewID:      reviewID,
		ApproverEmail: approverEmail,
		Exp:           time.Now().Add(s.cfg.ApprovalTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("issue approval token: %w", err)
	}
	return fmt.Sprintf("%s/reviews/%d/approve?token=%s", strings.TrimRight(s.cfg.BaseURL, "/"), reviewID, token), nil
}

// DecideApproval records an approver's terminal decision. Session identity is
// authoritative: the caller must be a named approver on the version, and a
// row that is no longer pending conflicts rather than being overwritten.
func (s *Service) DecideApproval(ctx context.Context, sess Session, reviewID int64, decision, comments string) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionApprove); err != nil {
		return nil, err
	}
	decision = strings.ToLower(strings.TrimSpace(decision))
	if _, ok := allowedDecisions[decision]; !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "decision must be approved or rejected", nil)
	}
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "comments are required", nil)
	}

	if _, err := s.store.GetApproval(ctx, reviewID, sess.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainError(http.StatusForbidden, "FORBIDDEN", "you are not an approver on this review", nil)
		}
		return nil, err
	}

	approval, err := s.store.DecideApproval(ctx, reviewID, sess.Email, decision, comments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainError(http.StatusConflict, "CONFLICT", "approval is already decided", nil)
	}
	if err != nil {
		return nil, err
	}

	pending, err := s.store.PendingApprovalCount(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		if err := s.store.CloseApprovalRequests(ctx, reviewID); err != nil {
			return nil, err
		}
	}

	if s.notifier != nil && s.notifier.IsConfigured() {
		detail, err := s.store.GetReviewForApprover(ctx, reviewID)
		if err != nil {
			log.Printf("decide approval: load review %d: %v", reviewID, err)
		} else if err := s.notifier.SendDecisionNotice(detail.ReviewerEmail, email.DecisionNoticeData{
			ReviewerName: detail.ReviewerName,
			Title:        detail.Title,
			Version:      detail.Version,
			ApproverName: approval.ApproverName,
			Decision:     decision,
			Comments:     comments,
		}); err != nil {
			log.Printf("decide approval: notify reviewer %s: %v", detail.ReviewerEmail, err)
		}
	}

	return approvalPayload(approval), nil
}

// OpenReviewWithToken resolves an approval link into the review it grants
// access to. The token bypasses the viewer filter; invalid or expired tokens
// behave like a denied login, not a missing review.
func (s *Service) OpenReviewWithToken(ctx context.Context, token string) (map[string]any, error) {
	claims, err := auth.ParseApprovalToken(s.signingKey, token)
	if err != nil {
		return nil, domainError(http.StatusForbidden, "FORBIDDEN", "invalid or expired approval link", nil)
	}
	detail, err := s.store.GetReviewForApprover(ctx, claims.ReviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, err
	}
	payload, err := s.reviewPayload(ctx, detail)
	if err != nil {
		return nil, err
	}
	payload["approverEmail"] = claims.ApproverEmail
	return payload, nil
}

// PendingApprovals lists the caller's open approval items across all reviews.
func (s *Service) PendingApprovals(ctx context.Context, sess Session) ([]map[string]any, error) {
	if err := requireAction(sess, rbac.ActionApprove); err != nil {
		return nil, err
	}
	pending, err := s.store.PendingForApprover(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(pending))
	for _, item := range pending {
		payload := approvalPayload(item.Approval)
		payload["documentId"] = item.DocumentID
		payload["version"] = item.Version
		payload["title"] = item.Title
		payload["reviewerName"] = item.ReviewerName
		items = append(items, payload)
	}
	return items, nil
}
