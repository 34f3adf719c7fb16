package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ApproverInput is one approver named in an approval request.
type ApproverInput struct {
	Email string
	Name  string
}

// CreateApprovalRequest records an approval round for a review version. The
// open request row is reused when one exists, and each approver gets one row
// keyed by (review_id, lower(email)): a re-request re-arms a decided row back
// to pending instead of inserting a duplicate.
func (s *PostgresStore) CreateApprovalRequest(ctx context.Context, reviewID int64, requestedBy string, approvers []ApproverInput) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin approval request: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var requestID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM approval_requests
		WHERE review_id = $1 AND status = 'pending'
		ORDER BY id DESC
		LIMIT 1
	`, reviewID).Scan(&requestID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO approval_requests (review_id, requested_by)
			VALUES ($1, $2)
			RETURNING id
		`, reviewID, requestedBy).Scan(&requestID)
	}
	if err != nil {
		return 0, fmt.Errorf("open approval request: %w", err)
	}

	for _, approver := range approvers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO review_approvals (review_id, approver_email, approver_name)
			VALUES ($1, $2, $3)
			ON CONFLICT (review_id, LOWER(approver_email))
			DO UPDATE SET status = 'pending',
				approver_name = EXCLUDED.approver_name,
				comments = '',
				decided_at = NULL
		`, reviewID, approver.Email, approver.Name); err != nil {
			return 0, fmt.Errorf("upsert approver: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit approval request: %w", err)
	}
	return requestID, nil
}

// DecideApproval moves one approver's row from pending to a terminal status.
// The conditional update is the whole concurrency story: whichever decide
// lands first wins, and everything else sees sql.ErrNoRows.
func (s *PostgresStore) DecideApproval(ctx context.Context, reviewID int64, approverEmail, status, comments string) (Approval, error) {
	var item Approval
	err := s.db.QueryRowContext(ctx, `
		UPDATE review_approvals
		SET status = $3, comments = $4, decided_at = NOW()
		WHERE review_id = $1 AND LOWER(approver_email) = LOWER($2) AND status = 'pending'
		RETURNING id, review_id, approver_email, approver_name, status, comments, created_at, decided_at
	`, reviewID, approverEmail, status, comments).Scan(
		&item.ID,
		&item.ReviewID,
		&item.ApproverEmail,
		&item.ApproverName,
		&item.Status,
		&item.Comments,
		&item.CreatedAt,
		&item.DecidedAt,
	)
	if err != nil {
		return Approval{}, err
	}
	return item, nil
}

// GetApproval returns an approver's row on a review version regardless of
// status. sql.ErrNoRows means the caller was never asked.
func (s *PostgresStore) GetApproval(ctx context.Context, reviewID int64, approverEmail string) (Approval, error) {
	var item Approval
	err := s.db.QueryRowContext(ctx, `
		SELECT id, review_id, approver_email, approver_name, status, comments, created_at, decided_at
		FROM review_approvals
		WHERE review_id = $1 AND LOWER(approver_email) = LOWER($2)
	`, reviewID, approverEmail).Scan(
		&item.ID,
		&item.ReviewID,
		&item.ApproverEmail,
		&item.ApproverName,
		&item.Status,
		&item.Comments,
		&item.CreatedAt,
		&item.DecidedAt,
	)
	if err != nil {
		return Approval{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListApprovals(ctx context.Context, reviewID int64) ([]Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, review_id, approver_email, approver_name, status, comments, created_at, decided_at
		FROM review_approvals
		WHERE review_id = $1
		ORDER BY created_at, id
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	items := make([]Approval, 0)
	for rows.Next() {
		var item Approval
		if err := rows.Scan(
			&item.ID,
			&item.ReviewID,
			&item.ApproverEmail,
			&item.ApproverName,
			&item.Status,
			&item.Comments,
			&item.CreatedAt,
			&item.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}
	return items, nil
}

// PendingForApprover lists an approver's open items across all reviews,
// joined with document context for display.
func (s *PostgresStore) PendingForApprover(ctx context.Context, approverEmail string) ([]PendingApproval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.review_id, a.approver_email, a.approver_name, a.status, a.comments, a.created_at, a.decided_at,
			r.document_id, r.version, d.title, r.reviewer_name
		FROM review_approvals a
		JOIN reviews r ON r.id = a.review_id
		JOIN documents d ON d.id = r.document_id
		WHERE LOWER(a.approver_email) = LOWER($1) AND a.status = 'pending'
		ORDER BY a.created_at DESC
	`, approverEmail)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	defer rows.Close()

	items := make([]PendingApproval, 0)
	for rows.Next() {
		var item PendingApproval
		if err := rows.Scan(
			&item.ID,
			&item.ReviewID,
			&item.ApproverEmail,
			&item.ApproverName,
			&item.Status,
			&item.Comments,
			&item.CreatedAt,
			&item.DecidedAt,
			&item.DocumentID,
			&item.Version,
			&item.Title,
			&item.ReviewerName,
		); err != nil {
			return nil, fmt.Errorf("scan pending approval: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending approvals: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) PendingApprovalCount(ctx context.Context, reviewID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM review_approvals
		WHERE review_id = $1 AND status = 'pending'
	`, reviewID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending approvals: %w", err)
	}
	return count, nil
}

// CloseApprovalRequests marks a review's open request rows closed once no
// pending approver rows remain.
func (s *PostgresStore) CloseApprovalRequests(ctx context.Context, reviewID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE approval_requests
		SET status = 'closed'
		WHERE review_id = $1 AND status = 'pending'
	`, reviewID)
	if err != nil {
		return fmt.Errorf("close approval requests: %w", err)
	}
	return nil
}
