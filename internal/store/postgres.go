package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const reviewDetailColumns = `
	r.id, r.document_id, r.version, r.reviewer_email, r.reviewer_name, r.review_date, r.created_at,
	d.title, d.summary, d.description, d.document_version, d.created_by
`

func scanReviewDetail(row interface{ Scan(...any) error }) (ReviewDetail, error) {
	var item ReviewDetail
	err := row.Scan(
		&item.ID,
		&item.DocumentID,
		&item.Version,
		&item.ReviewerEmail,
		&item.ReviewerName,
		&item.ReviewDate,
		&item.CreatedAt,
		&item.Title,
		&item.Summary,
		&item.Description,
		&item.DocumentVersion,
		&item.DocumentCreatedBy,
	)
	return item, err
}

// GetReviewVisibleTo returns a version only when the caller holds a viewer
// grant on it. A missing grant and a missing row are indistinguishable.
func (s *PostgresStore) GetReviewVisibleTo(ctx context.Context, reviewID int64, userEmail string) (ReviewDetail, error) {
	query := `
		SELECT ` + reviewDetailColumns + `
		FROM reviews r
		JOIN documents d ON d.id = r.document_id
		JOIN review_viewers rv ON rv.review_id = r.id
		WHERE r.id = $1 AND LOWER(rv.user_email) = LOWER($2) AND rv.can_view
	`
	return scanReviewDetail(s.db.QueryRowContext(ctx, query, reviewID, userEmail))
}

// GetReviewForApprover reads a version without the viewer filter. Approvers
// are not necessarily viewers; the approval token gates access instead.
func (s *PostgresStore) GetReviewForApprover(ctx context.Context, reviewID int64) (ReviewDetail, error) {
	query := `
		SELECT ` + reviewDetailColumns + `
		FROM reviews r
		JOIN documents d ON d.id = r.document_id
		WHERE r.id = $1
	`
	return scanReviewDetail(s.db.QueryRowContext(ctx, query, reviewID))
}

func (s *PostgresStore) GetDocument(ctx context.Context, documentID int64) (Document, error) {
	var item Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, summary, description, document_version, review_version, risk_version, created_by, created_at, updated_at
		FROM documents
		WHERE id = $1
	`, documentID).Scan(
		&item.ID,
		&item.Title,
		&item.Summary,
		&item.Description,
		&item.DocumentVersion,
		&item.ReviewVersion,
		&item.RiskVersion,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, userEmail string, filters ListFilters) ([]ReviewSummary, error) {
	where := []string{"LOWER(rv.user_email) = LOWER($1)", "rv.can_view"}
	params := []any{userEmail}

	switch filters.Status {
	case "pending":
		where = append(where, "EXISTS (SELECT 1 FROM review_approvals ra WHERE ra.review_id = r.id AND ra.status = 'pending')")
	case "approved":
		where = append(where, "EXISTS (SELECT 1 FROM review_approvals ra WHERE ra.review_id = r.id AND ra.status = 'approved')")
	case "in_review":
		where = append(where, "NOT EXISTS (SELECT 1 FROM review_approvals ra WHERE ra.review_id = r.id)")
	}

	if filters.Search != "" {
		params = append(params, "%"+filters.Search+"%")
		n := len(params)
		where = append(where, fmt.Sprintf("(d.title ILIKE $%d OR d.summary ILIKE $%d)", n, n))
	}

	if len(filters.Approvers) > 0 {
		placeholders := make([]string, 0, len(filters.Approvers))
		for _, email := range filters.Approvers {
			params = append(params, email)
			placeholders = append(placeholders, fmt.Sprintf("LOWER($%d)", len(params)))
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM review_approvals ra WHERE ra.review_id = r.id AND LOWER(ra.approver_email) IN (%s))",
			strings.Join(placeholders, ","),
		))
	}

	if len(filters.Reviewers) > 0 {
		placeholders := make([]string, 0, len(filters.Reviewers))
		for _, email := range filters.Reviewers {
			params = append(params, email)
			placeholders = append(placeholders, fmt.Sprintf("LOWER($%d)", len(params)))
		}
		where = append(where, fmt.Sprintf("LOWER(r.reviewer_email) IN (%s)", strings.Join(placeholders, ",")))
	}

	query := `
		SELECT ` + reviewDetailColumns + `,
			(SELECT COUNT(*) FROM review_approvals ra WHERE ra.review_id = r.id AND ra.status = 'pending'),
			(SELECT COUNT(*) FROM review_approvals ra WHERE ra.review_id = r.id AND ra.status = 'approved')
		FROM reviews r
		JOIN documents d ON d.id = r.document_id
		JOIN review_viewers rv ON rv.review_id = r.id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY r.review_date DESC, r.version DESC
	`
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]ReviewSummary, 0)
	for rows.Next() {
		var item ReviewSummary
		if err := rows.Scan(
			&item.ID,
			&item.DocumentID,
			&item.Version,
			&item.ReviewerEmail,
			&item.ReviewerName,
			&item.ReviewDate,
			&item.CreatedAt,
			&item.Title,
			&item.Summary,
			&item.Description,
			&item.DocumentVersion,
			&item.DocumentCreatedBy,
			&item.PendingApprovals,
			&item.ApprovedCount,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return items, nil
}

// ListVersions returns the versions of a document the user may view, newest
// first.
func (s *PostgresStore) ListVersions(ctx context.Context, documentID int64, userEmail string) ([]ReviewDetail, error) {
	query := `
		SELECT ` + reviewDetailColumns + `
		FROM reviews r
		JOIN documents d ON d.id = r.document_id
		JOIN review_viewers rv ON rv.review_id = r.id
		WHERE r.document_id = $1 AND LOWER(rv.user_email) = LOWER($2) AND rv.can_view
		ORDER BY r.version DESC, r.id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, documentID, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	items := make([]ReviewDetail, 0)
	for rows.Next() {
		item, err := scanReviewDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return items, nil
}

// LatestVersionState loads the diff baseline for an edit: the document row
// identified by reviewID plus the comment/risk/observation state visible at
// its latest version.
func (s *PostgresStore) LatestVersionState(ctx context.Context, reviewID int64) (VersionState, error) {
	var state VersionState

	var documentID int64
	err := s.db.QueryRowContext(ctx, `SELECT document_id FROM reviews WHERE id = $1`, reviewID).Scan(&documentID)
	if err != nil {
		return VersionState{}, err
	}

	state.Document, err = s.GetDocument(ctx, documentID)
	if err != nil {
		return VersionState{}, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT id, document_id, version, reviewer_email, reviewer_name, review_date, created_at
		FROM reviews
		WHERE document_id = $1
		ORDER BY version DESC, id DESC
		LIMIT 1
	`, documentID).Scan(
		&state.Latest.ID,
		&state.Latest.DocumentID,
		&state.Latest.Version,
		&state.Latest.ReviewerEmail,
		&state.Latest.ReviewerName,
		&state.Latest.ReviewDate,
		&state.Latest.CreatedAt,
	)
	if err != nil {
		return VersionState{}, fmt.Errorf("latest review: %w", err)
	}

	state.Comments, err = s.commentsThrough(ctx, documentID, state.Latest.Version, state.Latest.ID)
	if err != nil {
		return VersionState{}, err
	}
	state.Risks, err = s.risksThrough(ctx, documentID, state.Latest.Version, state.Latest.ID)
	if err != nil {
		return VersionState{}, err
	}
	state.Observations, err = s.GetObservations(ctx, state.Latest.ID)
	if err != nil {
		return VersionState{}, err
	}
	return state, nil
}

// ReviewComments returns the comments visible at a version: rows appended at
// that version plus everything inherited from earlier versions of the same
// document. Old rows stay attributed to the version that introduced them.
func (s *PostgresStore) ReviewComments(ctx context.Context, reviewID int64) ([]ReviewComment, error) {
	documentID, version, err := s.reviewLineage(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.commentsThrough(ctx, documentID, version, reviewID)
}

// ReviewRisks returns the risks visible at a version, inherited rows included.
func (s *PostgresStore) ReviewRisks(ctx context.Context, reviewID int64) ([]Risk, error) {
	documentID, version, err := s.reviewLineage(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.risksThrough(ctx, documentID, version, reviewID)
}

func (s *PostgresStore) reviewLineage(ctx context.Context, reviewID int64) (int64, int, error) {
	var documentID int64
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT document_id, version FROM reviews WHERE id = $1`, reviewID).Scan(&documentID, &version)
	if err != nil {
		return 0, 0, err
	}
	return documentID, version, nil
}

// Lineage cutoffs compare (version, row id), not version alone: independent
// counters can stamp two snapshot rows with the same display version, and a
// snapshot must never see content introduced by a later row.
func (s *PostgresStore) commentsThrough(ctx context.Context, documentID int64, version int, reviewID int64) ([]ReviewComment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.review_id, c.reviewer_email, c.reviewer_name, c.comments, c.review_date
		FROM review_comments c
		JOIN reviews r ON r.id = c.review_id
		WHERE r.document_id = $1 AND (r.version < $2 OR (r.version = $2 AND r.id <= $3))
		ORDER BY c.id
	`, documentID, version, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]ReviewComment, 0)
	for rows.Next() {
		var item ReviewComment
		if err := rows.Scan(&item.ID, &item.ReviewID, &item.ReviewerEmail, &item.ReviewerName, &item.Comments, &item.ReviewDate); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) risksThrough(ctx context.Context, documentID int64, version int, reviewID int64) ([]Risk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT k.id, k.review_id, k.risk_text, k.legal_suggestion, k.final_definition, k.category_id, k.created_at
		FROM review_risks k
		JOIN reviews r ON r.id = k.review_id
		WHERE r.document_id = $1 AND (r.version < $2 OR (r.version = $2 AND r.id <= $3))
		ORDER BY k.id
	`, documentID, version, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	defer rows.Close()

	items := make([]Risk, 0)
	for rows.Next() {
		var item Risk
		if err := rows.Scan(&item.ID, &item.ReviewID, &item.RiskText, &item.LegalSuggestion, &item.FinalDefinition, &item.CategoryID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan risk: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risks: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetObservations(ctx context.Context, reviewID int64) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT observations FROM review_observations WHERE review_id = $1`, reviewID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get observations: %w", err)
	}
	return text, nil
}

// CreateReview creates a document and its first version atomically. All three
// version counters start at 1 and the author receives the implicit viewer
// grant.
func (s *PostgresStore) CreateReview(ctx context.Context, input CreateReviewInput) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create review: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var documentID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (title, summary, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, input.Title, input.Summary, input.Description, input.ReviewerEmail).Scan(&documentID)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}

	var reviewID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reviews (document_id, version, reviewer_email, reviewer_name)
		VALUES ($1, 1, $2, $3)
		RETURNING id
	`, documentID, input.ReviewerEmail, input.ReviewerName).Scan(&reviewID)
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}

	if err := insertComments(ctx, tx, reviewID, input.ReviewerEmail, input.ReviewerName, input.Comments); err != nil {
		return 0, err
	}
	if err := insertRisks(ctx, tx, reviewID, input.Risks); err != nil {
		return 0, err
	}
	if input.Observations != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO review_observations (review_id, observations)
			VALUES ($1, $2)
		`, reviewID, input.Observations); err != nil {
			return 0, fmt.Errorf("insert observations: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_viewers (review_id, user_email, can_view)
		VALUES ($1, $2, TRUE)
	`, reviewID, input.ReviewerEmail); err != nil {
		return 0, fmt.Errorf("grant author viewer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create review: %w", err)
	}
	return reviewID, nil
}

// ApplyEdit persists a version bump in one transaction: counters increment as
// a single conditional update (the serialization point for concurrent edits),
// the new version row carries forward viewer grants and attachment references,
// and only newly detected comments/risks are appended.
func (s *PostgresStore) ApplyEdit(ctx context.Context, plan EditPlan) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin apply edit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var displayVersion int
	err = tx.QueryRowContext(ctx, `
		UPDATE documents
		SET title = $2,
			summary = $3,
			description = $4,
			document_version = document_version + CASE WHEN $5 THEN 1 ELSE 0 END,
			review_version = review_version + CASE WHEN $6 THEN 1 ELSE 0 END,
			risk_version = risk_version + CASE WHEN $7 THEN 1 ELSE 0 END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING GREATEST(document_version, review_version, risk_version)
	`, plan.DocumentID, plan.Title, plan.Summary, plan.Description, plan.BumpDocument, plan.BumpReview, plan.BumpRisk).Scan(&displayVersion)
	if err != nil {
		return 0, fmt.Errorf("bump document versions: %w", err)
	}

	var reviewID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reviews (document_id, version, reviewer_email, reviewer_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, plan.DocumentID, displayVersion, plan.EditorEmail, plan.EditorName).Scan(&reviewID)
	if err != nil {
		return 0, fmt.Errorf("insert review version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_viewers (review_id, user_email, can_view, granted_at)
		SELECT $2, user_email, can_view, granted_at
		FROM review_viewers
		WHERE review_id = $1
	`, plan.PriorReviewID, reviewID); err != nil {
		return 0, fmt.Errorf("copy viewers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_viewers (review_id, user_email, can_view)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (review_id, user_email) DO UPDATE SET can_view = TRUE
	`, reviewID, plan.EditorEmail); err != nil {
		return 0, fmt.Errorf("grant editor viewer: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_attachments (review_id, file_name, storage_key, file_size, uploaded_by, uploaded_at)
		SELECT $2, file_name, storage_key, file_size, uploaded_by, uploaded_at
		FROM review_attachments
		WHERE review_id = $1
	`, plan.PriorReviewID, reviewID); err != nil {
		return 0, fmt.Errorf("copy attachments: %w", err)
	}

	if err := insertComments(ctx, tx, reviewID, plan.EditorEmail, plan.EditorName, plan.NewComments); err != nil {
		return 0, err
	}
	if err := insertRisks(ctx, tx, reviewID, plan.NewRisks); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_observations (review_id, observations)
		VALUES ($1, $2)
		ON CONFLICT (review_id) DO UPDATE SET observations = EXCLUDED.observations
	`, reviewID, plan.Observations); err != nil {
		return 0, fmt.Errorf("upsert observations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit apply edit: %w", err)
	}
	return reviewID, nil
}

func insertComments(ctx context.Context, tx *sql.Tx, reviewID int64, email, name string, comments []string) error {
	for _, text := range comments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO review_comments (review_id, reviewer_email, reviewer_name, comments)
			VALUES ($1, $2, $3, $4)
		`, reviewID, email, name, text); err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
	}
	return nil
}

func insertRisks(ctx context.Context, tx *sql.Tx, reviewID int64, risks []RiskInput) error {
	for _, risk := range risks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO review_risks (review_id, risk_text, legal_suggestion, final_definition, category_id)
			VALUES ($1, $2, $3, $4, $5)
		`, reviewID, risk.RiskText, risk.LegalSuggestion, risk.FinalDefinition, risk.CategoryID); err != nil {
			return fmt.Errorf("insert risk: %w", err)
		}
	}
	return nil
}

// DeleteDocumentCascade removes a document and every row referencing any of
// its versions, children first, in one transaction. It returns the storage
// keys of the deleted attachment references and the deleted review IDs so the
// caller can clean up the object store and the search index.
func (s *PostgresStore) DeleteDocumentCascade(ctx context.Context, documentID int64) ([]string, []int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin cascade delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT DISTINCT a.storage_key
		FROM review_attachments a
		JOIN reviews r ON r.id = a.review_id
		WHERE r.document_id = $1
	`, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("collect storage keys: %w", err)
	}
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan storage key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("iterate storage keys: %w", err)
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, `SELECT id FROM reviews WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("collect review ids: %w", err)
	}
	reviewIDs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan review id: %w", err)
		}
		reviewIDs = append(reviewIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("iterate review ids: %w", err)
	}
	rows.Close()

	children := []string{
		"review_approvals",
		"approval_requests",
		"review_viewers",
		"review_attachments",
		"review_observations",
		"review_risks",
		"review_comments",
	}
	for _, table := range children {
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE review_id IN (SELECT id FROM reviews WHERE document_id = $1)
		`, table)
		if _, err := tx.ExecContext(ctx, query, documentID); err != nil {
			return nil, nil, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE document_id = $1`, documentID); err != nil {
		return nil, nil, fmt.Errorf("delete reviews: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID); err != nil {
		return nil, nil, fmt.Errorf("delete document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit cascade delete: %w", err)
	}
	return keys, reviewIDs, nil
}

func (s *PostgresStore) AddViewers(ctx context.Context, reviewID int64, userEmails []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add viewers: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, email := range userEmails {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO review_viewers (review_id, user_email, can_view)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (review_id, user_email) DO UPDATE SET can_view = TRUE
		`, reviewID, email); err != nil {
			return fmt.Errorf("add viewer: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add viewers: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveViewer(ctx context.Context, reviewID int64, userEmail string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM review_viewers
		WHERE review_id = $1 AND LOWER(user_email) = LOWER($2)
	`, reviewID, userEmail)
	if err != nil {
		return fmt.Errorf("remove viewer: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListViewers(ctx context.Context, reviewID int64) ([]Viewer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT review_id, user_email, can_view, granted_at
		FROM review_viewers
		WHERE review_id = $1 AND can_view
		ORDER BY granted_at
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list viewers: %w", err)
	}
	defer rows.Close()

	items := make([]Viewer, 0)
	for rows.Next() {
		var item Viewer
		if err := rows.Scan(&item.ReviewID, &item.UserEmail, &item.CanView, &item.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan viewer: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate viewers: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CanUserView(ctx context.Context, reviewID int64, userEmail string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM review_viewers
			WHERE review_id = $1 AND LOWER(user_email) = LOWER($2) AND can_view
		)
	`, reviewID, userEmail).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check viewer: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) AddAttachment(ctx context.Context, att Attachment) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO review_attachments (review_id, file_name, storage_key, file_size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, att.ReviewID, att.FileName, att.StorageKey, att.FileSize, att.UploadedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert attachment: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetAttachment(ctx context.Context, attachmentID int64) (Attachment, error) {
	var item Attachment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, review_id, file_name, storage_key, file_size, uploaded_by, uploaded_at
		FROM review_attachments
		WHERE id = $1
	`, attachmentID).Scan(&item.ID, &item.ReviewID, &item.FileName, &item.StorageKey, &item.FileSize, &item.UploadedBy, &item.UploadedAt)
	if err != nil {
		return Attachment{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListAttachments(ctx context.Context, reviewID int64) ([]Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, review_id, file_name, storage_key, file_size, uploaded_by, uploaded_at
		FROM review_attachments
		WHERE review_id = $1
		ORDER BY uploaded_at DESC
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	items := make([]Attachment, 0)
	for rows.Next() {
		var item Attachment
		if err := rows.Scan(&item.ID, &item.ReviewID, &item.FileName, &item.StorageKey, &item.FileSize, &item.UploadedBy, &item.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return items, nil
}
