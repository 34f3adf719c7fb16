package store

import (
	"context"
	"fmt"
)

func (s *PostgresStore) ListCategories(ctx context.Context) ([]RiskCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM risk_categories
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := make([]RiskCategory, 0)
	for rows.Next() {
		var item RiskCategory
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, categoryID int64) (RiskCategory, error) {
	var item RiskCategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM risk_categories
		WHERE id = $1
	`, categoryID).Scan(&item.ID, &item.Name, &item.Description, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return RiskCategory{}, err
	}
	return item, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, name, description, createdBy string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO risk_categories (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, description, createdBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, categoryID int64, name, description string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE risk_categories
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
	`, categoryID, name, description)
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update category result: %w", err)
	}
	return affected > 0, nil
}

// CategoryUsage reports which risks reference a category, surfaced before a
// delete so callers can warn about the references that will be cleared.
func (s *PostgresStore) CategoryUsage(ctx context.Context, categoryID int64) (CategoryUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM review_risks
		WHERE category_id = $1
		ORDER BY id
	`, categoryID)
	if err != nil {
		return CategoryUsage{}, fmt.Errorf("category usage: %w", err)
	}
	defer rows.Close()

	usage := CategoryUsage{RiskIDs: make([]int64, 0)}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return CategoryUsage{}, fmt.Errorf("scan risk id: %w", err)
		}
		usage.RiskIDs = append(usage.RiskIDs, id)
	}
	if err := rows.Err(); err != nil {
		return CategoryUsage{}, fmt.Errorf("iterate risk ids: %w", err)
	}
	usage.TotalRisks = len(usage.RiskIDs)
	return usage, nil
}

// DeleteCategoryCascade clears the category reference on every risk pointing
// at it, then deletes the category, in one transaction. The schema carries no
// ON DELETE SET NULL; the clearing is deliberate application code.
func (s *PostgresStore) DeleteCategoryCascade(ctx context.Context, categoryID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin category delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE review_risks
		SET category_id = NULL
		WHERE category_id = $1
	`, categoryID); err != nil {
		return false, fmt.Errorf("clear category references: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM risk_categories WHERE id = $1`, categoryID)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit category delete: %w", err)
	}
	return affected > 0, nil
}
