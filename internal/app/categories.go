package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"lexrev/api/internal/rbac"
	"lexrev/api/internal/store"
)

func categoryPayload(category store.RiskCategory) map[string]any {
	return map[string]any{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
		"createdBy":   category.CreatedBy,
		"createdAt":   category.CreatedAt.Format(time.RFC3339),
		"updatedAt":   category.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Service) ListCategories(ctx context.Context, sess Session) ([]map[string]any, error) {
	if err := requireAction(sess, rbac.ActionView); err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(categories))
	for _, category := range categories {
		items = append(items, categoryPayload(category))
	}
	return items, nil
}

func (s *Service) CreateCategory(ctx context.Context, sess Session, name, description string) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionSettings); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	categoryID, err := s.store.CreateCategory(ctx, name, strings.TrimSpace(description), sess.Email)
	if err != nil {
		return nil, err
	}
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return categoryPayload(category), nil
}

func (s *Service) UpdateCategory(ctx context.Context, sess Session, categoryID int64, name, description string) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionSettings); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	changed, err := s.store.UpdateCategory(ctx, categoryID, name, strings.TrimSpace(description))
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "category not found", nil)
	}
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return categoryPayload(category), nil
}

// DeleteCategory removes a category after clearing the references on its
// risks. The response reports how many risks were detached.
func (s *Service) DeleteCategory(ctx context.Context, sess Session, categoryID int64) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionSettings); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "category not found", nil)
		}
		return nil, err
	}
	usage, err := s.store.CategoryUsage(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	deleted, err := s.store.DeleteCategoryCascade(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "category not found", nil)
	}
	return map[string]any{
		"deleted":       true,
		"detachedRisks": usage.TotalRisks,
	}, nil
}

// CategoryUsage reports which risks reference a category, for confirmation
// prompts before deletion.
func (s *Service) CategoryUsage(ctx context.Context, sess Session, categoryID int64) (map[string]any, error) {
	if err := requireAction(sess, rbac.ActionSettings); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "category not found", nil)
		}
		return nil, err
	}
	usage, err := s.store.CategoryUsage(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalRisks": usage.TotalRisks,
		"riskIds":    usage.RiskIDs,
	}, nil
}
