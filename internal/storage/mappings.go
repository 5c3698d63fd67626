package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

const mappingColumns = `id, user_id, category_id, mapping_type, pattern, created_at`

func scanMapping(row interface{ Scan(...any) error }) (*model.CategoryMapping, error) {
	var m model.CategoryMapping
	var mappingType string
	err := row.Scan(&m.ID, &m.UserID, &m.CategoryID, &mappingType, &m.Pattern, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Type = model.MappingType(mappingType)
	return &m, nil
}

// CreateMapping stores a category mapping, enforcing pattern ownership:
// a pattern maps to exactly one category per user and mapping type. An
// identical existing mapping is reused; one owned by another category is
// deleted first.
func (s *store) CreateMapping(ctx context.Context, mapping *model.CategoryMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMapping(mapping); err != nil {
		return err
	}

	existing, err := s.GetMappingByPattern(ctx, mapping.UserID, mapping.Type, mapping.Pattern)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.CategoryID == mapping.CategoryID {
			*mapping = *existing
			return nil
		}
		if err := s.DeleteMapping(ctx, mapping.UserID, existing.ID); err != nil {
			return err
		}
		slog.Info("removed superseded mapping",
			"pattern", mapping.Pattern,
			"old_category", existing.CategoryID)
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO category_mappings (user_id, category_id, mapping_type, pattern)
		VALUES (?, ?, ?, ?)`,
		mapping.UserID, mapping.CategoryID, string(mapping.Type), mapping.Pattern)
	if err != nil {
		return fmt.Errorf("failed to create mapping: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get mapping ID: %w", err)
	}
	mapping.ID = id
	return nil
}

// GetMappings returns all of a user's category mappings.
func (s *store) GetMappings(ctx context.Context, userID int64) ([]model.CategoryMapping, error) {
	return s.queryMappings(ctx,
		`SELECT `+mappingColumns+` FROM category_mappings WHERE user_id = ? ORDER BY id`,
		userID)
}

// GetMappingsByType returns a user's mappings of one mapping type.
func (s *store) GetMappingsByType(ctx context.Context, userID int64, mappingType model.MappingType) ([]model.CategoryMapping, error) {
	return s.queryMappings(ctx,
		`SELECT `+mappingColumns+` FROM category_mappings WHERE user_id = ? AND mapping_type = ? ORDER BY id`,
		userID, string(mappingType))
}

func (s *store) queryMappings(ctx context.Context, query string, args ...any) ([]model.CategoryMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.CategoryMapping
	for rows.Next() {
		m, scanErr := scanMapping(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", scanErr)
		}
		mappings = append(mappings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mappings: %w", err)
	}
	return mappings, nil
}

// GetMappingByPattern looks up the owner of an exact (type, pattern)
// pair. A missing mapping is a normal outcome, returned as nil.
func (s *store) GetMappingByPattern(ctx context.Context, userID int64, mappingType model.MappingType, pattern string) (*model.CategoryMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx,
		`SELECT `+mappingColumns+` FROM category_mappings
		 WHERE user_id = ? AND mapping_type = ? AND pattern = ?`,
		userID, string(mappingType), pattern)
	m, err := scanMapping(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping: %w", err)
	}
	return m, nil
}

// DeleteMapping removes a mapping owned by the user.
func (s *store) DeleteMapping(ctx context.Context, userID, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`DELETE FROM category_mappings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: mapping %d", common.ErrNotFound, id)
	}
	return nil
}

// GetCounterpartyCategory returns the category linked to a structured
// counterparty entity, or nil when no link exists.
func (s *store) GetCounterpartyCategory(ctx context.Context, userID, counterpartyID int64) (*int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var categoryID int64
	err := s.q.QueryRowContext(ctx,
		`SELECT category_id FROM counterparty_categories WHERE user_id = ? AND counterparty_id = ?`,
		userID, counterpartyID).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query counterparty category: %w", err)
	}
	return &categoryID, nil
}
