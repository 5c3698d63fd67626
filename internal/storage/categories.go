package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

const categoryColumns = `id, user_id, name, COALESCE(description, ''), COALESCE(color, ''), created_at`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Description, &cat.Color, &cat.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory creates a new category for a user. Creating a category
// that already exists returns the existing one. Without an explicit
// color a unique random one is generated.
func (s *store) CreateCategory(ctx context.Context, userID int64, name, description, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND name = ?`,
		userID, name)
	if existing, err := scanCategory(row); err == nil {
		slog.Debug("category already exists", "name", name, "user_id", userID)
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check for existing category: %w", err)
	}

	if color == "" {
		generated, err := s.generateUniqueColor(ctx, userID)
		if err != nil {
			return nil, err
		}
		color = generated
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, description, color) VALUES (?, ?, ?, ?)`,
		userID, name, description, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created category", "name", name, "user_id", userID)
	return &model.Category{ID: id, UserID: userID, Name: name, Description: description, Color: color}, nil
}

// GetCategory loads a category by id, scoped to its owning user.
func (s *store) GetCategory(ctx context.Context, userID, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`,
		id, userID)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetCategories returns all of a user's categories ordered by name.
func (s *store) GetCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory updates a category's name, description, or color. Empty
// values leave the stored value untouched.
func (s *store) UpdateCategory(ctx context.Context, userID, id int64, name, description, color string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE categories SET
			name = COALESCE(NULLIF(?, ''), name),
			description = COALESCE(NULLIF(?, ''), description),
			color = COALESCE(NULLIF(?, ''), color)
		WHERE id = ? AND user_id = ?`,
		name, description, color, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	return nil
}

// DeleteCategory removes a category. Its transactions become
// uncategorized; its mappings are dropped by the schema cascade.
func (s *store) DeleteCategory(ctx context.Context, userID, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("failed to detach transactions: %w", err)
	}

	result, err := s.q.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}

	slog.Info("deleted category", "category_id", id, "user_id", userID)
	return nil
}

// generateUniqueColor picks a random mid-luminance hex color not already
// used by the user's categories.
func (s *store) generateUniqueColor(ctx context.Context, userID int64) (string, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT COALESCE(color, '') FROM categories WHERE user_id = ?`, userID)
	if err != nil {
		return "", fmt.Errorf("failed to query category colors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	existing := make(map[string]bool)
	for rows.Next() {
		var color string
		if err := rows.Scan(&color); err != nil {
			return "", fmt.Errorf("failed to scan color: %w", err)
		}
		if color != "" {
			existing[color] = true
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating colors: %w", err)
	}

	for i := 0; i < 1000; i++ {
		r, g, b := rand.Intn(256), rand.Intn(256), rand.Intn(256)

		// Skip colors too close to white or black.
		luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
		if luminance < 0.2 || luminance > 0.8 {
			continue
		}

		color := fmt.Sprintf("#%02X%02X%02X", r, g, b)
		if !existing[color] {
			return color, nil
		}
	}
	// The palette is effectively inexhaustible; this is unreachable in
	// practice but keeps the loop bounded.
	return "#808080", nil
}
