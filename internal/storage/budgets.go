package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

const budgetColumns = `
	id, user_id, category_id, account_id, amount, period,
	is_active, rollover_enabled, alert_threshold,
	start_date, end_date, created_at`

func scanBudget(row interface{ Scan(...any) error }) (*model.Budget, error) {
	var (
		budget     model.Budget
		categoryID sql.NullInt64
		accountID  sql.NullInt64
		startDate  sql.NullTime
		endDate    sql.NullTime
	)
	err := row.Scan(&budget.ID, &budget.UserID, &categoryID, &accountID,
		&budget.Amount, &budget.Period, &budget.IsActive, &budget.RolloverEnabled,
		&budget.AlertThreshold, &startDate, &endDate, &budget.CreatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		budget.CategoryID = &categoryID.Int64
	}
	if accountID.Valid {
		budget.AccountID = &accountID.Int64
	}
	if startDate.Valid {
		budget.StartDate = &startDate.Time
	}
	if endDate.Valid {
		budget.EndDate = &endDate.Time
	}
	return &budget, nil
}

// SaveBudget creates or updates the budget for a (category, account,
// period) scope. NULL scope fields compare as equal here, so there is at
// most one budget per scope per user. On update only the amount, active
// flag, rollover flag and alert threshold change; the budget keeps its
// original start date and history.
func (s *store) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	var existingID int64
	err := s.q.QueryRowContext(ctx, `
		SELECT id FROM budgets
		WHERE user_id = ? AND category_id IS ? AND account_id IS ? AND period = ?`,
		budget.UserID, budget.CategoryID, budget.AccountID, budget.Period,
	).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, insErr := s.q.ExecContext(ctx, `
			INSERT INTO budgets (user_id, category_id, account_id, amount, period,
				is_active, rollover_enabled, alert_threshold, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			budget.UserID, budget.CategoryID, budget.AccountID, budget.Amount,
			budget.Period, budget.IsActive, budget.RolloverEnabled,
			budget.AlertThreshold, budget.StartDate, budget.EndDate,
		)
		if insErr != nil {
			return fmt.Errorf("failed to create budget: %w", insErr)
		}
		id, idErr := result.LastInsertId()
		if idErr != nil {
			return fmt.Errorf("failed to get budget ID: %w", idErr)
		}
		budget.ID = id
		return nil
	case err != nil:
		return fmt.Errorf("failed to query budget: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		UPDATE budgets
		SET amount = ?, is_active = ?, rollover_enabled = ?, alert_threshold = ?
		WHERE id = ?`,
		budget.Amount, budget.IsActive, budget.RolloverEnabled,
		budget.AlertThreshold, existingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	budget.ID = existingID
	return nil
}

// GetBudget returns one of a user's budgets by ID.
func (s *store) GetBudget(ctx context.Context, userID, id int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	budget, err := scanBudget(s.q.QueryRowContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = ? AND id = ?`,
		userID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: budget %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return budget, nil
}

// GetBudgets returns all of a user's budgets, newest first.
func (s *store) GetBudgets(ctx context.Context, userID int64) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		budget, scanErr := scanBudget(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", scanErr)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// SetBudgetActive flips a budget's active flag.
func (s *store) SetBudgetActive(ctx context.Context, userID, id int64, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE budgets SET is_active = ? WHERE user_id = ? AND id = ?`,
		active, userID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: budget %d", common.ErrNotFound, id)
	}
	return nil
}

// DeleteBudget removes a budget. Its history cascades away with it.
func (s *store) DeleteBudget(ctx context.Context, userID, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		DELETE FROM budgets WHERE user_id = ? AND id = ?`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: budget %d", common.ErrNotFound, id)
	}
	return nil
}

// SumExpenses totals expense amounts on a user's accounts inside an
// inclusive date range. A nil categoryID or accountID leaves that
// dimension unconstrained.
func (s *store) SumExpenses(ctx context.Context, userID int64, start, end time.Time, categoryID, accountID *int64) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	query := `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.user_id = ?
			AND t.transaction_type = ?
			AND t.value_date >= ? AND t.value_date <= ?`
	args := []any{userID, model.TypeExpense, start, end}

	if categoryID != nil {
		query += ` AND t.category_id = ?`
		args = append(args, *categoryID)
	}
	if accountID != nil {
		query += ` AND t.account_id = ?`
		args = append(args, *accountID)
	}

	var total float64
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

// SaveBudgetHistory stores a period snapshot and fills in its ID.
func (s *store) SaveBudgetHistory(ctx context.Context, hist *model.BudgetHistory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if hist == nil {
		return fmt.Errorf("%w: history", ErrNilParameter)
	}
	if hist.BudgetID == 0 {
		return fmt.Errorf("%w: missing budget ID", ErrInvalidBudget)
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO budget_history (budget_id, period_start, period_end,
			spent_amount, budget_amount, rollover_amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		hist.BudgetID, hist.PeriodStart, hist.PeriodEnd,
		hist.SpentAmount, hist.BudgetAmount, hist.RolloverAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to save budget history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get history ID: %w", err)
	}
	hist.ID = id
	return nil
}

// LatestBudgetHistory returns a budget's most recent period snapshot,
// or nil when none has been taken yet.
func (s *store) LatestBudgetHistory(ctx context.Context, budgetID int64) (*model.BudgetHistory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var hist model.BudgetHistory
	err := s.q.QueryRowContext(ctx, `
		SELECT id, budget_id, period_start, period_end,
			spent_amount, budget_amount, rollover_amount, created_at
		FROM budget_history
		WHERE budget_id = ?
		ORDER BY period_end DESC, id DESC
		LIMIT 1`,
		budgetID,
	).Scan(&hist.ID, &hist.BudgetID, &hist.PeriodStart, &hist.PeriodEnd,
		&hist.SpentAmount, &hist.BudgetAmount, &hist.RolloverAmount, &hist.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget history: %w", err)
	}
	return &hist, nil
}
