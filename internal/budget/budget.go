// Package budget tracks spending against recurring per-category and
// per-account limits.
package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/amalhadhrami/ghwazi/internal/service"
)

// Service computes budget status from stored transactions. It derives
// everything from the transaction table at read time; the only state it
// writes is period snapshots for rollover.
type Service struct {
	store service.Storage
	clock func() time.Time
}

// New creates a budget service backed by the given store. A nil clock
// means time.Now.
func New(store service.Storage, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

// PeriodRange returns the inclusive start and end of the period
// containing anchor. Weeks start on Monday 00:00; months and years on
// their first day. The end is the last whole second of the period.
func PeriodRange(period model.BudgetPeriod, anchor time.Time) (start, end time.Time) {
	switch model.ParseBudgetPeriod(string(period)) {
	case model.PeriodWeekly:
		// time.Weekday counts Sunday as 0; shift so Monday is 0.
		offset := (int(anchor.Weekday()) + 6) % 7
		day := anchor.AddDate(0, 0, -offset)
		start = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, anchor.Location())
		end = start.AddDate(0, 0, 7).Add(-time.Second)
	case model.PeriodYearly:
		start = time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, anchor.Location())
		end = start.AddDate(1, 0, 0).Add(-time.Second)
	default:
		start = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		end = start.AddDate(0, 1, 0).Add(-time.Second)
	}
	return start, end
}

// Alerts carries the usage alert levels of one budget status.
type Alerts struct {
	Threshold      float64
	Gte50          bool
	Gte80          bool
	Gte100         bool
	CustomExceeded bool
}

// Status is the live state of a budget for its current period.
type Status struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Budget      model.Budget
	Spent       float64
	Rollover    float64
	Available   float64
	Remaining   float64
	PercentUsed float64
	Alerts      Alerts
}

// CurrentStatus computes a budget's state for the period containing the
// current time. The budget's own start date narrows the period from the
// left, its end date from the right. Rollover adds the previous period
// snapshot's unspent amount to the available total.
func (s *Service) CurrentStatus(ctx context.Context, budget *model.Budget) (*Status, error) {
	start, end := PeriodRange(budget.Period, s.clock())
	if budget.StartDate != nil && budget.StartDate.After(start) {
		start = *budget.StartDate
	}
	if budget.EndDate != nil && budget.EndDate.Before(end) {
		end = *budget.EndDate
	}

	spent, err := s.store.SumExpenses(ctx, budget.UserID, start, end, budget.CategoryID, budget.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum spending for budget %d: %w", budget.ID, err)
	}

	var rollover float64
	if budget.RolloverEnabled {
		hist, histErr := s.store.LatestBudgetHistory(ctx, budget.ID)
		if histErr != nil {
			return nil, fmt.Errorf("failed to load history for budget %d: %w", budget.ID, histErr)
		}
		if hist != nil {
			rollover = hist.Remaining()
		}
	}

	threshold := budget.AlertThreshold
	if threshold == 0 {
		threshold = model.DefaultAlertThreshold
	}

	available := budget.Amount + rollover
	var percent float64
	if available > 0 {
		percent = spent / available * 100
	}
	remaining := available - spent
	if remaining < 0 {
		remaining = 0
	}

	return &Status{
		Budget:      *budget,
		PeriodStart: start,
		PeriodEnd:   end,
		Spent:       spent,
		Rollover:    rollover,
		Available:   available,
		Remaining:   remaining,
		PercentUsed: percent,
		Alerts: Alerts{
			Threshold:      threshold,
			Gte50:          percent >= 50,
			Gte80:          percent >= 80,
			Gte100:         percent >= 100,
			CustomExceeded: percent >= threshold,
		},
	}, nil
}

// Snapshot records the budget's current period state so that rollover
// can carry its unspent amount into the next period.
func (s *Service) Snapshot(ctx context.Context, budget *model.Budget) (*model.BudgetHistory, error) {
	status, err := s.CurrentStatus(ctx, budget)
	if err != nil {
		return nil, err
	}

	hist := &model.BudgetHistory{
		BudgetID:       budget.ID,
		PeriodStart:    status.PeriodStart,
		PeriodEnd:      status.PeriodEnd,
		SpentAmount:    status.Spent,
		BudgetAmount:   budget.Amount,
		RolloverAmount: status.Rollover,
	}
	if err := s.store.SaveBudgetHistory(ctx, hist); err != nil {
		return nil, fmt.Errorf("failed to snapshot budget %d: %w", budget.ID, err)
	}
	return hist, nil
}

// ListWithStatus returns the current status of every budget a user has,
// in the store's newest-first order.
func (s *Service) ListWithStatus(ctx context.Context, userID int64) ([]Status, error) {
	budgets, err := s.store.GetBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	statuses := make([]Status, 0, len(budgets))
	for i := range budgets {
		status, statusErr := s.CurrentStatus(ctx, &budgets[i])
		if statusErr != nil {
			return nil, statusErr
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}
