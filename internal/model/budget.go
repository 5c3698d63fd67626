package model

import "time"

// BudgetPeriod is the recurrence window a budget applies to.
type BudgetPeriod string

const (
	// PeriodWeekly covers Monday 00:00 through Sunday 23:59:59.
	PeriodWeekly BudgetPeriod = "weekly"
	// PeriodMonthly covers the first of the month through its last second.
	PeriodMonthly BudgetPeriod = "monthly"
	// PeriodYearly covers January 1 through December 31.
	PeriodYearly BudgetPeriod = "yearly"
)

// ParseBudgetPeriod coerces an arbitrary string to a valid BudgetPeriod.
// Anything outside the enum, including the empty string, becomes
// PeriodMonthly.
func ParseBudgetPeriod(s string) BudgetPeriod {
	switch BudgetPeriod(s) {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return BudgetPeriod(s)
	default:
		return PeriodMonthly
	}
}

// DefaultAlertThreshold is the percent-used level at which a budget
// raises its custom alert when none was configured.
const DefaultAlertThreshold = 80.0

// Budget is a recurring spending limit. A nil CategoryID means the
// limit covers all categories; a nil AccountID means all accounts.
type Budget struct {
	StartDate       *time.Time
	EndDate         *time.Time
	CategoryID      *int64
	AccountID       *int64
	Period          BudgetPeriod
	ID              int64
	UserID          int64
	Amount          float64
	AlertThreshold  float64
	IsActive        bool
	RolloverEnabled bool
	CreatedAt       time.Time
}

// BudgetHistory is a snapshot of one budget period, kept so unspent
// amounts can roll over into the next period.
type BudgetHistory struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ID             int64
	BudgetID       int64
	SpentAmount    float64
	BudgetAmount   float64
	RolloverAmount float64
	CreatedAt      time.Time
}

// Remaining is the unspent part of the snapshot's available amount,
// never negative. This is what rolls over when rollover is enabled.
func (h *BudgetHistory) Remaining() float64 {
	remaining := (h.BudgetAmount + h.RolloverAmount) - h.SpentAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}
