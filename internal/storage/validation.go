package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amalhadhrami/ghwazi/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidMapping     = errors.New("invalid category mapping")
	ErrInvalidBudget      = errors.New("invalid budget")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a transaction before insert.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.AccountID == 0 {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.Type == "" {
		return fmt.Errorf("%w: missing transaction type", ErrInvalidTransaction)
	}
	return nil
}

// validateAccount validates an account before insert.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.UserID == 0 {
		return fmt.Errorf("%w: missing user ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.AccountNumber) == "" {
		return fmt.Errorf("%w: missing account number", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.BankName) == "" {
		return fmt.Errorf("%w: missing bank name", ErrInvalidAccount)
	}
	return nil
}

// validateBudget validates a budget before insert or update.
func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if budget.UserID == 0 {
		return fmt.Errorf("%w: missing user ID", ErrInvalidBudget)
	}
	if budget.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidBudget)
	}
	switch budget.Period {
	case model.PeriodWeekly, model.PeriodMonthly, model.PeriodYearly:
	default:
		return fmt.Errorf("%w: unknown period %q", ErrInvalidBudget, budget.Period)
	}
	return nil
}

// validateMapping validates a category mapping before insert.
func validateMapping(mapping *model.CategoryMapping) error {
	if mapping == nil {
		return fmt.Errorf("%w: mapping", ErrNilParameter)
	}
	if mapping.UserID == 0 {
		return fmt.Errorf("%w: missing user ID", ErrInvalidMapping)
	}
	if mapping.CategoryID == 0 {
		return fmt.Errorf("%w: missing category ID", ErrInvalidMapping)
	}
	if strings.TrimSpace(mapping.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern", ErrInvalidMapping)
	}
	switch mapping.Type {
	case model.MappingCounterparty, model.MappingDescription:
	default:
		return fmt.Errorf("%w: unknown mapping type %q", ErrInvalidMapping, mapping.Type)
	}
	return nil
}
