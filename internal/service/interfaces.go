// Package service defines the interfaces between the extraction and
// categorization core and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/amalhadhrami/ghwazi/internal/model"
)

// Storage is the contract for the persistence layer.
type Storage interface {
	// Account operations.
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByNumber(ctx context.Context, userID int64, accountNumber string) (*model.Account, error)
	GetAccounts(ctx context.Context, userID int64) ([]model.Account, error)

	// Transaction operations. TransactionExists implements the
	// (account_id, transaction_id) dedup check performed before insert.
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	TransactionExists(ctx context.Context, accountID int64, transactionID, emailID string) (bool, error)
	GetTransaction(ctx context.Context, userID, id int64) (*model.Transaction, error)
	GetUncategorizedTransactions(ctx context.Context, userID int64) ([]model.Transaction, error)
	FindTransactionsByCounterparty(ctx context.Context, userID int64, name string) ([]int64, error)
	FindTransactionsByDetails(ctx context.Context, userID int64, details string) ([]int64, error)
	AssignCategory(ctx context.Context, transactionIDs []int64, categoryID int64) error

	// Category operations, all scoped to a user.
	CreateCategory(ctx context.Context, userID int64, name, description, color string) (*model.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (*model.Category, error)
	GetCategories(ctx context.Context, userID int64) ([]model.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, name, description, color string) error
	DeleteCategory(ctx context.Context, userID, id int64) error

	// Mapping operations. CreateMapping enforces pattern ownership:
	// an existing mapping for the same (type, pattern) under another
	// category is deleted before the new one is stored.
	CreateMapping(ctx context.Context, mapping *model.CategoryMapping) error
	GetMappings(ctx context.Context, userID int64) ([]model.CategoryMapping, error)
	GetMappingsByType(ctx context.Context, userID int64, mappingType model.MappingType) ([]model.CategoryMapping, error)
	GetMappingByPattern(ctx context.Context, userID int64, mappingType model.MappingType, pattern string) (*model.CategoryMapping, error)
	DeleteMapping(ctx context.Context, userID, id int64) error

	// Counterparty entity links.
	GetCounterpartyCategory(ctx context.Context, userID, counterpartyID int64) (*int64, error)

	// Budget operations. SaveBudget upserts on the budget's
	// (category, account, period) scope; SumExpenses feeds the spent
	// side of budget status.
	SaveBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, userID, id int64) (*model.Budget, error)
	GetBudgets(ctx context.Context, userID int64) ([]model.Budget, error)
	SetBudgetActive(ctx context.Context, userID, id int64, active bool) error
	DeleteBudget(ctx context.Context, userID, id int64) error
	SumExpenses(ctx context.Context, userID int64, start, end time.Time, categoryID, accountID *int64) (float64, error)
	SaveBudgetHistory(ctx context.Context, hist *model.BudgetHistory) error
	LatestBudgetHistory(ctx context.Context, budgetID int64) (*model.BudgetHistory, error)

	// Database management.
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a storage transaction. All Storage methods called through a Tx
// share one database transaction.
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}
