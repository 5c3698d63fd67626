package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/amalhadhrami/ghwazi/internal/service"
)

// Engine applies categories to transactions and maintains the learned
// mapping set. Unlike the parser it operates on shared mutable state:
// every rule mutation and its retroactive pass run inside one storage
// transaction, so a rule is never visible before the pass completes.
type Engine struct {
	store service.Storage
}

// NewEngine creates a categorization engine backed by the given store.
func NewEngine(store service.Storage) *Engine {
	return &Engine{store: store}
}

// RetroactiveUpdate reports the side effects of a manual categorization:
// the other transactions that were moved to the category because they
// share the newly learned patterns.
type RetroactiveUpdate struct {
	TransactionIDs []int64
	CategoryID     int64
}

// Categorize assigns a category to one transaction, learns mappings from
// its counterparty name and transaction details, and applies those
// mappings to every other transaction with the same pattern in one pass.
func (e *Engine) Categorize(ctx context.Context, userID, transactionID, categoryID int64) (*RetroactiveUpdate, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}
	cat, err := tx.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category %d: %w", categoryID, err)
	}

	if err = tx.AssignCategory(ctx, []int64{txn.ID}, cat.ID); err != nil {
		return nil, fmt.Errorf("failed to assign category: %w", err)
	}

	update := &RetroactiveUpdate{CategoryID: cat.ID}
	seen := map[int64]bool{txn.ID: true}

	learn := func(mappingType model.MappingType, pattern string) error {
		ids, learnErr := e.learnMapping(ctx, tx, userID, cat.ID, mappingType, pattern)
		if learnErr != nil {
			return learnErr
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				update.TransactionIDs = append(update.TransactionIDs, id)
			}
		}
		return nil
	}

	if txn.CounterpartyName != "" {
		if err = learn(model.MappingCounterparty, txn.CounterpartyName); err != nil {
			return nil, err
		}
	}
	if txn.TransactionDetails != "" {
		if err = learn(model.MappingDescription, txn.TransactionDetails); err != nil {
			return nil, err
		}
	}

	if len(update.TransactionIDs) > 0 {
		if err = tx.AssignCategory(ctx, update.TransactionIDs, cat.ID); err != nil {
			return nil, fmt.Errorf("failed to apply retroactive update: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit categorization: %w", err)
	}

	slog.Info("categorized transaction",
		"transaction_id", txn.ID,
		"category", cat.Name,
		"retroactive_updates", len(update.TransactionIDs))
	return update, nil
}

// learnMapping creates or replaces the mapping for a pattern and returns
// the ids of the other transactions the new mapping applies to. A
// pattern maps to exactly one category per user: learning it for a new
// category deletes the older owner's mapping first (last writer wins).
// Re-learning an identical mapping is a no-op with no retroactive pass.
func (e *Engine) learnMapping(ctx context.Context, tx service.Tx, userID, categoryID int64, mappingType model.MappingType, pattern string) ([]int64, error) {
	existing, err := tx.GetMappingByPattern(ctx, userID, mappingType, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to look up mapping: %w", err)
	}
	if existing != nil {
		if existing.CategoryID == categoryID {
			return nil, nil
		}
		if err = tx.DeleteMapping(ctx, userID, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to remove superseded mapping: %w", err)
		}
		slog.Info("pattern remapped",
			"pattern", pattern,
			"from_category", existing.CategoryID,
			"to_category", categoryID)
	}

	mapping := &model.CategoryMapping{
		UserID:     userID,
		CategoryID: categoryID,
		Type:       mappingType,
		Pattern:    pattern,
	}
	if err = tx.CreateMapping(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to create mapping: %w", err)
	}

	switch mappingType {
	case model.MappingCounterparty:
		return tx.FindTransactionsByCounterparty(ctx, userID, pattern)
	case model.MappingDescription:
		return tx.FindTransactionsByDetails(ctx, userID, pattern)
	default:
		return nil, fmt.Errorf("%w: mapping type %q", common.ErrInvalidMappingType, mappingType)
	}
}

// AutoCategorize attempts to categorize a transaction from existing
// rules. The cascade is fixed: counterparty entity link, exact
// counterparty pattern, exact details pattern, then fuzzy word-boundary
// matches for each. A nil result with a nil error means no rule matched.
func (e *Engine) AutoCategorize(ctx context.Context, userID, transactionID int64) (*Match, error) {
	txn, err := e.store.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}

	match, err := e.findMatch(ctx, userID, txn)
	if err != nil || match == nil {
		return nil, err
	}

	if err = e.store.AssignCategory(ctx, []int64{txn.ID}, match.CategoryID); err != nil {
		return nil, fmt.Errorf("failed to assign category: %w", err)
	}
	slog.Debug("auto-categorized transaction",
		"transaction_id", txn.ID,
		"category_id", match.CategoryID,
		"pattern", match.Pattern)
	return match, nil
}

func (e *Engine) findMatch(ctx context.Context, userID int64, txn *model.Transaction) (*Match, error) {
	if txn.CounterpartyID != nil {
		categoryID, err := e.store.GetCounterpartyCategory(ctx, userID, *txn.CounterpartyID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up counterparty category: %w", err)
		}
		if categoryID != nil {
			return &Match{CategoryID: *categoryID, Type: model.MappingCounterparty}, nil
		}
	}

	if txn.CounterpartyName != "" {
		m, err := e.store.GetMappingByPattern(ctx, userID, model.MappingCounterparty, txn.CounterpartyName)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return &Match{CategoryID: m.CategoryID, Type: m.Type, Pattern: m.Pattern, Matched: txn.CounterpartyName}, nil
		}
	}

	if txn.TransactionDetails != "" {
		m, err := e.store.GetMappingByPattern(ctx, userID, model.MappingDescription, txn.TransactionDetails)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return &Match{CategoryID: m.CategoryID, Type: m.Type, Pattern: m.Pattern, Matched: txn.TransactionDetails}, nil
		}
	}

	if txn.CounterpartyName != "" {
		mappings, err := e.store.GetMappingsByType(ctx, userID, model.MappingCounterparty)
		if err != nil {
			return nil, err
		}
		if match := MatchText(txn.CounterpartyName, mappings); match != nil {
			return match, nil
		}
	}

	if txn.TransactionDetails != "" {
		mappings, err := e.store.GetMappingsByType(ctx, userID, model.MappingDescription)
		if err != nil {
			return nil, err
		}
		if match := MatchText(txn.TransactionDetails, mappings); match != nil {
			return match, nil
		}
	}

	return nil, nil
}

// AutoCategorizeAll runs the auto-categorization cascade over every
// uncategorized transaction of a user. The progress callback, if set,
// is invoked after each transaction.
func (e *Engine) AutoCategorizeAll(ctx context.Context, userID int64, progress func(done, total int)) (int, error) {
	transactions, err := e.store.GetUncategorizedTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load uncategorized transactions: %w", err)
	}

	categorized := 0
	for i, txn := range transactions {
		if err := ctx.Err(); err != nil {
			return categorized, err
		}
		match, err := e.AutoCategorize(ctx, userID, txn.ID)
		if err != nil {
			return categorized, err
		}
		if match != nil {
			categorized++
		}
		if progress != nil {
			progress(i+1, len(transactions))
		}
	}

	slog.Info("auto-categorization pass complete",
		"user_id", userID,
		"total", len(transactions),
		"categorized", categorized)
	return categorized, nil
}
