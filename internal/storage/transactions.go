package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

const transactionColumns = `
	t.id, t.account_id, COALESCE(t.email_id, ''), COALESCE(t.bank_name, ''),
	t.transaction_type, t.amount, t.currency, t.value_date,
	COALESCE(t.transaction_id, ''), t.category_id, t.counterparty_id,
	COALESCE(t.counterparty_name, ''), COALESCE(t.transaction_details, ''),
	COALESCE(t.description, ''), COALESCE(t.country, ''), COALESCE(t.branch, ''),
	COALESCE(t.raw_content, ''), t.created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	var valueDate sql.NullTime
	var categoryID, counterpartyID sql.NullInt64
	var txnType string

	err := row.Scan(&txn.ID, &txn.AccountID, &txn.EmailID, &txn.BankName,
		&txnType, &txn.Amount, &txn.Currency, &valueDate,
		&txn.TransactionID, &categoryID, &counterpartyID,
		&txn.CounterpartyName, &txn.TransactionDetails,
		&txn.Description, &txn.Country, &txn.Branch,
		&txn.RawContent, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	txn.Type = model.ParseTransactionType(txnType)
	if valueDate.Valid {
		txn.ValueDate = &valueDate.Time
	}
	if categoryID.Valid {
		txn.CategoryID = &categoryID.Int64
	}
	if counterpartyID.Valid {
		txn.CounterpartyID = &counterpartyID.Int64
	}
	return &txn, nil
}

// SaveTransaction inserts a transaction and fills in its generated ID.
func (s *store) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (
			account_id, email_id, bank_name, transaction_type, amount, currency,
			value_date, transaction_id, category_id, counterparty_id,
			counterparty_name, transaction_details, description, country, branch,
			raw_content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.AccountID, txn.EmailID, txn.BankName, string(txn.Type), txn.Amount,
		txn.Currency, txn.ValueDate, txn.TransactionID, txn.CategoryID,
		txn.CounterpartyID, txn.CounterpartyName, txn.TransactionDetails,
		txn.Description, txn.Country, txn.Branch, txn.RawContent,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", common.ErrDuplicateEntry, txn.DedupKey())
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}
	txn.ID = id
	return nil
}

// TransactionExists performs the dedup check on the natural key
// (account_id, transaction_id), falling back to the source email id when
// the bank reference is absent.
func (s *store) TransactionExists(ctx context.Context, accountID int64, transactionID, emailID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var count int
	var err error
	switch {
	case transactionID != "":
		err = s.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE account_id = ? AND transaction_id = ?`,
			accountID, transactionID).Scan(&count)
	case emailID != "":
		err = s.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE account_id = ? AND email_id = ?`,
			accountID, emailID).Scan(&count)
	default:
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}
	return count > 0, nil
}

// GetTransaction loads a transaction by id, scoped to its owning user.
func (s *store) GetTransaction(ctx context.Context, userID, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = ? AND a.user_id = ?`,
		id, userID,
	)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetUncategorizedTransactions returns a user's transactions with no
// category assignment, oldest first.
func (s *store) GetUncategorizedTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ? AND t.category_id IS NULL
		ORDER BY t.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query uncategorized transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// FindTransactionsByCounterparty returns the ids of a user's
// transactions whose counterparty name equals the pattern exactly.
func (s *store) FindTransactionsByCounterparty(ctx context.Context, userID int64, name string) ([]int64, error) {
	return s.findTransactionIDs(ctx, userID, "counterparty_name", name)
}

// FindTransactionsByDetails returns the ids of a user's transactions
// whose transaction details equal the pattern exactly.
func (s *store) FindTransactionsByDetails(ctx context.Context, userID int64, details string) ([]int64, error) {
	return s.findTransactionIDs(ctx, userID, "transaction_details", details)
}

func (s *store) findTransactionIDs(ctx context.Context, userID int64, column, value string) ([]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(value, column); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT t.id
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ? AND t.`+column+` = ?
		ORDER BY t.id`,
		userID, value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction ids: %w", err)
	}
	return ids, nil
}

// AssignCategory sets the category of the given transactions in one
// statement.
func (s *store) AssignCategory(ctx context.Context, transactionIDs []int64, categoryID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(transactionIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(transactionIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(transactionIDs)+1)
	args = append(args, categoryID)
	for _, id := range transactionIDs {
		args = append(args, id)
	}

	_, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to assign category: %w", err)
	}
	return nil
}
