package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

// CreateAccount inserts a new account and fills in its generated ID.
func (s *store) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	currency := account.Currency
	if currency == "" {
		currency = "OMR"
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO accounts (user_id, account_number, bank_name, branch, currency)
		VALUES (?, ?, ?, ?, ?)`,
		account.UserID, account.AccountNumber, account.BankName, account.Branch, currency,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account ID: %w", err)
	}
	account.ID = id
	account.Currency = currency
	return nil
}

// GetAccountByNumber finds a user's account by its masked number, as it
// appears in notification emails.
func (s *store) GetAccountByNumber(ctx context.Context, userID int64, accountNumber string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountNumber, "accountNumber"); err != nil {
		return nil, err
	}

	var account model.Account
	err := s.q.QueryRowContext(ctx, `
		SELECT id, user_id, account_number, bank_name, COALESCE(branch, ''), currency, created_at
		FROM accounts
		WHERE user_id = ? AND account_number = ?`,
		userID, accountNumber,
	).Scan(&account.ID, &account.UserID, &account.AccountNumber,
		&account.BankName, &account.Branch, &account.Currency, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %q", common.ErrNotFound, accountNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &account, nil
}

// GetAccounts returns all accounts belonging to a user.
func (s *store) GetAccounts(ctx context.Context, userID int64) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, account_number, bank_name, COALESCE(branch, ''), currency, created_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.AccountNumber,
			&account.BankName, &account.Branch, &account.Currency, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}
