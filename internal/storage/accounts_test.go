package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

func TestSQLiteStorage_CreateAccount(t *testing.T) {
	tests := []struct {
		account      *model.Account
		name         string
		wantCurrency string
		wantErr      bool
	}{
		{
			name: "full account",
			account: &model.Account{
				UserID:        1,
				AccountNumber: "xxxx0019",
				BankName:      "Bank Muscat",
				Branch:        "Br Muscat Main",
				Currency:      "USD",
			},
			wantCurrency: "USD",
		},
		{
			name: "currency defaults to OMR",
			account: &model.Account{
				UserID:        1,
				AccountNumber: "xxxx2210",
				BankName:      "Bank Muscat",
			},
			wantCurrency: "OMR",
		},
		{
			name:    "missing user ID",
			account: &model.Account{AccountNumber: "xxxx0019", BankName: "Bank Muscat"},
			wantErr: true,
		},
		{
			name:    "missing account number",
			account: &model.Account{UserID: 1, BankName: "Bank Muscat"},
			wantErr: true,
		},
		{
			name:    "missing bank name",
			account: &model.Account{UserID: 1, AccountNumber: "xxxx0019"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()

			err := store.CreateAccount(context.Background(), tt.account)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateAccount failed: %v", err)
			}
			if tt.account.ID == 0 {
				t.Error("Expected account ID to be filled in")
			}
			if tt.account.Currency != tt.wantCurrency {
				t.Errorf("Expected currency %q, got %q", tt.wantCurrency, tt.account.Currency)
			}
		})
	}
}

func TestSQLiteStorage_CreateAccount_DuplicateNumber(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	createTestAccount(t, store, 1, "xxxx0019")

	// Same number for the same user violates the unique constraint.
	err := store.CreateAccount(ctx, &model.Account{
		UserID:        1,
		AccountNumber: "xxxx0019",
		BankName:      "Bank Muscat",
	})
	if err == nil {
		t.Error("Expected error for duplicate account number")
	}

	// Another user may register the same masked number.
	err = store.CreateAccount(ctx, &model.Account{
		UserID:        2,
		AccountNumber: "xxxx0019",
		BankName:      "Bank Muscat",
	})
	if err != nil {
		t.Errorf("Expected other user's account to be created: %v", err)
	}
}

func TestSQLiteStorage_GetAccountByNumber(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	created := createTestAccount(t, store, 1, "xxxx0019")

	account, err := store.GetAccountByNumber(ctx, 1, "xxxx0019")
	if err != nil {
		t.Fatalf("GetAccountByNumber failed: %v", err)
	}
	if account.ID != created.ID {
		t.Errorf("Expected account ID %d, got %d", created.ID, account.ID)
	}
	if account.BankName != "Bank Muscat" {
		t.Errorf("Expected bank name %q, got %q", "Bank Muscat", account.BankName)
	}

	// Unknown number.
	if _, err := store.GetAccountByNumber(ctx, 1, "xxxx9999"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Accounts are scoped to their owner.
	if _, err := store.GetAccountByNumber(ctx, 2, "xxxx0019"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}
}

func TestSQLiteStorage_GetAccounts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	createTestAccount(t, store, 1, "xxxx0019")
	createTestAccount(t, store, 1, "xxxx2210")
	createTestAccount(t, store, 2, "xxxx7777")

	accounts, err := store.GetAccounts(ctx, 1)
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].AccountNumber != "xxxx0019" || accounts[1].AccountNumber != "xxxx2210" {
		t.Errorf("Unexpected account order: %q, %q", accounts[0].AccountNumber, accounts[1].AccountNumber)
	}

	accounts, err = store.GetAccounts(ctx, 3)
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected no accounts for unknown user, got %d", len(accounts))
	}
}
