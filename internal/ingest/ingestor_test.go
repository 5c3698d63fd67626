package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amalhadhrami/ghwazi/internal/category"
	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/amalhadhrami/ghwazi/internal/parser"
	"github.com/amalhadhrami/ghwazi/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = int64(1)

func newTestIngestor(t *testing.T) (*Ingestor, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	ingestor := NewIngestor(store, parser.New(), category.NewEngine(store), NewScheduler(nil, DefaultStaleAfter))
	return ingestor, store
}

func alertMessage(id, accountNumber, description string) model.RawMessage {
	return model.RawMessage{
		ID:      id,
		Subject: "Transaction Alert",
		Sender:  "alerts@bankmuscat.com",
		Date:    time.Date(2025, 7, 14, 11, 1, 0, 0, time.UTC),
		Body: `Dear Customer,

Your Debit Card ending 0019 has been utilised for OMR 0.200.
Account number : ` + accountNumber + `
Description : ` + description + `
Transaction Country : Oman

Bank Muscat
This is an auto-generated email.`,
	}
}

func TestIngestor_IngestMessages(t *testing.T) {
	ingestor, store := newTestIngestor(t)
	ctx := context.Background()

	account := &model.Account{UserID: testUser, AccountNumber: "xxxx0019", BankName: "Bank Muscat"}
	require.NoError(t, store.CreateAccount(ctx, account))

	messages := []model.RawMessage{
		alertMessage("msg-1", "xxxx0019", "998232-JENAN TEA MUTT"),
		alertMessage("msg-2", "xxxx0019", "777001-AL MAHA PETROL PUMP"),
		// No registered account for this number.
		alertMessage("msg-3", "xxxx9999", "998233-JENAN TEA MUTT"),
		// Nothing extractable.
		{ID: "msg-4", Subject: "Welcome", Body: "Thank you for choosing us."},
	}

	stats, err := ingestor.IngestMessages(ctx, testUser, messages, false)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Parsed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.UnknownAccounts)
	assert.Equal(t, 2, stats.Saved)
	assert.Equal(t, 0, stats.Duplicates)

	saved, err := store.GetUncategorizedTransactions(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "JENAN TEA MUTT", saved[0].CounterpartyName)
	assert.Equal(t, model.TypeExpense, saved[0].Type)
	assert.InDelta(t, 0.2, saved[0].Amount, 1e-9)
}

func TestIngestor_IngestMessages_Redelivery(t *testing.T) {
	ingestor, store := newTestIngestor(t)
	ctx := context.Background()

	account := &model.Account{UserID: testUser, AccountNumber: "xxxx0019", BankName: "Bank Muscat"}
	require.NoError(t, store.CreateAccount(ctx, account))

	messages := []model.RawMessage{
		alertMessage("msg-1", "xxxx0019", "998232-JENAN TEA MUTT"),
	}

	stats, err := ingestor.IngestMessages(ctx, testUser, messages, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Saved)

	// Re-delivering the same batch saves nothing new.
	stats, err = ingestor.IngestMessages(ctx, testUser, messages, false)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Saved)
	assert.Equal(t, 1, stats.Duplicates)

	saved, err := store.GetUncategorizedTransactions(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestIngestor_IngestMessages_AutoCategorizes(t *testing.T) {
	ingestor, store := newTestIngestor(t)
	ctx := context.Background()

	account := &model.Account{UserID: testUser, AccountNumber: "xxxx0019", BankName: "Bank Muscat"}
	require.NoError(t, store.CreateAccount(ctx, account))

	cat, err := store.CreateCategory(ctx, testUser, "Dining", "", "")
	require.NoError(t, err)
	require.NoError(t, store.CreateMapping(ctx, &model.CategoryMapping{
		UserID:     testUser,
		CategoryID: cat.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "JENAN TEA MUTT",
	}))

	messages := []model.RawMessage{
		alertMessage("msg-1", "xxxx0019", "998232-JENAN TEA MUTT"),
		alertMessage("msg-2", "xxxx0019", "777001-AL MAHA PETROL PUMP"),
	}

	stats, err := ingestor.IngestMessages(ctx, testUser, messages, false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Saved)
	assert.Equal(t, 1, stats.AutoCategorized)

	uncategorized, err := store.GetUncategorizedTransactions(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "AL MAHA PETROL PUMP", uncategorized[0].CounterpartyName)
}

func TestIngestor_IngestMessages_ContextCancelled(t *testing.T) {
	ingestor, store := newTestIngestor(t)

	account := &model.Account{UserID: testUser, AccountNumber: "xxxx0019", BankName: "Bank Muscat"}
	require.NoError(t, store.CreateAccount(context.Background(), account))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ingestor.IngestMessages(ctx, testUser, []model.RawMessage{
		alertMessage("msg-1", "xxxx0019", "998232-JENAN TEA MUTT"),
	}, false)
	assert.ErrorIs(t, err, context.Canceled)
}
