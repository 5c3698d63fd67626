package model

import (
	"fmt"
	"time"
)

// TransactionType classifies the direction of a transaction.
type TransactionType string

const (
	// TypeIncome represents money coming into the account.
	TypeIncome TransactionType = "income"
	// TypeExpense represents money leaving the account.
	TypeExpense TransactionType = "expense"
	// TypeTransfer represents movement between own accounts. The email
	// classifier never produces this value; it is set by user edits.
	TypeTransfer TransactionType = "transfer"
	// TypeUnknown is the fallback when no keyword matched.
	TypeUnknown TransactionType = "unknown"
)

// ParseTransactionType coerces an arbitrary string to a valid
// TransactionType. Anything outside the enum becomes TypeUnknown.
func ParseTransactionType(s string) TransactionType {
	switch TransactionType(s) {
	case TypeIncome, TypeExpense, TypeTransfer, TypeUnknown:
		return TransactionType(s)
	default:
		return TypeUnknown
	}
}

// Transaction is a validated transaction record extracted from a bank
// notification email.
type Transaction struct {
	ValueDate          *time.Time
	CategoryID         *int64
	CounterpartyID     *int64
	BankName           string
	EmailID            string
	AccountNumber      string
	Currency           string
	TransactionID      string // bank's own reference, may be empty
	CounterpartyName   string
	TransactionDetails string
	Description        string
	Country            string
	Branch             string
	RawContent         string
	Type               TransactionType
	ID                 int64
	AccountID          int64
	Amount             float64
	CreatedAt          time.Time
}

// DedupKey is the natural key used for at-most-once ingestion. Records
// without a bank reference fall back to the source email id.
func (t *Transaction) DedupKey() string {
	if t.TransactionID != "" {
		return fmt.Sprintf("%d:%s", t.AccountID, t.TransactionID)
	}
	return fmt.Sprintf("%d:email:%s", t.AccountID, t.EmailID)
}
