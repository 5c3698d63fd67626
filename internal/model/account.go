package model

import "time"

// Account is a bank account owned by a user. The account number is the
// masked form that appears in notification emails (e.g. "xxxx0019").
type Account struct {
	CreatedAt     time.Time
	AccountNumber string
	BankName      string
	Branch        string
	Currency      string
	ID            int64
	UserID        int64
}
