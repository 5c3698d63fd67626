package parser

import (
	"strings"

	"github.com/amalhadhrami/ghwazi/internal/model"
)

// Keyword vocabularies for transaction type detection. Transfers are
// never detected from keywords; they only exist as a user-set type.
var (
	incomeKeywords  = []string{"credited", "received", "deposited"}
	expenseKeywords = []string{"debit", "utilised", "sent", "payment", "purchase", "withdrawal", "spent"}
)

// ClassifyType scans the whole keyword universe and picks the type that
// owns the earliest occurrence in the text. The character offset decides,
// not the order of the keyword lists. No keyword at all means unknown.
func ClassifyType(text string) model.TransactionType {
	lower := strings.ToLower(text)

	result := model.TypeUnknown
	earliest := len(lower) + 1

	scan := func(keywords []string, typ model.TransactionType) {
		for _, kw := range keywords {
			if idx := strings.Index(lower, kw); idx >= 0 && idx < earliest {
				earliest = idx
				result = typ
			}
		}
	}
	scan(incomeKeywords, model.TypeIncome)
	scan(expenseKeywords, model.TypeExpense)

	return result
}
