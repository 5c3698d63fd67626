package model

// ExtractedFields holds the raw field values pulled out of a normalized
// email body. Every field is independently optional; the empty string
// means the extraction pass found nothing, which is not an error.
type ExtractedFields struct {
	AccountNumber      string
	Branch             string
	Currency           string
	AmountRaw          string
	DateRaw            string
	TransactionDetails string
	Country            string
	Description        string
	CounterpartyName   string
	TransactionID      string
	From               string
	To                 string
	Type               TransactionType
}
