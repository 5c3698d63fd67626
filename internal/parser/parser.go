package parser

import (
	"log/slog"
	"strings"
	"time"

	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBankName is used when the caller does not override it.
	DefaultBankName = "Bank Muscat"
	// DefaultCurrency is assumed when no currency code was extracted.
	DefaultCurrency = "OMR"

	// largeAmountThreshold flags implausibly large amounts. They are
	// logged, not rejected: some formats present signed or oddly
	// scaled values and rejection would lose real transactions.
	largeAmountThreshold = 1_000_000
)

// Parser assembles validated transaction records from raw email
// messages. It is stateless and safe for concurrent use.
type Parser struct {
	resolver *DateResolver
	bankName string
}

// Option configures a Parser.
type Option func(*Parser)

// WithBankName overrides the default bank name stamped on records.
func WithBankName(name string) Option {
	return func(p *Parser) { p.bankName = name }
}

// WithClock injects the clock used for two-digit year disambiguation.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.resolver = NewDateResolver(now) }
}

// New creates a Parser with the given options.
func New(opts ...Option) *Parser {
	p := &Parser{
		resolver: NewDateResolver(nil),
		bankName: DefaultBankName,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts a validated transaction record from a raw message. It
// returns nil when the body yields no acceptable record; malformed input
// is never an error at this boundary.
func (p *Parser) Parse(msg model.RawMessage) *model.Transaction {
	if strings.TrimSpace(msg.Body) == "" {
		slog.Warn("email body is empty, cannot parse transaction", "email_id", msg.ID)
		return nil
	}

	clean := Normalize(msg.Body)
	fields := Extract(clean)

	txn := &model.Transaction{
		BankName:           p.bankName,
		EmailID:            msg.ID,
		Currency:           DefaultCurrency,
		RawContent:         clean,
		AccountNumber:      fields.AccountNumber,
		Branch:             fields.Branch,
		Type:               fields.Type,
		TransactionID:      fields.TransactionID,
		CounterpartyName:   fields.CounterpartyName,
		TransactionDetails: fields.TransactionDetails,
		Description:        fields.Description,
	}
	if fields.Currency != "" {
		txn.Currency = fields.Currency
	}
	if fields.Country != "" {
		// Only the first token; the label line often runs into the
		// next field on single-line bodies.
		txn.Country = strings.Fields(fields.Country)[0]
	}

	hasAmount := false
	if fields.AmountRaw != "" {
		if amount, err := decimal.NewFromString(fields.AmountRaw); err == nil {
			txn.Amount, _ = amount.Float64()
			hasAmount = true
		} else {
			slog.Warn("could not parse amount", "raw", fields.AmountRaw, "error", err)
		}
	}

	if resolved, ok := p.resolver.Resolve(fields.DateRaw); ok {
		txn.ValueDate = &resolved
	} else if !msg.Date.IsZero() {
		// Fall back to the email's own date so the record still
		// sorts correctly in statements.
		date := msg.Date
		txn.ValueDate = &date
	}

	if !p.validate(txn, hasAmount) {
		slog.Warn("extracted transaction data is incomplete", "email_id", msg.ID)
		return nil
	}
	return txn
}

// validate enforces the required-field and range invariants. A missing
// required field rejects the record; out-of-range amounts and unknown
// type values are softened, not fatal.
func (p *Parser) validate(txn *model.Transaction, hasAmount bool) bool {
	// An out-of-enum type is softened to unknown, which also satisfies
	// the required-type invariant.
	txn.Type = model.ParseTransactionType(string(txn.Type))

	if strings.TrimSpace(txn.AccountNumber) == "" {
		slog.Warn("missing required field", "field", "account_number")
		return false
	}
	if !hasAmount {
		slog.Warn("missing required field", "field", "amount")
		return false
	}

	switch {
	case txn.Amount < 0:
		slog.Warn("negative amount accepted", "amount", txn.Amount)
	case txn.Amount > largeAmountThreshold:
		slog.Warn("unusually large amount accepted", "amount", txn.Amount)
	}

	return true
}
