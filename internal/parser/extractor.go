package parser

import (
	"regexp"
	"strings"

	"github.com/amalhadhrami/ghwazi/internal/model"
)

// currencyWhitelist is the set of ISO 4217 codes that appear in the
// supported notification formats. The amount is only extracted when one
// of these codes anchors it.
var currencyWhitelist = []string{
	"OMR", "USD", "EUR", "GBP", "AED", "SAR", "QAR", "KWD", "BHD", "JPY",
}

// transactionDetailsVocab is checked in priority order; the first label
// present in the text wins.
var transactionDetailsVocab = []string{
	"TRANSFER",
	"Cash Dep",
	"SALARY",
	"Mobile Payment",
	"Salary",
}

var (
	accountRe  = regexp.MustCompile(`(?i)account\s+(xxxx\d{4})|Account number\s*:\s*(xxxx\d{4})|a/c\s+(xxxx\d{4})`)
	branchRe   = regexp.MustCompile(`(?i)with\s+([\d\- ]*Br [A-Za-z ]+)`)
	currencyRe = regexp.MustCompile(`(?i)\s(` + strings.Join(currencyWhitelist, "|") + `)\s*([\d,]+\.\d+|[\d,]+)`)
	dateRe1    = regexp.MustCompile(`(?i)value date\s+(\d{2}/\d{2}/\d{2})`)
	dateRe2    = regexp.MustCompile(`(?i)Date/Time\s*:\s*(\d{1,2}\s+[A-Z]{3}\s+\d{2}\s+[\d:]+)`)
	countryRe  = regexp.MustCompile(`(?i)Transaction Country\s*:\s*(.+)`)
	descRe     = regexp.MustCompile(`(?i)Description\s*:\s*([^:/\r\n]+)`)
	txnIDRe    = regexp.MustCompile(`(?i)Txn Id\s+(\w+)`)

	detailsRes = compileDetailsPatterns()
)

func compileDetailsPatterns() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(transactionDetailsVocab))
	for i, label := range transactionDetailsVocab {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(label) + `\b`)
	}
	return res
}

// Extract runs every field extraction pass over normalized text. Each
// pass is independent; a miss leaves the field empty.
func Extract(text string) model.ExtractedFields {
	var f model.ExtractedFields

	if m := accountRe.FindStringSubmatch(text); m != nil {
		f.AccountNumber = firstNonEmpty(m[1], m[2], m[3])
	}

	if m := branchRe.FindStringSubmatch(text); m != nil {
		f.Branch = strings.TrimSpace(m[1])
	}

	// Currency first; the amount pass is anchored on whichever code
	// matched, so no currency means no amount.
	if m := currencyRe.FindStringSubmatch(text); m != nil {
		f.Currency = strings.ToUpper(m[1])
		amountRe := regexp.MustCompile(`(?i)` + f.Currency + `\s*([\d,]+\.\d+|[\d,]+)`)
		if am := amountRe.FindStringSubmatch(text); am != nil {
			f.AmountRaw = strings.ReplaceAll(am[1], ",", "")
		}
	}

	if m := dateRe1.FindStringSubmatch(text); m != nil {
		f.DateRaw = strings.TrimSpace(m[1])
	} else if m := dateRe2.FindStringSubmatch(text); m != nil {
		f.DateRaw = strings.TrimSpace(m[1])
	}

	for i, re := range detailsRes {
		if re.MatchString(text) {
			f.TransactionDetails = transactionDetailsVocab[i]
			break
		}
	}

	if m := countryRe.FindStringSubmatch(text); m != nil {
		f.Country = strings.TrimSpace(m[1])
	}

	if m := descRe.FindStringSubmatch(text); m != nil {
		f.Description = strings.TrimSpace(m[1])
	}

	f.CounterpartyName = counterpartyName(text)
	if f.CounterpartyName == "" && f.Description != "" {
		// Last resort: everything after the first separator of the
		// description, e.g. "911792-JENAN TEA AIRP" -> "JENAN TEA AIRP".
		if _, rest, found := strings.Cut(f.Description, "-"); found {
			f.CounterpartyName = strings.TrimSpace(rest)
		}
	}

	if m := txnIDRe.FindStringSubmatch(text); m != nil {
		f.TransactionID = m[1]
	}

	f.Type = ClassifyType(text)
	switch f.Type {
	case model.TypeExpense:
		f.From, f.To = "me", f.CounterpartyName
	case model.TypeIncome:
		f.From, f.To = f.CounterpartyName, "me"
	}

	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
