package parser

import (
	"regexp"
	"strings"
)

var (
	descNameRe    = regexp.MustCompile(`(?i)Description\s*:\s*(.+?)(?:\s+(?:Amount|Date/Time|Transaction Country|Txn Id)\b|[\r\n]|$)`)
	refPrefixRe   = regexp.MustCompile(`^[#\s]*\d{2,}\s*[-:]\s*`)
	separatorRe   = regexp.MustCompile(`[-:]`)
	lettersRe     = regexp.MustCompile(`[A-Za-z]{2}`)
	currencyCutRe = regexp.MustCompile(`\s+(?:` + strings.Join(currencyWhitelist, "|") + `)\b`)
	directionRe   = regexp.MustCompile(`(?i)(?:from|to)\s+([A-Z](?:[A-Z\s]+[A-Z]))`)
	upperBlockRe  = regexp.MustCompile(`\n([A-Z][A-Z\s]{4,})\n`)
	upperStartRe  = regexp.MustCompile(`^[A-Z][A-Z\s]`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
)

// footerBlacklist marks lines that are signature or boilerplate, never a
// counterparty name.
var footerBlacklist = []string{
	"dear customer", "thank you", "regards", "sincerely",
	"bank muscat", "customer service", "email", "phone",
	"visit", "website", "disclaimer", "confidential",
	"value date", "transaction", "account", "amount", "omr",
}

// counterpartyName resolves the other party of a transaction from email
// text. Four strategies are tried in order; the first non-empty result
// wins, and no match at all returns the empty string.
func counterpartyName(text string) string {
	if name := nameFromDescription(text); name != "" {
		return name
	}
	if name := nameFromDirectionPhrase(text); name != "" {
		return name
	}
	if name := nameFromUppercaseBlock(text); name != "" {
		return name
	}
	return nameFromFooter(text)
}

// nameFromDescription takes the text after "Description :", strips a
// leading numeric reference like "911792-", and picks the most name-like
// segment: scanning the separator-split parts from the end, the last one
// containing two consecutive letters.
func nameFromDescription(text string) string {
	m := descNameRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	raw := refPrefixRe.ReplaceAllString(strings.TrimSpace(m[1]), "")

	var candidate string
	parts := separatorRe.Split(raw, -1)
	for i := len(parts) - 1; i >= 0; i-- {
		part := strings.TrimSpace(parts[i])
		if part != "" && lettersRe.MatchString(part) {
			candidate = part
			break
		}
	}
	if candidate == "" {
		candidate = raw
	}

	// Guard against leaked currency/amount tokens.
	candidate = currencyCutRe.Split(candidate, 2)[0]
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(candidate, " "))
}

// nameFromDirectionPhrase matches "from NAME" / "to NAME" with an
// uppercase name run.
func nameFromDirectionPhrase(text string) string {
	m := directionRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return stripNameArtifacts(m[1])
}

// nameFromUppercaseBlock finds an isolated line of uppercase letters.
func nameFromUppercaseBlock(text string) string {
	m := upperBlockRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return stripNameArtifacts(m[1])
}

// nameFromFooter inspects the last three non-empty lines in reverse and
// returns the first one that starts with an uppercase letter and is not
// boilerplate. Handles formats where the sender name is the final line.
func nameFromFooter(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	start := len(lines) - 3
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		line := lines[i]
		if isFooterBoilerplate(line) {
			continue
		}
		if upperStartRe.MatchString(line) {
			return strings.Join(strings.Fields(line), " ")
		}
	}
	return ""
}

func isFooterBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, word := range footerBlacklist {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// stripNameArtifacts collapses whitespace, removes a leading "TRANSFER"
// token, and drops the truncated "from your a" / "in your a" tail that
// the notification template leaves when the name field overflows.
func stripNameArtifacts(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if strings.HasPrefix(strings.ToUpper(name), "TRANSFER") {
		name = strings.TrimSpace(name[len("TRANSFER"):])
	}
	if strings.HasSuffix(name, "from your a") || strings.HasSuffix(name, "in your a") {
		words := strings.Fields(name)
		if len(words) >= 3 {
			name = strings.TrimSpace(strings.Join(words[:len(words)-3], " "))
		}
	}
	return name
}
