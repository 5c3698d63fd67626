// Package category implements the rule-based categorization engine:
// matching counterparty and description text against a user's mutable
// mapping set, and applying new rules retroactively to stored
// transactions.
package category

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/amalhadhrami/ghwazi/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Match is the result of matching text against a mapping set.
type Match struct {
	Pattern    string
	Matched    string
	Type       model.MappingType
	CategoryID int64
}

// accent folding: decompose, drop combining marks, recompose.
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases, folds accents, and collapses whitespace for
// robust pattern matching.
func NormalizeText(text string) string {
	folded, _, err := transform.String(foldTransformer, text)
	if err != nil {
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// MatchText matches text against a set of category mappings. Rules are
// tried counterparty-typed before description-typed, and within a type
// longest pattern first, so specific patterns beat generic ones. The
// match must sit on word boundaries: a pattern never matches inside a
// larger word. Returns nil when nothing matches.
func MatchText(text string, mappings []model.CategoryMapping) *Match {
	if strings.TrimSpace(text) == "" || len(mappings) == 0 {
		return nil
	}

	sorted := make([]model.CategoryMapping, len(mappings))
	copy(sorted, mappings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type == model.MappingCounterparty
		}
		return len(sorted[i].Pattern) > len(sorted[j].Pattern)
	})

	normText := NormalizeText(text)
	for _, mapping := range sorted {
		pattern := NormalizeText(mapping.Pattern)
		if pattern == "" {
			continue
		}
		if matched, ok := boundarySearch(normText, pattern); ok {
			return &Match{
				CategoryID: mapping.CategoryID,
				Type:       mapping.Type,
				Pattern:    mapping.Pattern,
				Matched:    matched,
			}
		}
	}
	return nil
}

// boundarySearch finds pattern as a substring of text such that the
// characters on both sides are not word characters.
func boundarySearch(text, pattern string) (string, bool) {
	for start := 0; ; {
		idx := strings.Index(text[start:], pattern)
		if idx < 0 {
			return "", false
		}
		idx += start
		end := idx + len(pattern)
		if boundaryBefore(text, idx) && boundaryAfter(text, end) {
			return text[idx:end], true
		}
		start = idx + 1
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !isWordRune(r)
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[idx:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
