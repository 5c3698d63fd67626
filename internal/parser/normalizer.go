// Package parser turns raw bank notification emails into structured
// transaction records. Extraction is best-effort: a field that cannot be
// found is simply left unset, and a body that yields no valid record
// produces no output rather than an error.
package parser

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
)

var (
	softBreakRe  = regexp.MustCompile(`=\r?\n`)
	hexEscapeRe  = regexp.MustCompile(`=([0-9A-F]{2})`)
	lineSpaceRe  = regexp.MustCompile(`\s+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// quotedPrintable decodes the escape sequences that actually occur in
// bank notification emails. Anything else falls through to the generic
// hex pass below.
var quotedPrintable = strings.NewReplacer(
	"=3D", "=",
	"=20", " ",
	"=0D", "\r",
	"=0A", "\n",
	"=09", "\t",
	"=22", `"`,
	"=27", "'",
	"=3C", "<",
	"=3E", ">",
	"=26", "&",
)

// elements removed wholesale before text extraction.
var droppedElements = map[string]bool{
	"img":    true,
	"style":  true,
	"script": true,
}

// Normalize decodes transport encoding and markup into clean plain text.
// It never fails: any sequence that cannot be decoded is kept verbatim.
func Normalize(raw string) string {
	// Quoted-printable: soft line breaks first, then escape sequences.
	text := softBreakRe.ReplaceAllString(raw, "")
	text = quotedPrintable.Replace(text)
	text = hexEscapeRe.ReplaceAllStringFunc(text, func(seq string) string {
		v, err := strconv.ParseUint(seq[1:], 16, 8)
		if err != nil {
			return seq
		}
		return string(rune(v))
	})

	text = html.UnescapeString(text)
	text = extractText(text)

	// Collapse whitespace runs within each line and drop empty lines.
	// Fixes broken words like "Dear cus    tomer" in table-heavy bodies.
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = lineSpaceRe.ReplaceAllString(strings.TrimSpace(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	// The last two lines are boilerplate footer in every known format.
	if len(lines) > 2 {
		lines = lines[:len(lines)-2]
	}

	clean := strings.Join(lines, "\n")
	clean = blankLinesRe.ReplaceAllString(clean, "\n\n")
	return strings.TrimSpace(clean)
}

// extractText parses markup and returns the text content with newlines
// separating text chunks, <br> elements, and block elements. Plain text
// input passes through unchanged apart from the separators.
func extractText(markup string) string {
	doc, err := xhtml.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse only fails on reader errors; a string reader
		// cannot produce one, but fall back to the raw text anyway.
		return markup
	}

	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch n.Type {
		case xhtml.ElementNode:
			if droppedElements[n.Data] {
				return
			}
			if n.Data == "br" {
				b.WriteString("\n")
				return
			}
		case xhtml.TextNode:
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}
