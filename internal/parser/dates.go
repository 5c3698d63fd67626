package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	monthNameDateRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3})\s+(\d{2})\s+(\d{1,2}):(\d{1,2})`)
	slashDateRe     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})(?:\s+(\d{1,2}):(\d{1,2}))?`)
)

var monthCodes = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// dayFirstLayouts are the fallback formats, all interpreted day-first.
var dayFirstLayouts = []string{
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04",
	"2-1-2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// DateResolver parses bank-specific date strings into absolute
// timestamps, disambiguating two-digit years against an injected clock.
type DateResolver struct {
	now func() time.Time
}

// NewDateResolver returns a resolver using the given clock. A nil clock
// means time.Now.
func NewDateResolver(now func() time.Time) *DateResolver {
	if now == nil {
		now = time.Now
	}
	return &DateResolver{now: now}
}

// Resolve parses a raw date substring. It reports false when the input
// matches no known shape; the record then simply lacks a value date.
func (r *DateResolver) Resolve(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	// Shape 1: "13 MAY 25 17:20". An unknown month code is not fatal;
	// it falls back to January like the rest of the pipeline degrades.
	if m := monthNameDateRe.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthCodes[strings.ToUpper(m[2])]
		if !ok {
			month = time.January
		}
		yy, _ := strconv.Atoi(m[3])
		year := r.expandYear(yy)
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), true
	}

	// Shape 2: "DD/MM/YY" with optional "HH:MM". Always day-first.
	if m := slashDateRe.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year = r.expandYear(year)
		}
		var hour, minute int
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), true
		}
	}

	// Last resort: a short list of day-first layouts.
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.Year() < 100 {
				t = time.Date(r.expandYear(t.Year()), t.Month(), t.Day(),
					t.Hour(), t.Minute(), t.Second(), 0, t.Location())
			}
			return t, true
		}
	}

	slog.Warn("unparseable date string", "raw", raw)
	return time.Time{}, false
}

// expandYear turns a two-digit year into a full year by prefixing the
// current century, stepping back 100 years if that lands more than a
// decade in the future.
func (r *DateResolver) expandYear(yy int) int {
	currentYear := r.now().Year()
	full := (currentYear/100)*100 + yy
	if full > currentYear+10 {
		full -= 100
	}
	return full
}
