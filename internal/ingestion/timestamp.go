package ingestion

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order; the first success wins. Covers the
// encodings the graph API actually emits: RFC3339 with Z or ±hh:mm, the same
// with a colonless offset (+0000), and bare date-times with no offset.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an absolute source timestamp. ok is false when no
// layout matched; callers substitute the ingestion time and flag the record.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var relativeNoise = regexp.MustCompile(`\b(?:Reviewed|ago)\b|\(s\)`)

// ParseRelativeDate converts a relative crawl date such as "3 days ago",
// "1 week ago" or "Reviewed 2 months ago" into an absolute time by
// subtracting the duration from now. A month counts as 30 days. Unrecognized
// unit tokens or non-numeric counts return ok=false; the caller drops the
// record rather than guessing.
func ParseRelativeDate(text string, now time.Time) (time.Time, bool) {
	cleaned := strings.TrimSpace(relativeNoise.ReplaceAllString(text, ""))
	parts := strings.Fields(cleaned)
	if len(parts) != 2 {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	var days int
	switch parts[1] {
	case "day", "days":
		days = n
	case "week", "weeks":
		days = n * 7
	case "month", "months":
		days = n * 30
	default:
		return time.Time{}, false
	}

	return now.AddDate(0, 0, -days), true
}

// absoluteDateLayouts cover the review-site date formats: "December 25, 2023",
// "Dec 25, 2023" and "12/25/2023".
var absoluteDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// ParseAbsoluteDate parses a crawled calendar date, tolerating a leading
// "Reviewed " prefix. ok is false when no format matched.
func ParseAbsoluteDate(text string) (time.Time, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "Reviewed", ""))
	for _, layout := range absoluteDateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
