package ingestion

import (
	"regexp"
	"strconv"
	"strings"
)

var nonRatingChars = regexp.MustCompile(`[^0-9,.]`)

// NormalizeRating parses a source-formatted rating string: strips everything
// but digits and separators, normalizes the decimal comma, and collapses
// 0-100 scale values onto 0-10 (a parsed value above 10 is divided by 10, so
// "97" becomes 9.7). ok is false when nothing numeric remains; sources whose
// policy preserves the native representation keep it in RatingText instead
// and never call this.
func NormalizeRating(text string) (float64, bool) {
	cleaned := nonRatingChars.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	if value > 10 {
		value = value / 10
	}
	return value, true
}
