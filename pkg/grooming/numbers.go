package grooming

import (
	"strconv"
	"strings"
)

// ParseNumeric parses a numeric qualification fact, tolerating the
// formatting enrichment sources produce: currency symbols, thousands
// separators, and surrounding whitespace. "$1,250,000" parses as 1250000.
func ParseNumeric(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}

	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ':
			return -1
		}
		return r
	}, cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
