package codec

import (
	"strconv"
	"strings"
)

// DefaultValiditySeconds is the fallback (24 hours) callers apply when a
// validity string does not parse. The codec itself never substitutes it.
const DefaultValiditySeconds = 86400

// ParseValidity parses a duration string into seconds. A single-letter
// suffix selects the unit: "m" minutes, "h" hours, "d" days; no suffix
// means raw seconds. "1h" → 3600, "7d" → 604800, "120" → 120.
//
// The boolean result is false when the string does not parse.
func ParseValidity(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	mult := 1
	switch s[len(s)-1] {
	case 'm':
		mult = 60
		s = s[:len(s)-1]
	case 'h':
		mult = 3600
		s = s[:len(s)-1]
	case 'd':
		mult = 86400
		s = s[:len(s)-1]
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}

// FormatValidity renders seconds using the largest unit that divides evenly.
func FormatValidity(seconds int) string {
	switch {
	case seconds >= 86400 && seconds%86400 == 0:
		return strconv.Itoa(seconds/86400) + "d"
	case seconds >= 3600 && seconds%3600 == 0:
		return strconv.Itoa(seconds/3600) + "h"
	case seconds >= 60 && seconds%60 == 0:
		return strconv.Itoa(seconds/60) + "m"
	default:
		return strconv.Itoa(seconds)
	}
}
