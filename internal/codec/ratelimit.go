// Package codec parses and formats the bandwidth and validity strings used
// by voucher profiles.
package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultRate is the fallback rate (bits/s) callers apply when a rate-limit
// string does not parse. The codec itself never substitutes it.
const DefaultRate = 10_000_000

// RateLimit is a parsed upload/download cap in bits per second.
type RateLimit struct {
	Upload   int64
	Download int64
}

// ParseRateLimit parses strings like "10M/5M", "512K", or "2500000".
// Units K, M, G multiply by 1e3, 1e6, 1e9; the download side defaults to
// the upload side when absent. Parsing is case-insensitive.
//
// The boolean result is false when the string does not parse; callers
// decide the fallback (typically DefaultRate for both directions).
func ParseRateLimit(s string) (RateLimit, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RateLimit{}, false
	}

	up, rest, _ := strings.Cut(s, "/")
	upload, ok := parseRate(up)
	if !ok {
		return RateLimit{}, false
	}

	download := upload
	if rest != "" {
		download, ok = parseRate(rest)
		if !ok {
			return RateLimit{}, false
		}
	}

	return RateLimit{Upload: upload, Download: download}, true
}

// FormatRateLimit renders a RateLimit back into "<up>/<down>" form using the
// largest unit that divides the value evenly. Round-trips with
// ParseRateLimit up to unit normalization.
func FormatRateLimit(r RateLimit) string {
	return formatRate(r.Upload) + "/" + formatRate(r.Download)
}

func parseRate(s string) (int64, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	var mult int64 = 1
	switch s[len(s)-1] {
	case 'K':
		mult = 1_000
		s = s[:len(s)-1]
	case 'M':
		mult = 1_000_000
		s = s[:len(s)-1]
	case 'G':
		mult = 1_000_000_000
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}

func formatRate(n int64) string {
	switch {
	case n >= 1_000_000_000 && n%1_000_000_000 == 0:
		return fmt.Sprintf("%dG", n/1_000_000_000)
	case n >= 1_000_000 && n%1_000_000 == 0:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000 && n%1_000 == 0:
		return fmt.Sprintf("%dK", n/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}
