package ocr

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountPattern = regexp.MustCompile(`(?i)(?:rp\.?\s*)?(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
	totalKeywords = []string{"grand total", "total", "jumlah", "jml", "amount", "bayar"}
)

// DetectAmount prefers the last number on a line containing a total keyword,
// falling back to the largest Rupiah-prefixed number.
func DetectAmount(lines []string) (decimal.Decimal, bool) {
	for _, kw := range totalKeywords {
		for i := len(lines) - 1; i >= 0; i-- {
			lower := strings.ToLower(lines[i])
			if !strings.Contains(lower, kw) || strings.Contains(lower, "subtotal") && kw == "total" {
				continue
			}
			matches := amountPattern.FindAllStringSubmatch(lines[i], -1)
			if len(matches) == 0 {
				continue
			}
			if d, ok := ParseAmount(matches[len(matches)-1][1]); ok {
				return d, true
			}
		}
	}

	var best decimal.Decimal
	found := false
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "rp") {
			continue
		}
		for _, m := range amountPattern.FindAllStringSubmatch(line, -1) {
			if d, ok := ParseAmount(m[1]); ok && d.GreaterThan(best) {
				best, found = d, true
			}
		}
	}
	return best, found
}

// ParseAmount reads a positive amount written as either 1.250.000,50 or 1,250,000.50.
func ParseAmount(s string) (decimal.Decimal, bool) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	decimalSep := ""
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			decimalSep = "."
		} else {
			decimalSep = ","
		}
	case lastDot >= 0 && len(s)-lastDot-1 <= 2:
		decimalSep = "."
	case lastComma >= 0 && len(s)-lastComma-1 <= 2:
		decimalSep = ","
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case decimalSep != "" && string(r) == decimalSep && i == strings.LastIndex(s, decimalSep):
			b.WriteRune('.')
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil || d.IsZero() {
		return decimal.Decimal{}, false
	}
	return d, true
}
