package validator

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)
	// Indonesian mobile numbers (08.., 628.., +628..) or any E.164 number.
	phonePattern = regexp.MustCompile(`^(?:(?:\+?62|0)8[1-9][0-9]{6,11}|\+[1-9][0-9]{7,14})$`)
	urlPattern   = regexp.MustCompile(`^https?://[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*(:[0-9]{1,5})?(/[^\s]*)?$`)
)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// IsPhone accepts common separators (spaces, dashes, dots, parentheses).
func IsPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

func IsURL(s string) bool {
	return urlPattern.MatchString(strings.TrimSpace(s))
}

func NormalizePhone(s string) string {
	return phoneSeparators.Replace(strings.TrimSpace(s))
}
