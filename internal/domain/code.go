package domain

import (
	"regexp"
	"strings"
)

// MaxCodeLength is the longest raw input the form accepts ("12345-678").
const MaxCodeLength = 9

// codeFormatRe is the soft-validation pattern applied by the form: five
// digits, an optional hyphen, three digits.
var codeFormatRe = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// Normalize strips every non-digit character from a raw postal code.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ValidCodeFormat reports whether raw passes the form's length limit and pattern.
func ValidCodeFormat(raw string) bool {
	return len(raw) <= MaxCodeLength && codeFormatRe.MatchString(raw)
}

// FormatCode renders an eight-digit code as "12345-678". Anything else is
// returned unchanged.
func FormatCode(code string) string {
	if len(code) != 8 || Normalize(code) != code {
		return code
	}
	return code[:5] + "-" + code[5:]
}
