// Package phone provides validation and normalization helpers for contact
// phone numbers. Validation follows an E.164-style shape (optional leading
// "+", no leading zero, 2–15 significant digits). Normalization is a
// best-effort canonicalization into "+<digits>" form and does NOT imply
// validity; callers that care about correctness must still run Valid.
//
// All functions are pure and safe for concurrent use.
package phone

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultCountryCode is prepended to bare 10-digit local numbers during
// normalization (NANP assumption).
const DefaultCountryCode = "1"

var (
	// e164Pattern matches an optional "+", a non-zero first digit, and 1–14
	// further digits (2–15 significant digits total).
	e164Pattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

	// nonDigits matches every character that is not an ASCII digit.
	nonDigits = regexp.MustCompile(`\D`)
)

// Valid reports whether s, after stripping all whitespace, is an
// E.164-shaped phone number.
//
// Examples:
//
//	Valid("+14155551234") // true
//	Valid("14155551234")  // true
//	Valid("+0123")        // false (leading zero)
//	Valid("abc")          // false
func Valid(s string) bool {
	s = stripSpace(s)
	return e164Pattern.MatchString(s)
}

// Normalize canonicalizes s into "+<digits>" form:
//
//   - every non-digit character is removed,
//   - a bare 10-digit number gets DefaultCountryCode prepended,
//   - the result is prefixed with "+".
//
// A number written with an explicit "+" already carries its country code,
// so the 10-digit prefix rule applies only to bare inputs: "+3197010280"
// stays "+3197010280" while "4155551234" becomes "+14155551234".
//
// Normalize is idempotent on its own output: applying it twice yields the
// same string. It performs no validation; Normalize("abc") returns "+".
func Normalize(s string) string {
	s = stripSpace(s)
	international := strings.HasPrefix(s, "+")
	digits := nonDigits.ReplaceAllString(s, "")
	if !international && len(digits) == 10 {
		digits = DefaultCountryCode + digits
	}
	return "+" + digits
}

// stripSpace removes all Unicode whitespace from s.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
