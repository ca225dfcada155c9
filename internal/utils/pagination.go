// Package utils provides small, generic helpers shared across layers.
// Nothing here knows about alerts, contacts, or HTTP.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int, returning def when s is empty
// or not a plain integer. Query parameters arrive untrimmed; callers that
// tolerate surrounding whitespace must trim before parsing.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
