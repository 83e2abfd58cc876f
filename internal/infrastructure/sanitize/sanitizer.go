// Package sanitize strips markup from user-supplied review text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxPasses = 4

// StrictSanitizer removes every HTML element and attribute, keeping only text content.
// It is safe for concurrent use.
type StrictSanitizer struct {
	policy *bluemonday.Policy
}

// NewStrictSanitizer creates a sanitizer backed by bluemonday's strict policy.
func NewStrictSanitizer() *StrictSanitizer {
	return &StrictSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns s with all markup removed and surrounding whitespace trimmed.
// Entities are decoded so stored text is plain; decoding repeats until stable so
// escaped markup cannot survive as live tags.
func (s *StrictSanitizer) Sanitize(input string) string {
	cur := input
	for range maxPasses {
		next := html.UnescapeString(s.policy.Sanitize(cur))
		if next == cur {
			return strings.TrimSpace(cur)
		}
		cur = next
	}
	if strings.ContainsAny(cur, "<>") {
		cur = s.policy.Sanitize(cur)
	}
	return strings.TrimSpace(cur)
}
