// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify converts arbitrary text into a URL-friendly slug. Accented
// characters fold to their base letters, every run of characters outside
// [a-z0-9] collapses to a single hyphen, and leading or trailing hyphens
// are trimmed. The function is idempotent.
func Slugify(text string) string {
	lowered := strings.ToLower(text)

	// NFD separates base letters from combining marks so the marks can be
	// dropped on their own.
	decomposed := norm.NFD.String(lowered)

	var b strings.Builder
	b.Grow(len(decomposed))

	hyphenPending := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r)
			continue
		}

		hyphenPending = true
	}

	return b.String()
}
