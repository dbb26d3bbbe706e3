package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString prepares free text (search terms, filter names) for the
// commerce backend: control characters are dropped, whitespace runs collapse
// to one space and the result is cut to maxLen bytes on a rune boundary.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	space := false
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		case unicode.IsControl(r) || r == utf8.RuneError:
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if maxLen <= 0 || len(out) <= maxLen {
		return out
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return strings.TrimRight(out[:cut], " ")
}
