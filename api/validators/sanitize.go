package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters, collapses inner whitespace runs
// and caps the result at maxLen runes. maxLen <= 0 disables the cap.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	space := false
	count := 0
	for _, r := range strings.TrimSpace(input) {
		if maxLen > 0 && count >= maxLen {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space {
			b.WriteByte(' ')
			count++
			space = false
			if maxLen > 0 && count >= maxLen {
				break
			}
		}
		b.WriteRune(r)
		count++
	}
	return strings.TrimSpace(b.String())
}
