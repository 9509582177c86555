package slug

import (
	"strings"
	"unicode"
)

// Make folds a display name into a lowercase, hyphen-separated identifier. Letters and digits
// of any script are kept; everything else separates words.
func Make(input string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
