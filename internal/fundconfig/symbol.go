package fundconfig

import (
	"strings"
	"unicode"
)

// CleanSymbol normalises a ticker for comparison: upper case, no whitespace
// and no decoration such as "VFIAX*" footnote markers.
func CleanSymbol(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
