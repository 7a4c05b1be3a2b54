package ranking

import "strings"

// ndcLength is the constant width identifiers are padded to before
// comparison, matching the 11-digit billing format.
const ndcLength = 11

// NormalizeNDC reduces a package identifier to digits only and left-pads it
// to a constant width, so identifiers compare equal regardless of dash
// placement or leading-zero formatting.
func NormalizeNDC(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) >= ndcLength {
		return digits
	}
	return strings.Repeat("0", ndcLength-len(digits)) + digits
}
