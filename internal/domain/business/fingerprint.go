package business

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fingerprintSeparator joins the name and address tokens.  Normalized tokens
// never contain it.
const fingerprintSeparator = "|"

// NormalizeName applies NFKC compatibility normalization and case folding,
// drops punctuation and symbol runes, then collapses runs of whitespace.
//
//	"  Joe's HVAC, Inc. " -> "joes hvac inc"
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	// cases.Caser is stateful; one per call keeps this safe across goroutines.
	s = cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		case unicode.IsSpace(r):
			space = b.Len() > 0
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeAddress returns the normalized street token of an address: the
// portion before the first comma, normalized like a name.  An empty address
// yields "".
func NormalizeAddress(address string) string {
	street := address
	if i := strings.IndexByte(street, ','); i >= 0 {
		street = street[:i]
	}
	return NormalizeName(street)
}

// Fingerprint is the identity key two observations must share to merge.
func Fingerprint(name, address string) string {
	return NormalizeName(name) + fingerprintSeparator + NormalizeAddress(address)
}

//Personal.AI order the ending
