package dedupe

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeEmail lowercases and trims an email. Empty in, empty out.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits only and folds the French international
// prefixes (+33 / 0033) back to the national leading zero.
func NormalizePhone(phone string) string {
	digits := keepDigits(phone)
	if strings.HasPrefix(digits, "0033") {
		return "0" + digits[4:]
	}
	if strings.HasPrefix(digits, "33") && len(digits) >= 11 {
		return "0" + digits[2:]
	}
	return digits
}

// NormalizeSiret returns the 14-digit SIRET or "" when the input does
// not carry exactly 14 digits.
func NormalizeSiret(siret string) string {
	digits := keepDigits(siret)
	if len(digits) != 14 {
		return ""
	}
	return digits
}

// NormalizeCompanyName lowercases, strips accents and keeps only
// alphanumerics, so "Café de l'Ouest" and "CAFE DE LOUEST" compare equal.
func NormalizeCompanyName(name string) string {
	if name == "" {
		return ""
	}
	folded, _, err := transform.String(accentStripper, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}
	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePostalCode pads to a 5-digit French postal code.
func NormalizePostalCode(code string) string {
	digits := keepDigits(code)
	if digits == "" {
		return ""
	}
	for len(digits) < 5 {
		digits = "0" + digits
	}
	return digits[:5]
}

// NormalizeWebsite reduces a URL to its host without the www prefix.
// Unparseable input normalizes to "".
func NormalizeWebsite(website string) string {
	w := strings.ToLower(strings.TrimSpace(website))
	if w == "" {
		return ""
	}
	if !strings.HasPrefix(w, "http://") && !strings.HasPrefix(w, "https://") {
		w = "https://" + w
	}
	u, err := url.Parse(w)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
