package helpers

import "strings"

// NormalizeEmail trims surrounding whitespace and lower-cases an email address.
// Emails are compared case-insensitively everywhere in the portal.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NamesMatch reports whether two person names are equal after trimming and
// case folding.
func NamesMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NullableString returns nil for blank strings, otherwise a pointer to the trimmed value.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
