package models

import "strings"

// Account represents a registered transport provider identity.
// The normalized phone is the unique key for login and booking ownership.
type Account struct {
	Name         string `json:"nombre"`
	Phone        string `json:"telefono"`
	ProviderName string `json:"proveedor"`
	PasswordHash string `json:"-"`
}

// NormalizePhone strips every non-digit character from a submitted phone
// number. "555-123-4567" and "5551234567" normalize to the same identity.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPhone reports whether s is exactly ten digits.
func IsValidPhone(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
