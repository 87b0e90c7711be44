// Package credential stores and checks account passwords.
package credential

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns passwords into stored credentials and verifies them.
// Stored values without a bcrypt prefix are legacy verbatim passwords and
// are compared as such.
type Hasher struct {
	enabled bool
	cost    int
}

// NewHasher returns a hasher. With enabled false, Hash stores passwords
// verbatim.
func NewHasher(enabled bool) *Hasher {
	return &Hasher{enabled: enabled, cost: bcrypt.DefaultCost}
}

// Hash returns the value to persist for password.
func (h *Hasher) Hash(password string) (string, error) {
	if !h.enabled || IsHashed(password) {
		return password, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches stored.
func (h *Hasher) Verify(stored, password string) bool {
	if stored == "" {
		return false
	}
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == password
}

// IsHashed reports whether s looks like a bcrypt hash.
func IsHashed(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
