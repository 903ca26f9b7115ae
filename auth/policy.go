// Package auth implements credential validation, adaptive password
// hashing and the authentication service with failed-attempt lockout.
package auth

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when none is configured.
const DefaultHashCost = 12

// minPasswordLength is the policy's lower bound on password length.
const minPasswordLength = 12

// passwordSymbols is the punctuation set of which at least one character
// must appear in a valid password.
const passwordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

// PasswordPolicy holds the pure validation and hashing rules applied at
// account creation and password change. The zero value uses
// DefaultHashCost.
type PasswordPolicy struct {
	// HashCost is the bcrypt work factor.
	HashCost int
}

// Validate reports whether password satisfies the policy: at least
// minPasswordLength characters with at least one uppercase letter, one
// lowercase letter, one digit and one symbol.
func (p PasswordPolicy) Validate(password string) bool {
	if len(password) < minPasswordLength {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Hash computes a freshly salted bcrypt digest of password. Two calls
// with the same input produce different digests.
func (p PasswordPolicy) Hash(password string) (string, error) {
	cost := p.HashCost
	if cost == 0 {
		cost = DefaultHashCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. The comparison is
// delegated to bcrypt, which compares digests in constant time.
func (p PasswordPolicy) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
