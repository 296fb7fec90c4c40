// Package crypto hashes and verifies user passwords.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for newly stored passwords.
var PasswordCost = 12

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(hash), err
}

// CheckPasswordHash verifies password against a stored bcrypt hash.
// An empty or malformed hash never matches.
func CheckPasswordHash(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
