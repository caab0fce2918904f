package util

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed at hashing time; raising it only affects new hashes.
const bcryptCost = 12

// HashPassword derives a bcrypt hash of the password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
