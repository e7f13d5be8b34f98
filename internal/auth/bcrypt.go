package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is fixed; changing it only affects newly written hashes.
const passwordHashCost = 10

// HashPassword generates a salted bcrypt hash for the given password. Each
// call produces a different digest, so hashing must happen exactly once per
// password write: hashing an already-hashed value corrupts the credential.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(h), err
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash using bcrypt's own comparison, never a string compare.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}
